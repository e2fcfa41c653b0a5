package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/config"
	"github.com/dmitrijs2005/dailydiet/internal/server/metrics"
	"github.com/dmitrijs2005/dailydiet/internal/server/ratelimit"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/memory"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dailydiet/internal/server/services"
	"github.com/stretchr/testify/require"
)

type fakePhotos struct{}

func (fakePhotos) PresignPut(_ context.Context, key string) (string, error) {
	return "https://s3.test/put/" + key, nil
}

func (fakePhotos) PresignGet(_ context.Context, key string) (string, error) {
	return "https://s3.test/get/" + key, nil
}

type testServer struct {
	handler http.Handler
	health  *Health
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, limiter ratelimit.Limiter) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	store := memory.NewStore()
	repos := repomanager.NewMemoryRepositoryManager(store)
	log := logging.Discard()
	m := metrics.New()

	sessions := services.NewSessionService(store, repos, cfg, log, services.WithMetrics(m))
	users := services.NewUserService(store, repos, sessions, log)
	meals := services.NewMealService(store, repos, fakePhotos{}, log)

	health := NewHealth(true)
	h := NewHandlers(sessions, users, meals, limiter, log)
	return &testServer{
		handler: NewRouter(h, log, Options{Metrics: m, Health: health}),
		health:  health,
		metrics: m,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// signup registers and logs in a user and returns the token pair.
func (s *testServer) signup(t *testing.T, email string) tokenResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Diane", "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return s.login(t, email)
}

// login opens another session for a user created by signup.
func (s *testServer) login(t *testing.T, email string) tokenResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenResponse](t, rec)
}

func (s *testServer) addMeal(t *testing.T, token, name string, eatenAt time.Time, onDiet bool) mealResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/meals", token, map[string]any{
		"name": name, "eaten_at": eatenAt, "is_on_diet": onDiet,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[mealResponse](t, rec)
}

func requireUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"code":"UNAUTHORIZED","message":"authentication failed"}`, rec.Body.String())
}
