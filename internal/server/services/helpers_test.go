package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/auth"
	"github.com/dmitrijs2005/dailydiet/internal/server/config"
	"github.com/dmitrijs2005/dailydiet/internal/server/metrics"
	"github.com/dmitrijs2005/dailydiet/internal/server/models"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/memory"
	"github.com/dmitrijs2005/dailydiet/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

type env struct {
	store    *memory.Store
	repos    repomanager.RepositoryManager
	clock    *fakeClock
	metrics  *metrics.Metrics
	sessions *SessionService
	users    *UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	repos := repomanager.NewMemoryRepositoryManager(store)
	clock := newFakeClock()
	m := metrics.New()
	log := logging.Discard()

	sessions := NewSessionService(store, repos, testConfig(), log, WithClock(clock), WithMetrics(m))
	return &env{
		store:    store,
		repos:    repos,
		clock:    clock,
		metrics:  m,
		sessions: sessions,
		users:    NewUserService(store, repos, sessions, log),
	}
}

func (e *env) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.repos.Users(e.store.DB()).Create(context.Background(), &models.User{
		Name: "Test", Email: email, PasswordHash: []byte("x"),
	})
	require.NoError(t, err)
	return u
}

// token loads the stored row for a refresh token value.
func (e *env) token(t *testing.T, value string) *models.RefreshToken {
	t.Helper()
	tok, err := e.repos.RefreshTokens(e.store.DB()).FindByHash(context.Background(), auth.HashRefreshToken(value))
	require.NoError(t, err)
	return tok
}
