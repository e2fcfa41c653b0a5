// Package api is the dietctl HTTP client for the DailyDiet API. It keeps
// the token pair in a SessionStore and, when the server answers 401,
// rotates the refresh token once and retries the request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/common"
)

// ErrSessionExpired is returned when the stored refresh token was rejected.
// The session has been cleared by then.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
}

func NewClient(baseURL string, timeout time.Duration, sessions SessionStore) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Code, apiErr.Message = e.Code, e.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doAuth sends an authenticated request. body builds the payload from the
// session in use, so a retry after rotation sees the new tokens.
func (c *Client) doAuth(ctx context.Context, method, path string, body func(*Session) any, out any) error {
	s, err := c.sessions.Load()
	if err != nil {
		return err
	}

	err = c.do(ctx, method, path, s.AccessToken, payload(body, s), out)
	if !isUnauthorized(err) {
		return err
	}

	s, err = c.refresh(ctx, s)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, s.AccessToken, payload(body, s), out)
}

func payload(body func(*Session) any, s *Session) any {
	if body == nil {
		return nil
	}
	return body(s)
}

func staticBody(v any) func(*Session) any {
	return func(*Session) any { return v }
}

// refresh exchanges the stored refresh token for a new pair.
func (c *Client) refresh(ctx context.Context, s *Session) (*Session, error) {
	var pair tokenPair
	err := c.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": s.RefreshToken}, &pair)
	if isUnauthorized(err) {
		if clearErr := c.sessions.Clear(); clearErr != nil {
			return nil, clearErr
		}
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, err
	}

	next := pair.session()
	if err := c.sessions.Save(next); err != nil {
		return nil, err
	}
	return next, nil
}
