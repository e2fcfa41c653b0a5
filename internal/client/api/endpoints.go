package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/netx"
)

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (p tokenPair) session() *Session {
	return &Session{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Meal struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EatenAt     time.Time `json:"eaten_at"`
	IsOnDiet    bool      `json:"is_on_diet"`
	HasPhoto    bool      `json:"has_photo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MealInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	EatenAt     time.Time `json:"eaten_at"`
	IsOnDiet    bool      `json:"is_on_diet"`
}

type Metrics struct {
	TotalMeals         int `json:"total_meals"`
	OnDietMeals        int `json:"on_diet_meals"`
	OffDietMeals       int `json:"off_diet_meals"`
	BestOnDietSequence int `json:"best_on_diet_sequence"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var u User
	err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Login stores the new session on success.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var pair tokenPair
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": password,
	}, &pair)
	if err != nil {
		return err
	}
	return c.sessions.Save(pair.session())
}

// Logout ends the current session, or every session of the user when all
// is set. The local session is dropped either way.
func (c *Client) Logout(ctx context.Context, all bool) error {
	err := c.doAuth(ctx, http.MethodPost, "/auth/logout", func(s *Session) any {
		if all {
			return struct{}{}
		}
		return map[string]string{"refresh_token": s.RefreshToken}
	}, nil)

	if clearErr := c.sessions.Clear(); clearErr != nil {
		return clearErr
	}
	if errors.Is(err, ErrSessionExpired) {
		return nil
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doAuth(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListMeals(ctx context.Context) ([]Meal, error) {
	var resp struct {
		Meals []Meal `json:"meals"`
	}
	if err := c.doAuth(ctx, http.MethodGet, "/meals", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Meals, nil
}

func (c *Client) CreateMeal(ctx context.Context, in MealInput) (*Meal, error) {
	var m Meal
	if err := c.doAuth(ctx, http.MethodPost, "/meals", staticBody(in), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	return c.doAuth(ctx, http.MethodDelete, "/meals/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Metrics(ctx context.Context) (*Metrics, error) {
	var m Metrics
	if err := c.doAuth(ctx, http.MethodGet, "/meals/metrics", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

type photoUpload struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
}

// UploadPhoto asks the server for a presigned URL and PUTs the photo bytes
// straight to object storage.
func (c *Client) UploadPhoto(ctx context.Context, id string, r io.Reader, size int64, contentType string) error {
	var up photoUpload
	if err := c.doAuth(ctx, http.MethodPost, "/meals/"+url.PathEscape(id)+"/photo", nil, &up); err != nil {
		return err
	}
	return netx.UploadToPresignedURL(ctx, c.http, up.UploadURL, contentType, r, size)
}

// PhotoURL returns a presigned download URL for the meal photo.
func (c *Client) PhotoURL(ctx context.Context, id string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.doAuth(ctx, http.MethodGet, "/meals/"+url.PathEscape(id)+"/photo", nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
