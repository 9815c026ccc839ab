package auth

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
)

// Client talks to a GoTrue-style auth backend. Session handling is entirely
// delegated: this service only verifies access tokens and exchanges OAuth
// callback codes.
type Client struct {
	BaseURL string
	AnonKey string
	HTTP    *http.Client
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		AnonKey: anonKey,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.BaseURL != "" && c.AnonKey != ""
}

// GetUser resolves an access token to its user, or fails for invalid or
// expired sessions.
func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	if !c.Enabled() {
		return User{}, errors.New("auth not configured")
	}
	if accessToken == "" {
		return User{}, errors.New("missing access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return User{}, err
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return User{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return User{}, fmt.Errorf("auth status %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		return User{}, errors.New("no user in response")
	}
	return user, nil
}

// ExchangeCode trades an OAuth callback code for a session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Session, error) {
	if !c.Enabled() {
		return Session{}, errors.New("auth not configured")
	}

	payload, err := json.Marshal(map[string]string{"auth_code": code})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/auth/v1/token?grant_type=pkce", bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("apikey", c.AnonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Session{}, fmt.Errorf("auth status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	if session.AccessToken == "" {
		return Session{}, errors.New("no access token in response")
	}
	return session, nil
}
