package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		if r.Header.Get("Authorization") != "Bearer good-token" {
			http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"user-1","email":"editor@example.com"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon", 5*time.Second)

	user, err := client.GetUser(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "editor@example.com", user.Email)

	_, err = client.GetUser(context.Background(), "bad-token")
	assert.Error(t, err)

	_, err = client.GetUser(context.Background(), "")
	assert.Error(t, err)
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon", 5*time.Second)
	session, err := client.ExchangeCode(context.Background(), "code123")

	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)
}

func TestExchangeCodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "anon", 5*time.Second)
	_, err := client.ExchangeCode(context.Background(), "expired")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth status 400")
}
