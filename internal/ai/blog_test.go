package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, capture *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func TestGenerateBlogPost(t *testing.T) {
	var captured chatRequest
	srv := chatServer(t, `{"title":"T","content":"P1\n\nP2","summary":"S","keywords":["go","web","go"]}`, &captured)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "gpt-4", 5*time.Second)
	post, err := client.GenerateBlogPost(context.Background(), BlogInput{
		Title:       "Some headline",
		Description: "Some description",
		URL:         "https://example.com/news",
	})

	require.NoError(t, err)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "P1\n\nP2", post.Content)
	assert.Equal(t, "S", post.Summary)
	assert.Equal(t, []string{"go", "web"}, post.Keywords)

	assert.Equal(t, 0.8, captured.Temperature)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, "Some headline")
}

func TestGenerateBlogPostMalformedOutput(t *testing.T) {
	srv := chatServer(t, "sorry, I cannot do that", nil)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "gpt-4", 5*time.Second)
	post, err := client.GenerateBlogPost(context.Background(), BlogInput{Title: "headline"})

	require.NoError(t, err)
	assert.Empty(t, post.Title)
	assert.Empty(t, post.Content)
	assert.Empty(t, post.Summary)
	assert.Empty(t, post.Keywords)
}

func TestGenerateBlogPostTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "gpt-4", 5*time.Second)
	_, err := client.GenerateBlogPost(context.Background(), BlogInput{Title: "headline"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm error")
}

func TestSuggestProducts(t *testing.T) {
	var captured chatRequest
	srv := chatServer(t, `{"products":[
		{"productName":"USB charger","provider":"amazon","position":2},
		{"productName":"Phone stand","provider":"rakuten"},
		{"productName":"","provider":"amazon","position":1}
	]}`, &captured)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "gpt-4", 5*time.Second)
	products, err := client.SuggestProducts(context.Background(), "P1\n\nP2\n\nP3", []string{"gadgets"})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "USB charger", products[0].ProductName)
	assert.Equal(t, "amazon", products[0].Provider)
	require.NotNil(t, products[0].Position)
	assert.Equal(t, 2, *products[0].Position)

	// Missing position falls back to the list index.
	require.NotNil(t, products[1].Position)
	assert.Equal(t, 1, *products[1].Position)

	assert.Equal(t, 0.7, captured.Temperature)
}

func TestSuggestProductsMalformedOutput(t *testing.T) {
	srv := chatServer(t, "not json at all", nil)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "gpt-4", 5*time.Second)
	products, err := client.SuggestProducts(context.Background(), "body", nil)

	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestClientEnabled(t *testing.T) {
	assert.False(t, (*Client)(nil).Enabled())
	assert.False(t, NewClient("", "", "", time.Second).Enabled())
	assert.True(t, NewClient("https://api.openai.com/v1", "key", "gpt-4", time.Second).Enabled())
}
