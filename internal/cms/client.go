package cms

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

// Client talks to a microCMS-compatible content API.
type Client struct {
	BaseURL  string
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

// Article is the payload shape of the articles endpoint.
type Article struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
}

type ListResponse struct {
	Contents   []Article `json:"contents"`
	TotalCount int       `json:"totalCount"`
	Offset     int       `json:"offset"`
	Limit      int       `json:"limit"`
}

type createResponse struct {
	ID string `json:"id"`
}

// NewClient builds a client for one microCMS service. serviceDomain may be a
// bare service name or a full base URL (used as-is for tests).
func NewClient(serviceDomain, apiKey string, timeout time.Duration) *Client {
	base := serviceDomain
	if !strings.Contains(base, "://") {
		base = fmt.Sprintf("https://%s.microcms.io/api/v1", base)
	}
	return &Client{
		BaseURL:  strings.TrimRight(base, "/"),
		APIKey:   apiKey,
		Endpoint: "articles",
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.BaseURL != "" && c.APIKey != ""
}

// Create pushes a new article and returns the CMS-assigned id.
func (c *Client) Create(ctx context.Context, article Article) (string, error) {
	body, err := c.do(ctx, http.MethodPost, c.BaseURL+"/"+c.Endpoint, article)
	if err != nil {
		return "", err
	}
	var res createResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if res.ID == "" {
		return "", errors.New("cms returned empty id")
	}
	return res.ID, nil
}

// Update patches an existing article in place.
func (c *Client) Update(ctx context.Context, id string, article Article) error {
	article.ID = ""
	_, err := c.do(ctx, http.MethodPatch, c.BaseURL+"/"+c.Endpoint+"/"+id, article)
	return err
}

// List returns the service's stored articles.
func (c *Client) List(ctx context.Context) (ListResponse, error) {
	body, err := c.do(ctx, http.MethodGet, c.BaseURL+"/"+c.Endpoint, nil)
	if err != nil {
		return ListResponse{}, err
	}
	var res ListResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return ListResponse{}, fmt.Errorf("decode list response: %w", err)
	}
	return res, nil
}

// Delete removes an article from the CMS.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, c.BaseURL+"/"+c.Endpoint+"/"+id, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	if !c.Enabled() {
		return nil, errors.New("cms not configured")
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-MICROCMS-API-KEY", c.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cms status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
