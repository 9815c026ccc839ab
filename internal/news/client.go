package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Client talks to a NewsAPI-compatible headline provider.
type Client struct {
	BaseURL string
	APIKey  string
	Country string
	HTTP    *http.Client
}

type Headline struct {
	ExternalID  string
	Title       string
	Description string
	URL         string
	ImageURL    string
	Source      string
	PublishedAt *time.Time
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

type apiResponse struct {
	Status   string       `json:"status"`
	Articles []apiArticle `json:"articles"`
}

func NewClient(baseURL, apiKey, country string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Country: country,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// TopHeadlines fetches up to pageSize current headlines for a category.
func (c *Client) TopHeadlines(ctx context.Context, category string, pageSize int) ([]Headline, error) {
	q := url.Values{}
	q.Set("country", c.Country)
	q.Set("category", category)
	q.Set("pageSize", fmt.Sprintf("%d", pageSize))
	return c.fetch(ctx, "/top-headlines", q)
}

// Search queries the everything endpoint, newest first.
func (c *Client) Search(ctx context.Context, query string) ([]Headline, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", "publishedAt")
	return c.fetch(ctx, "/everything", q)
}

func (c *Client) fetch(ctx context.Context, path string, q url.Values) ([]Headline, error) {
	q.Set("apiKey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("news api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	headlines := make([]Headline, 0, len(out.Articles))
	for i, a := range out.Articles {
		h := Headline{
			ExternalID:  fmt.Sprintf("news_%d_%d", time.Now().UnixMilli(), i),
			Title:       a.Title,
			Description: StripHTML(a.Description),
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Source:      a.Source.Name,
		}
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			h.PublishedAt = &ts
		}
		headlines = append(headlines, h)
	}
	return headlines, nil
}

// StripHTML drops markup from provider descriptions so raw tags never end up
// inside prompts or stored rows.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	tok := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(tok.Text())
		}
	}
}
