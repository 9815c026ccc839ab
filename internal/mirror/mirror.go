package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"autoblog/internal/storage"
)

// Mirror copies headline cover images into the object store so the dashboard
// does not hotlink external providers. Best effort: callers treat failures as
// non-fatal.
type Mirror struct {
	Client *http.Client
	Store  *storage.MinioStore
}

func New(store *storage.MinioStore, timeout time.Duration) *Mirror {
	return &Mirror{
		Store: store,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (m *Mirror) Enabled() bool {
	return m != nil && m.Store != nil
}

// CoverImage downloads rawURL and stores it under the article's prefix,
// returning the object path.
func (m *Mirror) CoverImage(ctx context.Context, articleID, rawURL string) (string, error) {
	if !m.Enabled() {
		return "", errors.New("mirror not configured")
	}
	if rawURL == "" {
		return "", errors.New("no image url")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "AutoblogBot/0.1")

	resp, err := m.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", err
	}

	ext := path.Ext(u.Path)
	if ext == "" {
		ext = ".img"
	}
	name := "cover" + ext
	objectPath := path.Join(storage.ScrapedPrefix(articleID), name)
	contentType := storage.GuessContentType(name, resp.Header.Get("Content-Type"))
	if err := m.Store.PutBytes(ctx, objectPath, body, contentType); err != nil {
		return "", err
	}
	return objectPath, nil
}
