package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type BlogInput struct {
	Title       string
	Description string
	URL         string
}

type BlogPost struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

type ProductCandidate struct {
	ProductName string `json:"productName"`
	Provider    string `json:"provider"`
	Position    *int   `json:"position"`
}

type productResponse struct {
	Products []ProductCandidate `json:"products"`
}

// GenerateBlogPost turns one news headline into an original blog draft with
// title, markdown body, meta description and keywords. A malformed or empty
// model response degrades to zero-value fields rather than an error; only
// transport failures are returned.
func (c *Client) GenerateBlogPost(ctx context.Context, in BlogInput) (BlogPost, error) {
	system := "You are an experienced SEO writer. You produce original, engaging blog posts. Return strict JSON only."
	user := fmt.Sprintf(
		"Write an original blog post based on the news article below.\n"+
			"News title: %s\nNews summary: %s\nNews URL: %s\n"+
			"Requirements:\n"+
			"1. Do not copy the news text; add your own perspective and commentary.\n"+
			"2. SEO-aware title and heading structure.\n"+
			"3. Around 1500-2000 characters of markdown body.\n"+
			"4. A meta description of at most 120 characters.\n"+
			"5. 5-10 related keywords.\n"+
			"Return JSON: {\"title\": string, \"content\": markdown string, \"summary\": string, \"keywords\": [string]}",
		in.Title, in.Description, in.URL,
	)

	raw, err := c.ChatJSON(ctx, system, user, 0.8)
	if err != nil {
		return BlogPost{}, err
	}

	var post BlogPost
	if body := extractJSON(raw); body != "" {
		// Parse failures are swallowed: the caller still gets a draft.
		_ = json.Unmarshal([]byte(body), &post)
	}
	post.Title = strings.TrimSpace(post.Title)
	post.Summary = strings.TrimSpace(post.Summary)
	post.Keywords = normalizeList(post.Keywords)
	return post, nil
}

// SuggestProducts asks the model for affiliate product candidates matching a
// draft body. Candidates without a position fall back to their list index;
// provider values are passed through untouched, recognized or not.
func (c *Client) SuggestProducts(ctx context.Context, content string, keywords []string) ([]ProductCandidate, error) {
	excerpt := content
	if len(excerpt) > 500 {
		excerpt = excerpt[:500] + "..."
	}

	user := fmt.Sprintf(
		"Suggest affiliate products for the blog post below.\n"+
			"Post excerpt: %s\nKeywords: %s\n"+
			"Requirements:\n"+
			"1. 3-5 products that fit the article naturally.\n"+
			"2. Product names that plausibly exist on Amazon or Rakuten.\n"+
			"3. A paragraph index (0-based) where each product fits.\n"+
			"Return JSON: {\"products\": [{\"productName\": string, \"provider\": \"amazon\" or \"rakuten\", \"position\": number}]}",
		excerpt, strings.Join(keywords, ", "),
	)

	raw, err := c.ChatJSON(ctx, "", user, 0.7)
	if err != nil {
		return nil, err
	}

	var resp productResponse
	if body := extractJSON(raw); body != "" {
		_ = json.Unmarshal([]byte(body), &resp)
	}

	out := make([]ProductCandidate, 0, len(resp.Products))
	for i, p := range resp.Products {
		p.ProductName = strings.TrimSpace(p.ProductName)
		if p.ProductName == "" {
			continue
		}
		if p.Position == nil {
			idx := i
			p.Position = &idx
		}
		out = append(out, p)
	}
	return out, nil
}
