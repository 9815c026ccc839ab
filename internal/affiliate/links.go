package affiliate

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	ProviderAmazon  = "amazon"
	ProviderRakuten = "rakuten"
)

// Link is a sponsored product reference anchored to a paragraph offset in an
// article body. Position is clamped at insertion time, not revalidated after.
type Link struct {
	ProductName string `json:"productName"`
	URL         string `json:"url"`
	Provider    string `json:"provider"`
	Position    int    `json:"position"`
}

// Config carries the tracking identifiers appended to outbound product URLs.
type Config struct {
	AmazonTag string
	RakutenID string
}

// BuildURL renders the provider-specific search URL for a product. Unknown
// providers fall through to a placeholder target; the link is still kept.
func (c Config) BuildURL(productName, provider string) string {
	switch provider {
	case ProviderAmazon:
		return fmt.Sprintf("https://www.amazon.co.jp/s?k=%s&tag=%s", url.QueryEscape(productName), c.AmazonTag)
	case ProviderRakuten:
		return fmt.Sprintf("https://search.rakuten.co.jp/search/mall/%s/?scid=%s", url.PathEscape(productName), c.RakutenID)
	}
	return "#"
}

// Insert returns a new body with each link rendered as a promotional block
// placed immediately after the paragraph at its clamped position. Blocks for
// the same paragraph keep input order. Pure function: the input body is
// split on blank lines and each block is one new paragraph, so re-splitting
// the result yields the original paragraph count plus len(links).
func Insert(content string, links []Link) string {
	if len(links) == 0 {
		return content
	}

	paragraphs := strings.Split(content, "\n\n")
	blocks := make(map[int][]string, len(links))
	for _, link := range links {
		pos := link.Position
		if pos >= len(paragraphs) {
			pos = len(paragraphs) - 1
		}
		if pos < 0 {
			pos = 0
		}
		blocks[pos] = append(blocks[pos], renderBlock(link))
	}

	out := make([]string, 0, len(paragraphs)+len(links))
	for i, p := range paragraphs {
		out = append(out, p)
		out = append(out, blocks[i]...)
	}
	return strings.Join(out, "\n\n")
}

func renderBlock(link Link) string {
	return fmt.Sprintf(
		"<div class=\"affiliate-link\">\n  <a href=%q target=\"_blank\" rel=\"nofollow noopener noreferrer\">\n    📦 Check out %s\n  </a>\n</div>",
		link.URL, link.ProductName,
	)
}

// ClampPositions rewrites link positions against the current paragraph count
// of content. Used when a stored body is edited after generation.
func ClampPositions(content string, links []Link) []Link {
	count := len(strings.Split(content, "\n\n"))
	out := make([]Link, len(links))
	for i, link := range links {
		if link.Position >= count {
			link.Position = count - 1
		}
		if link.Position < 0 {
			link.Position = 0
		}
		out[i] = link
	}
	return out
}
