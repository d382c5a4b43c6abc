package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

const maxPageContentLen = 4000

// PageExtractor pulls the readable text out of a notice's linked page
// so the summarizer has more than the link title to work with. Only
// HTML pages are worth extracting; PDFs and the like are skipped.
type PageExtractor struct {
	fetcher *Fetcher
}

func NewPageExtractor(fetcher *Fetcher) *PageExtractor {
	return &PageExtractor{fetcher: fetcher}
}

// Run fetches the page and returns its readable text, truncated. Any
// failure returns an error; callers treat page content as optional.
func (e *PageExtractor) Run(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", rawURL)
	}

	lower := strings.ToLower(pageURL.Path)
	if strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, ".doc") || strings.HasSuffix(lower, ".docx") {
		return "", fmt.Errorf("not an HTML page: %s", pageURL.Path)
	}

	data, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no content extracted from %s", rawURL)
	}
	if len(text) > maxPageContentLen {
		text = text[:maxPageContentLen]
	}

	slog.Debug("Page content extracted", "url", rawURL, "length", len(text))
	return text, nil
}
