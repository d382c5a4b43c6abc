package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/sahilcodelab/wbsu-notice-bot/app/source"
)

// FeedExtractor turns an RSS/Atom document into candidates, for
// sources that publish notices as a feed instead of an HTML board.
type FeedExtractor struct {
	parser *gofeed.Parser
}

func NewFeedExtractor() *FeedExtractor {
	return &FeedExtractor{parser: gofeed.NewParser()}
}

func (e *FeedExtractor) Run(data []byte, cfg *source.Config) ([]Candidate, error) {
	feed, err := e.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || len(title) < cfg.MinTitleLen || item.Link == "" {
			continue
		}
		candidates = append(candidates, Candidate{Title: title, URL: item.Link})
	}

	return candidates, nil
}
