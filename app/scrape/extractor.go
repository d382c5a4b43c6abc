package scrape

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sahilcodelab/wbsu-notice-bot/app/source"
)

// Extractor turns raw markup into candidate items according to a
// source's selectors.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Run parses HTML markup and returns the candidates found inside the
// configured container, in document order. A missing container is a
// parse error; an empty container is just zero candidates.
func (e *Extractor) Run(data []byte, cfg *source.Config) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	container := doc.Find(cfg.Selectors.Container).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("container %q not found", cfg.Selectors.Container)
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	var candidates []Candidate
	container.Find(cfg.Selectors.Items).Each(func(_ int, sel *goquery.Selection) {
		if hasIgnoredClass(sel, cfg.Selectors.Ignore) {
			return
		}

		title := strings.TrimSpace(sel.Text())
		href, ok := sel.Attr("href")
		if !ok || title == "" || len(title) < cfg.MinTitleLen {
			return
		}

		abs := resolveURL(base, href)
		if abs == "" {
			return
		}

		candidates = append(candidates, Candidate{Title: title, URL: abs})
	})

	return candidates, nil
}

func hasIgnoredClass(sel *goquery.Selection, ignore []string) bool {
	if len(ignore) == 0 {
		return false
	}
	classAttr, _ := sel.Attr("class")
	for _, class := range strings.Fields(classAttr) {
		for _, ignored := range ignore {
			if class == ignored {
				return true
			}
		}
	}
	return false
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
