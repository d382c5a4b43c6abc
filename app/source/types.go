package source

// Kind selects the extraction strategy for a source.
type Kind string

const (
	KindHTML Kind = "html"
	KindRSS  Kind = "rss"
)

// Config describes one monitored site. Loaded at startup, immutable.
type Config struct {
	Name      string    `yaml:"name"`
	URL       string    `yaml:"url"`
	Kind      Kind      `yaml:"kind"`
	Selectors Selectors `yaml:"selectors"`
	Enabled   bool      `yaml:"enabled"`

	// MinTitleLen guards against icon-only links.
	MinTitleLen int `yaml:"min_title_len"`
}

// Selectors locate candidate items inside a fetched HTML page.
type Selectors struct {
	Container string   `yaml:"container"`
	Items     string   `yaml:"items"`
	Ignore    []string `yaml:"ignore"`
}
