package source

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader reads source configurations from a directory of yaml files.
// File order (sorted by name) fixes the merge order of a check cycle.
type Loader struct {
	sourcesDir string
}

func NewLoader(sourcesDir string) *Loader {
	return &Loader{sourcesDir: sourcesDir}
}

// LoadAll loads every *.yml file from the sources directory. The
// returned slice is ordered by file name. An empty directory yields an
// empty slice, not an error.
func (l *Loader) LoadAll() ([]*Config, error) {
	if _, err := os.Stat(l.sourcesDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	yamlFiles, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}
	files = append(files, yamlFiles...)
	sort.Strings(files)

	var configs []*Config
	for _, file := range files {
		if filepath.Base(file) == "semesters.yml" || filepath.Base(file) == "semesters.yaml" {
			continue
		}

		config, err := l.parseFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", file, err)
		}

		configs = append(configs, config)
		slog.Debug("Source configuration loaded", "source", config.Name, "url", config.URL, "kind", config.Kind, "enabled", config.Enabled)
	}

	return configs, nil
}

func (l *Loader) parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config := &Config{Enabled: true}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Name == "" {
		base := filepath.Base(path)
		config.Name = strings.TrimSuffix(strings.TrimSuffix(base, filepath.Ext(base)), ".")
	}
	if config.Kind == "" {
		config.Kind = KindHTML
	}
	if config.MinTitleLen == 0 {
		config.MinTitleLen = 5
	}
	if config.Selectors.Container == "" {
		config.Selectors.Container = "body"
	}
	if config.Selectors.Items == "" {
		config.Selectors.Items = "a"
	}

	return config, nil
}

func (l *Loader) validate(config *Config) error {
	if config.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	if _, err := url.Parse(config.URL); err != nil {
		return fmt.Errorf("source URL is invalid: %w", err)
	}
	if config.Kind != KindHTML && config.Kind != KindRSS {
		return fmt.Errorf("unknown source kind %q (valid: html, rss)", config.Kind)
	}
	if config.MinTitleLen < 0 {
		return fmt.Errorf("min_title_len must be non-negative")
	}
	return nil
}
