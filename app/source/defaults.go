package source

// Defaults returns the built-in source list used when the sources
// directory has no configurations.
func Defaults() []*Config {
	return []*Config{
		{
			Name:    "WBSU Official",
			URL:     "https://www.wbsuexams.net/",
			Kind:    KindHTML,
			Enabled: true,
			Selectors: Selectors{
				Container: "div.notice-board",
				Items:     "a",
				Ignore:    []string{"old-notice", "archive"},
			},
			MinTitleLen: 5,
		},
		{
			Name:    "Test Hub",
			URL:     "https://sahilcodelab.github.io/wbsu-info/verify.html",
			Kind:    KindHTML,
			Enabled: true,
			Selectors: Selectors{
				Container: "body",
				Items:     "a",
			},
			MinTitleLen: 5,
		},
	}
}
