package scrape

import (
	"testing"

	"github.com/sahilcodelab/wbsu-notice-bot/app/source"
)

func testSourceConfig() *source.Config {
	return &source.Config{
		Name: "WBSU Official",
		URL:  "https://www.wbsu.ac.in/notice.php",
		Kind: source.KindHTML,
		Selectors: source.Selectors{
			Container: "div.notice-board",
			Items:     "a",
			Ignore:    []string{"old-notice", "archive"},
		},
		Enabled:     true,
		MinTitleLen: 5,
	}
}

func TestExtractorRun(t *testing.T) {
	html := `<html><body>
		<div class="notice-board">
			<a href="/notices/routine-2nd-sem.pdf">Routine for 2nd Sem Examination 2025</a>
			<a href="https://www.wbsu.ac.in/notices/results.php">Results of 4th Semester published</a>
		</div>
	</body></html>`

	extractor := NewExtractor()
	candidates, err := extractor.Run([]byte(html), testSourceConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	if candidates[0].Title != "Routine for 2nd Sem Examination 2025" {
		t.Errorf("Unexpected title: %q", candidates[0].Title)
	}
	if candidates[0].URL != "https://www.wbsu.ac.in/notices/routine-2nd-sem.pdf" {
		t.Errorf("Relative href should resolve against the source URL, got %q", candidates[0].URL)
	}
	if candidates[1].URL != "https://www.wbsu.ac.in/notices/results.php" {
		t.Errorf("Absolute href should pass through unchanged, got %q", candidates[1].URL)
	}
}

func TestExtractorRun_SkipsIgnoredAndShortItems(t *testing.T) {
	html := `<html><body>
		<div class="notice-board">
			<a class="old-notice" href="/old.php">Routine for 1st Sem Examination 2024</a>
			<a class="link archive" href="/archived.php">Archived 3rd Sem notice</a>
			<a href="/x.php">Hi</a>
			<a href="/no-title.php">   </a>
			<a>Notice without a link for 5th Sem</a>
			<a href="/keep.php">Admit cards for 6th Sem available</a>
		</div>
	</body></html>`

	extractor := NewExtractor()
	candidates, err := extractor.Run([]byte(html), testSourceConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d: %v", len(candidates), candidates)
	}
	if candidates[0].Title != "Admit cards for 6th Sem available" {
		t.Errorf("Unexpected surviving candidate: %q", candidates[0].Title)
	}
}

func TestExtractorRun_MissingContainer(t *testing.T) {
	html := `<html><body><div class="content"><a href="/a.php">Some notice</a></div></body></html>`

	extractor := NewExtractor()
	if _, err := extractor.Run([]byte(html), testSourceConfig()); err == nil {
		t.Error("Expected error for missing container")
	}
}

func TestExtractorRun_EmptyContainer(t *testing.T) {
	html := `<html><body><div class="notice-board"></div></body></html>`

	extractor := NewExtractor()
	candidates, err := extractor.Run([]byte(html), testSourceConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("Expected no candidates, got %d", len(candidates))
	}
}
