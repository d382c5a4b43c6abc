package scrape

// Candidate is one extracted item: link text plus an absolute URL.
// Candidates are not notices yet; classification and deduplication
// decide that downstream.
type Candidate struct {
	Title string
	URL   string
}
