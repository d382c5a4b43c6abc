package database

import (
	"time"
)

// Notice is one accepted, classified notice. Immutable once stored.
type Notice struct {
	ID        string // sha256 of title|url
	Title     string
	URL       string
	Source    string
	Sems      []string // semester codes, non-empty by construction
	Summary   string   // may equal Title when summarization failed
	CreatedAt time.Time
}
