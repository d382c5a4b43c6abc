package subscription

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// document is the persisted shape of the subscription store:
// {"users": {"<user id>": {"semesters": ["2", "4"]}}}. The empty
// default is used whenever the file is absent or unreadable.
type document struct {
	Users map[string]*userRecord `json:"users"`
}

type userRecord struct {
	Semesters []string `json:"semesters"`
}

func emptyDocument() document {
	return document{Users: make(map[string]*userRecord)}
}

// Store maps chat users to their subscribed semester codes. The
// in-memory state is authoritative; every mutation is written back to
// disk, and a failed write leaves memory intact until the next one.
type Store struct {
	path string

	mu  sync.RWMutex
	doc document
}

// NewStore loads the store from path. A missing or corrupt file starts
// the store from its empty default rather than failing.
func NewStore(path string) *Store {
	s := &Store{path: path, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read subscription store, starting empty", "path", path, "error", err)
		}
		return s
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Error("Failed to parse subscription store, starting empty", "path", path, "error", err)
		return s
	}
	if doc.Users == nil {
		doc.Users = make(map[string]*userRecord)
	}
	for id, rec := range doc.Users {
		if rec == nil {
			doc.Users[id] = &userRecord{}
		}
	}

	s.doc = doc
	return s
}

// Toggle flips membership of a semester code for a user, creating the
// user record lazily. It reports whether the code was added. The save
// error, if any, is returned for logging; the in-memory toggle has
// already happened.
func (s *Store) Toggle(userID, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.doc.Users[userID]
	if !ok {
		rec = &userRecord{}
		s.doc.Users[userID] = rec
	}

	var added bool
	if i := slices.Index(rec.Semesters, code); i >= 0 {
		rec.Semesters = slices.Delete(rec.Semesters, i, i+1)
	} else {
		rec.Semesters = append(rec.Semesters, code)
		added = true
	}

	return added, s.save()
}

// Semesters returns the user's subscribed codes, empty for unknown users.
func (s *Store) Semesters(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.doc.Users[userID]
	if !ok {
		return nil
	}
	return slices.Clone(rec.Semesters)
}

// Snapshot returns all subscriptions for fan-out. The returned map is
// a copy and safe to iterate while commands mutate the store.
func (s *Store) Snapshot() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string][]string, len(s.doc.Users))
	for userID, rec := range s.doc.Users {
		snapshot[userID] = slices.Clone(rec.Semesters)
	}
	return snapshot
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.Users)
}

// save writes the document atomically via a temp file rename. Callers
// hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal subscriptions: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write subscriptions: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace subscriptions file: %w", err)
	}
	return nil
}
