package subscription

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "users.json")
}

func TestToggle_AddThenRemove(t *testing.T) {
	store := NewStore(storePath(t))

	added, err := store.Toggle("12345", "2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !added {
		t.Error("First toggle should add the subscription")
	}
	if sems := store.Semesters("12345"); !reflect.DeepEqual(sems, []string{"2"}) {
		t.Errorf("Expected [2], got %v", sems)
	}

	added, err = store.Toggle("12345", "2")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if added {
		t.Error("Second toggle should remove the subscription")
	}
	if sems := store.Semesters("12345"); len(sems) != 0 {
		t.Errorf("Expected no subscriptions, got %v", sems)
	}
}

func TestSemesters_UnknownUser(t *testing.T) {
	store := NewStore(storePath(t))

	if sems := store.Semesters("99999"); sems != nil {
		t.Errorf("Expected nil for unknown user, got %v", sems)
	}
	if count := store.Count(); count != 0 {
		t.Errorf("Reading should not create records, count = %d", count)
	}
}

func TestPersistence_Reload(t *testing.T) {
	path := storePath(t)

	store := NewStore(path)
	if _, err := store.Toggle("12345", "2"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := store.Toggle("12345", "4"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := store.Toggle("67890", "6"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	reloaded := NewStore(path)
	if sems := reloaded.Semesters("12345"); !reflect.DeepEqual(sems, []string{"2", "4"}) {
		t.Errorf("Expected [2 4] after reload, got %v", sems)
	}
	if count := reloaded.Count(); count != 2 {
		t.Errorf("Expected 2 users after reload, got %d", count)
	}
}

func TestNewStore_CorruptFile(t *testing.T) {
	path := storePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	store := NewStore(path)
	if count := store.Count(); count != 0 {
		t.Errorf("Corrupt file should start an empty store, count = %d", count)
	}

	// The store must stay usable after the bad load.
	if _, err := store.Toggle("12345", "2"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sems := store.Semesters("12345"); !reflect.DeepEqual(sems, []string{"2"}) {
		t.Errorf("Expected [2], got %v", sems)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	store := NewStore(storePath(t))
	if _, err := store.Toggle("12345", "2"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	snapshot := store.Snapshot()
	snapshot["12345"] = append(snapshot["12345"], "6")
	snapshot["55555"] = []string{"1"}

	if sems := store.Semesters("12345"); !reflect.DeepEqual(sems, []string{"2"}) {
		t.Errorf("Mutating the snapshot should not affect the store, got %v", sems)
	}
	if count := store.Count(); count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}
}
