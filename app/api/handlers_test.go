package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sahilcodelab/wbsu-notice-bot/app/bot"
	"github.com/sahilcodelab/wbsu-notice-bot/app/database"
	"github.com/sahilcodelab/wbsu-notice-bot/app/semester"
	"github.com/sahilcodelab/wbsu-notice-bot/app/subscription"
)

type fakeSender struct {
	sent map[string][]string
}

func (f *fakeSender) Send(userID, text string) error {
	if f.sent == nil {
		f.sent = make(map[string][]string)
	}
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	return "Summary: " + text, nil
}

func (fakeSummarizer) Reply(_ context.Context, _ string) (string, error) {
	return "assistant reply", nil
}

type fakeTrigger struct{}

func (fakeTrigger) TriggerAsync() bool { return true }

func setupTestServer(t *testing.T) (http.Handler, *fakeSender, *database.SQLNoticeRepository, *subscription.Store) {
	t.Helper()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "notices.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo := database.NewNoticeRepository(db)
	subs := subscription.NewStore(filepath.Join(t.TempDir(), "users.json"))
	router := bot.NewRouter(repo, subs, semester.Default(), fakeSummarizer{}, fakeTrigger{})
	sender := &fakeSender{}
	handler := NewHandler(router, sender, repo, subs, 2, "v5.0.0")

	return NewServer(handler), sender, repo, subs
}

func webhookBody(userID, chatID int64, text string) string {
	body, _ := json.Marshal(map[string]any{
		"update_id": 1,
		"message": map[string]any{
			"message_id": 1,
			"from":       map[string]any{"id": userID},
			"chat":       map[string]any{"id": chatID},
			"text":       text,
		},
	})
	return string(body)
}

func TestHome(t *testing.T) {
	server, _, _, _ := setupTestServer(t)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "v5.0.0") {
		t.Errorf("Banner should carry the version, got %q", w.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	server, _, repo, _ := setupTestServer(t)

	checked := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.SetLastChecked(checked); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("Unexpected status: %v", resp["status"])
	}
	if resp["sources"] != float64(2) {
		t.Errorf("Unexpected source count: %v", resp["sources"])
	}
	if _, ok := resp["last_checked"]; !ok {
		t.Error("Expected last_checked in the health response")
	}
}

func TestGetStats(t *testing.T) {
	server, _, repo, subs := setupTestServer(t)

	if _, err := repo.Accept(database.Notice{
		Title: "Routine for 2nd Sem Examination",
		URL:   "https://www.wbsu.ac.in/routine.pdf",
		Sems:  []string{"2"},
	}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	subs.Toggle("12345", "2")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["notices"] != float64(1) {
		t.Errorf("Unexpected notice count: %v", resp["notices"])
	}
	if resp["subscribers"] != float64(1) {
		t.Errorf("Unexpected subscriber count: %v", resp["subscribers"])
	}
}

func TestWebhook_RoutesCommand(t *testing.T) {
	server, sender, _, subs := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(webhookBody(12345, 12345, "/sem2")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected OK body, got %q", w.Body.String())
	}
	if sems := subs.Semesters("12345"); len(sems) != 1 || sems[0] != "2" {
		t.Errorf("Expected subscription to 2, got %v", sems)
	}

	replies := sender.sent["12345"]
	if len(replies) != 1 || !strings.Contains(replies[0], "added successfully") {
		t.Errorf("Unexpected replies: %v", replies)
	}
}

func TestWebhook_MalformedJSON(t *testing.T) {
	server, _, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestWebhook_NonMessageUpdate(t *testing.T) {
	server, sender, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"update_id": 2}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Non-message updates should be acknowledged, got %d", w.Code)
	}
	if len(sender.sent) != 0 {
		t.Errorf("Non-message updates should not produce replies: %v", sender.sent)
	}
}
