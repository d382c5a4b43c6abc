package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header: %q", auth)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Model != "llama3-70b-8192" {
			t.Errorf("Unexpected model: %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestSummarize(t *testing.T) {
	server := completionServer(t, "  Exam routine for 2nd Sem is out.  ")
	defer server.Close()

	s := NewGroqSummarizer("test-key", WithBaseURL(server.URL))
	got, err := s.Summarize(context.Background(), "Routine for 2nd Sem Examination 2025")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "Exam routine for 2nd Sem is out." {
		t.Errorf("Expected trimmed completion, got %q", got)
	}
}

func TestReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if !strings.Contains(req.Messages[0].Content, "when is the exam") {
			t.Errorf("Reply prompt should carry the question, got %q", req.Messages[0].Content)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Check the latest routine notice."}},
			},
		})
	}))
	defer server.Close()

	s := NewGroqSummarizer("test-key", WithBaseURL(server.URL))
	got, err := s.Reply(context.Background(), "when is the exam")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "Check the latest routine notice." {
		t.Errorf("Unexpected reply: %q", got)
	}
}

func TestSummarize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewGroqSummarizer("test-key", WithBaseURL(server.URL))
	if _, err := s.Summarize(context.Background(), "anything"); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestSummarize_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	s := NewGroqSummarizer("test-key", WithBaseURL(server.URL))
	if _, err := s.Summarize(context.Background(), "anything"); err == nil {
		t.Error("Expected error for empty choices")
	}
}

func TestSummarize_EmptyContent(t *testing.T) {
	server := completionServer(t, "   ")
	defer server.Close()

	s := NewGroqSummarizer("test-key", WithBaseURL(server.URL))
	if _, err := s.Summarize(context.Background(), "anything"); err == nil {
		t.Error("Expected error for empty completion")
	}
}
