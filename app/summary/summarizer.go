package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Summarizer is the boundary to the text-to-text backend. Failures are
// never fatal to the pipeline; callers fall back to the raw title.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Reply(ctx context.Context, question string) (string, error)
}

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama3-70b-8192"

	summarizePrompt = "Summarize this university notice in one short line for students: %s"
	replyPrompt     = "User asked: %s. Respond briefly as a university notice assistant."
)

var _ Summarizer = (*GroqSummarizer)(nil)

// GroqSummarizer calls an OpenAI-compatible chat completion endpoint.
type GroqSummarizer struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option configures a GroqSummarizer.
type Option func(*GroqSummarizer)

func WithModel(model string) Option {
	return func(s *GroqSummarizer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithBaseURL overrides the API base URL (configuration and tests).
func WithBaseURL(url string) Option {
	return func(s *GroqSummarizer) {
		if url != "" {
			s.baseURL = strings.TrimRight(url, "/")
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *GroqSummarizer) {
		s.httpClient.Timeout = d
	}
}

func NewGroqSummarizer(apiKey string, opts ...Option) *GroqSummarizer {
	s := &GroqSummarizer{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize produces a one-line summary of the notice text.
func (s *GroqSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.complete(ctx, fmt.Sprintf(summarizePrompt, text))
}

// Reply answers a free-text question conversationally.
func (s *GroqSummarizer) Reply(ctx context.Context, question string) (string, error) {
	return s.complete(ctx, fmt.Sprintf(replyPrompt, question))
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *GroqSummarizer) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarization request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarization API returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion")
	}
	return content, nil
}
