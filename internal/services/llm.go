package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

var ErrLLMDisabled = errors.New("LLM is not configured")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the subset of an OpenAI compatible completion we read.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// LLMService talks to an OpenAI compatible chat completions endpoint.
type LLMService struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

type Option func(*retryablehttp.Client)

func WithMaxRetries(n int) Option {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
	}
}

func WithRetryWait(min, max time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = min
		c.RetryWaitMax = max
	}
}

// leveledSlog adapts slog to retryablehttp. Intermediate failures are
// logged at WARN since they are retried.
type leveledSlog struct {
	inner *slog.Logger
}

func (l leveledSlog) Error(msg string, kv ...any) { l.inner.Warn(msg, kv...) }
func (l leveledSlog) Warn(msg string, kv ...any)  { l.inner.Warn(msg, kv...) }
func (l leveledSlog) Info(msg string, kv ...any)  { l.inner.Debug(msg, kv...) }
func (l leveledSlog) Debug(msg string, kv ...any) { l.inner.Debug(msg, kv...) }

// retryPolicy leaves 429 to the caller instead of hammering a rate limited API.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// NewLLMService returns a disabled service when baseURL is empty.
func NewLLMService(baseURL, token, model string, opts ...Option) *LLMService {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.CheckRetry = retryPolicy
	// hand the last response back so its status and body reach the caller
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = retryablehttp.LeveledLogger(leveledSlog{inner: slog.Default().With("subsystem", "llm")})
	for _, opt := range opts {
		opt(rc)
	}

	client := rc.StandardClient()
	client.Timeout = 60 * time.Second

	return &LLMService{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		model:   model,
		client:  client,
	}
}

func (s *LLMService) Enabled() bool {
	return s != nil && s.baseURL != ""
}

// Complete sends a single user message and returns the trimmed answer.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrLLMDisabled
	}

	body, err := json.Marshal(ChatRequest{
		Model:    s.model,
		Messages: []ChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building LLM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling LLM: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("LLM API error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding LLM response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("LLM returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// GenerateModReply drafts a reply a moderator can send for a case.
func (s *LLMService) GenerateModReply(ctx context.Context, reportDetails string) (string, error) {
	if reportDetails == "" {
		reportDetails = "No details provided"
	}
	prompt := fmt.Sprintf("Generate a professional moderator reply for the following case details: %s. Provide a clear and concise response that addresses the issue.", reportDetails)
	return s.Complete(ctx, prompt)
}

// AutoModerate asks for a rule check of post content. The answer is advice
// for a human moderator, nothing is acted on.
func (s *LLMService) AutoModerate(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf("Analyze the following post content and determine if it might violate subreddit rules. Provide a brief explanation of any potential issues and recommend moderator actions: \"%s\"", content)
	return s.Complete(ctx, prompt)
}

func (s *LLMService) ExplainPost(ctx context.Context, text string) (string, error) {
	return s.Complete(ctx, fmt.Sprintf("Explain this post in simple terms:\n\n\"%s\"", text))
}
