package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content string) ChatResponse {
	var resp ChatResponse
	resp.Choices = make([]struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}, 1)
	resp.Choices[0].Message.Content = content
	return resp
}

func TestGenerateModReply(t *testing.T) {
	var got ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(chatReply("  Your post was removed for spam.\n"))
	}))
	defer server.Close()

	s := NewLLMService(server.URL+"/", "test-token", "test-model")

	reply, err := s.GenerateModReply(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Your post was removed for spam.", reply)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "following case details: No details provided.")
}

func TestPromptsCarryInput(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		prompts = append(prompts, req.Messages[0].Content)
		json.NewEncoder(w).Encode(chatReply("ok"))
	}))
	defer server.Close()

	s := NewLLMService(server.URL, "", "m")
	ctx := context.Background()

	_, err := s.AutoModerate(ctx, "buy cheap followers")
	require.NoError(t, err)
	_, err = s.ExplainPost(ctx, "TIL about goroutines")
	require.NoError(t, err)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], `recommend moderator actions: "buy cheap followers"`)
	assert.Equal(t, "Explain this post in simple terms:\n\n\"TIL about goroutines\"", prompts[1])
}

func TestCompleteErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewLLMService("", "", "m").Complete(ctx, "hi")
	assert.ErrorIs(t, err, ErrLLMDisabled)

	var nilService *LLMService
	assert.False(t, nilService.Enabled())

	unauthorized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer unauthorized.Close()
	_, err = NewLLMService(unauthorized.URL, "x", "m").Complete(ctx, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer empty.Close()
	_, err = NewLLMService(empty.URL, "", "m").Complete(ctx, "hi")
	assert.Error(t, err)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(chatReply("second time lucky"))
	}))
	defer server.Close()

	s := NewLLMService(server.URL, "", "m", WithMaxRetries(2), WithRetryWait(time.Millisecond, 5*time.Millisecond))
	out, err := s.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "second time lucky", out)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCompleteDoesNotRetryRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewLLMService(server.URL, "", "m", WithRetryWait(time.Millisecond, 5*time.Millisecond))
	_, err := s.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.EqualValues(t, 1, calls.Load())
}

func TestCompleteReportsLastStatusAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewLLMService(server.URL, "", "m", WithMaxRetries(1), WithRetryWait(time.Millisecond, 5*time.Millisecond))
	_, err := s.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model overloaded")
	assert.EqualValues(t, 2, calls.Load())
}
