package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okResponse = `{
  "model": "databricks-llama-4-maverick",
  "choices": [{"message": {"role": "assistant", "content": "  [\"a\", \"b\"]  "}}],
  "usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
}`

func newTestClient(url string, retries int) *OpenAIClient {
	c := NewOpenAIClient(OpenAIConfig{BaseURL: url + "/", Token: "dapi-test", MaxRetries: retries}, nil)
	c.backoff = time.Millisecond
	return c
}

func TestOpenAIClient_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer dapi-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(okResponse))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 0)
	out, err := c.Complete(context.Background(), Request{
		Model:       "databricks-llama-4-maverick",
		System:      "sys",
		User:        "usr",
		MaxTokens:   300,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, `["a", "b"]`, out.Text)
	assert.Equal(t, 120, out.Usage.PromptTokens)
	assert.Equal(t, 30, out.Usage.CompletionTokens)
	assert.Equal(t, 150, out.Usage.TotalTokens)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "usr", got.Messages[1].Content)
	assert.Equal(t, 300, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
}

func TestOpenAIClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(okResponse))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, 3).Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 150, out.Usage.TotalTokens)
}

func TestOpenAIClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 2).Complete(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(3), calls.Load())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestOpenAIClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`endpoint not found`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Complete(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "endpoint not found")
}

func TestOpenAIClient_ContentParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":[
			{"type":"reasoning","summary":[{"type":"summary_text","text":"thinking"}]},
			{"type":"text","text":"SELECT 1"}
		]}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, 0).Complete(context.Background(), Request{Model: "databricks-gpt-oss-120b"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out.Text)
	assert.Equal(t, "databricks-gpt-oss-120b", out.Model)
	assert.Zero(t, out.Usage.TotalTokens)
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Complete(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion")
}

func TestOpenAIClient_NotConfigured(t *testing.T) {
	c := NewOpenAIClient(OpenAIConfig{BaseURL: "http://example.invalid"}, nil)
	_, err := c.Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAIClient_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	c.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, Request{Model: "m"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
