// Package llm invokes foundation models and accounts for their cost.
//
// Requests are routed by the provider recorded in the model Catalog:
// OpenAI-compatible chat endpoints (Databricks model serving) or the
// Gemini API.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/queryforge/pkg/core"
)

// ErrNotConfigured is returned when no provider can serve a request.
var ErrNotConfigured = errors.New("LLM provider not configured")

// Request is a single system+user chat turn.
type Request struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completion is the model's reply with token accounting.
type Completion struct {
	Text  string
	Model string
	Usage core.Usage
}

// Client completes chat requests.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// APIError is a non-success response from a model endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether another attempt may succeed.
func (e *APIError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
