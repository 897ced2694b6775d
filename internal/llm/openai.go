package llm

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
)

// OpenAIConfig configures an OpenAI-compatible chat completions client.
type OpenAIConfig struct {
	// BaseURL is the API root; /chat/completions is appended.
	// For Databricks model serving use https://<host>/serving-endpoints.
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
}

// OpenAIClient implements Client against POST {base}/chat/completions.
type OpenAIClient struct {
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIClient creates a client. A nil logger discards output.
func NewOpenAIClient(cfg OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Second,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat turn, retrying rate limits and server errors.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	if c.baseURL == "" || c.token == "" {
		return nil, ErrNotConfigured
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			c.logger.Debug("retrying model request",
				slog.String("model", req.Model),
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait),
				slog.String("error", lastErr.Error()))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("model request cancelled: %w", ctx.Err())
			case <-time.After(wait):
			}
		}

		completion, err := c.do(ctx, payload)
		if err == nil {
			if completion.Model == "" {
				completion.Model = req.Model
			}
			c.logger.Debug("model request completed",
				slog.String("model", req.Model),
				slog.Duration("elapsed", time.Since(start)),
				slog.Int("total_tokens", completion.Usage.TotalTokens))
			return completion, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("model request failed: %w", err)
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *OpenAIClient) do(ctx context.Context, payload []byte) (*Completion, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	text, err := messageText(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	out := &Completion{Text: strings.TrimSpace(text), Model: parsed.Model}
	if parsed.Usage != nil {
		out.Usage.PromptTokens = parsed.Usage.PromptTokens
		out.Usage.CompletionTokens = parsed.Usage.CompletionTokens
		out.Usage.TotalTokens = parsed.Usage.TotalTokens
	}
	return out, nil
}

// messageText accepts either a plain string or a list of typed content parts.
// Reasoning models on Databricks return the latter.
func messageText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unrecognised message content: %w", err)
	}

	var b strings.Builder
	for _, p := range parts {
		if p.Type == "text" {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}

var _ Client = (*OpenAIClient)(nil)
