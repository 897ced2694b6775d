package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiConfig configures direct access to the Gemini API.
type GeminiConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint. Empty uses the public default.
	BaseURL string
	Timeout time.Duration
}

// GeminiClient implements Client using google.golang.org/genai.
type GeminiClient struct {
	client  *genai.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewGeminiClient creates a Gemini API client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required: %w", ErrNotConfigured)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{client: client, timeout: timeout, logger: logger}, nil
}

// Complete sends one generateContent call.
func (g *GeminiClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generateContent failed: %w", err)
	}

	out := &Completion{Text: strings.TrimSpace(resp.Text()), Model: req.Model}
	if u := resp.UsageMetadata; u != nil {
		out.Usage.PromptTokens = int(u.PromptTokenCount)
		out.Usage.CompletionTokens = int(u.CandidatesTokenCount)
		out.Usage.TotalTokens = int(u.TotalTokenCount)
	}

	g.logger.Debug("gemini request completed",
		slog.String("model", req.Model),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("total_tokens", out.Usage.TotalTokens))
	return out, nil
}

var _ Client = (*GeminiClient)(nil)
