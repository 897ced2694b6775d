package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/queryforge/internal/audit"
	"github.com/leapstack-labs/queryforge/internal/cli/config"
	"github.com/leapstack-labs/queryforge/internal/cli/output"
	intconfig "github.com/leapstack-labs/queryforge/internal/config"
	"github.com/leapstack-labs/queryforge/internal/llm"
	"github.com/leapstack-labs/queryforge/internal/service"
	"github.com/leapstack-labs/queryforge/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *intconfig.Config
	File     string
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer for cmd.
// format overrides the renderer mode when non-empty.
func NewCommandContext(cmd *cobra.Command, format string) (*CommandContext, error) {
	loaded := config.GetConfig(cmd.Context())
	if loaded == nil {
		var err error
		loaded, err = intconfig.Load("", nil)
		if err != nil {
			return nil, err
		}
	}

	return &CommandContext{
		Cfg:      loaded.Config,
		File:     loaded.File,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format)),
	}, nil
}

// openAudit opens and migrates the audit store.
func (c *CommandContext) openAudit() (*audit.SQLiteStore, error) {
	store, err := audit.OpenAndMigrate(c.Cfg.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit store %s: %w", c.Cfg.Audit.Path, err)
	}
	return store, nil
}

// buildRouter creates the model catalog and enables every provider with credentials.
func (c *CommandContext) buildRouter(ctx context.Context) (*llm.Router, error) {
	models := llm.DefaultModels()
	if path := c.Cfg.LLM.ModelsFile; path != "" {
		loaded, err := llm.ReadModelsFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load models file: %w", err)
		}
		models = loaded
	}

	router := llm.NewRouter(llm.NewCatalog(models, c.Logger)).WithDefaultModel(c.Cfg.LLM.DefaultModel)

	if baseURL := c.Cfg.LLMBaseURL(); baseURL != "" {
		router.Use(core.ProviderOpenAI, llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:    baseURL,
			Token:      c.Cfg.LLMToken(),
			Timeout:    c.Cfg.LLM.Timeout,
			MaxRetries: c.Cfg.LLM.MaxRetries,
		}, c.Logger))
	} else {
		c.Logger.Warn("no LLM endpoint configured, serving-endpoint models are disabled")
	}

	if key := c.Cfg.LLM.GeminiAPIKey; key != "" {
		gemini, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{APIKey: key, Timeout: c.Cfg.LLM.Timeout}, c.Logger)
		if err != nil {
			return nil, err
		}
		router.Use(core.ProviderGemini, gemini)
	}

	c.Logger.Debug("llm providers",
		"openai", router.Enabled(core.ProviderOpenAI),
		"gemini", router.Enabled(core.ProviderGemini),
		"default_model", router.DefaultModel())
	return router, nil
}

// buildService wires the application service. recorder may be nil.
func (c *CommandContext) buildService(router *llm.Router, recorder *audit.Recorder) *service.Service {
	return service.New(service.Config{
		Warehouse: c.Cfg.Warehouse.Adapter(),
		Router:    router,
		Recorder:  recorder,
		MaxRows:   c.Cfg.Warehouse.MaxRows,
		ReadOnly:  c.Cfg.Warehouse.ReadOnly,
		Logger:    c.Logger,
	})
}
