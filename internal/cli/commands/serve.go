package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/queryforge/internal/audit"
	"github.com/leapstack-labs/queryforge/internal/notifier"
	"github.com/leapstack-labs/queryforge/internal/server"
	"github.com/leapstack-labs/queryforge/internal/service"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the QueryForge API server",
		Long: `Start the HTTP API and host the dashboard.

The server exposes catalog browsing, LLM-assisted SQL generation, read-only
execution and audit analytics under /api. When the static directory exists
the built dashboard is served from it.`,
		Example: `  # Serve on the default port
  queryforge serve

  # Serve a local DuckDB file on port 9000
  queryforge serve --warehouse duckdb --database ./analytics.duckdb --port 9000`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8000)")
	cmd.Flags().String("static-dir", "", "Directory holding the built dashboard")
	cmd.Flags().String("session-secret", "", "Secret signing the workflow cookie")
	cmd.Flags().String("models-file", "", "YAML model catalog, hot reloaded on change")
	cmd.Flags().String("default-model", "", "Model used when a request names none")
	cmd.Flags().Int("max-rows", 0, "Maximum rows returned by execute-sql")
	cmd.Flags().Bool("read-only", true, "Reject statements that are not read-only")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd, "")
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := cmdCtx.openAudit()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	router, err := cmdCtx.buildRouter(ctx)
	if err != nil {
		return err
	}

	notify := notifier.New()
	svc := cmdCtx.buildService(router, audit.NewRecorder(store, notify, logger))
	defer func() { _ = svc.Close() }()

	if err := checkWarehouse(cmdCtx); err != nil {
		logger.Warn("warehouse unavailable, catalog and execute endpoints will answer 503", "error", err)
	}

	srv := server.New(server.Config{
		Service:       svc,
		Notifier:      notify,
		Port:          cfg.Server.Port,
		StaticDir:     cfg.Server.StaticDir,
		CORSOrigins:   cfg.Server.CORSOrigins,
		SessionSecret: cfg.Server.SessionSecret,
		PollInterval:  cfg.Server.PollInterval,
		Env:           cfg.Env,
		ModelsFile:    cfg.LLM.ModelsFile,
		DebugInfo:     cfg.DebugInfo(),
		Logger:        logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "QueryForge API listening on http://localhost:%d\n", cfg.Server.Port)
	return srv.Serve(ctx)
}

// checkWarehouse logs the warehouse settings and reports whether they are complete.
// The service connects lazily, so an error here does not stop the server.
func checkWarehouse(c *CommandContext) error {
	w := c.Cfg.Warehouse
	c.Logger.Info("warehouse configuration",
		"type", w.Type,
		"host_configured", w.Host != "",
		"token_configured", w.Token != "",
		"http_path_configured", w.HTTPPath != "",
		"read_only", w.ReadOnly,
		"max_rows", w.MaxRows)
	return service.WarehouseConfigured(w.Adapter())
}
