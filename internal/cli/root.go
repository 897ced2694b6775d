// Package cli provides the command-line interface for QueryForge.
package cli

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/queryforge/internal/cli/commands"
	"github.com/leapstack-labs/queryforge/internal/cli/config"
	intconfig "github.com/leapstack-labs/queryforge/internal/config"
	"github.com/leapstack-labs/queryforge/pkg/warehouse"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "queryforge",
		Short: "QueryForge - LLM-assisted SQL workbench",
		Long: `QueryForge helps analysts explore a data warehouse and turn plain-language
business questions into SQL with the help of foundation models.

It serves the dashboard API, records every model call and execution in an
audit log, and reports usage and cost from that log.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			loaded, err := intconfig.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return err
			}

			level := loaded.LogLevel
			if loaded.Debug {
				level = "debug"
			}
			logger, err := config.NewLogger(cmd.ErrOrStderr(), level, loaded.LogFormat)
			if err != nil {
				return err
			}
			if loaded.File != "" {
				logger.Debug("using config file", "path", loaded.File)
			}

			ctx := config.WithConfig(cmd.Context(), loaded)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Commit ` + GitCommit + `, built ` + BuildDate + `
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./queryforge.yaml)")
	rootCmd.PersistentFlags().String("env", "", "Environment name")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and the debug config endpoint")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().String("warehouse", "", "Warehouse type")
	rootCmd.PersistentFlags().String("database", "", "Warehouse database or DuckDB file")
	rootCmd.PersistentFlags().String("audit", "", "Path to the audit log database")

	_ = rootCmd.RegisterFlagCompletionFunc("warehouse", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return warehouse.List(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}))
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewModelsCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for QueryForge.

To load completions:

Bash:
  $ source <(queryforge completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ queryforge completion bash > /etc/bash_completion.d/queryforge
  # macOS:
  $ queryforge completion bash > $(brew --prefix)/etc/bash_completion.d/queryforge

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ queryforge completion zsh > "${fpath[1]}/_queryforge"

Fish:
  $ queryforge completion fish | source

  # To load completions for each session, execute once:
  $ queryforge completion fish > ~/.config/fish/completions/queryforge.fish

PowerShell:
  PS> queryforge completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
