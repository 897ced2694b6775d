package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/queryforge/internal/analytics"
	"github.com/leapstack-labs/queryforge/internal/audit"
	"github.com/leapstack-labs/queryforge/internal/cli/output"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Format string
	Limit  int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent query sessions from the audit log",
		Example: `  # Show the last 10 sessions
  queryforge history --limit 10

  # Export as JSON
  queryforge history --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, markdown, json")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum sessions to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	cmdCtx, err := NewCommandContext(cmd, opts.Format)
	if err != nil {
		return err
	}
	store, err := cmdCtx.openAudit()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := cmdCtx.buildService(nil, audit.NewRecorder(store, nil, cmdCtx.Logger))
	history, err := svc.QueryHistory(cmd.Context())
	if err != nil {
		return err
	}
	if opts.Limit > 0 && len(history.QuerySessions) > opts.Limit {
		history.QuerySessions = history.QuerySessions[:opts.Limit]
	}

	return renderHistory(cmdCtx.Renderer, history)
}

func renderHistory(r *output.Renderer, history analytics.History) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(history)
	}

	if len(history.QuerySessions) == 0 {
		r.Println("No query sessions recorded yet.")
		return nil
	}

	rows := make([][]any, 0, len(history.QuerySessions))
	for _, s := range history.QuerySessions {
		rowCount := "-"
		if s.RowCount != nil {
			rowCount = fmt.Sprint(*s.RowCount)
		}
		rows = append(rows, []any{
			s.Timestamp.Local().Format(time.DateTime),
			qualifiedTable(s),
			truncate(s.BusinessLogic, 40),
			sessionSteps(s),
			s.Status,
			rowCount,
			s.TotalTokens,
			formatCost(s.TotalCostUSD),
		})
	}

	r.Header(fmt.Sprintf("Query history (%d of %d sessions)", len(history.QuerySessions), history.TotalCount))
	r.Table([]string{"When", "Table", "Business logic", "Steps", "Status", "Rows", "Tokens", "Cost"}, rows)
	return nil
}
