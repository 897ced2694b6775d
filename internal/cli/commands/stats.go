package commands

import (
	"fmt"

	"github.com/leapstack-labs/queryforge/internal/analytics"
	"github.com/leapstack-labs/queryforge/internal/audit"
	"github.com/leapstack-labs/queryforge/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics and LLM cost by model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, markdown, json")
	return cmd
}

// StatsOutput is the JSON output of the stats command.
type StatsOutput struct {
	Dashboard analytics.DashboardStats `json:"dashboard"`
	Costs     analytics.CostReport     `json:"costs"`
	Summary   analytics.SummaryStats   `json:"summary"`
}

func runStats(cmd *cobra.Command, format string) error {
	cmdCtx, err := NewCommandContext(cmd, format)
	if err != nil {
		return err
	}
	store, err := cmdCtx.openAudit()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	svc := cmdCtx.buildService(nil, audit.NewRecorder(store, nil, cmdCtx.Logger))

	var out StatsOutput
	if out.Dashboard, err = svc.DashboardStatistics(ctx); err != nil {
		return err
	}
	if out.Costs, err = svc.LLMCostsByModel(ctx); err != nil {
		return err
	}
	if out.Summary, err = svc.Summary(ctx); err != nil {
		return err
	}

	return renderStats(cmdCtx.Renderer, out)
}

func renderStats(r *output.Renderer, out StatsOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	d := out.Dashboard
	r.Header("Dashboard")
	r.KeyValue("Executions", d.TotalExecutions)
	r.KeyValue("LLM calls", d.TotalLLMCalls)
	r.KeyValue("Avg execution time", fmt.Sprintf("%d ms", d.AvgExecutionTimeMS))
	r.KeyValue("Success rate", fmt.Sprintf("%.2f%%", d.SuccessRate))
	r.KeyValue("Rows returned", d.TotalRowsReturned)
	r.KeyValue("Tables analyzed", d.UniqueTablesAnalyzed)
	r.KeyValue("Sessions", out.Summary.TotalQueries)
	r.KeyValue("Models used", out.Summary.UniqueModelsUsed)
	r.KeyValue("Tokens per dollar", fmt.Sprintf("%.0f", out.Summary.TokensPerDollar))
	r.Println()

	r.Header("LLM cost by model")
	if len(out.Costs.Models) == 0 {
		r.Println("No successful model calls recorded yet.")
		return nil
	}
	rows := make([][]any, 0, len(out.Costs.Models)+1)
	for _, m := range out.Costs.Models {
		rows = append(rows, []any{m.ModelID, m.CallCount, m.TotalPromptTokens, m.TotalCompletionTokens, formatCost(m.TotalCost)})
	}
	rows = append(rows, []any{"total", "", out.Costs.TotalPromptTokens, out.Costs.TotalCompletionTokens, formatCost(out.Costs.TotalCost)})
	r.Table([]string{"Model", "Calls", "Prompt tokens", "Completion tokens", "Cost"}, rows)
	return nil
}
