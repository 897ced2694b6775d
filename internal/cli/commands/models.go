package commands

import (
	"github.com/leapstack-labs/queryforge/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewModelsCommand creates the models command.
func NewModelsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the foundation model catalog",
		Long: `List the models users may pick, with their provider, pricing and whether
the provider has credentials configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runModels(cmd, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, markdown, json")
	return cmd
}

// ModelRow is the JSON output of the models command.
type ModelRow struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	Enabled         bool    `json:"enabled"`
	InputPricePerM  float64 `json:"input_price_per_m"`
	OutputPricePerM float64 `json:"output_price_per_m"`
	Default         bool    `json:"default"`
}

func runModels(cmd *cobra.Command, format string) error {
	cmdCtx, err := NewCommandContext(cmd, format)
	if err != nil {
		return err
	}
	router, err := cmdCtx.buildRouter(cmd.Context())
	if err != nil {
		return err
	}

	catalog := router.Catalog()
	var rows []ModelRow
	for _, m := range catalog.All() {
		price := catalog.PriceFor(m.ID)
		rows = append(rows, ModelRow{
			ID:              m.ID,
			Name:            m.Name,
			Provider:        m.Provider,
			Enabled:         router.Enabled(m.Provider),
			InputPricePerM:  price.Input,
			OutputPricePerM: price.Output,
			Default:         m.ID == router.DefaultModel(),
		})
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rows)
	}

	table := make([][]any, 0, len(rows))
	for _, m := range rows {
		id := m.ID
		if m.Default {
			id += " *"
		}
		table = append(table, []any{id, m.Name, m.Provider, yesNo(m.Enabled),
			formatPrice(m.InputPricePerM), formatPrice(m.OutputPricePerM)})
	}
	r.Table([]string{"ID", "Name", "Provider", "Enabled", "Input $/1M", "Output $/1M"}, table)
	return nil
}
