package commands

import (
	"fmt"

	"github.com/leapstack-labs/queryforge/internal/cli/output"
	"github.com/leapstack-labs/queryforge/internal/service"
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check warehouse connectivity",
		Long: `Connect to the configured warehouse and report whether it answers.

Exits with an error when the warehouse is stopped or not configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json")
	return cmd
}

func runStatus(cmd *cobra.Command, format string) error {
	cmdCtx, err := NewCommandContext(cmd, format)
	if err != nil {
		return err
	}
	svc := cmdCtx.buildService(nil, nil)
	defer func() { _ = svc.Close() }()

	status := svc.WarehouseStatus(cmd.Context())
	if err := renderStatus(cmdCtx.Renderer, status); err != nil {
		return err
	}
	if status.Status != service.WarehouseRunning {
		return fmt.Errorf("warehouse is %s", status.Status)
	}
	return nil
}

func renderStatus(r *output.Renderer, status service.WarehouseStatus) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(status)
	}

	styles := r.Styles()
	state := styles.Warning.Render(status.Status)
	switch status.Status {
	case service.WarehouseRunning:
		state = styles.Success.Render(status.Status)
	case service.WarehouseStopped:
		state = styles.Error.Render(status.Status)
	}

	r.Header("Warehouse")
	r.KeyValue("Name", status.WarehouseName)
	if status.WarehouseID != nil {
		r.KeyValue("ID", *status.WarehouseID)
	}
	if status.HTTPPath != "" {
		r.KeyValue("HTTP path", status.HTTPPath)
	}
	r.KeyValue("Status", state)
	if status.Error != "" {
		r.KeyValue("Error", styles.Muted.Render(status.Error))
	}
	return nil
}
