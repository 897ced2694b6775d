package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply audit store migrations",
		Long:  `Create or upgrade the audit log database and print its schema version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd, "")
			if err != nil {
				return err
			}
			store, err := cmdCtx.openAudit()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			version, err := store.MigrationVersion()
			if err != nil {
				return fmt.Errorf("failed to read migration version: %w", err)
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("audit store %s at version %d", store.Path(), version))
			return nil
		},
	}
}
