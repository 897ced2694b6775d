package commands

import (
	"fmt"
	"runtime"

	"github.com/leapstack-labs/queryforge/internal/cli/output"
	"github.com/spf13/cobra"
)

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Print the QueryForge release, the commit it was built from and the Go toolchain.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info.GoVersion = runtime.Version()
			info.Platform = runtime.GOOS + "/" + runtime.GOARCH

			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Println(fmt.Sprintf("QueryForge v%s", info.Version))
			r.Println("LLM-assisted SQL workbench for data warehouses")
			if info.Commit != "" && info.Commit != "unknown" {
				r.KeyValue("Commit", info.Commit)
			}
			if info.BuildDate != "" && info.BuildDate != "unknown" {
				r.KeyValue("Built", info.BuildDate)
			}
			r.KeyValue("Go", info.GoVersion+" "+info.Platform)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json")
	return cmd
}
