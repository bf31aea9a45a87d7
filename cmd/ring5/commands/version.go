package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikiitin/ring5/pkg/version"
)

// NewVersionCommand creates the version subcommand.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ring5 version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ring5 %s (commit %s, built %s, api v%d)\n",
				version.Version, version.Commit, version.Date, version.Binary)

			return nil
		},
	}
}
