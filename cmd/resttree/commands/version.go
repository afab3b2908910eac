package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand reports the build version.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resttree %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
