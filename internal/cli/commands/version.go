package commands

import (
	"github.com/spf13/cobra"

	"github.com/mamaar/jsxsplit/internal/cli"
)

// NewVersionCommand creates the version command
func NewVersionCommand(app *cli.App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cli.ShowVersion(app.Stdout)
		},
	}
}
