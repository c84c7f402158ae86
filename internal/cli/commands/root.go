package commands

import (
	"github.com/spf13/cobra"

	"github.com/mamaar/jsxsplit/internal/cli"
)

const rootLong = `jsxsplit moves a selected JSX fragment into a new component.

The fragment is written to <Name>.<ext> next to the source file. Identifiers
it uses that are declared elsewhere in the file become props, imports it
needs are carried over, and the selection is replaced with a reference to
the new component.

Selections are given as L:C-L:C with 1-based lines and columns, or L-L for
whole lines.

Examples:
  jsxsplit extract src/App.jsx --range 8:5-8:25 --name Card
  jsxsplit extract src/App.jsx --range 12-18 --dry-run
  jsxsplit analyze src/App.jsx --range 12-18 --json

Configuration is read from .jsxsplit.yaml and .env in the workspace root and
from JSXSPLIT_* environment variables.`

// NewRootCommand builds the jsxsplit command tree
func NewRootCommand(app *cli.App) *cobra.Command {
	root := &cobra.Command{
		Use:           "jsxsplit",
		Short:         "Extract JSX fragments into new components",
		Long:          rootLong,
		Version:       cli.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	app.Flags.RegisterGlobal(root)
	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.AddCommand(
		NewExtractCommand(app),
		NewAnalyzeCommand(app),
		NewVersionCommand(app),
	)
	return root
}
