package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mamaar/jsxsplit/internal/cli"
)

// NewAnalyzeCommand creates the analyze command
func NewAnalyzeCommand(app *cli.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Show what extracting the selection would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), app, args[0])
		},
	}
	app.Flags.RegisterSelection(cmd)
	return cmd
}

func runAnalyze(ctx context.Context, app *cli.App, file string) error {
	doc, err := app.OpenDocument(file)
	if err != nil {
		return err
	}
	engine, err := app.CreateEngine()
	if err != nil {
		return err
	}

	result, err := engine.AnalyzeSelection(ctx, doc, app.Flags.Name)
	if err != nil {
		return err
	}

	if app.Flags.Json {
		return cli.OutputJSON(app.Stdout, result)
	}
	cli.PrintAnalysis(app.Stdout, doc.Path(), result)
	return nil
}
