package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamaar/jsxsplit/internal/cli"
	"github.com/mamaar/jsxsplit/pkg/refactor"
)

// NewExtractCommand creates the extract command
func NewExtractCommand(app *cli.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the selected JSX into a new component",
		Long: `Extract the JSX in --range of <file> into a new component file.

Without --name the component name is asked for interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), app, args[0])
		},
	}
	app.Flags.RegisterSelection(cmd)
	cmd.Flags().BoolVar(&app.Flags.DryRun, "dry-run", false, "Show the changes without writing any file")
	cmd.Flags().BoolVar(&app.Flags.Backup, "backup", false, "Keep a .backup copy of the source file")
	return cmd
}

func runExtract(ctx context.Context, app *cli.App, file string) error {
	doc, err := app.OpenDocument(file)
	if err != nil {
		return err
	}
	engine, err := app.CreateEngine()
	if err != nil {
		return err
	}

	plan, err := engine.ExtractComponent(ctx, refactor.ExtractRequest{
		Editor:   doc,
		Name:     app.Flags.Name,
		Prompter: app.NamePrompter(),
		DryRun:   app.Flags.DryRun,
	})
	if err != nil {
		return err
	}

	if plan.Applied {
		if err := app.FileSystem().WriteFile(doc.Path(), doc.Content()); err != nil {
			return fmt.Errorf("failed to write %s: %w", doc.Path(), err)
		}
	}

	if app.Flags.Json {
		return cli.OutputJSON(app.Stdout, plan)
	}
	cli.PrintPlan(app.Stdout, plan, app.Flags.Verbose)
	return nil
}
