package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mamaar/jsxsplit/pkg/refactor"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// OutputJSON writes v as indented JSON
func OutputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// PrintPlan writes a human readable summary of an extraction
func PrintPlan(w io.Writer, plan *types.RefactoringPlan, verbose bool) {
	status := "Applied"
	if !plan.Applied {
		status = "Dry run"
	}
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render("Extract Component:"), plan.Unit.Name)
	fmt.Fprintf(w, "  Status: %s\n", successStyle.Render(status))
	fmt.Fprintf(w, "  Component: %s\n", plan.Unit.Path)
	if len(plan.Unit.Props) > 0 {
		fmt.Fprintf(w, "  Props: %s\n", strings.Join(plan.Unit.Props, ", "))
	} else {
		fmt.Fprintf(w, "  Props: %s\n", mutedStyle.Render("none"))
	}
	fmt.Fprintf(w, "  Reference: %s\n", strings.TrimSpace(plan.Unit.Reference))

	if len(plan.MissingImports) > 0 {
		fmt.Fprintln(w, "  Imports moved to the component:")
		for _, imp := range plan.MissingImports {
			fmt.Fprintf(w, "    %s\n", imp.String())
		}
	}

	fmt.Fprintln(w, "  Affected Files:")
	for _, file := range plan.AffectedFiles {
		fmt.Fprintf(w, "    %s\n", file)
	}

	if verbose {
		fmt.Fprintln(w, "  Edits:")
		for _, edit := range plan.Edits {
			fmt.Fprintf(w, "    %d:%d-%d:%d %s\n",
				edit.Range.Start.Line+1, edit.Range.Start.Character+1,
				edit.Range.End.Line+1, edit.Range.End.Character+1,
				edit.Description)
		}
	}

	if !plan.Applied && plan.Diff != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, colorDiff(plan.Diff))
	}
}

// PrintAnalysis writes what an extraction of the selection would do
func PrintAnalysis(w io.Writer, file string, result *refactor.SelectionAnalysis) {
	fmt.Fprintf(w, "%s %s %d:%d-%d:%d\n", titleStyle.Render("Selection:"), file,
		result.Range.Start.Line+1, result.Range.Start.Character+1,
		result.Range.End.Line+1, result.Range.End.Character+1)
	if result.Wrapped {
		fmt.Fprintln(w, "  Fragment: wrapped in <></>")
	}
	if len(result.Props) > 0 {
		fmt.Fprintf(w, "  Props: %s\n", strings.Join(result.Props, ", "))
	} else {
		fmt.Fprintf(w, "  Props: %s\n", mutedStyle.Render("none"))
	}
	if len(result.Imports) > 0 {
		fmt.Fprintln(w, "  Imports:")
		for _, imp := range result.Imports {
			fmt.Fprintf(w, "    %s\n", imp.String())
		}
	}
	fmt.Fprintf(w, "  Reference: %s\n", strings.TrimSpace(result.Reference))

	if len(result.Issues) > 0 {
		fmt.Fprintln(w, "  Issues:")
		printIssues(w, result.Issues)
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, result.Unit)
}

func printIssues(w io.Writer, issues []types.Issue) {
	for _, issue := range issues {
		var label string
		switch issue.Severity {
		case types.Error:
			label = errorStyle.Render("ERROR:")
		case types.Warning:
			label = warnStyle.Render("WARN:")
		default:
			label = mutedStyle.Render("INFO:")
		}
		if issue.Line > 0 {
			fmt.Fprintf(w, "    %s %s (line %d)\n", label, issue.Description, issue.Line)
		} else {
			fmt.Fprintf(w, "    %s %s\n", label, issue.Description)
		}
	}
}

// PrintError writes err for the user. Refactoring errors are prefixed with
// their kind.
func PrintError(w io.Writer, err error) {
	var refErr *types.RefactorError
	if errors.As(err, &refErr) {
		fmt.Fprintf(w, "%s %s: %s\n", errorStyle.Render("Error:"), refErr.Type, refErr.Error())
		return
	}
	fmt.Fprintf(w, "%s %v\n", errorStyle.Render("Error:"), err)
}
