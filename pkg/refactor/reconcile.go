package refactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// Reconciliation is the outcome of cleaning up the original document's
// imports after the selection was replaced.
type Reconciliation struct {
	// Text is the document after Edits
	Text  string
	Edits []types.TextEdit
	// Removed lists every import binding that was dropped
	Removed []types.ImportEntry
	// Missing are removed entries the new component does not import yet
	Missing []types.ImportEntry
}

// Reconciler removes import bindings the extraction left unused
type Reconciler struct {
	oracle Oracle
	logger *slog.Logger
}

func NewReconciler(oracle Oracle, logger *slog.Logger) *Reconciler {
	return &Reconciler{oracle: oracle, logger: logger}
}

// Reconcile drops every unused import binding of document that is not in
// preserve. A statement left without bindings is deleted along with its line
// break; otherwise only the binding is removed. Each edit is computed against
// the text produced by the edits before it.
func (r *Reconciler) Reconcile(ctx context.Context, document string, preserve map[string]bool, unitImports []types.ImportEntry) (*Reconciliation, error) {
	diags, err := r.oracle.FindUnusedImportBindings(ctx, document)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, types.WrapError(types.InternalAnalysisFailure, err, "could not analyse imports of the updated document")
	}

	already := make(map[string]bool, len(unitImports))
	for _, imp := range unitImports {
		already[imp.String()] = true
	}

	rec := &Reconciliation{Text: document}
	for _, diag := range diags {
		if preserve[diag.Name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stmt, ok := analysis.FindImport(analysis.ParseImports(rec.Text), diag.Name)
		if !ok {
			r.logger.Warn("unused binding has no import statement", "name", diag.Name, "line", diag.Line)
			continue
		}
		entry, _ := stmt.Entry(diag.Name)

		edit := r.removalEdit(rec.Text, stmt, diag.Name)
		text, err := ReplaceRange(rec.Text, edit.Range, edit.NewText)
		if err != nil {
			return nil, types.WrapError(types.InternalAnalysisFailure, err, "could not remove import "+diag.Name)
		}
		rec.Text = text
		rec.Edits = append(rec.Edits, edit)
		rec.Removed = append(rec.Removed, entry)
		if !already[entry.String()] {
			rec.Missing = append(rec.Missing, entry)
			already[entry.String()] = true
		}
		r.logger.Debug("removed unused import", "name", diag.Name, "module", entry.Module)
	}
	return rec, nil
}

func (r *Reconciler) removalEdit(text string, stmt analysis.ImportStatement, name string) types.TextEdit {
	shrunk, keep := stmt.WithoutBinding(name)
	if !keep {
		return types.TextEdit{
			Range:       statementRange(text, stmt),
			Description: fmt.Sprintf("remove import of %s", name),
		}
	}
	return types.TextEdit{
		Range: types.Range{
			Start: PositionAt(text, stmt.Start),
			End:   PositionAt(text, stmt.End),
		},
		NewText:     shrunk,
		Description: fmt.Sprintf("remove %s from import", name),
	}
}

// statementRange covers the whole lines of stmt, or only the statement and
// the blanks separating it from its neighbours when it shares a line.
func statementRange(text string, stmt analysis.ImportStatement) types.Range {
	lineStart := strings.LastIndexByte(text[:stmt.Start], '\n') + 1
	rest := text[stmt.End:]
	if eol := strings.IndexByte(rest, '\n'); eol >= 0 {
		rest = rest[:eol]
	}
	before := text[lineStart:stmt.Start]
	if strings.TrimSpace(before) == "" && strings.TrimSpace(rest) == "" {
		return LineRange(text, stmt.StartLine, stmt.EndLine)
	}

	start, end := stmt.Start, stmt.End
	if strings.TrimSpace(rest) == "" {
		for start > lineStart && (text[start-1] == ' ' || text[start-1] == '\t') {
			start--
		}
	} else {
		for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
			end++
		}
	}
	return types.Range{Start: PositionAt(text, start), End: PositionAt(text, end)}
}
