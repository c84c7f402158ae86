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

// emptyFragment stands in for the selection when the rest of the document is
// checked, so `return (<selection>)` stays well formed.
const emptyFragment = "<></>"

// ValidatedSelection is a fragment that is safe to extract
type ValidatedSelection struct {
	Fragment types.Fragment
	// Trimmed is the fragment without surrounding whitespace
	Trimmed string
	// Markup is Trimmed wrapped in a fragment root when it does not
	// already have a single one.
	Markup  string
	Wrapped bool
}

// Validator checks that a selection can become a component body and that
// the document survives its removal.
type Validator struct {
	oracle Oracle
	logger *slog.Logger
}

func NewValidator(oracle Oracle, logger *slog.Logger) *Validator {
	return &Validator{
		oracle: oracle,
		logger: logger,
	}
}

// Validate never modifies the document
func (v *Validator) Validate(ctx context.Context, fragment types.Fragment, document string) (*ValidatedSelection, error) {
	if strings.TrimSpace(fragment.Text) == "" {
		return nil, types.NewError(types.EmptySelection, "selection is empty")
	}

	children, err := v.oracle.FragmentChildren(ctx, "<>"+fragment.Text+"</>")
	if errors.Is(err, analysis.ErrNotFragment) {
		return nil, types.NewError(types.InvalidSelection, "selection is not a valid component body: it reaches outside the surrounding markup")
	}
	if err != nil {
		return nil, selectionError(err, "selection is not a valid component body")
	}

	trimmed := strings.TrimSpace(fragment.Text)
	wrapped := !singleRoot(children)
	markup := trimmed
	if wrapped {
		// single pass; the result always has exactly one root
		markup = "<>\n" + trimmed + "\n</>"
	}

	without, err := ReplaceRange(document, fragment.Range, emptyFragment)
	if err != nil {
		return nil, types.WrapError(types.InvalidSelection, err, "selection does not fit the document")
	}
	if err := v.oracle.CheckSyntax(ctx, without); err != nil {
		return nil, selectionError(err, "document is not valid without the selection")
	}

	v.logger.Debug("selection validated", "range", fragment.Range.String(), "wrapped", wrapped)
	return &ValidatedSelection{
		Fragment: fragment,
		Trimmed:  trimmed,
		Markup:   markup,
		Wrapped:  wrapped,
	}, nil
}

// singleRoot reports whether the fragment holds exactly one element tree.
// An expression container or text never counts as a root.
func singleRoot(children []string) bool {
	if len(children) != 1 {
		return false
	}
	switch children[0] {
	case "jsx_element", "jsx_self_closing_element":
		return true
	}
	return false
}

func selectionError(err error, message string) error {
	var syntaxErr *analysis.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &types.RefactorError{
			Type:    types.InvalidSelection,
			Message: fmt.Sprintf("%s: %s", message, syntaxErr.Message),
			Line:    syntaxErr.Line,
			Column:  syntaxErr.Column,
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return types.WrapError(types.InternalAnalysisFailure, err, message)
}
