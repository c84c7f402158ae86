package refactor

import (
	"context"

	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// Oracle answers the static-analysis questions the engine needs. Results are
// structured; implementations own any message parsing.
type Oracle interface {
	// CheckSyntax returns a *analysis.SyntaxError when src does not parse
	CheckSyntax(ctx context.Context, src string) error
	FindFreeIdentifiers(ctx context.Context, src string) ([]analysis.Identifier, error)
	FindUnusedImportBindings(ctx context.Context, src string) ([]analysis.Diagnostic, error)
	// FragmentChildren returns analysis.ErrNotFragment unless src is a single
	// `<>...</>` expression.
	FragmentChildren(ctx context.Context, src string) ([]string, error)
	FormatImportsBlock(ctx context.Context, src string) (string, error)
}

// Editor is the document being refactored. ApplyEdits applies the edits in
// order, each one against the text produced by the edits before it.
type Editor interface {
	Path() string
	Selection(ctx context.Context) (types.Range, error)
	Text(ctx context.Context) (string, error)
	ApplyEdits(ctx context.Context, edits []types.TextEdit) error
}

type PromptOptions struct {
	Title       string
	Placeholder string
	Value       string
}

// Prompter asks the user for a value. ok is false when the user cancelled.
type Prompter interface {
	Prompt(ctx context.Context, opts PromptOptions) (value string, ok bool, err error)
}

type FileSystem interface {
	Exists(path string) (bool, error)
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
}
