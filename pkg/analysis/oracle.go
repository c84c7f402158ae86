package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Identifier is a free identifier reported by the oracle
type Identifier struct {
	Name   string
	Line   int // 1-based
	Column int // 1-based
}

// Diagnostic is an unused import binding reported by the oracle
type Diagnostic struct {
	Name    string
	Line    int // 1-based
	Column  int // 1-based
	Message string
}

// SyntaxError describes the first parse failure in a source text
type SyntaxError struct {
	Message string
	Line    int // 1-based
	Column  int // 1-based
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (%d:%d)", e.Message, e.Line, e.Column)
}

// Options configures a TreeSitterOracle
type Options struct {
	// FrameworkName is the default import that JSX implicitly uses
	FrameworkName string
	// Globals are extra identifiers that are never reported as free
	Globals []string
	// Browser adds the browser globals (window, document, fetch, ...)
	Browser bool
	// CacheSize bounds the number of analysed sources kept in memory
	CacheSize int
	Logger    *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		FrameworkName: "React",
		Browser:       true,
		CacheSize:     64,
	}
}

// TreeSitterOracle answers syntax and scope questions about JSX sources
// using the tree-sitter JavaScript grammar. It is safe for concurrent use.
type TreeSitterOracle struct {
	opts    Options
	globals map[string]bool
	cache   *resultCache
	logger  *slog.Logger
}

func NewTreeSitterOracle(opts Options) (*TreeSitterOracle, error) {
	if opts.FrameworkName == "" {
		opts.FrameworkName = DefaultOptions().FrameworkName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cache, err := newResultCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating analysis cache: %w", err)
	}
	return &TreeSitterOracle{
		opts:    opts,
		globals: globalSet(opts.Browser, opts.Globals),
		cache:   cache,
		logger:  logger,
	}, nil
}

// ErrNotFragment is returned by FragmentChildren when the source is anything
// other than a single `<>...</>` expression.
var ErrNotFragment = errors.New("source is not a single fragment")

// analysisResult is everything the oracle derives from one parse
type analysisResult struct {
	syntaxErr *SyntaxError
	free      []Identifier
	unused    []Diagnostic
	// fragment is nil unless the source is a single fragment expression
	fragment []string
}

func (o *TreeSitterOracle) analyze(ctx context.Context, src string) (*analysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(src))
	key := hex.EncodeToString(sum[:])
	if result, ok := o.cache.Get(key); ok {
		return result, nil
	}

	content := []byte(src)
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled: %w", err)
	}

	root := tree.RootNode()
	result := &analysisResult{}
	if root.HasError() {
		result.syntaxErr = firstSyntaxError(root, content)
	} else {
		result.syntaxErr = mismatchedTag(root, content)
	}
	if result.syntaxErr != nil {
		o.logger.Debug("source has syntax errors", "error", result.syntaxErr)
	} else {
		sa := AnalyzeScopes(root, content)
		result.free = o.freeIdentifiers(sa)
		result.unused = o.unusedImports(sa)
		result.fragment = fragmentChildren(root, content)
		o.logger.Debug("analysed source",
			"free", len(result.free), "unused_imports", len(result.unused), "references", len(sa.References()))
	}

	o.cache.Add(key, result)
	return result, nil
}

func (o *TreeSitterOracle) freeIdentifiers(sa *ScopeAnalyzer) []Identifier {
	var free []Identifier
	for _, ref := range sa.References() {
		if ref.Resolved != nil || o.globals[ref.Name] {
			continue
		}
		free = append(free, Identifier{Name: ref.Name, Line: ref.Line, Column: ref.Column})
	}
	return free
}

func (o *TreeSitterOracle) unusedImports(sa *ScopeAnalyzer) []Diagnostic {
	used := make(map[*Declaration]bool)
	for _, ref := range sa.References() {
		if ref.Resolved != nil && ref.Resolved.Kind == DeclImport {
			used[ref.Resolved] = true
		}
	}

	var unused []Diagnostic
	for _, decl := range sa.Imports() {
		if used[decl] {
			continue
		}
		// only the first import of a name is bound
		if sa.Root().Symbols[decl.Name] != decl {
			continue
		}
		if decl.Name == o.opts.FrameworkName && sa.HasJSX() {
			continue
		}
		unused = append(unused, Diagnostic{
			Name:    decl.Name,
			Line:    decl.Line,
			Column:  decl.Column,
			Message: fmt.Sprintf("'%s' is defined but never used.", decl.Name),
		})
	}
	return unused
}

// firstSyntaxError finds the first ERROR or MISSING node in document order
func firstSyntaxError(node *sitter.Node, src []byte) *SyntaxError {
	if node.IsMissing() {
		point := node.StartPoint()
		return &SyntaxError{
			Message: fmt.Sprintf("missing %s", node.Type()),
			Line:    int(point.Row) + 1,
			Column:  int(point.Column) + 1,
		}
	}
	if node.Type() == "ERROR" {
		point := node.StartPoint()
		return &SyntaxError{
			Message: fmt.Sprintf("unexpected %q", snippet(node.Content(src))),
			Line:    int(point.Row) + 1,
			Column:  int(point.Column) + 1,
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || (!child.HasError() && !child.IsMissing()) {
			continue
		}
		if err := firstSyntaxError(child, src); err != nil {
			return err
		}
	}
	if node.HasError() && node.Parent() == nil {
		point := node.StartPoint()
		return &SyntaxError{Message: "unexpected token", Line: int(point.Row) + 1, Column: int(point.Column) + 1}
	}
	return nil
}

// mismatchedTag reports the first JSX element whose closing tag names a
// different element than its opening tag. The grammar accepts those.
func mismatchedTag(node *sitter.Node, src []byte) *SyntaxError {
	if node.Type() == "jsx_element" {
		open, closing := node.ChildByFieldName("open_tag"), node.ChildByFieldName("close_tag")
		if open != nil && closing != nil {
			want, got := tagName(open, src), tagName(closing, src)
			if want != got {
				point := closing.StartPoint()
				return &SyntaxError{
					Message: fmt.Sprintf("expected corresponding closing tag for <%s>", want),
					Line:    int(point.Row) + 1,
					Column:  int(point.Column) + 1,
				}
			}
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if err := mismatchedTag(node.NamedChild(i), src); err != nil {
			return err
		}
	}
	return nil
}

// fragmentChildren returns the node kinds directly under the fragment that
// root consists of. Blank text and comments are skipped. The result is nil
// when root is not a single fragment expression.
func fragmentChildren(root *sitter.Node, src []byte) []string {
	if root.NamedChildCount() != 1 {
		return nil
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}
	frag := stmt.NamedChild(0)
	switch frag.Type() {
	case "jsx_fragment":
	case "jsx_element":
		open := frag.ChildByFieldName("open_tag")
		if open == nil || open.ChildByFieldName("name") != nil {
			return nil
		}
	default:
		return nil
	}

	kinds := []string{}
	for i := 0; i < int(frag.NamedChildCount()); i++ {
		child := frag.NamedChild(i)
		switch child.Type() {
		case "jsx_opening_element", "jsx_closing_element", "comment":
			continue
		case "jsx_text":
			if strings.TrimSpace(child.Content(src)) == "" {
				continue
			}
		}
		kinds = append(kinds, child.Type())
	}
	return kinds
}

func tagName(tag *sitter.Node, src []byte) string {
	if name := tag.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	return ""
}

func snippet(text string) string {
	const max = 20
	for i, r := range text {
		if r == '\n' {
			return text[:i]
		}
		if i >= max {
			return text[:i]
		}
	}
	return text
}

// CheckSyntax returns a *SyntaxError when src does not parse
func (o *TreeSitterOracle) CheckSyntax(ctx context.Context, src string) error {
	result, err := o.analyze(ctx, src)
	if err != nil {
		return err
	}
	if result.syntaxErr != nil {
		return result.syntaxErr
	}
	return nil
}

// FindFreeIdentifiers lists every read of a name that no enclosing scope and
// no known global binds, in source order. Names repeat once per occurrence.
func (o *TreeSitterOracle) FindFreeIdentifiers(ctx context.Context, src string) ([]Identifier, error) {
	result, err := o.analyze(ctx, src)
	if err != nil {
		return nil, err
	}
	if result.syntaxErr != nil {
		return nil, result.syntaxErr
	}
	return result.free, nil
}

// FindUnusedImportBindings lists import bindings nothing in src reads. The
// framework default import counts as used whenever src contains JSX.
func (o *TreeSitterOracle) FindUnusedImportBindings(ctx context.Context, src string) ([]Diagnostic, error) {
	result, err := o.analyze(ctx, src)
	if err != nil {
		return nil, err
	}
	if result.syntaxErr != nil {
		return nil, result.syntaxErr
	}
	return result.unused, nil
}

// FragmentChildren lists the node kinds directly under the fragment src
// consists of, such as jsx_element, jsx_expression or jsx_text. Blank text is
// skipped. Sources that are not one `<>...</>` expression give ErrNotFragment.
func (o *TreeSitterOracle) FragmentChildren(ctx context.Context, src string) ([]string, error) {
	result, err := o.analyze(ctx, src)
	if err != nil {
		return nil, err
	}
	if result.syntaxErr != nil {
		return nil, result.syntaxErr
	}
	if result.fragment == nil {
		return nil, ErrNotFragment
	}
	return result.fragment, nil
}

// FormatImportsBlock normalises the order of the leading import statements
func (o *TreeSitterOracle) FormatImportsBlock(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return organizeImports(src), nil
}
