package analysis

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/mamaar/jsxsplit/pkg/types"
)

// ImportStatement is one static `import` declaration found in source text.
// Offsets are byte offsets into the source the statement was parsed from.
type ImportStatement struct {
	Text      string
	Start     int
	End       int // exclusive, before any trailing line break
	StartLine int
	EndLine   int
	// Leading is set for statements in the run of imports at the top of the
	// file, before any other code.
	Leading bool

	Module    string // as written, quotes included
	Default   string
	Namespace string
	Named     []ImportSpecifier

	// Clause offsets relative to Text
	defaultSpan   span
	namespaceSpan span
	namedSpan     span // braces included
	semicolon     bool
}

// ImportSpecifier is one entry of a named import group
type ImportSpecifier struct {
	Imported string
	Local    string
	span     span // relative to the statement Text
}

type span struct {
	start, end int
}

func (s span) empty() bool { return s.end <= s.start }

// ParseImports returns the top-level import statements of src in source
// order. Statements the parser could not read cleanly are skipped, as are
// dynamic `import()` calls.
func ParseImports(src string) []ImportStatement {
	content := []byte(src)
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var stmts []ImportStatement
	leading := true
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "import_statement" {
			if !isPrologue(child) {
				leading = false
			}
			continue
		}
		stmt, ok := importStatement(child, content)
		if !ok {
			leading = false
			continue
		}
		stmt.Leading = leading
		stmts = append(stmts, stmt)
	}
	return stmts
}

// isPrologue reports whether node may sit above the leading imports:
// comments, directives such as 'use client', and stray semicolons.
func isPrologue(node *sitter.Node) bool {
	switch node.Type() {
	case "comment", "hash_bang_line", "empty_statement":
		return true
	case "expression_statement":
		return node.NamedChildCount() == 1 && node.NamedChild(0).Type() == "string"
	}
	return false
}

func importStatement(node *sitter.Node, src []byte) (ImportStatement, bool) {
	if node.HasError() {
		return ImportStatement{}, false
	}
	start := int(node.StartByte())
	text := strings.TrimRight(node.Content(src), " \t\r\n")
	stmt := ImportStatement{
		Text:      text,
		Start:     start,
		End:       start + len(text),
		StartLine: int(node.StartPoint().Row),
	}
	stmt.EndLine = stmt.StartLine + strings.Count(text, "\n")
	rel := func(n *sitter.Node) span {
		return span{int(n.StartByte()) - start, int(n.EndByte()) - start}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_clause":
			importClause(&stmt, child, src, rel)
		case "string":
			stmt.Module = child.Content(src)
		case ";":
			stmt.semicolon = true
		}
	}
	return stmt, stmt.Module != ""
}

func importClause(stmt *ImportStatement, clause *sitter.Node, src []byte, rel func(*sitter.Node) span) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			stmt.Default = child.Content(src)
			stmt.defaultSpan = rel(child)
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if gc := child.NamedChild(j); gc.Type() == "identifier" {
					stmt.Namespace = gc.Content(src)
				}
			}
			stmt.namespaceSpan = rel(child)
		case "named_imports":
			stmt.namedSpan = rel(child)
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				s := ImportSpecifier{Imported: name.Content(src), Local: name.Content(src), span: rel(spec)}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					s.Local = alias.Content(src)
				}
				stmt.Named = append(stmt.Named, s)
			}
		}
	}
}

// SideEffect reports whether the statement binds nothing
func (s ImportStatement) SideEffect() bool {
	return s.Default == "" && s.Namespace == "" && s.namedSpan.empty()
}

// Bindings returns the local names the statement introduces
func (s ImportStatement) Bindings() []string {
	var names []string
	if s.Default != "" {
		names = append(names, s.Default)
	}
	if s.Namespace != "" {
		names = append(names, s.Namespace)
	}
	for _, spec := range s.Named {
		names = append(names, spec.Local)
	}
	return names
}

// Binds reports whether the statement introduces the local name
func (s ImportStatement) Binds(name string) bool {
	for _, b := range s.Bindings() {
		if b == name {
			return true
		}
	}
	return false
}

// Entry describes how name is imported by this statement
func (s ImportStatement) Entry(name string) (types.ImportEntry, bool) {
	if name == "" {
		return types.ImportEntry{}, false
	}
	module := types.NormalizeQuotes(s.Module)
	switch name {
	case s.Default:
		return types.ImportEntry{Name: name, Module: module, Kind: types.ImportDefault}, true
	case s.Namespace:
		return types.ImportEntry{Name: name, Module: module, Kind: types.ImportNamespace}, true
	}
	for _, spec := range s.Named {
		if spec.Local == name {
			entryName := spec.Local
			if spec.Imported != spec.Local {
				entryName = spec.Imported + " as " + spec.Local
			}
			return types.ImportEntry{Name: entryName, Module: module, Kind: types.ImportNamed}, true
		}
	}
	return types.ImportEntry{}, false
}

// WithoutBinding returns the statement text with name removed. It reports
// false when name was the statement's only binding, in which case the whole
// statement should go.
func (s ImportStatement) WithoutBinding(name string) (string, bool) {
	if !s.Binds(name) {
		return s.Text, true
	}
	if len(s.Bindings()) <= 1 {
		return "", false
	}

	if s.Default == name {
		// drop "Default, " up to the next clause
		next := s.namedSpan.start
		if s.Namespace != "" {
			next = s.namespaceSpan.start
		}
		return s.Text[:s.defaultSpan.start] + s.Text[next:], true
	}

	if s.Namespace == name || len(s.Named) == 1 {
		return s.rebuildDefaultOnly(), true
	}

	for i, spec := range s.Named {
		if spec.Local != name {
			continue
		}
		if i < len(s.Named)-1 {
			return s.Text[:spec.span.start] + s.Text[s.Named[i+1].span.start:], true
		}
		prev := s.Named[i-1]
		return s.Text[:prev.span.end] + s.Text[spec.span.end:], true
	}
	return s.Text, true
}

func (s ImportStatement) rebuildDefaultOnly() string {
	text := "import " + s.Default + " from " + s.Module
	if s.semicolon {
		text += ";"
	}
	return text
}

// FindImport returns the statement that binds name, if any
func FindImport(stmts []ImportStatement, name string) (ImportStatement, bool) {
	for _, stmt := range stmts {
		if stmt.Binds(name) {
			return stmt, true
		}
	}
	return ImportStatement{}, false
}

// LeadingImports returns the run of import statements at the top of the file
func LeadingImports(stmts []ImportStatement) []ImportStatement {
	var leading []ImportStatement
	for _, stmt := range stmts {
		if !stmt.Leading {
			break
		}
		leading = append(leading, stmt)
	}
	return leading
}

// ImportInsertionLine is the zero-based line just after the last top-of-file
// import statement, or 0 when the file has none.
func ImportInsertionLine(src string) int {
	leading := LeadingImports(ParseImports(src))
	if len(leading) == 0 {
		return 0
	}
	return leading[len(leading)-1].EndLine + 1
}
