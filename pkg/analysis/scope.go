package analysis

import (
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// Scope represents a lexical scope in a JavaScript module
type Scope struct {
	Kind     ScopeKind
	Node     *sitter.Node // node that creates this scope
	Parent   *Scope
	Children []*Scope
	Symbols  map[string]*Declaration
}

type ScopeKind int

const (
	ModuleScope   ScopeKind = iota // top-level declarations and imports
	FunctionScope                  // parameters, var declarations
	BlockScope                     // let, const, class and function declarations
)

// String returns the string representation of a ScopeKind
func (sk ScopeKind) String() string {
	switch sk {
	case ModuleScope:
		return "Module"
	case FunctionScope:
		return "Function"
	case BlockScope:
		return "Block"
	default:
		return "Unknown"
	}
}

// Declaration is a name bound in a scope
type Declaration struct {
	Name   string
	Kind   DeclKind
	Line   int // 1-based
	Column int // 1-based
	Node   *sitter.Node
}

type DeclKind int

const (
	DeclImport DeclKind = iota
	DeclVar
	DeclLexical
	DeclFunction
	DeclClass
	DeclParam
)

// Reference is an identifier read somewhere in the module
type Reference struct {
	Name     string
	Node     *sitter.Node
	Scope    *Scope       // innermost scope containing the reference
	Resolved *Declaration // nil for free identifiers
	Line     int
	Column   int
}

// nodeKey identifies a node independently of the wrapper pointer
type nodeKey struct {
	start, end uint32
	kind       string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), kind: n.Type()}
}

var functionNodes = map[string]bool{
	"function_declaration":           true,
	"generator_function_declaration": true,
	"function_expression":            true,
	"function":                       true,
	"generator_function":             true,
	"arrow_function":                 true,
	"method_definition":              true,
}

var blockNodes = map[string]bool{
	"statement_block":    true,
	"for_statement":      true,
	"for_in_statement":   true,
	"catch_clause":       true,
	"switch_body":        true,
	"class_static_block": true,
	"class":              true,
	"class_declaration":  true,
}

// ScopeAnalyzer builds the scope tree of one parsed module and resolves every
// identifier reference against it.
type ScopeAnalyzer struct {
	src        []byte
	root       *Scope
	scopes     map[nodeKey]*Scope
	declared   map[nodeKey]bool
	imports    []*Declaration
	references []*Reference
	hasJSX     bool
}

// AnalyzeScopes walks the tree rooted at program
func AnalyzeScopes(program *sitter.Node, src []byte) *ScopeAnalyzer {
	sa := &ScopeAnalyzer{
		src:      src,
		scopes:   make(map[nodeKey]*Scope),
		declared: make(map[nodeKey]bool),
	}
	sa.root = &Scope{Kind: ModuleScope, Node: program, Symbols: make(map[string]*Declaration)}
	sa.scopes[keyOf(program)] = sa.root

	sa.buildScopes(program, sa.root)
	sa.collectDeclarations(program)
	sa.collectReferences(program)
	for _, ref := range sa.references {
		ref.Resolved = ref.Scope.Lookup(ref.Name)
	}
	return sa
}

// Root returns the module scope
func (sa *ScopeAnalyzer) Root() *Scope {
	return sa.root
}

// Imports returns the import bindings in source order
func (sa *ScopeAnalyzer) Imports() []*Declaration {
	return sa.imports
}

// References returns every identifier reference in source order
func (sa *ScopeAnalyzer) References() []*Reference {
	return sa.references
}

// HasJSX reports whether the module contains any JSX element
func (sa *ScopeAnalyzer) HasJSX() bool {
	return sa.hasJSX
}

// Lookup finds name in this scope or any enclosing one
func (s *Scope) Lookup(name string) *Declaration {
	for scope := s; scope != nil; scope = scope.Parent {
		if decl, ok := scope.Symbols[name]; ok {
			return decl
		}
	}
	return nil
}

func (sa *ScopeAnalyzer) buildScopes(node *sitter.Node, parent *Scope) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		scope := parent
		switch {
		case functionNodes[child.Type()]:
			scope = sa.newScope(FunctionScope, child, parent)
		case blockNodes[child.Type()]:
			scope = sa.newScope(BlockScope, child, parent)
		}
		sa.buildScopes(child, scope)
	}
}

func (sa *ScopeAnalyzer) newScope(kind ScopeKind, node *sitter.Node, parent *Scope) *Scope {
	scope := &Scope{
		Kind:    kind,
		Node:    node,
		Parent:  parent,
		Symbols: make(map[string]*Declaration),
	}
	parent.Children = append(parent.Children, scope)
	sa.scopes[keyOf(node)] = scope
	return scope
}

// scopeOf returns the scope created by node itself
func (sa *ScopeAnalyzer) scopeOf(node *sitter.Node) *Scope {
	return sa.scopes[keyOf(node)]
}

// enclosingScope returns the innermost scope containing node, starting at
// node itself.
func (sa *ScopeAnalyzer) enclosingScope(node *sitter.Node) *Scope {
	for n := node; n != nil; n = n.Parent() {
		if scope, ok := sa.scopes[keyOf(n)]; ok {
			return scope
		}
	}
	return sa.root
}

// functionScope returns the nearest function or module scope around node
func (sa *ScopeAnalyzer) functionScope(node *sitter.Node) *Scope {
	scope := sa.enclosingScope(node)
	for scope.Kind == BlockScope {
		scope = scope.Parent
	}
	return scope
}

func (sa *ScopeAnalyzer) declare(scope *Scope, kind DeclKind, ident *sitter.Node) *Declaration {
	sa.declared[keyOf(ident)] = true
	point := ident.StartPoint()
	decl := &Declaration{
		Name:   ident.Content(sa.src),
		Kind:   kind,
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
		Node:   ident,
	}
	if _, exists := scope.Symbols[decl.Name]; !exists {
		scope.Symbols[decl.Name] = decl
	}
	return decl
}

func (sa *ScopeAnalyzer) declarePattern(scope *Scope, kind DeclKind, pattern *sitter.Node) {
	for _, ident := range patternIdentifiers(pattern) {
		sa.declare(scope, kind, ident)
	}
}

func (sa *ScopeAnalyzer) collectDeclarations(node *sitter.Node) {
	switch node.Type() {
	case "import_statement":
		sa.collectImport(node)
		return
	case "variable_declarator":
		name := node.ChildByFieldName("name")
		decl := node.Parent()
		if name != nil && decl != nil {
			if decl.Type() == "variable_declaration" {
				sa.declarePattern(sa.functionScope(decl), DeclVar, name)
			} else {
				sa.declarePattern(sa.enclosingScope(decl), DeclLexical, name)
			}
		}
	case "function_declaration", "generator_function_declaration":
		if name := node.ChildByFieldName("name"); name != nil && node.Parent() != nil {
			sa.declare(sa.enclosingScope(node.Parent()), DeclFunction, name)
		}
		sa.collectParams(node)
	case "function_expression", "function", "generator_function":
		if name := node.ChildByFieldName("name"); name != nil {
			sa.declare(sa.scopeOf(node), DeclFunction, name)
		}
		sa.collectParams(node)
	case "arrow_function", "method_definition":
		sa.collectParams(node)
	case "class_declaration":
		if name := node.ChildByFieldName("name"); name != nil && node.Parent() != nil {
			sa.declare(sa.enclosingScope(node.Parent()), DeclClass, name)
		}
	case "class":
		if name := node.ChildByFieldName("name"); name != nil {
			sa.declare(sa.scopeOf(node), DeclClass, name)
		}
	case "catch_clause":
		if param := node.ChildByFieldName("parameter"); param != nil {
			sa.declarePattern(sa.scopeOf(node), DeclParam, param)
		}
	case "for_in_statement":
		if node.ChildByFieldName("kind") != nil {
			if left := node.ChildByFieldName("left"); left != nil {
				sa.declarePattern(sa.scopeOf(node), DeclLexical, left)
			}
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		sa.collectDeclarations(node.NamedChild(i))
	}
}

func (sa *ScopeAnalyzer) collectParams(fn *sitter.Node) {
	scope := sa.scopeOf(fn)
	if scope == nil {
		return
	}
	if param := fn.ChildByFieldName("parameter"); param != nil {
		sa.declarePattern(scope, DeclParam, param)
	}
	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			sa.declarePattern(scope, DeclParam, params.NamedChild(i))
		}
	}
}

func (sa *ScopeAnalyzer) collectImport(stmt *sitter.Node) {
	var clause *sitter.Node
	for i := 0; i < int(stmt.NamedChildCount()); i++ {
		if child := stmt.NamedChild(i); child.Type() == "import_clause" {
			clause = child
		}
	}
	if clause == nil {
		return
	}
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			sa.imports = append(sa.imports, sa.declare(sa.root, DeclImport, child))
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if gc := child.NamedChild(j); gc.Type() == "identifier" {
					sa.imports = append(sa.imports, sa.declare(sa.root, DeclImport, gc))
				}
			}
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				local := spec.ChildByFieldName("alias")
				if local == nil {
					local = spec.ChildByFieldName("name")
				}
				if local != nil && local.Type() == "identifier" {
					sa.imports = append(sa.imports, sa.declare(sa.root, DeclImport, local))
				}
			}
		}
	}
}

// patternIdentifiers returns the identifiers a binding pattern introduces
func patternIdentifiers(pattern *sitter.Node) []*sitter.Node {
	if pattern == nil {
		return nil
	}
	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []*sitter.Node{pattern}
	case "assignment_pattern", "object_assignment_pattern":
		return patternIdentifiers(pattern.ChildByFieldName("left"))
	case "pair_pattern":
		return patternIdentifiers(pattern.ChildByFieldName("value"))
	case "rest_pattern", "object_pattern", "array_pattern":
		var idents []*sitter.Node
		for i := 0; i < int(pattern.NamedChildCount()); i++ {
			idents = append(idents, patternIdentifiers(pattern.NamedChild(i))...)
		}
		return idents
	}
	return nil
}

func (sa *ScopeAnalyzer) collectReferences(node *sitter.Node) {
	switch node.Type() {
	case "import_statement", "comment":
		return
	case "export_statement":
		// `export {a} from './x'` re-exports without reading local bindings
		if node.ChildByFieldName("source") != nil {
			return
		}
	case "jsx_element", "jsx_self_closing_element":
		sa.hasJSX = true
	case "identifier", "shorthand_property_identifier":
		if sa.isReference(node) {
			point := node.StartPoint()
			sa.references = append(sa.references, &Reference{
				Name:   node.Content(sa.src),
				Node:   node,
				Scope:  sa.enclosingScope(node),
				Line:   int(point.Row) + 1,
				Column: int(point.Column) + 1,
			})
		}
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		sa.collectReferences(node.NamedChild(i))
	}
}

func (sa *ScopeAnalyzer) isReference(ident *sitter.Node) bool {
	if sa.declared[keyOf(ident)] {
		return false
	}
	parent := ident.Parent()
	if parent == nil {
		return true
	}
	switch parent.Type() {
	case "jsx_closing_element", "jsx_namespace_name", "jsx_attribute":
		return false
	case "jsx_opening_element", "jsx_self_closing_element":
		// intrinsic elements like <div> are not bindings
		name := ident.Content(sa.src)
		return name != "" && unicode.IsUpper([]rune(name)[0])
	case "nested_identifier", "member_expression":
		// <Foo.Bar> reads only Foo
		inTag, closing := tagNameContext(parent)
		if inTag {
			return !closing && parent.NamedChildCount() > 0 && keyOf(parent.NamedChild(0)) == keyOf(ident)
		}
	case "export_specifier":
		if alias := parent.ChildByFieldName("alias"); alias != nil && keyOf(alias) == keyOf(ident) {
			return false
		}
	}
	return true
}

// tagNameContext reports whether node is part of a JSX tag name and whether
// that tag is a closing one.
func tagNameContext(node *sitter.Node) (inTag, closing bool) {
	for n := node.Parent(); n != nil; n = n.Parent() {
		switch n.Type() {
		case "jsx_closing_element":
			return true, true
		case "jsx_opening_element", "jsx_self_closing_element":
			return true, false
		case "nested_identifier", "member_expression":
			continue
		default:
			return false, false
		}
	}
	return false, false
}
