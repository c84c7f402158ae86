package types

import (
	"fmt"
	"strings"
)

// Position is a zero-based location in a document. Character counts UTF-16
// code units, matching what editors report.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span between two positions
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsEmpty reports whether the range selects nothing
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
}

// Fragment is the selected span of markup. It is read once and never mutated.
type Fragment struct {
	Text  string
	Range Range
}

type ImportKind int

const (
	ImportDefault ImportKind = iota
	ImportNamed
	// ImportNamespace binds the whole module object, `import * as X`
	ImportNamespace
)

func (k ImportKind) String() string {
	switch k {
	case ImportNamed:
		return "named"
	case ImportNamespace:
		return "namespace"
	}
	return "default"
}

// ImportEntry is a single binding imported from a module. Module keeps its
// quotes as written, normalised to single quotes.
type ImportEntry struct {
	Name   string     `json:"name"`
	Module string     `json:"module"`
	Kind   ImportKind `json:"kind"`
}

// String renders the entry as a one-line import statement
func (e ImportEntry) String() string {
	switch e.Kind {
	case ImportNamed:
		return fmt.Sprintf("import {%s} from %s;", e.Name, e.Module)
	case ImportNamespace:
		return fmt.Sprintf("import * as %s from %s;", e.Name, e.Module)
	}
	return fmt.Sprintf("import %s from %s;", e.Name, e.Module)
}

// NormalizeQuotes turns a double-quoted module string into a single-quoted one
func NormalizeQuotes(module string) string {
	module = strings.TrimSpace(module)
	if len(module) >= 2 && module[0] == '"' && module[len(module)-1] == '"' {
		return "'" + module[1:len(module)-1] + "'"
	}
	return module
}

// Binding is one classified free identifier. Import is nil for props.
type Binding struct {
	Name   string
	Import *ImportEntry
}

// IsProp reports whether the caller has to supply the identifier
func (b Binding) IsProp() bool {
	return b.Import == nil
}

// Classification maps each free identifier of a fragment to a prop or an
// import, in discovery order.
type Classification struct {
	Bindings []Binding
	index    map[string]int
}

// Add records a binding. A name that is already classified is ignored.
func (c *Classification) Add(b Binding) bool {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if _, ok := c.index[b.Name]; ok {
		return false
	}
	c.index[b.Name] = len(c.Bindings)
	c.Bindings = append(c.Bindings, b)
	return true
}

// Lookup returns the binding for name
func (c *Classification) Lookup(name string) (Binding, bool) {
	i, ok := c.index[name]
	if !ok {
		return Binding{}, false
	}
	return c.Bindings[i], true
}

// Props returns the prop names in discovery order
func (c *Classification) Props() []string {
	var props []string
	for _, b := range c.Bindings {
		if b.IsProp() {
			props = append(props, b.Name)
		}
	}
	return props
}

// Imports returns the import entries in discovery order
func (c *Classification) Imports() []ImportEntry {
	var imports []ImportEntry
	for _, b := range c.Bindings {
		if !b.IsProp() {
			imports = append(imports, *b.Import)
		}
	}
	return imports
}

// Names returns every classified name in discovery order
func (c *Classification) Names() []string {
	names := make([]string, 0, len(c.Bindings))
	for _, b := range c.Bindings {
		names = append(names, b.Name)
	}
	return names
}

// NewUnit is the component generated from a fragment
type NewUnit struct {
	Name      string        `json:"name"`
	Path      string        `json:"path"`
	Source    string        `json:"source"`
	Imports   []ImportEntry `json:"imports"`
	Props     []string      `json:"props"`
	Reference string        `json:"reference"`
}

// TextEdit replaces Range with NewText
type TextEdit struct {
	Range       Range  `json:"range"`
	NewText     string `json:"newText"`
	Description string `json:"description,omitempty"`
}

// RefactoringPlan is the outcome of an extraction
type RefactoringPlan struct {
	ID             string        `json:"id"`
	SourceFile     string        `json:"source_file"`
	Unit           *NewUnit      `json:"unit"`
	OriginalBefore string        `json:"-"`
	OriginalAfter  string        `json:"-"`
	Edits          []TextEdit    `json:"edits"`
	MissingImports []ImportEntry `json:"missing_imports,omitempty"`
	AffectedFiles  []string      `json:"affected_files"`
	Diff           string        `json:"diff,omitempty"`
	Applied        bool          `json:"applied"`
}

// Issue is a finding reported by an analysis that does not modify files
type Issue struct {
	Type        IssueType     `json:"type"`
	Description string        `json:"description"`
	File        string        `json:"file,omitempty"`
	Line        int           `json:"line,omitempty"`
	Severity    IssueSeverity `json:"severity"`
}

type IssueType int

const (
	IssueSyntaxError IssueType = iota
	IssueFreeIdentifier
	IssueUnusedImport
)

func (t IssueType) String() string {
	switch t {
	case IssueSyntaxError:
		return "syntax-error"
	case IssueFreeIdentifier:
		return "free-identifier"
	case IssueUnusedImport:
		return "unused-import"
	default:
		return "unknown"
	}
}

type IssueSeverity int

const (
	Error IssueSeverity = iota
	Warning
	Info
)

// String returns the string representation of IssueSeverity
func (s IssueSeverity) String() string {
	switch s {
	case Error:
		return "Error"
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	default:
		return "Unknown"
	}
}
