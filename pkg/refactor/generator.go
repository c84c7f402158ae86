package refactor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mamaar/jsxsplit/pkg/types"
)

// markupLine matches a line that opens or closes a tag
var markupLine = regexp.MustCompile(`^\s*[</]`)

// IndentContext describes where the selection sits in the original document
type IndentContext struct {
	// Leading and Trailing are the selection's own surrounding whitespace
	Leading  string
	Trailing string
	// End is the indentation of the selection's last markup line
	End string
}

// NewIndentContext derives the indentation from the selected text. linePrefix
// is the document text on the selection's first line before the selection.
func NewIndentContext(selected, linePrefix string) IndentContext {
	trimmedLeft := strings.TrimLeft(selected, " \t\r\n")
	trimmed := strings.TrimRight(trimmedLeft, " \t\r\n")
	ic := IndentContext{
		Leading:  selected[:len(selected)-len(trimmedLeft)],
		Trailing: trimmedLeft[len(trimmed):],
	}

	prefixIndent := leadingWhitespace(linePrefix)
	lines := strings.Split(selected, "\n")
	lines[0] = prefixIndent + lines[0]
	for i := len(lines) - 1; i >= 0; i-- {
		if markupLine.MatchString(lines[i]) {
			ic.End = leadingWhitespace(lines[i])
			return ic
		}
	}
	ic.End = leadingWhitespace(lines[0])
	return ic
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// Generator renders the new component and the element that replaces the
// selection.
type Generator struct {
	oracle Oracle
	config *EngineConfig
}

func NewGenerator(oracle Oracle, config *EngineConfig) *Generator {
	return &Generator{oracle: oracle, config: config}
}

// frameworkImport is always the first line of a generated unit
func (g *Generator) frameworkImport() string {
	return types.ImportEntry{
		Name:   g.config.FrameworkName,
		Module: "'" + g.config.FrameworkModule + "'",
		Kind:   types.ImportDefault,
	}.String()
}

// UnitSpec is everything needed to render a new component
type UnitSpec struct {
	Name string
	// Markup is the trimmed selection; Wrap puts it under a fragment root
	Markup  string
	Wrap    bool
	Indent  IndentContext
	Props   []string
	Imports []types.ImportEntry
}

// RenderUnit renders the full source of a component and runs it through the
// import normaliser.
func (g *Generator) RenderUnit(ctx context.Context, spec UnitSpec) (string, error) {
	var b strings.Builder
	b.WriteString(g.frameworkImport())
	b.WriteString("\n")
	for _, imp := range spec.Imports {
		b.WriteString(imp.String())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "const %s = (%s) => (\n", spec.Name, g.renderParams(spec.Props))
	b.WriteString(g.renderBody(spec))
	b.WriteString("\n);\n\n")
	fmt.Fprintf(&b, "export default %s;\n", spec.Name)

	return g.oracle.FormatImportsBlock(ctx, b.String())
}

func (g *Generator) renderParams(props []string) string {
	switch {
	case len(props) == 0:
		return ""
	case len(props) <= g.config.ParamInlineMax:
		return "{" + strings.Join(props, ", ") + "}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, p := range props {
		b.WriteString(g.config.IndentUnit)
		b.WriteString(p)
		b.WriteString(",\n")
	}
	b.WriteString("}")
	return b.String()
}

// renderBody dedents every markup line after the first by the selection's
// end indent, then indents the result one level.
func (g *Generator) renderBody(spec UnitSpec) string {
	lines := strings.Split(spec.Markup, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = dedent(lines[i], len(spec.Indent.End))
	}
	if spec.Wrap {
		lines = append(append([]string{"<>"}, g.indentLines(lines)...), "</>")
	}
	return strings.Join(g.indentLines(lines), "\n")
}

func (g *Generator) indentLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out[i] = g.config.IndentUnit + line
	}
	return out
}

// dedent strips at most n leading whitespace characters
func dedent(line string, n int) string {
	i := 0
	for i < n && i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}

// RenderReference renders the element that replaces the selection. The
// selection's surrounding whitespace is kept.
func (g *Generator) RenderReference(name string, props []string, indent IndentContext) string {
	var element string
	switch {
	case len(props) == 0:
		element = "<" + name + "/>"
	case len(props) <= g.config.ReferenceInlineMax:
		attrs := make([]string, len(props))
		for i, p := range props {
			attrs[i] = attribute(p)
		}
		element = "<" + name + " " + strings.Join(attrs, " ") + "/>"
	default:
		var b strings.Builder
		b.WriteString("<" + name + "\n")
		for _, p := range props {
			b.WriteString(indent.End + g.config.IndentUnit + attribute(p) + "\n")
		}
		b.WriteString(indent.End + "/>")
		element = b.String()
	}
	return indent.Leading + element + indent.Trailing
}

func attribute(prop string) string {
	return prop + "={" + prop + "}"
}

// ImportLine is the statement that makes the new component visible in the
// original document.
func ImportLine(name string) string {
	return fmt.Sprintf("import %s from './%s';\n", name, name)
}

// MergeImports inserts entries directly below the first line of source and
// normalises the import block again.
func (g *Generator) MergeImports(ctx context.Context, source string, entries []types.ImportEntry) (string, error) {
	if len(entries) == 0 {
		return source, nil
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteString("\n")
	}
	return g.oracle.FormatImportsBlock(ctx, InsertAt(source, 1, b.String()))
}
