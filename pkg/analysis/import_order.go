package analysis

import (
	"sort"
	"strings"
)

// ImportGroup represents the category of an import for ordering purposes.
type ImportGroup int

const (
	ImportGroupBuiltin  ImportGroup = iota // node: scheme or a core module name
	ImportGroupExternal                    // bare package specifier
	ImportGroupInternal                    // project alias such as @/ or ~/
	ImportGroupParent                      // ../
	ImportGroupSibling                     // ./
	ImportGroupIndex                       // . or ./index
)

var coreModules = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "crypto": true,
	"events": true, "fs": true, "http": true, "https": true, "net": true,
	"os": true, "path": true, "stream": true, "url": true, "util": true, "zlib": true,
}

// ClassifyImport determines which group a module specifier belongs to.
// The specifier may still carry its quotes.
func ClassifyImport(module string) ImportGroup {
	spec := strings.Trim(strings.TrimSpace(module), `'"`)
	switch {
	case strings.HasPrefix(spec, "node:"):
		return ImportGroupBuiltin
	case spec == "." || spec == "./" || spec == "./index" || strings.HasPrefix(spec, "./index."):
		return ImportGroupIndex
	case strings.HasPrefix(spec, "./"):
		return ImportGroupSibling
	case spec == ".." || strings.HasPrefix(spec, "../"):
		return ImportGroupParent
	case strings.HasPrefix(spec, "@/") || strings.HasPrefix(spec, "~/"):
		return ImportGroupInternal
	}
	first := spec
	if idx := strings.Index(spec, "/"); idx >= 0 {
		first = spec[:idx]
	}
	if coreModules[first] {
		return ImportGroupBuiltin
	}
	return ImportGroupExternal
}

// organizeImports reorders the top-of-file import run so that groups appear
// builtin, external, internal, parent, sibling, index. Statements keep their
// text and their relative order within a group. When anything other than
// whitespace separates two statements the source is returned unchanged.
func organizeImports(src string) string {
	leading := LeadingImports(ParseImports(src))
	if len(leading) < 2 {
		return src
	}
	for i := 1; i < len(leading); i++ {
		if strings.TrimSpace(src[leading[i-1].End:leading[i].Start]) != "" {
			return src
		}
	}

	ordered := make([]ImportStatement, len(leading))
	copy(ordered, leading)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ClassifyImport(ordered[i].Module) < ClassifyImport(ordered[j].Module)
	})

	changed := false
	for i := range ordered {
		if ordered[i].Start != leading[i].Start {
			changed = true
			break
		}
	}
	if !changed {
		return src
	}

	lines := make([]string, len(ordered))
	for i, stmt := range ordered {
		lines[i] = stmt.Text
	}
	start := leading[0].Start
	end := leading[len(leading)-1].End
	return src[:start] + strings.Join(lines, "\n") + src[end:]
}
