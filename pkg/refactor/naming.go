package refactor

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mamaar/jsxsplit/pkg/types"
)

var componentName = regexp.MustCompile(`^[A-Z][A-Za-z0-9_$]*$`)

// ValidateComponentName checks that name can be used as a component. The
// error suggests a corrected name when one can be derived.
func ValidateComponentName(name string) error {
	if name == "" {
		return types.NewError(types.InvalidName, "no component name given")
	}
	if componentName.MatchString(name) {
		return nil
	}
	msg := "invalid component name " + `"` + name + `"` +
		": choose a name that starts with a capital letter, followed by letters or digits only"
	if suggestion := SuggestComponentName(name); suggestion != "" {
		msg += " (did you mean " + suggestion + "?)"
	}
	return types.NewError(types.InvalidName, "%s", msg)
}

// SuggestComponentName title-cases the words of input and joins them, so
// "user card" and "user-card" both become "UserCard". It returns "" when no
// valid name results.
func SuggestComponentName(input string) string {
	words := strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$'
	})
	caser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	suggestion := strings.TrimLeftFunc(b.String(), unicode.IsDigit)
	if !componentName.MatchString(suggestion) {
		return ""
	}
	return suggestion
}

// ComponentPath is where the component called name is written: next to
// origin, with origin's extension.
func ComponentPath(origin, name string) string {
	return filepath.Join(filepath.Dir(origin), name+filepath.Ext(origin))
}
