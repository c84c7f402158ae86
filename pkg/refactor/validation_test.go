package refactor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamaar/jsxsplit/pkg/types"
)

func fragmentOf(t *testing.T, document string, r types.Range) types.Fragment {
	t.Helper()
	text, err := TextInRange(document, r)
	require.NoError(t, err)
	return types.Fragment{Text: text, Range: r}
}

func TestValidator_EmptySelection(t *testing.T) {
	v := NewValidator(newTestOracle(t), testLogger())

	for _, text := range []string{"", "   ", "\n\t\n"} {
		_, err := v.Validate(context.Background(), types.Fragment{Text: text}, "const a = 1;\n")
		if !types.IsErrorType(err, types.EmptySelection) {
			t.Errorf("Validate(%q) error = %v, want EmptySelection", text, err)
		}
	}
}

func TestValidator_SingleRootIsNotWrapped(t *testing.T) {
	document := `const App = () => (
  <main>
    <section>
      <h1>Hi</h1>
    </section>
  </main>
);
`
	v := NewValidator(newTestOracle(t), testLogger())
	got, err := v.Validate(context.Background(), fragmentOf(t, document, rng(2, 4, 4, 14)), document)
	require.NoError(t, err)

	assert.False(t, got.Wrapped)
	assert.Equal(t, got.Trimmed, got.Markup)
	assert.Equal(t, "<section>\n      <h1>Hi</h1>\n    </section>", got.Trimmed)
}

func TestValidator_SiblingsAreWrapped(t *testing.T) {
	document := "const X = () => (\n  <div><a/><b/></div>\n);\n"
	v := NewValidator(newTestOracle(t), testLogger())

	got, err := v.Validate(context.Background(), fragmentOf(t, document, rng(1, 7, 1, 15)), document)
	require.NoError(t, err)

	assert.True(t, got.Wrapped)
	assert.Equal(t, "<>\n<a/><b/>\n</>", got.Markup)
}

func TestValidator_ExpressionIsWrapped(t *testing.T) {
	document := "const X = ({items}) => (\n  <ul>{items.map(i => <li key={i}>{i}</li>)}</ul>\n);\n"
	v := NewValidator(newTestOracle(t), testLogger())

	got, err := v.Validate(context.Background(), fragmentOf(t, document, rng(1, 6, 1, 44)), document)
	require.NoError(t, err)
	assert.True(t, got.Wrapped)
}

func TestValidator_ElementThenExpressionIsWrapped(t *testing.T) {
	document := "const X = ({name}) => (\n  <div>\n    <b>Hi</b>\n    {name}\n  </div>\n);\n"
	v := NewValidator(newTestOracle(t), testLogger())

	got, err := v.Validate(context.Background(), fragmentOf(t, document, rng(2, 4, 3, 10)), document)
	require.NoError(t, err)

	assert.True(t, got.Wrapped)
	assert.Equal(t, "<>\n<b>Hi</b>\n    {name}\n</>", got.Markup)
}

func TestValidator_TextBesideElementIsWrapped(t *testing.T) {
	document := "const X = () => (\n  <p>Hello <b>world</b></p>\n);\n"
	v := NewValidator(newTestOracle(t), testLogger())

	got, err := v.Validate(context.Background(), fragmentOf(t, document, rng(1, 5, 1, 23)), document)
	require.NoError(t, err)
	assert.True(t, got.Wrapped)
}

func TestValidator_SelectionLeavingItsMarkup(t *testing.T) {
	document := "const X = () => (\n  <p><a/></p>\n);\n"
	v := NewValidator(newTestOracle(t), testLogger())

	_, err := v.Validate(context.Background(), fragmentOf(t, document, rng(1, 5, 1, 13)), document)
	assert.True(t, types.IsErrorType(err, types.InvalidSelection), "got %v", err)
}

func TestValidator_InvalidFragment(t *testing.T) {
	document := "const X = () => (\n  <div><span/></div>\n);\n"
	v := NewValidator(newTestOracle(t), testLogger())

	_, err := v.Validate(context.Background(), fragmentOf(t, document, rng(1, 2, 1, 7)), document)
	require.Error(t, err)

	var refErr *types.RefactorError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, types.InvalidSelection, refErr.Type)
	assert.Positive(t, refErr.Line)
	assert.Contains(t, refErr.Message, "not a valid component body")
}

func TestValidator_RangeOutsideDocument(t *testing.T) {
	v := NewValidator(newTestOracle(t), testLogger())
	_, err := v.Validate(context.Background(), types.Fragment{Text: "<p/>", Range: rng(10, 0, 10, 4)}, "const a = 1;\n")
	assert.True(t, types.IsErrorType(err, types.InvalidSelection))
}

func TestValidator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewValidator(newTestOracle(t), testLogger())
	_, err := v.Validate(ctx, types.Fragment{Text: "<p/>"}, "const a = <p/>;\n")
	assert.ErrorIs(t, err, context.Canceled)
}
