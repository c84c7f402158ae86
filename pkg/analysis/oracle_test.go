package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOracle(t *testing.T, mutate ...func(*Options)) *TreeSitterOracle {
	t.Helper()
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, m := range mutate {
		m(&opts)
	}
	oracle, err := NewTreeSitterOracle(opts)
	require.NoError(t, err)
	return oracle
}

func identifierNames(ids []Identifier) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name
	}
	return names
}

func TestFindFreeIdentifiers_Component(t *testing.T) {
	src := `import React from 'react';

const Card = () => (
  <div className={styles.card} onClick={onClick}>
    <Button label={title} />
    {items.map(item => <Item key={item.id} {...item} />)}
  </div>
);

export default Card;
`
	oracle := newTestOracle(t)
	ids, err := oracle.FindFreeIdentifiers(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"styles", "onClick", "Button", "title", "items", "Item"}, identifierNames(ids))
	assert.Equal(t, 4, ids[0].Line)
	assert.Equal(t, 5, ids[2].Line)
}

func TestFindFreeIdentifiers_Scopes(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []string
	}{
		{
			name:     "block scoping",
			src:      "const f = (title) => { let x = 1; { const y = x; } return title + y + z; };\n",
			expected: []string{"y", "z"},
		},
		{
			name:     "hoisted functions",
			src:      "function g() { return h(); }\nfunction h() { return 1; }\n",
			expected: nil,
		},
		{
			name:     "var escapes blocks",
			src:      "function g() { if (a) { var v = 1; } return v; }\n",
			expected: []string{"a"},
		},
		{
			name:     "catch parameter",
			src:      "try { run(); } catch (e) { log(e); }\n",
			expected: []string{"run", "log"},
		},
		{
			name:     "for of binding",
			src:      "for (const k of keys) { use(k); }\n",
			expected: []string{"keys", "use"},
		},
		{
			name:     "class members",
			src:      "class A extends B { m() { return this.x + q; } }\nnew A();\n",
			expected: []string{"B", "q"},
		},
		{
			name:     "destructuring",
			src:      "const {a, b: {c}, d = e, ...rest} = props;\nconst [f, , g = a] = list;\nuse(a, c, d, rest, f, g);\n",
			expected: []string{"e", "props", "list", "use"},
		},
		{
			name:     "object shorthand",
			src:      "const o = {value, other: 1};\n",
			expected: []string{"value"},
		},
		{
			name:     "member tag",
			src:      "const x = <Layout.Header title={t}></Layout.Header>;\n",
			expected: []string{"Layout", "t"},
		},
		{
			name:     "intrinsic tags",
			src:      "const x = <section><span>{label}</span></section>;\n",
			expected: []string{"label"},
		},
		{
			name:     "globals",
			src:      "console.log(window.innerWidth, undefined, Math.max(1, 2), JSON.stringify({}));\n",
			expected: nil,
		},
	}

	oracle := newTestOracle(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ids, err := oracle.FindFreeIdentifiers(context.Background(), tc.src)
			require.NoError(t, err)
			if tc.expected == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tc.expected, identifierNames(ids))
		})
	}
}

func TestFindFreeIdentifiers_BrowserGlobalsDisabled(t *testing.T) {
	oracle := newTestOracle(t, func(o *Options) {
		o.Browser = false
		o.Globals = []string{"process"}
	})
	ids, err := oracle.FindFreeIdentifiers(context.Background(), "console.log(process.env, document.title);\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"console", "document"}, identifierNames(ids))
}

func TestFindUnusedImportBindings(t *testing.T) {
	src := `import React, {useState} from 'react';
import Button from './Button';
import Unused from './Unused';
import {a, b as c} from './x';

export default function App() {
  const [v] = useState(c);
  return <Button value={v} />;
}
`
	oracle := newTestOracle(t)
	diags, err := oracle.FindUnusedImportBindings(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, diags, 2)

	assert.Equal(t, "Unused", diags[0].Name)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, "'Unused' is defined but never used.", diags[0].Message)
	assert.Equal(t, "a", diags[1].Name)
	assert.Equal(t, 4, diags[1].Line)
}

func TestFindUnusedImportBindings_FrameworkWithoutJSX(t *testing.T) {
	oracle := newTestOracle(t)
	diags, err := oracle.FindUnusedImportBindings(context.Background(), "import React from 'react';\nexport const x = 1;\n")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "React", diags[0].Name)
}

func TestFindUnusedImportBindings_ReExport(t *testing.T) {
	src := "import Card from './Card';\nexport {Card};\nexport {Other as Alias} from './Other';\n"
	oracle := newTestOracle(t)
	diags, err := oracle.FindUnusedImportBindings(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestCheckSyntax(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"fragment of siblings", "<><a/><b/></>", false},
		{"nested markup", "<>\n  <div className=\"x\">\n    {value}\n  </div>\n</>", false},
		{"unclosed tag", "<>\n<div>\n</>", true},
		{"mismatched closing tag", "<>\n<div>\n</span>\n</>", true},
		{"empty placeholder", "const x = () => (\n  <></>\n);", false},
	}

	oracle := newTestOracle(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := oracle.CheckSyntax(context.Background(), tc.src)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr))
			assert.Positive(t, syntaxErr.Line)
			assert.NotEmpty(t, syntaxErr.Message)
		})
	}
}

func TestFindFreeIdentifiers_SyntaxError(t *testing.T) {
	oracle := newTestOracle(t)
	_, err := oracle.FindFreeIdentifiers(context.Background(), "const = ;")
	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

func TestOracle_CanceledContext(t *testing.T) {
	oracle := newTestOracle(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := oracle.CheckSyntax(ctx, "const a = 1;")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOracle_Cache(t *testing.T) {
	oracle := newTestOracle(t)
	src := "const a = b;\n"
	for i := 0; i < 3; i++ {
		_, err := oracle.FindFreeIdentifiers(context.Background(), src)
		require.NoError(t, err)
	}
	hits, misses := oracle.CacheStats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, oracle.cache.Len())
}

func TestFormatImportsBlock(t *testing.T) {
	src := `import Local from './Local';
import React from 'react';
import Up from '../Up';
import clsx from 'clsx';
import fs from 'node:fs';

const x = 1;
`
	expected := `import fs from 'node:fs';
import React from 'react';
import clsx from 'clsx';
import Up from '../Up';
import Local from './Local';

const x = 1;
`
	oracle := newTestOracle(t)
	got, err := oracle.FormatImportsBlock(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, expected, got)

	again, err := oracle.FormatImportsBlock(context.Background(), got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFormatImportsBlock_KeepsCommentedBlocks(t *testing.T) {
	src := "import Local from './Local';\n// keep me here\nimport React from 'react';\n"
	oracle := newTestOracle(t)
	got, err := oracle.FormatImportsBlock(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, got)
}

func TestFragmentChildren(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected []string
	}{
		{"single element", "<>\n  <div><a/></div>\n</>", []string{"jsx_element"}},
		{"self closing", "<><Card/></>", []string{"jsx_self_closing_element"}},
		{"element then expression", "<><b>Hi</b>\n    {name}</>", []string{"jsx_element", "jsx_expression"}},
		{"siblings", "<><a/><b/></>", []string{"jsx_self_closing_element", "jsx_self_closing_element"}},
		{"text", "<>Hello</>", []string{"jsx_text"}},
		{"empty", "<>\n</>", []string{}},
	}

	oracle := newTestOracle(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := oracle.FragmentChildren(context.Background(), tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFragmentChildren_NotAFragment(t *testing.T) {
	oracle := newTestOracle(t)

	for _, src := range []string{"<></>;\nfoo();\n<></>", "<div/>", "const a = 1;"} {
		_, err := oracle.FragmentChildren(context.Background(), src)
		assert.ErrorIs(t, err, ErrNotFragment, "src %q", src)
	}

	_, err := oracle.FragmentChildren(context.Background(), "<><div></>")
	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr), "got %v", err)
}
