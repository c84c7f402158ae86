package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "React", cfg.Framework.Name)
	assert.Equal(t, "react", cfg.Framework.Module)
	assert.Equal(t, "  ", cfg.Format.Indent)
	assert.Equal(t, 2, *cfg.Format.ParamInlineMax)
	assert.Equal(t, 3, *cfg.Format.ReferenceInlineMax)
	assert.True(t, *cfg.Analysis.BrowserGlobals)
	assert.Equal(t, 64, cfg.Analysis.CacheSize)
	assert.False(t, cfg.Backups)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `framework:
  name: h
  module: preact
format:
  indent: "    "
  param_inline_max: 0
analysis:
  globals: [__DEV__]
  browser_globals: false
backups: true
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "h", cfg.Framework.Name)
	assert.Equal(t, "preact", cfg.Framework.Module)
	assert.Equal(t, "    ", cfg.Format.Indent)
	assert.Equal(t, 0, *cfg.Format.ParamInlineMax)
	assert.Equal(t, 3, *cfg.Format.ReferenceInlineMax)
	assert.Equal(t, []string{"__DEV__"}, cfg.Analysis.Globals)
	assert.False(t, *cfg.Analysis.BrowserGlobals)
	assert.True(t, cfg.Backups)

	engine := cfg.EngineConfig(dir)
	assert.Equal(t, dir, engine.WorkspaceRoot)
	assert.Equal(t, "preact", engine.FrameworkModule)
	assert.Equal(t, 0, engine.ParamInlineMax)
	assert.True(t, engine.CreateBackups)

	opts := cfg.OracleOptions(nil)
	assert.Equal(t, "h", opts.FrameworkName)
	assert.False(t, opts.Browser)
	assert.Equal(t, []string{"__DEV__"}, opts.Globals)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "framework: [unclosed\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_Environment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "framework:\n  name: h\n")
	t.Setenv("JSXSPLIT_FRAMEWORK", "React")
	t.Setenv("JSXSPLIT_INDENT", `\t`)
	t.Setenv("JSXSPLIT_GLOBALS", "__DEV__, process")
	t.Setenv("JSXSPLIT_BACKUPS", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "React", cfg.Framework.Name)
	assert.Equal(t, "\t", cfg.Format.Indent)
	assert.Equal(t, []string{"__DEV__", "process"}, cfg.Analysis.Globals)
	assert.True(t, cfg.Backups)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "JSXSPLIT_CACHE_SIZE=8\n")
	// registered so the variable set by .env is cleared afterwards
	t.Setenv("JSXSPLIT_CACHE_SIZE", "")
	require.NoError(t, os.Unsetenv("JSXSPLIT_CACHE_SIZE"))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Analysis.CacheSize)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("JSXSPLIT_BROWSER_GLOBALS", "sometimes")

	_, err := Load(t.TempDir())
	assert.Error(t, err)
}
