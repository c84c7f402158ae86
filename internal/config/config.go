// Package config loads the per-workspace settings of jsxsplit from
// .jsxsplit.yaml, a .env file and JSXSPLIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/refactor"
)

// FileName is the configuration file looked up at the workspace root
const FileName = ".jsxsplit.yaml"

// Config is the top-level jsxsplit configuration.
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Format    FormatConfig    `yaml:"format"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Backups   bool            `yaml:"backups"`
}

// FrameworkConfig names the default import every generated component gets.
type FrameworkConfig struct {
	Name   string `yaml:"name"`
	Module string `yaml:"module"`
}

// FormatConfig controls the layout of generated code. Nil thresholds take
// the defaults; zero forces the multi-line form.
type FormatConfig struct {
	Indent             string `yaml:"indent"`
	ParamInlineMax     *int   `yaml:"param_inline_max"`
	ReferenceInlineMax *int   `yaml:"reference_inline_max"`
}

// AnalysisConfig tunes the static analysis.
type AnalysisConfig struct {
	Globals        []string `yaml:"globals"`
	BrowserGlobals *bool    `yaml:"browser_globals"`
	CacheSize      int      `yaml:"cache_size"`
}

// Load reads the configuration for the workspace at root. A missing file or
// .env is not an error.
func Load(root string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := LoadFile(filepath.Join(root, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	engine := refactor.DefaultConfig()
	oracle := analysis.DefaultOptions()

	if c.Framework.Name == "" {
		c.Framework.Name = engine.FrameworkName
	}
	if c.Framework.Module == "" {
		c.Framework.Module = engine.FrameworkModule
	}
	if c.Format.Indent == "" {
		c.Format.Indent = engine.IndentUnit
	}
	if c.Format.ParamInlineMax == nil || *c.Format.ParamInlineMax < 0 {
		c.Format.ParamInlineMax = intPtr(engine.ParamInlineMax)
	}
	if c.Format.ReferenceInlineMax == nil || *c.Format.ReferenceInlineMax < 0 {
		c.Format.ReferenceInlineMax = intPtr(engine.ReferenceInlineMax)
	}
	if c.Analysis.BrowserGlobals == nil {
		c.Analysis.BrowserGlobals = boolPtr(oracle.Browser)
	}
	if c.Analysis.CacheSize <= 0 {
		c.Analysis.CacheSize = oracle.CacheSize
	}
}

// applyEnv overrides file values with JSXSPLIT_* variables
func (c *Config) applyEnv() error {
	if v := env("JSXSPLIT_FRAMEWORK"); v != "" {
		c.Framework.Name = v
	}
	if v := env("JSXSPLIT_FRAMEWORK_MODULE"); v != "" {
		c.Framework.Module = v
	}
	if v := os.Getenv("JSXSPLIT_INDENT"); v != "" {
		c.Format.Indent = unescapeIndent(v)
	}
	if v := env("JSXSPLIT_GLOBALS"); v != "" {
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				c.Analysis.Globals = append(c.Analysis.Globals, g)
			}
		}
	}
	if v := env("JSXSPLIT_BROWSER_GLOBALS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("JSXSPLIT_BROWSER_GLOBALS: %w", err)
		}
		c.Analysis.BrowserGlobals = &b
	}
	if v := env("JSXSPLIT_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JSXSPLIT_CACHE_SIZE: %w", err)
		}
		c.Analysis.CacheSize = n
	}
	if v := env("JSXSPLIT_BACKUPS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("JSXSPLIT_BACKUPS: %w", err)
		}
		c.Backups = b
	}
	return nil
}

// EngineConfig builds the refactoring engine settings for a workspace
func (c *Config) EngineConfig(root string) *refactor.EngineConfig {
	return &refactor.EngineConfig{
		FrameworkName:      c.Framework.Name,
		FrameworkModule:    c.Framework.Module,
		IndentUnit:         c.Format.Indent,
		ParamInlineMax:     *c.Format.ParamInlineMax,
		ReferenceInlineMax: *c.Format.ReferenceInlineMax,
		CreateBackups:      c.Backups,
		WorkspaceRoot:      root,
	}
}

// OracleOptions builds the analysis settings
func (c *Config) OracleOptions(logger *slog.Logger) analysis.Options {
	opts := analysis.DefaultOptions()
	opts.FrameworkName = c.Framework.Name
	opts.Globals = append([]string(nil), c.Analysis.Globals...)
	opts.Browser = *c.Analysis.BrowserGlobals
	opts.CacheSize = c.Analysis.CacheSize
	opts.Logger = logger
	return opts
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// unescapeIndent accepts a literal \t in environment values
func unescapeIndent(v string) string {
	return strings.ReplaceAll(v, `\t`, "\t")
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
