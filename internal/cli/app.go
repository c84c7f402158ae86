package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mamaar/jsxsplit/internal/config"
	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/host"
	"github.com/mamaar/jsxsplit/pkg/refactor"
)

// App represents the jsxsplit command line application
type App struct {
	Flags *Flags

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prompter asks for a component name when --name is omitted. Nil uses
	// an interactive prompt on Stdin and Stderr.
	Prompter refactor.Prompter
	// FS is used for every file read and write. Nil uses the OS.
	FS refactor.FileSystem
}

// NewApp creates a new application instance bound to the process streams
func NewApp() *App {
	return &App{
		Flags:  &Flags{},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Logger writes text logs to Stderr. Only warnings are shown unless
// --verbose was given.
func (app *App) Logger() *slog.Logger {
	level := slog.LevelWarn
	if app.Flags.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(app.Stderr, &slog.HandlerOptions{Level: level}))
}

// FileSystem returns the file system commands operate on
func (app *App) FileSystem() refactor.FileSystem {
	if app.FS != nil {
		return app.FS
	}
	return host.OSFileSystem{}
}

// NamePrompter returns the prompter used when no name was given
func (app *App) NamePrompter() refactor.Prompter {
	if app.Prompter != nil {
		return app.Prompter
	}
	return &TerminalPrompter{In: app.Stdin, Out: app.Stderr}
}

// WorkspaceRoot resolves --workspace to an absolute path
func (app *App) WorkspaceRoot() (string, error) {
	root := app.Flags.Workspace
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}

// CreateEngine builds a refactor engine from the workspace configuration
// and the command line flags
func (app *App) CreateEngine() (refactor.RefactorEngine, error) {
	root, err := app.WorkspaceRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if app.Flags.Backup {
		cfg.Backups = true
	}

	logger := app.Logger()
	oracle, err := analysis.NewTreeSitterOracle(cfg.OracleOptions(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	return refactor.CreateEngineWithConfig(oracle, app.FileSystem(), cfg.EngineConfig(root), logger), nil
}

// OpenDocument loads path into an editor buffer with the --range selection
func (app *App) OpenDocument(path string) (*host.Buffer, error) {
	rng, err := ParseRange(app.Flags.Range)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	content, err := app.FileSystem().ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return host.NewBuffer(abs, content, rng), nil
}
