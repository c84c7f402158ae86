package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mamaar/jsxsplit/internal/config"
	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/host"
	"github.com/mamaar/jsxsplit/pkg/refactor"
	"github.com/mamaar/jsxsplit/pkg/types"
	"github.com/mamaar/jsxsplit/pkg/watch"
)

// MCPServer holds the shared state for the MCP tool handlers:
// a loaded workspace, its refactoring engine, and an optional
// filesystem watcher that keeps cached documents fresh.
type MCPServer struct {
	// mu serialises tool calls; only one extraction runs at a time
	mu        sync.Mutex
	engine    refactor.RefactorEngine
	config    *config.Config
	workspace *types.Workspace
	fs        refactor.FileSystem
	watcher   *watch.Watcher
	updater   *watch.WorkspaceUpdater
	cancel    context.CancelFunc // stops watcher goroutine
	logger    *slog.Logger
}

// NewMCPServer creates a new MCPServer with the given logger.
func NewMCPServer(logger *slog.Logger) *MCPServer {
	return &MCPServer{
		fs:     host.OSFileSystem{},
		logger: logger,
	}
}

// LoadWorkspace loads (or reloads) a workspace at the given path and starts
// a background watcher for it.
func (s *MCPServer) LoadWorkspace(ctx context.Context, path string) error {
	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve workspace: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("load workspace: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("load workspace: %s is not a directory", root)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopWatcherLocked()

	s.logger.Info("loading workspace", "path", root)
	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	oracle, err := analysis.NewTreeSitterOracle(cfg.OracleOptions(s.logger))
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}
	s.engine = refactor.CreateEngineWithConfig(oracle, s.fs, cfg.EngineConfig(root), s.logger)
	s.config = cfg
	s.workspace = types.NewWorkspace(root)

	w, err := watch.NewWatcher(root, 200*time.Millisecond, s.logger)
	if err != nil {
		s.logger.Warn("watcher unavailable, cached documents will not auto-update", "err", err)
		return nil
	}
	s.watcher = w
	s.updater = watch.NewUpdater(s.workspace, s.logger)

	watchCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	ch := make(chan []watch.ChangeEvent, 4)
	go func() {
		defer close(ch)
		if err := w.Run(watchCtx, ch); err != nil && watchCtx.Err() == nil {
			s.logger.Error("watcher error", "err", err)
		}
	}()
	updater := s.updater
	go func() {
		for events := range ch {
			updater.HandleChanges(events)
		}
	}()

	return nil
}

// GetWorkspace returns the loaded workspace or an error if none is loaded.
func (s *MCPServer) GetWorkspace() (*types.Workspace, error) {
	if s.workspace == nil {
		return nil, fmt.Errorf("no workspace loaded: call load_workspace first")
	}
	return s.workspace, nil
}

// GetEngine returns the refactoring engine.
func (s *MCPServer) GetEngine() refactor.RefactorEngine {
	return s.engine
}

// Document returns the cached content of path, reading and caching it on
// first use. The watcher refreshes cached documents when files change.
func (s *MCPServer) Document(path string) (string, error) {
	ws, err := s.GetWorkspace()
	if err != nil {
		return "", err
	}
	if doc, ok := ws.Document(path); ok {
		return doc.Content, nil
	}
	content, err := s.fs.ReadFile(path)
	if err != nil {
		return "", err
	}
	ws.Put(path, content)
	return content, nil
}

// SyncWorkspaceChanges forces an immediate update for the given files.
// This is called after tool calls write files so the cache is current.
func (s *MCPServer) SyncWorkspaceChanges(files []string) {
	if s.updater == nil || len(files) == 0 {
		return
	}
	events := make([]watch.ChangeEvent, len(files))
	for i, file := range files {
		events[i] = watch.ChangeEvent{
			Path: file,
			Op:   fsnotify.Write,
		}
	}
	s.updater.HandleChanges(events)
}

// Lock acquires the server state for one tool call.
func (s *MCPServer) Lock() { s.mu.Lock() }

// Unlock releases the server state.
func (s *MCPServer) Unlock() { s.mu.Unlock() }

// Close stops the watcher and releases resources.
func (s *MCPServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatcherLocked()
}

func (s *MCPServer) stopWatcherLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
	s.updater = nil
}
