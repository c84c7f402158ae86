package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mamaar/jsxsplit/pkg/types"
)

// WorkspaceUpdater keeps the documents a server holds in memory in step with
// the files on disk.
type WorkspaceUpdater struct {
	workspace *types.Workspace
	logger    *slog.Logger
}

func NewUpdater(ws *types.Workspace, logger *slog.Logger) *WorkspaceUpdater {
	return &WorkspaceUpdater{
		workspace: ws,
		logger:    logger,
	}
}

// HandleChanges processes a batch of file-change events. Only documents the
// workspace already holds are reloaded; deleted or renamed files are evicted.
func (u *WorkspaceUpdater) HandleChanges(events []ChangeEvent) {
	start := time.Now()
	reloaded, evicted := 0, 0

	for _, ev := range events {
		if !u.workspace.Contains(ev.Path) {
			continue
		}
		switch {
		case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
			if u.evict(ev.Path) {
				evicted++
			}
		case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
			if u.reload(ev.Path) {
				reloaded++
			}
		}
	}

	u.logger.Info("batch complete",
		"files", len(events),
		"reloaded", reloaded,
		"evicted", evicted,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}

// reload re-reads a tracked document. A file that vanished in the meantime is
// evicted instead.
func (u *WorkspaceUpdater) reload(path string) bool {
	doc, ok := u.workspace.Document(path)
	if !ok {
		return false
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return u.evict(path)
	}
	if err != nil {
		u.logger.Error("reload failed", "file", path, "err", err)
		return false
	}
	if string(content) == doc.Content {
		return false
	}
	updated := u.workspace.Put(path, string(content))
	u.logger.Debug("reloaded document", "file", path, "version", updated.Version)
	return true
}

func (u *WorkspaceUpdater) evict(path string) bool {
	if !u.workspace.Evict(path) {
		return false
	}
	u.logger.Debug("evicted document", "file", path)
	return true
}

// Workspace returns the workspace for testing.
func (u *WorkspaceUpdater) Workspace() *types.Workspace {
	return u.workspace
}

// String implements fmt.Stringer for logging convenience.
func (u *WorkspaceUpdater) String() string {
	return fmt.Sprintf("WorkspaceUpdater{documents=%d}", len(u.workspace.Paths()))
}
