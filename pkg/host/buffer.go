// Package host provides in-process implementations of the collaborators the
// refactoring engine talks to: an editor buffer, the file system and prompts.
package host

import (
	"context"
	"sync"

	"github.com/mamaar/jsxsplit/pkg/refactor"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// Buffer is an in-memory document with a selection
type Buffer struct {
	mu        sync.Mutex
	path      string
	text      string
	selection types.Range
	applied   []types.TextEdit
}

func NewBuffer(path, text string, selection types.Range) *Buffer {
	return &Buffer{path: path, text: text, selection: selection}
}

func (b *Buffer) Path() string {
	return b.path
}

func (b *Buffer) Selection(ctx context.Context) (types.Range, error) {
	if err := ctx.Err(); err != nil {
		return types.Range{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selection, nil
}

func (b *Buffer) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, nil
}

// ApplyEdits applies edits one after another. Nothing is applied when any
// edit does not fit.
func (b *Buffer) ApplyEdits(ctx context.Context, edits []types.TextEdit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	text, err := refactor.ApplyEdits(b.text, edits)
	if err != nil {
		return err
	}
	b.text = text
	b.applied = append(b.applied, edits...)
	return nil
}

// Applied returns every edit applied so far
func (b *Buffer) Applied() []types.TextEdit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.TextEdit(nil), b.applied...)
}

// Content returns the current text without a context
func (b *Buffer) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}
