package types

import (
	"path/filepath"
	"sync"
)

// Workspace is a directory of JSX sources together with the documents a
// server currently holds in memory.
type Workspace struct {
	RootPath string

	mu        sync.RWMutex
	documents map[string]*Document // absolute path -> Document
}

// Document is the in-memory content of one source file
type Document struct {
	Path    string
	Content string
	Version int
}

func NewWorkspace(root string) *Workspace {
	return &Workspace{
		RootPath:  root,
		documents: make(map[string]*Document),
	}
}

// Document returns the cached document for path
func (w *Workspace) Document(path string) (*Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.documents[filepath.Clean(path)]
	return doc, ok
}

// Put stores content for path and bumps its version
func (w *Workspace) Put(path, content string) *Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	path = filepath.Clean(path)
	doc, ok := w.documents[path]
	if !ok {
		doc = &Document{Path: path}
		w.documents[path] = doc
	}
	doc.Content = content
	doc.Version++
	return doc
}

// Evict drops path from the cache. It reports whether anything was removed.
func (w *Workspace) Evict(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	path = filepath.Clean(path)
	if _, ok := w.documents[path]; !ok {
		return false
	}
	delete(w.documents, path)
	return true
}

// Paths lists the cached document paths
func (w *Workspace) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.documents))
	for p := range w.documents {
		paths = append(paths, p)
	}
	return paths
}

// Contains reports whether path lies inside the workspace root
func (w *Workspace) Contains(path string) bool {
	rel, err := filepath.Rel(w.RootPath, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepath.IsAbs(rel) && !hasParentPrefix(rel)
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
