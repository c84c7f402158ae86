package host

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// OSFileSystem reads and writes the real file system
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (OSFileSystem) ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (OSFileSystem) WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// MemFileSystem keeps files in memory. It is used for dry runs and tests.
type MemFileSystem struct {
	mu    sync.RWMutex
	files map[string]string
	// Fail makes every write return this error when set
	Fail error
}

func NewMemFileSystem(files map[string]string) *MemFileSystem {
	m := &MemFileSystem{files: make(map[string]string)}
	for p, c := range files {
		m.files[filepath.Clean(p)] = c
	}
	return m
}

func (m *MemFileSystem) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok, nil
}

func (m *MemFileSystem) ReadFile(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[filepath.Clean(path)]
	if !ok {
		return "", &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return content, nil
}

func (m *MemFileSystem) WriteFile(path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.files[filepath.Clean(path)] = content
	return nil
}

// Paths lists every stored file in lexical order
func (m *MemFileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
