package refactor

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/mamaar/jsxsplit/pkg/types"
)

// mapFS is a FileSystem over a plain map
type mapFS struct {
	files map[string]string
	fail  error
}

func (m *mapFS) Exists(path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *mapFS) ReadFile(path string) (string, error) {
	content, ok := m.files[path]
	if !ok {
		return "", fs.ErrNotExist
	}
	return content, nil
}

func (m *mapFS) WriteFile(path, content string) error {
	if m.fail != nil {
		return m.fail
	}
	m.files[path] = content
	return nil
}

func TestSerializer_BackupFile(t *testing.T) {
	fsys := &mapFS{files: map[string]string{"/src/App.jsx": "original"}}
	s := NewSerializer(fsys, testLogger())

	backup, err := s.BackupFile("/src/App.jsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backup != "/src/App.jsx.backup" {
		t.Errorf("backup path = %q", backup)
	}
	if fsys.files[backup] != "original" {
		t.Errorf("backup content = %q", fsys.files[backup])
	}

	if _, err := s.BackupFile("/src/Missing.jsx"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSerializer_WriteUnit(t *testing.T) {
	fsys := &mapFS{files: map[string]string{}}
	s := NewSerializer(fsys, testLogger())
	unit := &types.NewUnit{Name: "Card", Path: "/src/Card.jsx", Source: "export default Card;\n"}

	if err := s.WriteUnit(unit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fsys.files["/src/Card.jsx"] != unit.Source {
		t.Errorf("written content = %q", fsys.files["/src/Card.jsx"])
	}
}

func TestSerializer_WriteUnitFailure(t *testing.T) {
	fsys := &mapFS{files: map[string]string{}, fail: errors.New("disk full")}
	s := NewSerializer(fsys, testLogger())

	err := s.WriteUnit(&types.NewUnit{Path: "/src/Card.jsx"})
	var refErr *types.RefactorError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected a RefactorError, got %v", err)
	}
	if refErr.Type != types.FileWriteFailure {
		t.Errorf("type = %v, want FileWriteFailure", refErr.Type)
	}
	if refErr.File != "/src/Card.jsx" || refErr.Line != 1 || refErr.Column != 1 {
		t.Errorf("location = %s:%d:%d", refErr.File, refErr.Line, refErr.Column)
	}
	if !strings.Contains(refErr.Error(), "disk full") {
		t.Errorf("error %q does not mention the cause", refErr.Error())
	}
}

func TestGenerateDiff(t *testing.T) {
	diff, err := GenerateDiff("App.jsx", "a\nb\nc\n", "a\nB\nc\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"--- App.jsx\n", "+++ App.jsx\n", "-b\n", "+B\n", " a\n"} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff does not contain %q:\n%s", want, diff)
		}
	}

	created, err := GenerateDiff("Card.jsx", "", "line\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(created, "--- /dev/null\n+++ Card.jsx\n") || !strings.Contains(created, "+line\n") {
		t.Errorf("unexpected diff for a new file:\n%s", created)
	}

	same, err := GenerateDiff("App.jsx", "a\n", "a\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same != "" {
		t.Errorf("expected an empty diff, got %q", same)
	}
}
