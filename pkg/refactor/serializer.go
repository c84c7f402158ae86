package refactor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/mamaar/jsxsplit/pkg/types"
)

const diffContext = 3

// Serializer writes generated files through a FileSystem
type Serializer struct {
	fs     FileSystem
	logger *slog.Logger
}

func NewSerializer(fs FileSystem, logger *slog.Logger) *Serializer {
	return &Serializer{fs: fs, logger: logger}
}

// BackupFile copies filePath to filePath.backup and returns the backup path
func (s *Serializer) BackupFile(filePath string) (string, error) {
	backupPath := filePath + ".backup"
	content, err := s.fs.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read original file: %w", err)
	}
	if err := s.fs.WriteFile(backupPath, content); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	s.logger.Debug("created backup", "file", filePath, "backup", backupPath)
	return backupPath, nil
}

// WriteUnit writes the generated component to its path
func (s *Serializer) WriteUnit(unit *types.NewUnit) error {
	if err := s.fs.WriteFile(unit.Path, unit.Source); err != nil {
		return &types.RefactorError{
			Type:    types.FileWriteFailure,
			Message: fmt.Sprintf("failed to write %s: %v", unit.Path, err),
			File:    unit.Path,
			Line:    1,
			Column:  1,
			Cause:   err,
		}
	}
	s.logger.Info("wrote component", "path", unit.Path, "bytes", len(unit.Source))
	return nil
}

// GenerateDiff renders a unified diff between two versions of filePath. An
// empty original is shown as a new file.
func GenerateDiff(filePath, original, modified string) (string, error) {
	from := filePath
	if original == "" {
		from = "/dev/null"
	}
	diff := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(original),
		B:        splitLinesKeepNL(modified),
		FromFile: from,
		ToFile:   filePath,
		Context:  diffContext,
	}
	return difflib.GetUnifiedDiffString(diff)
}

func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
