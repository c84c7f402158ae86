package refactor

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// Offset converts pos to a byte offset into text. Lines are walked one at a
// time accumulating len(line)+1; the character on the final line is counted
// in UTF-16 units and clamped to the line length.
func Offset(text string, pos types.Position) (int, error) {
	if pos.Line < 0 || pos.Character < 0 {
		return 0, fmt.Errorf("invalid position %d:%d", pos.Line, pos.Character)
	}
	lines := strings.Split(text, "\n")
	if pos.Line >= len(lines) {
		return 0, fmt.Errorf("line %d out of range (document has %d lines)", pos.Line, len(lines))
	}
	offset := 0
	for i := 0; i < pos.Line; i++ {
		offset += len(lines[i]) + 1
	}
	return offset + utf16ToByteOffset(lines[pos.Line], pos.Character), nil
}

func utf16ToByteOffset(line string, character int) int {
	units := 0
	for i, r := range line {
		if units >= character {
			return i
		}
		units += utf16.RuneLen(r)
		if units > character {
			// inside a surrogate pair
			return i
		}
	}
	return len(line)
}

// PositionAt converts a byte offset into a position
func PositionAt(text string, offset int) types.Position {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	before := text[:offset]
	line := strings.Count(before, "\n")
	lineStart := strings.LastIndexByte(before, '\n') + 1
	character := 0
	for rest := before[lineStart:]; rest != ""; {
		r, size := utf8.DecodeRuneInString(rest)
		character += utf16.RuneLen(r)
		rest = rest[size:]
	}
	return types.Position{Line: line, Character: character}
}

// TextInRange returns the text rng covers
func TextInRange(text string, rng types.Range) (string, error) {
	start, end, err := rangeOffsets(text, rng)
	if err != nil {
		return "", err
	}
	return text[start:end], nil
}

func rangeOffsets(text string, rng types.Range) (int, int, error) {
	start, err := Offset(text, rng.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("range start: %w", err)
	}
	end, err := Offset(text, rng.End)
	if err != nil {
		return 0, 0, fmt.Errorf("range end: %w", err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("range %s ends before it starts", rng)
	}
	return start, end, nil
}

// ReplaceRange returns text with rng replaced by replacement
func ReplaceRange(text string, rng types.Range, replacement string) (string, error) {
	start, end, err := rangeOffsets(text, rng)
	if err != nil {
		return "", err
	}
	return text[:start] + replacement + text[end:], nil
}

// InsertAt inserts insert at the start of the zero-based line. A line past
// the end of the document appends.
func InsertAt(text string, line int, insert string) string {
	if line <= 0 {
		return insert + text
	}
	offset := 0
	for i := 0; i < line; i++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			if text != "" && !strings.HasSuffix(text, "\n") {
				return text + "\n" + insert
			}
			return text + insert
		}
		offset += next + 1
	}
	return text[:offset] + insert + text[offset:]
}

// ApplyEdits applies edits in order. Each range is resolved against the text
// produced by the edits before it.
func ApplyEdits(text string, edits []types.TextEdit) (string, error) {
	var err error
	for i, edit := range edits {
		text, err = ReplaceRange(text, edit.Range, edit.NewText)
		if err != nil {
			return "", fmt.Errorf("edit %d (%s): %w", i+1, edit.Description, err)
		}
	}
	return text, nil
}

// ImportInsertionLine is the line just after the last top-of-file import
// statement, or 0 when there is none.
func ImportInsertionLine(text string) int {
	return analysis.ImportInsertionLine(text)
}

// LineRange covers whole lines first..last including the final line break.
// When last is the final line the preceding line break is taken instead so
// no empty line is left behind.
func LineRange(text string, first, last int) types.Range {
	lines := strings.Split(text, "\n")
	if last+1 < len(lines) {
		return types.Range{
			Start: types.Position{Line: first},
			End:   types.Position{Line: last + 1},
		}
	}
	end := types.Position{Line: last, Character: PositionAt(lines[last], len(lines[last])).Character}
	if first == 0 {
		return types.Range{Start: types.Position{}, End: end}
	}
	prev := lines[first-1]
	return types.Range{
		Start: types.Position{Line: first - 1, Character: PositionAt(prev, len(prev)).Character},
		End:   end,
	}
}
