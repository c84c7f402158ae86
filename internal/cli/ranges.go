package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mamaar/jsxsplit/pkg/types"
)

// ParseRange reads a selection given on the command line. Lines and columns
// are 1-based as printed by editors and the end column is exclusive. "L-L"
// selects whole lines including the last line break.
func ParseRange(s string) (types.Range, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return types.Range{}, fmt.Errorf("invalid range %q: expected L:C-L:C or L-L", s)
	}

	if !strings.Contains(from, ":") && !strings.Contains(to, ":") {
		start, err := parseNumber(from, "start line")
		if err != nil {
			return types.Range{}, err
		}
		end, err := parseNumber(to, "end line")
		if err != nil {
			return types.Range{}, err
		}
		if end < start {
			return types.Range{}, fmt.Errorf("invalid range %q: ends before it starts", s)
		}
		return types.Range{
			Start: types.Position{Line: start - 1},
			End:   types.Position{Line: end},
		}, nil
	}

	start, err := parsePosition(from)
	if err != nil {
		return types.Range{}, fmt.Errorf("invalid range start: %w", err)
	}
	end, err := parsePosition(to)
	if err != nil {
		return types.Range{}, fmt.Errorf("invalid range end: %w", err)
	}
	if end.Line < start.Line || (end.Line == start.Line && end.Character < start.Character) {
		return types.Range{}, fmt.Errorf("invalid range %q: ends before it starts", s)
	}
	return types.Range{Start: start, End: end}, nil
}

func parsePosition(s string) (types.Position, error) {
	line, col, ok := strings.Cut(s, ":")
	if !ok {
		return types.Position{}, fmt.Errorf("%q is not L:C", s)
	}
	l, err := parseNumber(line, "line")
	if err != nil {
		return types.Position{}, err
	}
	c, err := parseNumber(col, "column")
	if err != nil {
		return types.Position{}, err
	}
	return types.Position{Line: l - 1, Character: c - 1}, nil
}

func parseNumber(s, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", what, n)
	}
	return n, nil
}
