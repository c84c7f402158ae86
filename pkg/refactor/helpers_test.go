package refactor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOracle(t *testing.T) *analysis.TreeSitterOracle {
	t.Helper()
	opts := analysis.DefaultOptions()
	opts.Logger = testLogger()
	oracle, err := analysis.NewTreeSitterOracle(opts)
	require.NoError(t, err)
	return oracle
}

func rng(startLine, startChar, endLine, endChar int) types.Range {
	return types.Range{
		Start: types.Position{Line: startLine, Character: startChar},
		End:   types.Position{Line: endLine, Character: endChar},
	}
}
