package refactor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// Partitioner decides, for every free identifier of a fragment, whether the
// new component receives it as a prop or imports it itself.
type Partitioner struct {
	oracle Oracle
	logger *slog.Logger
}

func NewPartitioner(oracle Oracle, logger *slog.Logger) *Partitioner {
	return &Partitioner{oracle: oracle, logger: logger}
}

// Partition analyses skeleton, a parameterless rendering of the new
// component, and classifies its free identifiers against the imports of
// document. Names come out in first-seen order, each exactly once.
func (p *Partitioner) Partition(ctx context.Context, skeleton, document string) (*types.Classification, error) {
	free, err := p.oracle.FindFreeIdentifiers(ctx, skeleton)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, types.WrapError(types.InternalAnalysisFailure, err, "could not analyse the extracted component")
	}

	imports := analysis.ParseImports(document)
	classification := &types.Classification{}
	for _, id := range free {
		if _, seen := classification.Lookup(id.Name); seen {
			continue
		}
		binding := types.Binding{Name: id.Name}
		if stmt, ok := analysis.FindImport(imports, id.Name); ok {
			if entry, ok := stmt.Entry(id.Name); ok {
				binding.Import = &entry
			}
		}
		classification.Add(binding)
		p.logger.Debug("classified identifier", "name", id.Name, "prop", binding.IsProp())
	}
	return classification, nil
}
