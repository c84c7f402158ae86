package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/jsxsplit/pkg/types"
)

// PlanResult is the structured output returned by extract_component.
type PlanResult struct {
	PlanID         string   `json:"plan_id"`
	Component      string   `json:"component"`
	ComponentPath  string   `json:"component_path"`
	Props          []string `json:"props"`
	Imports        []string `json:"imports"`
	MissingImports []string `json:"missing_imports,omitempty"`
	Reference      string   `json:"reference"`
	AffectedFiles  []string `json:"affected_files"`
	Applied        bool     `json:"applied"`
	Diff           string   `json:"diff,omitempty"`
}

func newPlanResult(plan *types.RefactoringPlan) *PlanResult {
	out := &PlanResult{
		PlanID:        plan.ID,
		Component:     plan.Unit.Name,
		ComponentPath: plan.Unit.Path,
		Props:         plan.Unit.Props,
		Imports:       importLines(plan.Unit.Imports),
		Reference:     plan.Unit.Reference,
		AffectedFiles: plan.AffectedFiles,
		Applied:       plan.Applied,
		Diff:          plan.Diff,
	}
	if len(plan.MissingImports) > 0 {
		out.MissingImports = importLines(plan.MissingImports)
	}
	if out.Props == nil {
		out.Props = []string{}
	}
	return out
}

func importLines(entries []types.ImportEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.String())
	}
	return lines
}

// textResult is a convenience that marshals v to JSON and wraps it in a
// CallToolResult with a single TextContent block.
func textResult(v any) *mcpsdk.CallToolResult {
	b, _ := json.MarshalIndent(v, "", "  ")
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a CallToolResult that signals an error. Refactoring
// errors carry their kind so callers can tell them apart.
func errResult(err error) *mcpsdk.CallToolResult {
	var refErr *types.RefactorError
	if errors.As(err, &refErr) {
		err = fmt.Errorf("%s: %w", refErr.Type, err)
	}
	r := &mcpsdk.CallToolResult{}
	r.SetError(err)
	return r
}
