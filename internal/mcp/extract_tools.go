package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/jsxsplit/pkg/host"
	"github.com/mamaar/jsxsplit/pkg/refactor"
	"github.com/mamaar/jsxsplit/pkg/types"
)

// SelectionInput locates a selection. Lines and columns are 1-based and the
// end column is exclusive.
type SelectionInput struct {
	SourceFile  string `json:"source_file" jsonschema:"path to the source file (absolute or relative to workspace root)"`
	StartLine   int    `json:"start_line" jsonschema:"first line of the selection (1-based)"`
	StartColumn int    `json:"start_column" jsonschema:"column where the selection starts (1-based)"`
	EndLine     int    `json:"end_line" jsonschema:"last line of the selection (1-based)"`
	EndColumn   int    `json:"end_column" jsonschema:"column just past the end of the selection (1-based)"`
}

func (in SelectionInput) toRange() (types.Range, error) {
	if in.StartLine < 1 || in.StartColumn < 1 || in.EndLine < 1 || in.EndColumn < 1 {
		return types.Range{}, fmt.Errorf("lines and columns are 1-based")
	}
	rng := types.Range{
		Start: types.Position{Line: in.StartLine - 1, Character: in.StartColumn - 1},
		End:   types.Position{Line: in.EndLine - 1, Character: in.EndColumn - 1},
	}
	if rng.End.Line < rng.Start.Line || (rng.End.Line == rng.Start.Line && rng.End.Character < rng.Start.Character) {
		return types.Range{}, fmt.Errorf("selection ends before it starts")
	}
	return rng, nil
}

// --- analyze_selection ---

type AnalyzeSelectionInput struct {
	SourceFile  string `json:"source_file" jsonschema:"path to the source file (absolute or relative to workspace root)"`
	StartLine   int    `json:"start_line" jsonschema:"first line of the selection (1-based)"`
	StartColumn int    `json:"start_column" jsonschema:"column where the selection starts (1-based)"`
	EndLine     int    `json:"end_line" jsonschema:"last line of the selection (1-based)"`
	EndColumn   int    `json:"end_column" jsonschema:"column just past the end of the selection (1-based)"`
	Name        string `json:"name,omitempty" jsonschema:"component name used in the preview (defaults to NewComponent)"`
}

func (in AnalyzeSelectionInput) selection() SelectionInput {
	return SelectionInput{in.SourceFile, in.StartLine, in.StartColumn, in.EndLine, in.EndColumn}
}

// --- extract_component ---

type ExtractComponentInput struct {
	SourceFile  string `json:"source_file" jsonschema:"path to the source file (absolute or relative to workspace root)"`
	StartLine   int    `json:"start_line" jsonschema:"first line of the selection (1-based)"`
	StartColumn int    `json:"start_column" jsonschema:"column where the selection starts (1-based)"`
	EndLine     int    `json:"end_line" jsonschema:"last line of the selection (1-based)"`
	EndColumn   int    `json:"end_column" jsonschema:"column just past the end of the selection (1-based)"`
	Name        string `json:"name" jsonschema:"name of the new component, starting with a capital letter"`
	DryRun      bool   `json:"dry_run,omitempty" jsonschema:"return the plan and diff without writing any file"`
}

func (in ExtractComponentInput) selection() SelectionInput {
	return SelectionInput{in.SourceFile, in.StartLine, in.StartColumn, in.EndLine, in.EndColumn}
}

func resolveFile(ws *types.Workspace, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(ws.RootPath, path)
}

// openSelection loads the selected document into an editor buffer.
// The caller holds the state lock.
func openSelection(state *MCPServer, in SelectionInput) (*host.Buffer, error) {
	ws, err := state.GetWorkspace()
	if err != nil {
		return nil, err
	}
	rng, err := in.toRange()
	if err != nil {
		return nil, err
	}
	path := resolveFile(ws, in.SourceFile)
	content, err := state.Document(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in.SourceFile, err)
	}
	return host.NewBuffer(path, content, rng), nil
}

func registerExtractTools(s *mcpsdk.Server, state *MCPServer) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "analyze_selection",
		Description: "Check whether a JSX selection can be extracted into a component and preview the props, imports, reference and component source. Writes nothing.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in AnalyzeSelectionInput) (*mcpsdk.CallToolResult, any, error) {
		state.Lock()
		defer state.Unlock()

		buffer, err := openSelection(state, in.selection())
		if err != nil {
			return errResult(err), nil, nil
		}
		result, err := state.GetEngine().AnalyzeSelection(ctx, buffer, in.Name)
		if err != nil {
			return errResult(err), nil, nil
		}
		return textResult(result), nil, nil
	})

	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "extract_component",
		Description: "Extract a JSX selection into a new component file next to the source file. Free identifiers become props, needed imports move with the markup, and the selection is replaced with a reference to the component.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in ExtractComponentInput) (*mcpsdk.CallToolResult, any, error) {
		state.Lock()
		defer state.Unlock()

		buffer, err := openSelection(state, in.selection())
		if err != nil {
			return errResult(err), nil, nil
		}
		plan, err := state.GetEngine().ExtractComponent(ctx, refactor.ExtractRequest{
			Editor: buffer,
			Name:   in.Name,
			DryRun: in.DryRun,
		})
		if err != nil {
			return errResult(err), nil, nil
		}

		if plan.Applied {
			if err := state.fs.WriteFile(buffer.Path(), buffer.Content()); err != nil {
				return errResult(fmt.Errorf("write %s: %w", buffer.Path(), err)), nil, nil
			}
			state.SyncWorkspaceChanges(plan.AffectedFiles)
		}
		return textResult(newPlanResult(plan)), nil, nil
	})
}
