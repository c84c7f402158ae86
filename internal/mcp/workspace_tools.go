package mcp

import (
	"context"
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// --- load_workspace ---

type LoadWorkspaceInput struct {
	Path string `json:"path" jsonschema:"absolute path to the workspace root"`
}

type LoadWorkspaceOutput struct {
	RootPath        string `json:"root_path"`
	Framework       string `json:"framework"`
	FrameworkModule string `json:"framework_module"`
	Watching        bool   `json:"watching"`
}

// --- workspace_status ---

type WorkspaceStatusInput struct{}

type WorkspaceStatusOutput struct {
	Loaded    bool     `json:"loaded"`
	RootPath  string   `json:"root_path,omitempty"`
	Watching  bool     `json:"watching"`
	Documents []string `json:"documents,omitempty"`
}

func registerWorkspaceTools(s *mcpsdk.Server, state *MCPServer) {
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "load_workspace",
		Description: "Load a JSX workspace for refactoring. Must be called before any other tool. Reads .jsxsplit.yaml and .env from the root.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in LoadWorkspaceInput) (*mcpsdk.CallToolResult, any, error) {
		if err := state.LoadWorkspace(ctx, in.Path); err != nil {
			return errResult(err), nil, nil
		}

		state.Lock()
		defer state.Unlock()
		ws, _ := state.GetWorkspace()
		return textResult(LoadWorkspaceOutput{
			RootPath:        ws.RootPath,
			Framework:       state.config.Framework.Name,
			FrameworkModule: state.config.Framework.Module,
			Watching:        state.watcher != nil,
		}), nil, nil
	})

	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "workspace_status",
		Description: "Return the current workspace status: loaded state, root path, and the documents held in memory.",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, in WorkspaceStatusInput) (*mcpsdk.CallToolResult, any, error) {
		state.Lock()
		defer state.Unlock()

		ws, err := state.GetWorkspace()
		if err != nil {
			return textResult(WorkspaceStatusOutput{Loaded: false}), nil, nil
		}
		out := WorkspaceStatusOutput{
			Loaded:    true,
			RootPath:  ws.RootPath,
			Watching:  state.watcher != nil,
			Documents: ws.Paths(),
		}
		sort.Strings(out.Documents)
		return textResult(out), nil, nil
	})
}
