package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mamaar/jsxsplit/pkg/host"
	"github.com/mamaar/jsxsplit/pkg/types"
)

const appURI = "file:///ws/src/App.jsx"

const appSource = `import React from 'react';
import {Foo} from './Foo';
import Bar from './Bar';

const App = ({title}) => (
  <div>
    <Bar/>
    <Foo label={title}/>
  </div>
);

export default App;
`

const wantApp = `import React from 'react';
import Bar from './Bar';
import Card from './Card';

const App = ({title}) => (
  <div>
    <Bar/>
    <Card title={title}/>
  </div>
);

export default App;
`

var fooRange = Range{
	Start: Position{Line: 7, Character: 4},
	End:   Position{Line: 7, Character: 24},
}

func request(t *testing.T, id interface{}, method string, params interface{}) *Message {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("Failed to marshal params: %v", err)
	}
	return &Message{JSONRPC: "2.0", ID: id, Method: method, Params: raw}
}

func newInitializedServer(t *testing.T, files map[string]string) (*Server, *host.MemFileSystem) {
	t.Helper()
	fsys := host.NewMemFileSystem(files)
	server := NewServer(Options{FS: fsys})

	response, err := server.handleInitialize(request(t, 1, "initialize", InitializeParams{RootURI: "file:///ws"}))
	if err != nil || response.Error != nil {
		t.Fatalf("Initialize failed: %v %v", err, response.Error)
	}
	if _, err := server.handleInitialized(request(t, nil, "initialized", struct{}{})); err != nil {
		t.Fatalf("Initialized failed: %v", err)
	}
	if !server.initialized {
		t.Fatal("Expected server to be initialized")
	}
	return server, fsys
}

func openApp(t *testing.T, server *Server) {
	t.Helper()
	_, err := server.handleTextDocumentDidOpen(request(t, nil, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: appURI, LanguageID: "javascriptreact", Version: 1, Text: appSource},
	}))
	if err != nil {
		t.Fatalf("didOpen failed: %v", err)
	}
}

func codeActions(t *testing.T, server *Server, rng Range, only ...string) []CodeAction {
	t.Helper()
	params := CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: appURI},
		Range:        rng,
		Context:      CodeActionContext{Only: only},
	}
	response, err := server.handleTextDocumentCodeAction(context.Background(), request(t, 2, "textDocument/codeAction", params))
	if err != nil {
		t.Fatalf("Code action failed: %v", err)
	}
	if response.Error != nil {
		t.Fatalf("Code action returned error: %v", response.Error)
	}
	actions, ok := response.Result.([]CodeAction)
	if !ok {
		t.Fatalf("Expected []CodeAction, got %T", response.Result)
	}
	return actions
}

func TestServer_Initialize(t *testing.T) {
	server := NewServer(Options{})

	response, err := server.handleInitialize(request(t, 1, "initialize", InitializeParams{RootURI: "file:///test/workspace"}))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if response.Error != nil {
		t.Fatalf("Initialize returned error: %v", response.Error)
	}

	result, ok := response.Result.(InitializeResult)
	if !ok {
		t.Fatalf("Expected InitializeResult, got %T", response.Result)
	}
	if result.ServerInfo.Name != ServerName {
		t.Errorf("Expected server name '%s', got '%s'", ServerName, result.ServerInfo.Name)
	}
	if kinds := result.Capabilities.CodeActionProvider.CodeActionKinds; len(kinds) != 1 || kinds[0] != ExtractComponentKind {
		t.Errorf("Unexpected code action kinds %v", kinds)
	}
	if cmds := result.Capabilities.ExecuteCommandProvider.Commands; len(cmds) != 1 || cmds[0] != ExtractComponentCommand {
		t.Errorf("Unexpected commands %v", cmds)
	}
	if server.rootPath != "/test/workspace" {
		t.Errorf("Expected root path '/test/workspace', got '%s'", server.rootPath)
	}
}

func TestServer_CodeActions(t *testing.T) {
	server, _ := newInitializedServer(t, nil)
	openApp(t, server)

	actions := codeActions(t, server, fooRange)
	if len(actions) != 1 {
		t.Fatalf("Expected one code action, got %d", len(actions))
	}

	action := actions[0]
	if action.Kind != ExtractComponentKind {
		t.Errorf("Expected kind %s, got %s", ExtractComponentKind, action.Kind)
	}
	if !strings.Contains(action.Title, "NewComponent") || !strings.Contains(action.Title, "props: title") {
		t.Errorf("Unexpected title %q", action.Title)
	}
	if action.Command == nil || action.Command.Command != ExtractComponentCommand {
		t.Fatalf("Expected command %s, got %+v", ExtractComponentCommand, action.Command)
	}
	if len(action.Command.Arguments) != 3 || action.Command.Arguments[2] != "NewComponent" {
		t.Errorf("Unexpected arguments %v", action.Command.Arguments)
	}
}

func TestServer_CodeActions_NotOffered(t *testing.T) {
	server, _ := newInitializedServer(t, nil)
	openApp(t, server)

	tests := []struct {
		name  string
		rng   Range
		only  []string
		setup func()
	}{
		{name: "partial tag", rng: Range{Start: Position{Line: 7, Character: 4}, End: Position{Line: 7, Character: 14}}},
		{name: "empty range", rng: Range{Start: Position{Line: 7, Character: 4}, End: Position{Line: 7, Character: 4}}},
		{name: "other kind requested", rng: fooRange, only: []string{"quickfix"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if actions := codeActions(t, server, tt.rng, tt.only...); len(actions) != 0 {
				t.Errorf("Expected no code actions, got %v", actions)
			}
		})
	}

	if actions := codeActions(t, server, fooRange, "refactor"); len(actions) != 1 {
		t.Errorf("Expected the refactor filter to match, got %d actions", len(actions))
	}
}

func TestServer_CodeActions_NotInitialized(t *testing.T) {
	server := NewServer(Options{FS: host.NewMemFileSystem(nil)})
	if actions := codeActions(t, server, fooRange); len(actions) != 0 {
		t.Errorf("Expected no code actions before initialization, got %d", len(actions))
	}
}

func TestServer_CodeActions_PicksFreeName(t *testing.T) {
	server, _ := newInitializedServer(t, map[string]string{
		"/ws/src/App.jsx":          appSource,
		"/ws/src/NewComponent.jsx": "export default () => null;\n",
	})

	actions := codeActions(t, server, fooRange)
	if len(actions) != 1 {
		t.Fatalf("Expected one code action, got %d", len(actions))
	}
	if name := actions[0].Command.Arguments[2]; name != "NewComponent2" {
		t.Errorf("Expected NewComponent2, got %v", name)
	}
}

func TestServer_ExecuteCommand(t *testing.T) {
	server, fsys := newInitializedServer(t, nil)
	openApp(t, server)

	var sent bytes.Buffer
	server.client = NewConnection(strings.NewReader(""), &sent, nil)

	params := map[string]interface{}{
		"command":   ExtractComponentCommand,
		"arguments": []interface{}{appURI, fooRange, "Card"},
	}
	response, err := server.handleExecuteCommand(context.Background(), request(t, 3, "workspace/executeCommand", params))
	if err != nil {
		t.Fatalf("Execute command failed: %v", err)
	}
	if response.Error != nil {
		t.Fatalf("Execute command returned error: %+v", response.Error)
	}

	plan, ok := response.Result.(*types.RefactoringPlan)
	if !ok {
		t.Fatalf("Expected *types.RefactoringPlan, got %T", response.Result)
	}
	if !plan.Applied || plan.Unit.Name != "Card" {
		t.Errorf("Unexpected plan %+v", plan)
	}

	card, err := fsys.ReadFile("/ws/src/Card.jsx")
	if err != nil {
		t.Fatalf("Expected Card.jsx to be written: %v", err)
	}
	if !strings.Contains(card, "const Card = ({title}) => (") {
		t.Errorf("Unexpected component source:\n%s", card)
	}

	doc, _ := server.workspace.Document("/ws/src/App.jsx")
	if doc.Content != wantApp {
		t.Errorf("Tracked document not updated:\n%s", doc.Content)
	}

	// the client receives the new document as a workspace/applyEdit request
	applyEdit, err := NewConnection(&sent, io.Discard, nil).ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read applyEdit request: %v", err)
	}
	if applyEdit.Method != "workspace/applyEdit" {
		t.Fatalf("Expected workspace/applyEdit, got %s", applyEdit.Method)
	}
	var editParams ApplyWorkspaceEditParams
	if err := json.Unmarshal(applyEdit.Params, &editParams); err != nil {
		t.Fatalf("Failed to decode applyEdit params: %v", err)
	}
	edits := editParams.Edit.Changes[appURI]
	if len(edits) != 1 || edits[0].NewText != wantApp {
		t.Fatalf("Unexpected edits %+v", edits)
	}
	if edits[0].Range.End != (Position{Line: 12, Character: 0}) {
		t.Errorf("Expected the edit to cover the whole document, got %+v", edits[0].Range)
	}

	if len(server.pending) != 1 {
		t.Fatalf("Expected one pending request, got %d", len(server.pending))
	}
	reply := &Message{JSONRPC: "2.0", ID: applyEdit.ID, Result: map[string]interface{}{"applied": true}}
	if _, err := server.handleMessage(context.Background(), reply); err != nil {
		t.Fatalf("Failed to handle reply: %v", err)
	}
	if len(server.pending) != 0 {
		t.Errorf("Expected pending requests to be cleared, got %d", len(server.pending))
	}
}

func TestServer_ExecuteCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		args     []interface{}
		wantCode int
		wantData interface{}
	}{
		{"unknown command", "jsxsplit.other", []interface{}{appURI, fooRange, "Card"}, codeInvalidParams, "jsxsplit.other"},
		{"missing range", ExtractComponentCommand, []interface{}{appURI}, codeInvalidParams, nil},
		{"invalid name", ExtractComponentCommand, []interface{}{appURI, fooRange, "card"}, codeRequestFailed, "InvalidName"},
		{"no name", ExtractComponentCommand, []interface{}{appURI, fooRange}, codeRequestFailed, "InvalidName"},
		{"unknown file", ExtractComponentCommand, []interface{}{"file:///ws/src/Missing.jsx", fooRange, "Card"}, codeRequestFailed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, fsys := newInitializedServer(t, nil)
			openApp(t, server)
			params := map[string]interface{}{"command": tt.command, "arguments": tt.args}

			response, err := server.handleExecuteCommand(context.Background(), request(t, 4, "workspace/executeCommand", params))
			if err != nil {
				t.Fatalf("Execute command failed: %v", err)
			}
			if response.Error == nil {
				t.Fatalf("Expected an error response, got %+v", response.Result)
			}
			if response.Error.Code != tt.wantCode {
				t.Errorf("Expected code %d, got %d (%s)", tt.wantCode, response.Error.Code, response.Error.Message)
			}
			if tt.wantData != nil && response.Error.Data != tt.wantData {
				t.Errorf("Expected data %v, got %v", tt.wantData, response.Error.Data)
			}
			if len(fsys.Paths()) != 0 {
				t.Errorf("Expected no files written, got %v", fsys.Paths())
			}
		})
	}
}

func TestServer_ExecuteCommand_NotInitialized(t *testing.T) {
	server := NewServer(Options{FS: host.NewMemFileSystem(nil)})
	params := map[string]interface{}{
		"command":   ExtractComponentCommand,
		"arguments": []interface{}{appURI, fooRange, "Card"},
	}
	response, _ := server.handleExecuteCommand(context.Background(), request(t, 5, "workspace/executeCommand", params))
	if response.Error == nil || response.Error.Code != codeServerNotReady {
		t.Errorf("Expected server not ready error, got %+v", response.Error)
	}
}

func TestServer_DidChange(t *testing.T) {
	server, _ := newInitializedServer(t, nil)
	openApp(t, server)

	change := func(changes ...TextDocumentContentChangeEvent) {
		t.Helper()
		_, err := server.handleTextDocumentDidChange(request(t, nil, "textDocument/didChange", DidChangeTextDocumentParams{
			TextDocument:   VersionedTextDocumentIdentifier{TextDocumentIdentifier: TextDocumentIdentifier{URI: appURI}, Version: 2},
			ContentChanges: changes,
		}))
		if err != nil {
			t.Fatalf("didChange failed: %v", err)
		}
	}

	change(TextDocumentContentChangeEvent{Text: "const a = <b/>;\n"})
	change(
		TextDocumentContentChangeEvent{Range: &Range{Start: Position{Line: 0, Character: 6}, End: Position{Line: 0, Character: 7}}, Text: "x"},
		TextDocumentContentChangeEvent{Range: &Range{Start: Position{Line: 0, Character: 11}, End: Position{Line: 0, Character: 12}}, Text: "c"},
	)

	doc, ok := server.workspace.Document("/ws/src/App.jsx")
	if !ok {
		t.Fatal("Expected document to be tracked")
	}
	if doc.Content != "const x = <c/>;\n" {
		t.Errorf("Unexpected content %q", doc.Content)
	}
	if doc.Version != 3 {
		t.Errorf("Expected version 3, got %d", doc.Version)
	}

	_, err := server.handleTextDocumentDidClose(request(t, nil, "textDocument/didClose", DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: appURI},
	}))
	if err != nil {
		t.Fatalf("didClose failed: %v", err)
	}
	if _, ok := server.workspace.Document("/ws/src/App.jsx"); ok {
		t.Error("Expected document to be evicted on close")
	}
}

func TestConnection_ReadWriteMessage(t *testing.T) {
	jsonContent := "{\"jsonrpc\":\"2.0\",\"method\":\"test\",\"id\":1}"
	reader := strings.NewReader(fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(jsonContent), jsonContent))
	writer := &strings.Builder{}

	conn := NewConnection(reader, writer, nil)

	message, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	if message.JSONRPC != "2.0" {
		t.Errorf("Expected JSONRPC '2.0', got '%s'", message.JSONRPC)
	}
	if message.Method != "test" {
		t.Errorf("Expected method 'test', got '%s'", message.Method)
	}

	response := &Message{
		JSONRPC: "2.0",
		ID:      1,
		Result:  "success",
	}
	if err := conn.WriteMessage(response); err != nil {
		t.Fatalf("Failed to write message: %v", err)
	}

	output := writer.String()
	if !strings.Contains(output, "Content-Length:") {
		t.Error("Expected Content-Length header in output")
	}
	if !strings.Contains(output, "\"result\":\"success\"") {
		t.Error("Expected result in JSON output")
	}
}

func TestServer_Serve(t *testing.T) {
	var input bytes.Buffer
	in := NewConnection(strings.NewReader(""), &input, nil)
	for _, msg := range []*Message{
		request(t, 1, "initialize", InitializeParams{RootURI: "file:///ws"}),
		request(t, nil, "initialized", struct{}{}),
		request(t, 2, "shutdown", nil),
		request(t, nil, "exit", nil),
	} {
		if err := in.WriteMessage(msg); err != nil {
			t.Fatalf("Failed to frame message: %v", err)
		}
	}

	var output bytes.Buffer
	server := NewServer(Options{FS: host.NewMemFileSystem(nil)})
	if err := server.serve(context.Background(), &input, &output); err != nil {
		t.Fatalf("Expected clean exit, got %v", err)
	}

	out := NewConnection(&output, io.Discard, nil)
	first, err := out.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read initialize response: %v", err)
	}
	if first.Error != nil || !strings.Contains(fmt.Sprint(first.Result), ServerName) {
		t.Errorf("Unexpected initialize response %+v", first)
	}
	if _, err := out.ReadMessage(); err != nil {
		t.Fatalf("Failed to read shutdown response: %v", err)
	}
	if server.initialized {
		t.Error("Expected server to be shut down")
	}
}

func TestURIConversion(t *testing.T) {
	if got := uriToPath("file:///ws/my%20app/App.jsx"); got != "/ws/my app/App.jsx" {
		t.Errorf("uriToPath = %q", got)
	}
	if got := pathToURI("/ws/my app/App.jsx"); got != "file:///ws/my%20app/App.jsx" {
		t.Errorf("pathToURI = %q", got)
	}
}
