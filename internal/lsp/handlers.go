package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mamaar/jsxsplit/pkg/host"
	"github.com/mamaar/jsxsplit/pkg/refactor"
	"github.com/mamaar/jsxsplit/pkg/types"
	"github.com/mamaar/jsxsplit/pkg/watch"
)

const defaultComponentName = "NewComponent"

func (s *Server) handleTextDocumentDidOpen(message *Message) (*Message, error) {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil {
		return nil, nil
	}
	path := uriToPath(params.TextDocument.URI)
	s.workspace.Put(path, params.TextDocument.Text)
	s.logger.Debug("document opened", "path", path)
	return nil, nil
}

func (s *Server) handleTextDocumentDidChange(message *Message) (*Message, error) {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace == nil {
		return nil, nil
	}

	path := uriToPath(params.TextDocument.URI)
	doc, ok := s.workspace.Document(path)
	if !ok {
		return nil, fmt.Errorf("change for unopened document %s", path)
	}

	content := doc.Content
	for _, change := range params.ContentChanges {
		if change.Range == nil {
			content = change.Text
			continue
		}
		next, err := refactor.ReplaceRange(content, toRange(*change.Range), change.Text)
		if err != nil {
			// out of sync; drop the copy so it is read from disk next time
			s.workspace.Evict(path)
			return nil, fmt.Errorf("failed to apply change to %s: %w", path, err)
		}
		content = next
	}
	s.workspace.Put(path, content)
	return nil, nil
}

func (s *Server) handleTextDocumentDidSave(message *Message) (*Message, error) {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		return nil, err
	}
	s.logger.Debug("document saved", "uri", params.TextDocument.URI)
	return nil, nil
}

func (s *Server) handleTextDocumentDidClose(message *Message) (*Message, error) {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspace != nil {
		s.workspace.Evict(uriToPath(params.TextDocument.URI))
	}
	return nil, nil
}

// handleTextDocumentCodeAction offers an extraction when the selection is a
// valid JSX fragment
func (s *Server) handleTextDocumentCodeAction(ctx context.Context, message *Message) (*Message, error) {
	var params CodeActionParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		return s.errorResponse(message.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actions := []CodeAction{}
	if !s.initialized || !wantsKind(params.Context.Only, ExtractComponentKind) {
		return s.successResponse(message.ID, actions)
	}

	path := uriToPath(params.TextDocument.URI)
	rng := toRange(params.Range)
	if !watch.IsSource(path) || rng.IsEmpty() {
		return s.successResponse(message.ID, actions)
	}

	text, err := s.documentText(path)
	if err != nil {
		s.logger.Warn("failed to read document", "path", path, "error", err)
		return s.successResponse(message.ID, actions)
	}

	name := s.freeComponentName(path)
	result, err := s.engine.AnalyzeSelection(ctx, host.NewBuffer(path, text, rng), name)
	if err != nil {
		s.logger.Debug("selection cannot be extracted", "path", path, "range", rng.String(), "error", err)
		return s.successResponse(message.ID, actions)
	}

	title := "Extract to component " + name
	if len(result.Props) > 0 {
		title += fmt.Sprintf(" (props: %s)", strings.Join(result.Props, ", "))
	}
	actions = append(actions, CodeAction{
		Title: title,
		Kind:  ExtractComponentKind,
		Command: &Command{
			Title:     title,
			Command:   ExtractComponentCommand,
			Arguments: []interface{}{params.TextDocument.URI, params.Range, name},
		},
	})
	return s.successResponse(message.ID, actions)
}

// extractArgs are the arguments of ExtractComponentCommand
type extractArgs struct {
	URI   string
	Range Range
	Name  string
}

func decodeExtractArgs(raw []json.RawMessage) (extractArgs, error) {
	var args extractArgs
	if len(raw) < 2 {
		return args, fmt.Errorf("%s expects (uri, range, name), got %d arguments", ExtractComponentCommand, len(raw))
	}
	if err := json.Unmarshal(raw[0], &args.URI); err != nil {
		return args, fmt.Errorf("invalid uri argument: %w", err)
	}
	if err := json.Unmarshal(raw[1], &args.Range); err != nil {
		return args, fmt.Errorf("invalid range argument: %w", err)
	}
	if len(raw) > 2 {
		if err := json.Unmarshal(raw[2], &args.Name); err != nil {
			return args, fmt.Errorf("invalid name argument: %w", err)
		}
	}
	return args, nil
}

// handleExecuteCommand runs an extraction, writes the new component and asks
// the client to replace the origin document
func (s *Server) handleExecuteCommand(ctx context.Context, message *Message) (*Message, error) {
	var params ExecuteCommandParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		return s.errorResponse(message.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if params.Command != ExtractComponentCommand {
		return s.errorResponse(message.ID, codeInvalidParams, "Unknown command", params.Command)
	}
	args, err := decodeExtractArgs(params.Arguments)
	if err != nil {
		return s.errorResponse(message.ID, codeInvalidParams, err.Error(), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return s.errorResponse(message.ID, codeServerNotReady, "Server not initialized", nil)
	}

	path := uriToPath(args.URI)
	before, err := s.documentText(path)
	if err != nil {
		return s.errorResponse(message.ID, codeRequestFailed, fmt.Sprintf("failed to read %s", path), err.Error())
	}

	buffer := host.NewBuffer(path, before, toRange(args.Range))
	plan, err := s.engine.ExtractComponent(ctx, refactor.ExtractRequest{
		Editor: buffer,
		Name:   args.Name,
	})
	if err != nil {
		var refErr *types.RefactorError
		if errors.As(err, &refErr) {
			return s.errorResponse(message.ID, codeRequestFailed, refErr.Message, refErr.Type.String())
		}
		return s.errorResponse(message.ID, codeInternalError, err.Error(), nil)
	}

	after := buffer.Content()
	if _, tracked := s.workspace.Document(path); tracked {
		s.workspace.Put(path, after)
	}

	edit := WorkspaceEdit{
		Changes: map[string][]TextEdit{
			args.URI: {{Range: wholeDocument(before), NewText: after}},
		},
	}
	if err := s.requestApplyEdit("Extract component "+plan.Unit.Name, edit); err != nil {
		s.logger.Error("failed to send workspace edit", "error", err)
	}

	s.logger.Info("extracted component", "name", plan.Unit.Name, "path", plan.Unit.Path, "plan", plan.ID)
	return s.successResponse(message.ID, plan)
}

// requestApplyEdit sends workspace/applyEdit to the client. The reply is
// handled by handleResponse.
func (s *Server) requestApplyEdit(label string, edit WorkspaceEdit) error {
	if s.client == nil {
		return errors.New("no client connection")
	}
	raw, err := json.Marshal(ApplyWorkspaceEditParams{Label: label, Edit: edit})
	if err != nil {
		return err
	}
	id := uuid.NewString()
	s.pending[id] = label
	return s.client.WriteMessage(&Message{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "workspace/applyEdit",
		Params:  raw,
	})
}

// handleResponse records the client's reply to a server request
func (s *Server) handleResponse(message *Message) (*Message, error) {
	id := fmt.Sprint(message.ID)

	s.mu.Lock()
	label, ok := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("response to unknown request", "id", id)
		return nil, nil
	}
	if message.Error != nil {
		s.logger.Warn("client rejected edit", "label", label, "error", message.Error.Message)
		return nil, nil
	}

	raw, err := json.Marshal(message.Result)
	if err != nil {
		return nil, err
	}
	var result ApplyWorkspaceEditResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("invalid applyEdit result: %w", err)
	}
	if !result.Applied {
		s.logger.Warn("client did not apply edit", "label", label, "reason", result.FailureReason)
	}
	return nil, nil
}

// documentText prefers the client's copy of path over the file on disk
func (s *Server) documentText(path string) (string, error) {
	if doc, ok := s.workspace.Document(path); ok {
		return doc.Content, nil
	}
	return s.fs.ReadFile(path)
}

// freeComponentName picks the first default name whose file does not exist
func (s *Server) freeComponentName(origin string) string {
	for i := 1; i < 100; i++ {
		name := defaultComponentName
		if i > 1 {
			name += strconv.Itoa(i)
		}
		exists, err := s.fs.Exists(refactor.ComponentPath(origin, name))
		if err != nil || !exists {
			return name
		}
	}
	return defaultComponentName
}

// wantsKind reports whether kind passes the client's "only" filter
func wantsKind(only []string, kind string) bool {
	if len(only) == 0 {
		return true
	}
	for _, o := range only {
		if kind == o || strings.HasPrefix(kind, o+".") {
			return true
		}
	}
	return false
}

func toRange(r Range) types.Range {
	return types.Range{
		Start: types.Position{Line: r.Start.Line, Character: r.Start.Character},
		End:   types.Position{Line: r.End.Line, Character: r.End.Character},
	}
}

func fromPosition(p types.Position) Position {
	return Position{Line: p.Line, Character: p.Character}
}

func wholeDocument(text string) Range {
	return Range{End: fromPosition(refactor.PositionAt(text, len(text)))}
}
