package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mamaar/jsxsplit/internal/config"
	"github.com/mamaar/jsxsplit/pkg/analysis"
	"github.com/mamaar/jsxsplit/pkg/host"
	"github.com/mamaar/jsxsplit/pkg/refactor"
	"github.com/mamaar/jsxsplit/pkg/types"
)

const (
	ServerName    = "jsxsplit-lsp"
	ServerVersion = "0.1.0"

	// ExtractComponentKind is the code action kind offered for JSX selections
	ExtractComponentKind = "refactor.extract.component"
	// ExtractComponentCommand takes (uri, range, name) and extracts the range
	ExtractComponentCommand = "jsxsplit.extractComponent"
)

// Options configure a Server
type Options struct {
	Logger *slog.Logger
	// FS reads documents the client has not opened and receives new
	// component files. Nil uses the OS.
	FS refactor.FileSystem
}

// Server represents the LSP server
type Server struct {
	// mu serialises every request so only one extraction runs at a time
	mu           sync.Mutex
	workspace    *types.Workspace
	engine       refactor.RefactorEngine
	fs           refactor.FileSystem
	logger       *slog.Logger
	rootPath     string
	initialized  bool
	capabilities ServerCapabilities

	client  *Connection
	pending map[string]string // request id -> label
}

// NewServer creates a new LSP server instance
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = host.OSFileSystem{}
	}
	return &Server{
		fs:      fsys,
		logger:  logger,
		pending: make(map[string]string),
		capabilities: ServerCapabilities{
			CodeActionProvider: &CodeActionOptions{
				CodeActionKinds: []string{ExtractComponentKind},
			},
			ExecuteCommandProvider: &ExecuteCommandOptions{
				Commands: []string{ExtractComponentCommand},
			},
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindIncremental,
				Save: &SaveOptions{
					IncludeText: false,
				},
			},
		},
	}
}

// Start starts the LSP server
func (s *Server) Start(ctx context.Context, port int) error {
	if port == 0 {
		return s.ServeStdio(ctx)
	}
	return s.ServeTCP(ctx, port)
}

// ServeStdio serves the LSP over stdio
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("starting LSP server on stdio")
	return s.serve(ctx, os.Stdin, os.Stdout)
}

// ServeTCP serves the LSP over TCP
func (s *Server) ServeTCP(ctx context.Context, port int) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("starting LSP server", "port", port)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("failed to accept connection", "error", err)
			continue
		}

		go func() {
			defer conn.Close()
			if err := s.serve(ctx, conn, conn); err != nil {
				s.logger.Error("error serving connection", "error", err)
			}
		}()
	}
}

// errExit ends the message loop after an exit notification
var errExit = errors.New("exit requested")

// serve handles the LSP protocol over the given reader/writer
func (s *Server) serve(ctx context.Context, reader io.Reader, writer io.Writer) error {
	connection := NewConnection(reader, writer, s.logger)

	s.mu.Lock()
	s.client = connection
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		message, err := connection.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("connection closed")
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		response, err := s.handleMessage(ctx, message)
		if errors.Is(err, errExit) {
			s.logger.Info("exit requested")
			return nil
		}
		if err != nil {
			s.logger.Error("error handling message", "method", message.Method, "error", err)
			continue
		}

		if response != nil {
			if err := connection.WriteMessage(response); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
	}
}

// handleMessage processes an LSP message and returns a response
func (s *Server) handleMessage(ctx context.Context, message *Message) (*Message, error) {
	s.logger.Debug("handling message", "method", message.Method, "id", message.ID)

	switch message.Method {
	case "initialize":
		return s.handleInitialize(message)
	case "initialized":
		return s.handleInitialized(message)
	case "shutdown":
		return s.handleShutdown(message)
	case "exit":
		return nil, errExit
	case "textDocument/didOpen":
		return s.handleTextDocumentDidOpen(message)
	case "textDocument/didChange":
		return s.handleTextDocumentDidChange(message)
	case "textDocument/didSave":
		return s.handleTextDocumentDidSave(message)
	case "textDocument/didClose":
		return s.handleTextDocumentDidClose(message)
	case "textDocument/codeAction":
		return s.handleTextDocumentCodeAction(ctx, message)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(ctx, message)
	case "":
		if message.ID != nil {
			return s.handleResponse(message)
		}
		return nil, nil
	default:
		s.logger.Debug("unhandled method", "method", message.Method)
		if message.ID != nil {
			return s.errorResponse(message.ID, -32601, "Method not found", message.Method)
		}
		return nil, nil
	}
}

func (s *Server) handleInitialize(message *Message) (*Message, error) {
	var params InitializeParams
	if err := json.Unmarshal(message.Params, &params); err != nil {
		return s.errorResponse(message.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	s.mu.Lock()
	switch {
	case params.RootURI != "":
		s.rootPath = uriToPath(params.RootURI)
	case params.RootPath != "":
		s.rootPath = params.RootPath
	case len(params.WorkspaceFolders) > 0:
		s.rootPath = uriToPath(params.WorkspaceFolders[0].URI)
	}
	s.logger.Info("initialize", "root", s.rootPath)
	s.mu.Unlock()

	result := InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
	}
	return s.successResponse(message.ID, result)
}

func (s *Server) handleInitialized(_ *Message) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rootPath == "" {
		s.logger.Warn("no root path set, extraction is disabled")
		return nil, nil
	}

	engine, err := s.createEngine(s.rootPath)
	if err != nil {
		s.logger.Error("failed to create engine", "root", s.rootPath, "error", err)
		return nil, nil
	}
	s.engine = engine
	s.workspace = types.NewWorkspace(s.rootPath)
	s.initialized = true
	s.logger.Info("workspace initialized", "root", s.rootPath)
	return nil, nil
}

func (s *Server) createEngine(root string) (refactor.RefactorEngine, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	oracle, err := analysis.NewTreeSitterOracle(cfg.OracleOptions(s.logger))
	if err != nil {
		return nil, err
	}
	return refactor.CreateEngineWithConfig(oracle, s.fs, cfg.EngineConfig(root), s.logger), nil
}

func (s *Server) handleShutdown(message *Message) (*Message, error) {
	s.mu.Lock()
	s.initialized = false
	s.workspace = nil
	s.engine = nil
	s.mu.Unlock()

	return s.successResponse(message.ID, nil)
}

func (s *Server) successResponse(id interface{}, result interface{}) (*Message, error) {
	return &Message{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}, nil
}

func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) (*Message, error) {
	return &Message{
		JSONRPC: "2.0",
		ID:      id,
		Error: &ResponseError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}, nil
}

// uriToPath converts a file URI to a file path
func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return strings.TrimPrefix(uri, "file://")
	}
	return filepath.FromSlash(u.Path)
}

// pathToURI converts a file path to a file URI
func pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
