package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mamaar/jsxsplit/internal/cli"
	internalmcp "github.com/mamaar/jsxsplit/internal/mcp"
)

func main() {
	var (
		workspaceFlag = flag.String("workspace", "", "Workspace to load at startup (optional)")
		debugFlag     = flag.Bool("debug", false, "Enable debug logging")
		versionFlag   = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Printf("jsxsplit-mcp v%s\n", cli.Version)
		fmt.Println("Model Context Protocol server for extracting JSX components")
		os.Exit(0)
	}

	// stdout carries the protocol, so logs go to stderr
	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := internalmcp.NewMCPServer(logger)
	defer state.Close()

	if *workspaceFlag != "" {
		if err := state.LoadWorkspace(ctx, *workspaceFlag); err != nil {
			logger.Error("failed to load workspace", "path", *workspaceFlag, "err", err)
			os.Exit(1)
		}
	}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "jsxsplit", Version: cli.Version}, nil)
	internalmcp.RegisterAllTools(server, state)

	logger.Info("starting MCP server on stdio")
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
