package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mamaar/jsxsplit/internal/lsp"
)

var (
	flagPort    = flag.Int("port", 0, "Port to listen on (0 for stdio)")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile = flag.String("logfile", "", "Log file path (default: /tmp/jsxsplit-lsp.log)")
	flagVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("%s version %s\n", lsp.ServerName, lsp.ServerVersion)
		os.Exit(0)
	}

	// stdout carries the protocol, so logs go to a file
	logFile := *flagLogFile
	if logFile == "" {
		logFile = "/tmp/jsxsplit-lsp.log"
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", logFile, err)
		os.Exit(1)
	}
	defer file.Close()

	level := slog.LevelInfo
	if *flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level, AddSource: *flagDebug}))

	wd, _ := os.Getwd()
	logger.Info("starting", "server", lsp.ServerName, "version", lsp.ServerVersion,
		"pid", os.Getpid(), "port", *flagPort, "cwd", wd, "logfile", logFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := lsp.NewServer(lsp.Options{Logger: logger})
	if err := server.Start(ctx, *flagPort); err != nil && ctx.Err() == nil {
		logger.Error("LSP server failed", "error", err)
		os.Exit(1)
	}
}
