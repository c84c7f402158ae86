package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mamaar/jsxsplit/internal/cli"
	"github.com/mamaar/jsxsplit/internal/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp()
	if err := commands.NewRootCommand(app).ExecuteContext(ctx); err != nil {
		cli.PrintError(app.Stderr, err)
		stop()
		os.Exit(1)
	}
}
