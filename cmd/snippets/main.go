// Package main is the entrypoint for the snippets CLI.
// The CLI stores named snippets of text and gets them back by keyword.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/canonica-labs/snippets/internal/cli"
)

// Set by ldflags at build time.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.New().Execute(ctx)
	stop()
	os.Exit(code)
}
