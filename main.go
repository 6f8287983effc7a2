package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/transientskp/tkpcat/cmd"
	"github.com/transientskp/tkpcat/internal/runtime"
)

// buildDate and version are set at build time with -ldflags "-X main.version=..."
var buildDate string
var version string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := runtime.New(version, buildDate)
	rootCmd := cmd.RootCommand(rt)

	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	_ = rt.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
