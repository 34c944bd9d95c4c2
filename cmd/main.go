package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/spotclean/internal/shared"
)

const version = "0.3.0"

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(ctx, os.Args); err != nil {
		kind := shared.Classify(err)
		logger.Error("command failed", "kind", kind, "error", err)
		stop()
		os.Exit(kind.ExitCode())
	}
}
