package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logger := NewLoggerFromEnv()

	opts, err := ParseCLIArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, usageText)
		return 2
	}

	app, err := NewApp(opts, os.Stdout, logger)
	if err != nil {
		return reportError(err, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received shutdown signal, stopping...")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		return reportError(err, logger)
	}
	return 0
}

func reportError(err error, logger *Logger) int {
	var usageErr UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, usageText)
		return 2
	}

	logger.Error("%v", err)
	return 1
}
