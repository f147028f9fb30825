package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"mmdu/app"
	"mmdu/config"
	"mmdu/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(2)
	}

	logger.Init(cfg.LogLevel)

	// Handle graceful shutdown; a cancelled context stops the running
	// mmapplypolicy child as well.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if len(cfg.Dirs) > 0 {
		for _, dir := range cfg.Dirs {
			run(ctx, dir, cfg)
		}
		return
	}

	if isatty.IsTerminal(os.Stdin.Fd()) {
		logger.Warn("input is read from terminal")
		logger.Warn("only experts do this on purpose")
		logger.Warn("you may have forgotten to either")
		logger.Warn("- specify directories on the command line or")
		logger.Warn("- pipe data into this tool")
		logger.Warn("press CTRL-D or CTRL-C to exit")
	}

	stdin := bufio.NewScanner(os.Stdin)
	for stdin.Scan() {
		run(ctx, stdin.Text(), cfg)
	}
	if err := stdin.Err(); err != nil {
		logger.Errorf("Reading directories from stdin: %v", err)
		os.Exit(1)
	}
}

// run processes a single directory; a failure skips to the next one.
func run(ctx context.Context, dir string, cfg *config.Config) {
	if err := app.Run(ctx, dir, cfg); err != nil {
		logger.Errorf("Skipping directory %s: %v", dir, err)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Interrupt signal received. Shutting down...")
	cancel()
}
