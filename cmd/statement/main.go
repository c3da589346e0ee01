package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/FACorreiaa/finance-dashboard/internal/commands"
	"github.com/FACorreiaa/finance-dashboard/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Observability.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := commands.NewRootCommand(cfg, logger).Execute(); err != nil {
		os.Exit(1)
	}
}
