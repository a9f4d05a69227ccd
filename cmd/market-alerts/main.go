package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"market-alerts/internal/cli"
	"market-alerts/internal/config"
	"market-alerts/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("ALERTS_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Failed to load configuration: %v", err))
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(cfg.LoggingConfig())

	root := cli.NewRootCmd(cfg, logger)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
