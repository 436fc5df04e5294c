package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/boardingpass/internal/buildinfo"
	"github.com/dmitrijs2005/boardingpass/internal/server"
	"github.com/dmitrijs2005/boardingpass/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx := context.Background()
	logger := server.NewLogger(cfg)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
