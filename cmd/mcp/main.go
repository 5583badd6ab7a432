// Command mcp exposes the content store to MCP clients over stdio.
//
// It shares the config file with the HTTP server and operates on the same
// store; agent commits land on the configured agent branch like any other
// non-owner identity.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/sanhik/contentos/internal"
	"github.com/sanhik/contentos/internal/catalog"
	"github.com/sanhik/contentos/internal/contentservice"
	"github.com/sanhik/contentos/internal/mcpserver"
	"github.com/sanhik/contentos/internal/storage"
	"github.com/sanhik/contentos/internal/vcs"
	pkgconfig "github.com/sanhik/contentos/pkg/config"
)

func run(_ context.Context, cmd *cli.Command) error {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Stdout carries the MCP protocol; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := storage.NewFS(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	repo := vcs.NewRepository(store)

	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	if err := catalog.Sync(db, repo, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := contentservice.NewService(repo, db, nil, nil, logger)
	srv := mcpserver.New(svc, cfg.MCP.Identity)

	logger.Info("MCP server starting on stdio", slog.String("identity", cfg.MCP.Identity))
	return srv.ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:   "contentos-mcp",
		Usage:  "MCP stdio server for the content store",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
