package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/johnbenac/graphdown/internal"
	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/datasetservice"
	"github.com/johnbenac/graphdown/internal/fingerprint"
	"github.com/johnbenac/graphdown/internal/index"
	"github.com/johnbenac/graphdown/internal/mcpserver"
	"github.com/johnbenac/graphdown/internal/snapshot"
	"github.com/johnbenac/graphdown/internal/validate"
	pkgconfig "github.com/johnbenac/graphdown/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if p := cmd.String("dataset"); p != "" {
		cfg.Dataset.Path = p
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runValidate(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	snap, err := snapshot.FromDir(cfg.Dataset.Path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("read dataset: %v", err), 2)
	}
	result := validate.Snapshot(snap)

	if cmd.Bool("json") {
		errs := result.Errors
		if errs == nil {
			errs = []*apperr.Error{}
		}
		out, _ := json.MarshalIndent(map[string]any{
			"ok":     result.OK(),
			"errors": errs,
		}, "", "  ")
		fmt.Println(string(out))
	} else {
		for _, e := range result.Errors {
			fmt.Println(e.Error())
			if e.Hint != "" {
				fmt.Printf("  hint: %s\n", e.Hint)
			}
		}
		if result.OK() {
			fmt.Printf("ok: %d files\n", len(snap))
		} else {
			fmt.Printf("invalid: %d errors\n", len(result.Errors))
		}
	}

	if !result.OK() {
		return cli.Exit("", 1)
	}
	return nil
}

func runHash(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	snap, err := snapshot.FromDir(cfg.Dataset.Path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("read dataset: %v", err), 2)
	}

	scope := fingerprint.Scope(cmd.String("scope"))
	hash, ferr := fingerprint.Compute(snap, scope)
	if ferr != nil {
		if ferr.Code == apperr.CodeUsage {
			return cli.Exit(ferr.Error(), 2)
		}
		return cli.Exit(ferr.Error(), 1)
	}
	fmt.Println(hash)
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Stdout carries the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	svc := datasetservice.NewService(cfg.Dataset.Path, db, logger)
	if err := svc.Reload(ctx); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
	datasetFlag := &cli.StringFlag{
		Name:    "dataset",
		Aliases: []string{"d"},
		Usage:   "Dataset root directory (overrides config)",
		Sources: cli.EnvVars("GRAPHDOWN_DATASET"),
	}

	cmd := &cli.Command{
		Name:  "graphdown",
		Usage: "Typed cross-referencing datasets stored as Markdown with YAML front matter",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server with file watching and SSE",
				Action: runServe,
				Flags:  []cli.Flag{configFlag, datasetFlag},
			},
			{
				Name:   "validate",
				Usage:  "Validate the dataset and report all errors",
				Action: runValidate,
				Flags: []cli.Flag{
					configFlag,
					datasetFlag,
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit the validation report as JSON",
					},
				},
			},
			{
				Name:   "hash",
				Usage:  "Compute the dataset content fingerprint",
				Action: runHash,
				Flags: []cli.Flag{
					configFlag,
					datasetFlag,
					&cli.StringFlag{
						Name:  "scope",
						Usage: "Digest scope: schema or snapshot",
						Value: "snapshot",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag, datasetFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
