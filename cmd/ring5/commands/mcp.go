package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nikiitin/ring5/internal/ring5/config"
	"github.com/nikiitin/ring5/internal/ring5/engine"
	"github.com/nikiitin/ring5/internal/ring5/mcp"
	"github.com/nikiitin/ring5/internal/ring5/observability"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

// NewMCPCommand creates the mcp server command.
func NewMCPCommand() *cobra.Command {
	var debug bool

	var configFile string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server exposing scan/parse/finalize as tools",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the ingestion engine's operations as tools that AI
agents can discover and invoke:
  - ring5_submit_scan: catalog the variables present in a directory of stats files
  - ring5_submit_parse: submit a parse batch against a Stat Request document
  - ring5_finalize_parsing: await a submitted batch and write results.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}

			providers, err := initObservabilityWithLevel(observability.ModeMCP, level)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			scan, err := scanner.New(cfg.ScannerPath, 0)
			if err != nil {
				return err
			}

			pool := workpool.New(cfg.TokenizerPath, cfg.WorkerPoolSize, providers.Logger)
			defer pool.Shutdown()

			eng := engine.New(stattype.NewRegistry(), scan, pool, providers.Logger)

			deps := mcp.ServerDeps{
				Engine:  eng,
				Logger:  providers.Logger,
				Metrics: providers.Metrics,
				Tracer:  providers.Tracer,
			}

			srv := mcp.NewServer(deps)

			return srv.Run(cobraCmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")

	return cmd
}
