// Package commands implements the ring5 CLI's subcommands: scan, parse,
// mcp, and version.
package commands

import (
	"log/slog"
	"os"

	"github.com/nikiitin/ring5/internal/ring5/observability"
	"github.com/nikiitin/ring5/pkg/version"
)

func initObservability(mode observability.AppMode) (observability.Providers, error) {
	return initObservabilityWithLevel(mode, slog.LevelInfo)
}

func initObservabilityWithLevel(mode observability.AppMode, level slog.Level) (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = mode
	cfg.LogLevel = level

	if mode == observability.ModeMCP {
		cfg.LogJSON = true
	}

	return observability.Init(cfg)
}
