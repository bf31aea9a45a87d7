package strategy

import (
	"log/slog"
	"path/filepath"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

// ConfigAwareFileName is the sidecar file name expected alongside each
// simulation's stats file.
const ConfigAwareFileName = "config.ini"

// ConfigAware builds on Simple, attaching a sibling config.ini's
// section→key→value mapping to each result.
type ConfigAware struct {
	registry *stattype.Registry
	logger   *slog.Logger
}

// NewConfigAware builds a ConfigAware strategy backed by registry.
func NewConfigAware(registry *stattype.Registry, logger *slog.Logger) *ConfigAware {
	if logger == nil {
		logger = slog.Default()
	}

	return &ConfigAware{registry: registry, logger: logger}
}

// GetWorkItems implements Strategy; file discovery and Parse Work
// construction are identical to Simple.
func (s *ConfigAware) GetWorkItems(root, glob string, requests []stattype.Request) ([]workpool.Work, []string, error) {
	return NewSimple(s.registry).GetWorkItems(root, glob, requests)
}

// PostProcess implements Strategy: each result is enriched with its
// sibling config.ini's parsed sections. A missing sidecar file logs a
// warning and attaches an empty mapping rather than failing the batch.
func (s *ConfigAware) PostProcess(results []workpool.Result) ([]Result, error) {
	wrapped := make([]Result, len(results))

	for i, r := range results {
		iniPath := filepath.Join(filepath.Dir(r.FilePath), ConfigAwareFileName)

		sections, existed, err := readINI(iniPath)
		if err != nil {
			return nil, err
		}

		if !existed {
			s.logger.Warn("config-aware strategy: missing sidecar config file, using empty mapping",
				"path", iniPath)
		}

		wrapped[i] = Result{Result: r, Config: sections}
	}

	return wrapped, nil
}
