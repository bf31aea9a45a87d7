package strategy

import (
	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

// Simple is the identity-post-process Strategy: one Parse Work per
// discovered file, no sidecar enrichment.
type Simple struct {
	registry *stattype.Registry
}

// NewSimple builds a Simple strategy backed by registry.
func NewSimple(registry *stattype.Registry) *Simple {
	return &Simple{registry: registry}
}

// GetWorkItems implements Strategy.
func (s *Simple) GetWorkItems(root, glob string, requests []stattype.Request) ([]workpool.Work, []string, error) {
	files, err := discoverFiles(root, glob)
	if err != nil {
		return nil, nil, err
	}

	_, varNames, err := s.registry.NewStatByName(requests)
	if err != nil {
		return nil, nil, err
	}

	works := make([]workpool.Work, 0, len(files))

	for _, filePath := range files {
		work, _, err := buildWork(s.registry, filePath, requests)
		if err != nil {
			return nil, nil, err
		}

		works = append(works, work)
	}

	return works, varNames, nil
}

// PostProcess implements Strategy: the simple variant attaches no
// enrichment.
func (s *Simple) PostProcess(results []workpool.Result) ([]Result, error) {
	wrapped := make([]Result, len(results))
	for i, r := range results {
		wrapped[i] = Result{Result: r}
	}

	return wrapped, nil
}
