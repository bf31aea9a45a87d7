// Package strategy turns (root, glob, requests) into Parse Works and
// applies post-processing enrichment, via the simple and config-aware
// Strategy variants.
package strategy

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

// Strategy drives one batch's file discovery, Parse Work construction and
// result post-processing.
type Strategy interface {
	// GetWorkItems walks root recursively collecting files matching glob,
	// building one Parse Work per file, in file-discovery order. The
	// returned varNames list is the declared-order column list the CSV
	// Finalizer uses, independent of how many files were discovered.
	GetWorkItems(root, glob string, requests []stattype.Request) (works []workpool.Work, varNames []string, err error)
	// PostProcess enriches a batch of results after the Worker Pool has
	// run them. The simple variant returns results unchanged.
	PostProcess(results []workpool.Result) ([]Result, error)
}

// Result wraps a workpool.Result with whatever enrichment a Strategy's
// PostProcess attaches (e.g. config.ini sections under Config).
type Result struct {
	workpool.Result
	Config map[string]map[string]string
}

// DiscoverFiles walks root collecting files whose base name matches glob,
// sorted for deterministic, reproducible discovery order. Exported for
// reuse by the engine's scan submission, which discovers the same way a
// Strategy does before a catalog even exists.
func DiscoverFiles(root, glob string) ([]string, error) {
	return discoverFiles(root, glob)
}

func discoverFiles(root, glob string) ([]string, error) {
	var matches []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ok, err := filepath.Match(glob, d.Name())
		if err != nil {
			return err
		}

		if ok {
			matches = append(matches, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)

	return matches, nil
}

// buildWork constructs one file's Parse Work, building a fresh
// Stat-by-name map (including parsed_ids aliases) so concurrent files
// never share Stat instances.
func buildWork(registry *stattype.Registry, filePath string, requests []stattype.Request) (workpool.Work, []string, error) {
	statByName, varNames, err := registry.NewStatByName(requests)
	if err != nil {
		return workpool.Work{}, nil, err
	}

	requestedKind := make(map[string]stattype.Kind, len(requests))
	names := make([]string, 0, len(requests))

	for _, req := range requests {
		requestedKind[req.Name] = req.Kind
		names = append(names, req.Name)

		for _, alias := range req.Params.ParsedIDs {
			requestedKind[alias] = req.Kind
		}
	}

	work := workpool.Work{
		FilePath:      filePath,
		StatByName:    statByName,
		RequestedKind: requestedKind,
		Names:         names,
	}

	return work, varNames, nil
}

func logger() *slog.Logger {
	return slog.Default()
}
