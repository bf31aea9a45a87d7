// Package engine wires the ingestion pipeline's components behind the
// four public Core API operations: submitting scans, aggregating scan
// results, submitting parse batches, and finalizing them to CSV.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikiitin/ring5/internal/ring5/aggregate"
	"github.com/nikiitin/ring5/internal/ring5/csvout"
	"github.com/nikiitin/ring5/internal/ring5/expand"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/strategy"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

// ErrUnknownStrategy is returned when a strategy name has no registered
// constructor.
var ErrUnknownStrategy = errors.New("unknown strategy name")

// ScanFuture is a handle to one file's eventual scanned catalog.
type ScanFuture struct {
	done chan scanResult
}

type scanResult struct {
	vars []scanner.Variable
	err  error
}

// Wait blocks until the scan completes or ctx is done.
func (f *ScanFuture) Wait(ctx context.Context) ([]scanner.Variable, error) {
	select {
	case res := <-f.done:
		return res.vars, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ParseBatchResult is the handle returned by SubmitParseAsync: a future
// per discovered file, in submission order, plus the batch's ordered
// variable-name list for the CSV Finalizer.
type ParseBatchResult struct {
	Futures  []*workpool.Future
	VarNames []string
	Strategy strategy.Strategy
}

// Engine is the Core API facade: a single process-wide instance wiring
// the Scanner, Pattern Aggregator, Regex Expander, Worker Pool, Strategy
// registry and CSV Finalizer.
type Engine struct {
	registry   *stattype.Registry
	scan       *scanner.Scanner
	pool       *workpool.Pool
	strategies map[string]strategy.Strategy
	logger     *slog.Logger
}

// New builds an Engine. scan may be nil when scanning is never used by
// the caller (e.g. a batch that always supplies concrete, non-regex
// requests).
func New(registry *stattype.Registry, scan *scanner.Scanner, pool *workpool.Pool, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		registry: registry,
		scan:     scan,
		pool:     pool,
		logger:   logger,
		strategies: map[string]strategy.Strategy{
			"simple":       strategy.NewSimple(registry),
			"config-aware": strategy.NewConfigAware(registry, logger),
		},
	}
}

func (e *Engine) strategyByName(name string) (strategy.Strategy, error) {
	s, ok := e.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}

	return s, nil
}

// SubmitScanAsync scans up to limit files concurrently (0 or negative
// means unbounded), returning one future per discovered file.
func (e *Engine) SubmitScanAsync(ctx context.Context, root, glob string, limit int) ([]*ScanFuture, error) {
	if e.scan == nil {
		return nil, errors.New("engine: no scanner configured")
	}

	files, err := strategy.DiscoverFiles(root, glob)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(files) {
		limit = len(files)
	}

	if limit == 0 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	futures := make([]*ScanFuture, len(files))

	for i, filePath := range files {
		f := &ScanFuture{done: make(chan scanResult, 1)}
		futures[i] = f

		go func(filePath string) {
			sem <- struct{}{}
			defer func() { <-sem }()

			vars, err := e.scan.ScanFile(ctx, filePath, nil)
			f.done <- scanResult{vars: vars, err: err}
		}(filePath)
	}

	return futures, nil
}

// AggregateScanResults flattens a batch of per-file catalogs and collapses
// indexed name families into aggregate Scanned Variables.
func (e *Engine) AggregateScanResults(perFile [][]scanner.Variable) []scanner.Variable {
	var flat []scanner.Variable
	for _, vars := range perFile {
		flat = append(flat, vars...)
	}

	return aggregate.Aggregate(flat)
}

// SubmitParseAsync expands requests against scanned (if provided), builds
// one Parse Work per discovered file via the named strategy, submits them
// to the Worker Pool, and returns a future per file plus the ordered
// variable-name list.
func (e *Engine) SubmitParseAsync(
	root, glob string,
	requests []stattype.Request,
	strategyName string,
	scanned []scanner.Variable,
) (ParseBatchResult, error) {
	s, err := e.strategyByName(strategyName)
	if err != nil {
		return ParseBatchResult{}, err
	}

	expanded := requests
	if len(scanned) > 0 {
		expanded = expand.Expand(e.logger, requests, scanned)
	}

	works, varNames, err := s.GetWorkItems(root, glob, expanded)
	if err != nil {
		return ParseBatchResult{}, err
	}

	futures := e.pool.Submit(works)

	return ParseBatchResult{Futures: futures, VarNames: varNames, Strategy: s}, nil
}

// FinalizeParsing awaits every future in batch, applies the strategy's
// post-processing, and writes results.csv to outputDir.
func (e *Engine) FinalizeParsing(ctx context.Context, outputDir string, batch ParseBatchResult) (string, error) {
	raw := make([]workpool.Result, 0, len(batch.Futures))

	for _, f := range batch.Futures {
		res, err := f.Wait(ctx)
		if err != nil {
			return "", err
		}

		raw = append(raw, res)
	}

	processed, err := batch.Strategy.PostProcess(raw)
	if err != nil {
		return "", err
	}

	return csvout.Finalize(outputDir, processed, batch.VarNames)
}
