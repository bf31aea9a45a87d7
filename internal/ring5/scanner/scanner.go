// Package scanner discovers the catalog of variables present in a stats
// file by invoking an external scanner subprocess, and fans that
// discovery out in parallel across many files.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/pkg/ring5cache"
)

// Timeout bounds a single scan subprocess invocation.
const Timeout = 60 * time.Second

// ErrScannerNotFound is returned at construction when the scanner
// dependency cannot be located on disk or PATH.
var ErrScannerNotFound = errors.New("scanner dependency not found")

// ErrMalformedOutput is returned when the scanner subprocess emits output
// that is not a valid JSON array of scanned-variable descriptors.
var ErrMalformedOutput = errors.New("malformed scanner output")

// Variable is the immutable description of one discovered variable,
// produced by the Scanner and consumed by the Pattern Aggregator and the
// Regex Expander.
type Variable struct {
	Name           string
	Kind           stattype.Kind
	Entries        []string
	PatternIndices []string
	Minimum        int
	Maximum        int
	HasRange       bool
}

type wireVariable struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Entries []string `json:"entries,omitempty"`
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// Scanner is a single-instance helper wrapping the external scanner
// binary. Its dependency is checked once at construction: a missing
// scanner binary is a hard error raised immediately rather than deferred
// to the first scan. Discovered catalogs are memoized in a bounded cache
// keyed by file path, so repeated scans of the same file (e.g. across
// overlapping batches) avoid re-invoking the subprocess.
type Scanner struct {
	scannerPath string
	cache       *ring5cache.Cache[string, []Variable]
}

// New constructs a Scanner bound to scannerPath, checked for existence on
// PATH or as a direct file path. cacheSize bounds the catalog cache in
// total number of cached Variables, summed over every cached file's
// catalog; <= 0 uses ring5cache's default.
func New(scannerPath string, cacheSize int64) (*Scanner, error) {
	resolved, err := resolveExecutable(scannerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrScannerNotFound, scannerPath, err)
	}

	return &Scanner{
		scannerPath: resolved,
		cache:       ring5cache.New[string, []Variable](cacheSize, variableListSize),
	}, nil
}

func resolveExecutable(path string) (string, error) {
	if strings.ContainsAny(path, "/\\") {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}

		return path, nil
	}

	return exec.LookPath(path)
}

func variableListSize(vars []Variable) int64 {
	return int64(len(vars))
}

// ScanFile discovers the catalog of variables in filePath, consulting the
// memoization cache first. hints, when non-empty, are passed through to
// the scanner subprocess as a filtering aid.
func (s *Scanner) ScanFile(ctx context.Context, filePath string, hints []string) ([]Variable, error) {
	if cached, ok := s.cache.Get(filePath); ok {
		return cached, nil
	}

	vars, err := s.invoke(ctx, filePath, hints)
	if err != nil {
		return nil, err
	}

	s.cache.Put(filePath, vars)

	return vars, nil
}

// ScanAll discovers catalogs for every file in filePaths, invoking up to
// limit scans concurrently. limit <= 0 means no limit (bounded only by
// len(filePaths)).
func (s *Scanner) ScanAll(ctx context.Context, filePaths []string, hints []string, limit int) ([][]Variable, error) {
	if limit <= 0 || limit > len(filePaths) {
		limit = len(filePaths)
	}

	if limit == 0 {
		return nil, nil
	}

	results := make([][]Variable, len(filePaths))
	errs := make([]error, len(filePaths))

	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup

	for i, path := range filePaths {
		wg.Add(1)

		sem <- struct{}{}

		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			vars, err := s.ScanFile(ctx, path, hints)
			results[i] = vars
			errs[i] = err
		}(i, path)
	}

	wg.Wait()

	return results, firstError(errs)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Scanner) invoke(ctx context.Context, filePath string, hints []string) ([]Variable, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	args := []string{filePath}
	if len(hints) > 0 {
		args = append(args, strings.Join(hints, ","))
	}

	cmd := exec.CommandContext(ctx, s.scannerPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("scanner timed out after %s: %s", Timeout, filePath)
		}

		return nil, fmt.Errorf("scanner exited with error: %w: %s", err, stderr.String())
	}

	return decodeCatalog(stdout.Bytes())
}

func decodeCatalog(raw []byte) ([]Variable, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var wire []wireVariable

	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	vars := make([]Variable, 0, len(wire))
	for _, w := range wire {
		vars = append(vars, fromWire(w))
	}

	return vars, nil
}

func fromWire(w wireVariable) Variable {
	v := Variable{
		Name:    w.Name,
		Kind:    mapKind(w.Type),
		Entries: w.Entries,
	}

	if w.Minimum != nil && w.Maximum != nil {
		v.HasRange = true
		v.Minimum = int(*w.Minimum)
		v.Maximum = int(*w.Maximum)
	}

	return v
}

func mapKind(raw string) stattype.Kind {
	switch strings.ToLower(raw) {
	case "scalar":
		return stattype.KindScalar
	case "vector":
		return stattype.KindVector
	case "distribution":
		return stattype.KindDistribution
	case "histogram":
		return stattype.KindHistogram
	case "configuration":
		return stattype.KindConfiguration
	default:
		return stattype.Kind(raw)
	}
}
