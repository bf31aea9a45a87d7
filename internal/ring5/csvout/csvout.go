// Package csvout implements the CSV Finalizer: flattening a batch of
// Strategy results into a single results.csv with deterministic column
// and row order.
package csvout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/strategy"
)

// ResultsFileName is the fixed output file name written inside the output
// directory.
const ResultsFileName = "results.csv"

const naValue = "NaN"

// Finalize writes one row per result (in submission order) and one column
// per varNames entry (entry-bearing Stats expand to "{name}..{entry}"
// sub-columns in declared entry order). It creates outDir if needed and
// returns the absolute path of the written file.
func Finalize(outDir string, results []strategy.Result, varNames []string) (string, error) {
	if len(varNames) == 0 && len(results) > 0 {
		varNames = fallbackVarNames(results[0])
	}

	columns := buildColumns(results, varNames)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	outPath := filepath.Join(outDir, ResultsFileName)

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(headerRow(columns)); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}

	for _, result := range results {
		row, err := buildRow(result, columns)
		if err != nil {
			return "", err
		}

		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing results file: %w", err)
	}

	absPath, err := filepath.Abs(outPath)
	if err != nil {
		return "", err
	}

	return absPath, nil
}

// column is one CSV column: a variable name plus, for entry-bearing
// kinds, the specific entry it reads.
type column struct {
	name    string
	entry   string
	hasEntr bool
	header  string
}

func buildColumns(results []strategy.Result, varNames []string) []column {
	columns := make([]column, 0, len(varNames))

	for _, name := range varNames {
		entries := firstEntriesFor(results, name)

		if len(entries) == 0 {
			columns = append(columns, column{name: name, header: name})
			continue
		}

		for _, entry := range entries {
			columns = append(columns, column{
				name:    name,
				entry:   entry,
				hasEntr: true,
				header:  fmt.Sprintf("%s..%s", name, entry),
			})
		}
	}

	return columns
}

// firstEntriesFor inspects the first result where name appears to decide
// whether it is entry-bearing, per the Finalizer's "first result wins"
// column-shape rule.
func firstEntriesFor(results []strategy.Result, name string) []string {
	for _, result := range results {
		stat, ok := result.StatByName[name]
		if !ok {
			continue
		}

		return stat.Entries()
	}

	return nil
}

func fallbackVarNames(first strategy.Result) []string {
	names := make([]string, 0, len(first.StatByName))
	for name := range first.StatByName {
		names = append(names, name)
	}

	return names
}

func headerRow(columns []column) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		row[i] = c.header
	}

	return row
}

func buildRow(result strategy.Result, columns []column) ([]string, error) {
	row := make([]string, len(columns))

	var cached map[string]float64

	var cachedName string

	for i, c := range columns {
		stat, ok := result.StatByName[c.name]
		if !ok {
			row[i] = naValue
			continue
		}

		if err := finalizeOnce(stat); err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}

		reduced, err := stat.ReducedContent()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}

		if !c.hasEntr {
			row[i] = formatValue(reduced)
			continue
		}

		if cachedName != c.name {
			m, ok := reduced.(map[string]float64)
			if !ok {
				return nil, fmt.Errorf("%s: entry-bearing stat did not reduce to a map", c.name)
			}

			cached = m
			cachedName = c.name
		}

		v, ok := cached[c.entry]
		if !ok {
			row[i] = naValue
			continue
		}

		row[i] = formatValue(v)
	}

	return row, nil
}

// finalizeOnce balances and reduces a Stat that has not yet been
// finalized. Results may share the same underlying Stat across an
// aggregated request's alias entries, so a second call through another
// column is a harmless no-op detected via the already-balanced/reduced
// sentinels.
func finalizeOnce(stat stattype.Stat) error {
	if err := stat.BalanceContent(); err != nil && !errors.Is(err, stattype.ErrAlreadyBalanced) {
		return err
	}

	if err := stat.ReduceDuplicates(); err != nil && !errors.Is(err, stattype.ErrAlreadyReduced) {
		return err
	}

	return nil
}

func formatValue(v any) string {
	switch value := v.(type) {
	case float64:
		return fmt.Sprintf("%g", value)
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}
