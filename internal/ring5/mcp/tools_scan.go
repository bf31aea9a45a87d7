package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nikiitin/ring5/internal/ring5/scanner"
)

// SubmitScanInput is the input schema for the ring5_submit_scan tool.
type SubmitScanInput struct {
	Root  string `json:"root"            jsonschema:"directory to scan for stats files"`
	Glob  string `json:"glob"            jsonschema:"filename glob identifying stats files (e.g. stats.txt)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum concurrent file scans (0 means unbounded)"`
}

// ScannedVariable is the JSON-friendly projection of scanner.Variable.
type ScannedVariable struct {
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	Entries        []string `json:"entries,omitempty"`
	PatternIndices []string `json:"pattern_indices,omitempty"`
	HasRange       bool     `json:"has_range,omitempty"`
	Minimum        int      `json:"minimum,omitempty"`
	Maximum        int      `json:"maximum,omitempty"`
}

// SubmitScanOutput is the output schema for the ring5_submit_scan tool.
type SubmitScanOutput struct {
	Variables []ScannedVariable `json:"variables"`
}

func (h *handlers) handleSubmitScan(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SubmitScanInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Root == "" {
		return errorResult(ErrEmptyRoot)
	}

	if input.Glob == "" {
		return errorResult(ErrEmptyGlob)
	}

	scanned, err := h.runScan(ctx, input.Root, input.Glob, input.Limit)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(SubmitScanOutput{Variables: toScannedVariables(scanned)})
}

// runScan submits an async scan over root/glob, awaits every future, and
// aggregates the per-file catalogs into the batch-level variable set.
func (h *handlers) runScan(ctx context.Context, root, glob string, limit int) ([]scanner.Variable, error) {
	futures, err := h.eng.SubmitScanAsync(ctx, root, glob, limit)
	if err != nil {
		return nil, fmt.Errorf("submit scan: %w", err)
	}

	perFile := make([][]scanner.Variable, 0, len(futures))

	for _, f := range futures {
		vars, err := f.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("await scan: %w", err)
		}

		perFile = append(perFile, vars)
	}

	return h.eng.AggregateScanResults(perFile), nil
}

func toScannedVariables(vars []scanner.Variable) []ScannedVariable {
	out := make([]ScannedVariable, len(vars))

	for i, v := range vars {
		out[i] = ScannedVariable{
			Name:           v.Name,
			Kind:           string(v.Kind),
			Entries:        v.Entries,
			PatternIndices: v.PatternIndices,
			HasRange:       v.HasRange,
			Minimum:        v.Minimum,
			Maximum:        v.Maximum,
		}
	}

	return out
}
