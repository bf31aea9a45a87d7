package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nikiitin/ring5/internal/ring5/config"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
)

// SubmitParseInput is the input schema for the ring5_submit_parse tool.
type SubmitParseInput struct {
	Root         string `json:"root"                    jsonschema:"directory to parse stats files from"`
	Glob         string `json:"glob"                    jsonschema:"filename glob identifying stats files (e.g. stats.txt)"`
	RequestsPath string `json:"requests_path"            jsonschema:"path to a YAML or JSON Stat Request document"`
	Strategy     string `json:"strategy,omitempty"       jsonschema:"parse strategy name: simple or config-aware (default simple)"`
	UseScan      bool   `json:"use_scan,omitempty"       jsonschema:"scan root/glob first so regex requests expand against the discovered catalog"`
	ScanLimit    int    `json:"scan_limit,omitempty"     jsonschema:"maximum concurrent file scans when use_scan is set"`
}

// SubmitParseOutput is the output schema for the ring5_submit_parse tool.
type SubmitParseOutput struct {
	BatchID   string   `json:"batch_id"`
	VarNames  []string `json:"var_names"`
	WorkCount int      `json:"work_count"`
}

const defaultParseStrategy = "simple"

func (h *handlers) handleSubmitParse(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SubmitParseInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Root == "" {
		return errorResult(ErrEmptyRoot)
	}

	if input.Glob == "" {
		return errorResult(ErrEmptyGlob)
	}

	requests, err := config.LoadRequests(input.RequestsPath)
	if err != nil {
		return errorResult(fmt.Errorf("load requests: %w", err))
	}

	strategyName := input.Strategy
	if strategyName == "" {
		strategyName = defaultParseStrategy
	}

	var scanned []scanner.Variable

	if input.UseScan {
		scanned, err = h.runScan(ctx, input.Root, input.Glob, input.ScanLimit)
		if err != nil {
			return errorResult(err)
		}
	}

	batch, err := h.eng.SubmitParseAsync(input.Root, input.Glob, requests, strategyName, scanned)
	if err != nil {
		return errorResult(fmt.Errorf("submit parse: %w", err))
	}

	batchID := h.batches.put(batch)

	return jsonResult(SubmitParseOutput{
		BatchID:   batchID,
		VarNames:  batch.VarNames,
		WorkCount: len(batch.Futures),
	})
}

// FinalizeParsingInput is the input schema for the ring5_finalize_parsing
// tool.
type FinalizeParsingInput struct {
	BatchID   string `json:"batch_id"   jsonschema:"batch_id returned by ring5_submit_parse"`
	OutputDir string `json:"output_dir" jsonschema:"directory to write results.csv to"`
}

// FinalizeParsingOutput is the output schema for the
// ring5_finalize_parsing tool.
type FinalizeParsingOutput struct {
	ResultsPath string `json:"results_path"`
}

func (h *handlers) handleFinalizeParsing(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input FinalizeParsingInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.BatchID == "" {
		return errorResult(ErrEmptyBatchID)
	}

	if input.OutputDir == "" {
		return errorResult(ErrEmptyOutputDir)
	}

	batch, ok := h.batches.take(input.BatchID)
	if !ok {
		return errorResult(fmt.Errorf("%w: %s", ErrUnknownBatch, input.BatchID))
	}

	path, err := h.eng.FinalizeParsing(ctx, input.OutputDir, batch)
	if err != nil {
		return errorResult(fmt.Errorf("finalize parsing: %w", err))
	}

	return jsonResult(FinalizeParsingOutput{ResultsPath: path})
}
