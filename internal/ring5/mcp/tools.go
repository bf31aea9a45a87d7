package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikiitin/ring5/internal/ring5/engine"
	"github.com/nikiitin/ring5/internal/ring5/observability"
)

// Tool name constants.
const (
	ToolNameSubmitScan      = "ring5_submit_scan"
	ToolNameSubmitParse     = "ring5_submit_parse"
	ToolNameFinalizeParsing = "ring5_finalize_parsing"
)

// Sentinel errors for tool input validation.
var (
	ErrEmptyRoot      = errors.New("root parameter is required and must not be empty")
	ErrEmptyGlob      = errors.New("glob parameter is required and must not be empty")
	ErrEmptyBatchID   = errors.New("batch_id parameter is required and must not be empty")
	ErrEmptyOutputDir = errors.New("output_dir parameter is required and must not be empty")
	ErrUnknownBatch   = errors.New("unknown batch_id")
)

// handlers holds the shared dependencies every tool handler closes over.
type handlers struct {
	eng     *engine.Engine
	batches *batchStore
	metrics *observability.IngestionMetrics
	tracer  trace.Tracer
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}

const mcpSpanPrefix = "mcp."

// withObservability wraps a tool handler to create an OTel span and
// record ingestion metrics per invocation. Either dependency may be nil,
// in which case that concern is skipped.
func withObservability[Input any](
	metrics *observability.IngestionMetrics,
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		if tracer != nil {
			var span trace.Span

			ctx, span = tracer.Start(ctx, mcpSpanPrefix+toolName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", toolName)),
			)
			defer span.End()
		}

		start := time.Now()

		result, output, err := handler(ctx, req, input)

		if metrics != nil {
			failed := err != nil || (result != nil && result.IsError)
			metrics.RecordWorkOutcome(ctx, toolName, failed)
			metrics.RecordParseDuration(ctx, toolName, time.Since(start))
		}

		return result, output, err
	}
}
