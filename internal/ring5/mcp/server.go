// Package mcp exposes the ingestion engine's scan/parse/finalize
// operations as Model Context Protocol tools over stdio transport, so an
// agent can drive ingestion the same way a CLI invocation would.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikiitin/ring5/internal/ring5/engine"
	"github.com/nikiitin/ring5/internal/ring5/observability"
)

const (
	serverName    = "ring5"
	serverVersion = "1.0.0"
	toolCount     = 3
)

// ServerDeps holds injectable dependencies for the MCP server.
type ServerDeps struct {
	// Engine is the ingestion Core API facade. Required.
	Engine *engine.Engine

	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional ingestion metrics recorder. Nil disables
	// per-tool metric recording.
	Metrics *observability.IngestionMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil
	// disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with ring5 tool registrations.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	batches *batchStore
}

// NewServer creates an MCP server with the scan, parse and finalize
// tools registered against the given engine.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: serverName, Version: serverVersion},
		opts,
	)

	srv := &Server{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		batches: newBatchStore(),
	}

	h := &handlers{eng: deps.Engine, batches: srv.batches, metrics: deps.Metrics, tracer: deps.Tracer}

	srv.registerTools(h)

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the
// context is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	if err := s.inner.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools(h *handlers) {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameSubmitScan,
		Description: submitScanDescription,
	}, withObservability(h.metrics, h.tracer, ToolNameSubmitScan, h.handleSubmitScan))
	s.trackTool(ToolNameSubmitScan)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameSubmitParse,
		Description: submitParseDescription,
	}, withObservability(h.metrics, h.tracer, ToolNameSubmitParse, h.handleSubmitParse))
	s.trackTool(ToolNameSubmitParse)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameFinalizeParsing,
		Description: finalizeParsingDescription,
	}, withObservability(h.metrics, h.tracer, ToolNameFinalizeParsing, h.handleFinalizeParsing))
	s.trackTool(ToolNameFinalizeParsing)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	submitScanDescription = "Scan stats files under a directory for their variable catalog " +
		"(names, kinds, entries, ranges) without parsing values."

	submitParseDescription = "Parse stats files under a directory against a Stat Request " +
		"document, returning a batch_id for later finalize_parsing."

	finalizeParsingDescription = "Await a previously submitted parse batch and write its " +
		"results to a results.csv file in the given output directory."
)
