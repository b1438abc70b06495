package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/colors"
	"github.com/gnana997/stylelens/pkg/inspect"
	"github.com/gnana997/stylelens/pkg/mcplog"
	"github.com/gnana997/stylelens/pkg/snapshot"
)

const serverVersion = "0.1.0-dev"

// Config wires a Server to its collaborators. Only Root is required.
type Config struct {
	// Root confines snapshot arguments; relative paths resolve against it.
	Root string

	// Matcher filters list_snapshots. Defaults to the snapshot defaults.
	Matcher *snapshot.Matcher

	Loader     *snapshot.Loader
	Normalizer *colors.Normalizer
	Excluder   *aggregate.Excluder

	// CallLog records one JSONL line per tool call when non-nil.
	CallLog *mcplog.Logger

	Logger *slog.Logger
}

// Server exposes color normalization, aggregation, and inspection as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	root      string
	matcher   *snapshot.Matcher
	loader    *snapshot.Loader
	norm      *colors.Normalizer
	excluder  *aggregate.Excluder
	inspector *inspect.Inspector
	callLog   *mcplog.Logger
	logger    *slog.Logger
}

// NewServer creates a Server and registers its tools.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		root:     cfg.Root,
		matcher:  cfg.Matcher,
		loader:   cfg.Loader,
		norm:     cfg.Normalizer,
		excluder: cfg.Excluder,
		callLog:  cfg.CallLog,
		logger:   logger,
	}
	if s.root == "" {
		s.root = "."
	}
	if s.matcher == nil {
		s.matcher = &snapshot.Matcher{Include: snapshot.DefaultInclude, Exclude: snapshot.DefaultExclude}
	}
	if s.loader == nil {
		s.loader = snapshot.NewLoader(nil, logger)
	}
	if s.norm == nil {
		s.norm = colors.NewNormalizer(nil, logger)
	}
	s.inspector = inspect.New(s.norm, logger)

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("stylelens", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: normalizeColorTool(), Handler: s.handleNormalizeColor},
		server.ServerTool{Tool: contrastRatioTool(), Handler: s.handleContrastRatio},
		server.ServerTool{Tool: listSnapshotsTool(), Handler: s.handleListSnapshots},
		server.ServerTool{Tool: aggregateColorsTool(), Handler: s.handleAggregateColors},
		server.ServerTool{Tool: aggregateFontsTool(), Handler: s.handleAggregateFonts},
		server.ServerTool{Tool: inspectElementTool(), Handler: s.handleInspectElement},
		server.ServerTool{Tool: getTokensTool(), Handler: s.handleGetTokens},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}
