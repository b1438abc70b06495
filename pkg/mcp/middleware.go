package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/stylelens/pkg/mcplog"
)

// loggingMiddleware records every tool call in the call log. Only installed
// when a call log is configured.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			entry := mcplog.Record(req.Params.Name, req.GetArguments(), start, result, err)
			if werr := s.callLog.Write(entry); werr != nil {
				s.logger.Warn("failed to write call log", "tool", req.Params.Name, "error", werr)
			}
			return result, err
		}
	}
}
