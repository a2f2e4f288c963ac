// Package mcpserver exposes the tool registry over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wolfman30/clinic-tools/internal/tools"
	"github.com/wolfman30/clinic-tools/pkg/logging"
)

// ServerName is advertised to MCP clients during initialize.
const ServerName = "AI-Health-Multilingual-Voice-agent"

// New registers every descriptor in registry as an MCP tool.
func New(registry *tools.Registry, version string, logger *logging.Logger) (*server.MCPServer, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, d := range registry.Descriptors() {
		schema, err := json.Marshal(d.InputSchema)
		if err != nil {
			return nil, err
		}
		s.AddTool(mcp.NewToolWithRawSchema(d.Name, d.Description, schema), toolHandler(registry, d.Name, logger))
		logger.Info("tool loaded", "tool", d.Name)
	}
	return s, nil
}

// NewSSEHandler serves the SSE transport under basePath, e.g. /mcp/sse and
// /mcp/message.
func NewSSEHandler(s *server.MCPServer, basePath string) http.Handler {
	return server.NewSSEServer(s, server.WithStaticBasePath(basePath))
}

func toolHandler(registry *tools.Registry, name string, logger *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}

		res, err := registry.Invoke(ctx, name, args)
		if err != nil {
			if errors.Is(err, tools.ErrInvalidInput) {
				logger.Warn("mcp tool input rejected", "tool", name, "error", err)
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return resultToMCP(res)
	}
}

func resultToMCP(res tools.Result) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	out := mcp.NewToolResultText(string(body))
	out.IsError = !res.OK()
	return out, nil
}
