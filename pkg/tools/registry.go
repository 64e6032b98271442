// Package tools provides the topocoding MCP tools implementations.
package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Registry holds all MCP tool registrations for the topocoding service.
type Registry struct {
	logger *slog.Logger
	client AltitudeClient
}

// NewRegistry creates a new MCP tool registry. The client serves the
// get_altitudes tool.
func NewRegistry(logger *slog.Logger, client AltitudeClient) *Registry {
	return &Registry{
		logger: logger,
		client: client,
	}
}

// ToolDefinition represents a topocoding MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns all topocoding MCP tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		// Encoding Tools
		{
			Name:        "encode_coordinates",
			Description: "Encode coordinates into a URL-safe topocode string",
			Tool:        EncodeCoordinatesTool(),
			Handler:     HandleEncodeCoordinates,
		},

		// Great-circle Tools
		{
			Name:        "great_circle_distance",
			Description: "Calculate the great-circle distance between two points",
			Tool:        GreatCircleDistanceTool(),
			Handler:     HandleGreatCircleDistance,
		},
		{
			Name:        "interpolate_great_circle",
			Description: "Find a point along the great circle between two points",
			Tool:        InterpolateGreatCircleTool(),
			Handler:     HandleInterpolateGreatCircle,
		},
		{
			Name:        "densify_path",
			Description: "Densify or resample a path along great circles",
			Tool:        DensifyPathTool(),
			Handler:     HandleDensifyPath,
		},

		// Altitude Tools
		{
			Name:        "get_altitudes",
			Description: "Look up ground altitudes for coordinates",
			Tool:        GetAltitudesTool(),
			Handler:     r.HandleGetAltitudes,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}
