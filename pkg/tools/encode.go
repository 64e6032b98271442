package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/topomcp/pkg/topocode"
)

// EncodeCoordinatesTool returns a tool definition for topocode encoding
func EncodeCoordinatesTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Encode an ordered list of coordinates into a URL-safe topocode string (7 characters per point, at most 280 points)"),
	}
	opts = append(opts, withPathParams()...)
	return mcp.NewTool("encode_coordinates", opts...)
}

// HandleEncodeCoordinates implements topocode encoding
func HandleEncodeCoordinates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "encode_coordinates")

	points, err := parsePath(req)
	if err != nil {
		return ErrorWithGuidance(ValidationError(err)), nil
	}

	encoded, err := topocode.Encode(points)
	if err != nil {
		logger.Debug("encoding failed", "points", len(points), "error", err)
		return ErrorWithGuidance(classifyError(err)), nil
	}

	logger.Debug("encoded coordinates", "points", len(points))

	result, err := jsonResult(EncodeOutput{
		Encoded: encoded,
		Points:  len(points),
		Length:  len(encoded),
	})
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return result, nil
}
