package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/topomcp/pkg/geo"
)

// GreatCircleDistanceTool returns a tool definition for great-circle distance
func GreatCircleDistanceTool() mcp.Tool {
	return mcp.NewTool("great_circle_distance",
		mcp.WithDescription("Calculate the great-circle distance between two points on a sphere of radius 6378.137 km"),
		mcp.WithNumber("from_lat",
			mcp.Required(),
			mcp.Description("Starting point latitude"),
		),
		mcp.WithNumber("from_lon",
			mcp.Required(),
			mcp.Description("Starting point longitude"),
		),
		mcp.WithNumber("to_lat",
			mcp.Required(),
			mcp.Description("Ending point latitude"),
		),
		mcp.WithNumber("to_lon",
			mcp.Required(),
			mcp.Description("Ending point longitude"),
		),
	)
}

// InterpolateGreatCircleTool returns a tool definition for great-circle interpolation
func InterpolateGreatCircleTool() mcp.Tool {
	return mcp.NewTool("interpolate_great_circle",
		mcp.WithDescription("Find the point at a fraction of the way along the great circle between two points"),
		mcp.WithNumber("from_lat",
			mcp.Required(),
			mcp.Description("Starting point latitude"),
		),
		mcp.WithNumber("from_lon",
			mcp.Required(),
			mcp.Description("Starting point longitude"),
		),
		mcp.WithNumber("to_lat",
			mcp.Required(),
			mcp.Description("Ending point latitude"),
		),
		mcp.WithNumber("to_lon",
			mcp.Required(),
			mcp.Description("Ending point longitude"),
		),
		mcp.WithNumber("fraction",
			mcp.Required(),
			mcp.Description("0 is the start, 1 the end; values outside [0, 1] extrapolate"),
		),
	)
}

// parseEndpoints reads and validates the from/to coordinates shared by the great-circle tools.
func parseEndpoints(req mcp.CallToolRequest) (geo.Location, geo.Location, error) {
	from := geo.Location{
		Latitude:  mcp.ParseFloat64(req, "from_lat", 0),
		Longitude: mcp.ParseFloat64(req, "from_lon", 0),
	}
	to := geo.Location{
		Latitude:  mcp.ParseFloat64(req, "to_lat", 0),
		Longitude: mcp.ParseFloat64(req, "to_lon", 0),
	}

	if err := geo.ValidateCoords(from.Latitude, from.Longitude); err != nil {
		return from, to, err
	}
	if err := geo.ValidateCoords(to.Latitude, to.Longitude); err != nil {
		return from, to, err
	}
	return from, to, nil
}

// HandleGreatCircleDistance implements great-circle distance calculation
func HandleGreatCircleDistance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "great_circle_distance")

	from, to, err := parseEndpoints(req)
	if err != nil {
		return ErrorWithGuidance(ValidationError(err)), nil
	}

	km := geo.Distance(from, to)
	result, err := jsonResult(DistanceOutput{
		From:       from,
		To:         to,
		Kilometers: km,
		Meters:     km * 1000,
	})
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return result, nil
}

// HandleInterpolateGreatCircle implements great-circle interpolation
func HandleInterpolateGreatCircle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "interpolate_great_circle")

	from, to, err := parseEndpoints(req)
	if err != nil {
		return ErrorWithGuidance(ValidationError(err)), nil
	}
	fraction := mcp.ParseFloat64(req, "fraction", 0)

	point, err := geo.Interpolate(from, to, fraction)
	if err != nil {
		logger.Debug("interpolation failed", "from", from, "to", to, "error", err)
		return ErrorWithGuidance(classifyError(err)), nil
	}

	result, err := jsonResult(InterpolateOutput{
		From:     from,
		To:       to,
		Fraction: fraction,
		Point:    point,
	})
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return result, nil
}
