package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/twpayne/go-kml"

	"github.com/NERVsystems/topomcp/pkg/geo"
)

// DensifyPathTool returns a tool definition for path densification
func DensifyPathTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Insert great-circle points along a path so no segment exceeds a maximum length, or resample it to a fixed number of evenly spaced points"),
		mcp.WithNumber("max_segment_km",
			mcp.Description(fmt.Sprintf("Maximum segment length in kilometers (ignored when count is set); the result may hold at most %d points", geo.MaxPathPoints)),
			mcp.DefaultNumber(10),
		),
		mcp.WithNumber("count",
			mcp.Description(fmt.Sprintf("Resample the path to exactly this many evenly spaced points (at most %d)", geo.MaxPathPoints)),
		),
		mcp.WithString("format",
			mcp.Description("Output format: json, polyline, or kml"),
			mcp.Enum(FormatJSON, FormatPolyline, FormatKML),
			mcp.DefaultString(FormatJSON),
		),
	}
	opts = append(opts, withPathParams()...)
	return mcp.NewTool("densify_path", opts...)
}

// HandleDensifyPath implements path densification and resampling
func HandleDensifyPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "densify_path")

	points, err := parsePath(req)
	if err != nil {
		return ErrorWithGuidance(ValidationError(err)), nil
	}

	format := mcp.ParseString(req, "format", FormatJSON)
	if format != FormatJSON && format != FormatPolyline && format != FormatKML {
		return ErrorWithGuidance(ValidationError(fmt.Errorf("unsupported format %q", format))), nil
	}

	count, err := parseCount(req, "count", geo.MaxPathPoints)
	if err != nil {
		return ErrorWithGuidance(classifyError(err)), nil
	}

	var path []geo.Location
	if count > 0 {
		path, err = geo.Resample(points, count)
	} else {
		path, err = geo.Densify(points, mcp.ParseFloat64(req, "max_segment_km", 10))
	}
	if err != nil {
		if isInputError(err) {
			return ErrorWithGuidance(ValidationError(err)), nil
		}
		return ErrorWithGuidance(classifyError(err)), nil
	}

	output := PathOutput{
		Format:   format,
		Count:    len(path),
		LengthKm: geo.PathLength(path),
		Bounds:   geo.BoundsOf(path),
	}

	switch format {
	case FormatPolyline:
		output.Polyline = encodePolyline(path)
	case FormatKML:
		doc, err := pathKML(path)
		if err != nil {
			logger.Error("failed to write KML", "error", err)
			return ErrorResponse("Failed to generate KML"), nil
		}
		output.KML = doc
	default:
		output.Points = path
	}

	logger.Debug("prepared path", "input", len(points), "output", len(path), "format", format)

	result, err := jsonResult(output)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return result, nil
}

func isInputError(err error) bool {
	return errors.Is(err, geo.ErrInvalidSegmentLength) || errors.Is(err, geo.ErrInvalidSampleCount)
}

// parseCount reads a point count argument. Absent or non-positive values
// yield 0. The limit is checked on the raw number so huge values never reach
// an int conversion.
func parseCount(req mcp.CallToolRequest, name string, limit int) (int, error) {
	f := mcp.ParseFloat64(req, name, 0)
	if !(f > 0) {
		return 0, nil
	}
	if f > float64(limit) {
		return 0, &geo.PathTooLongError{Max: limit}
	}
	return int(f), nil
}

// pathKML renders the path as a single tessellated KML LineString.
func pathKML(points []geo.Location) (string, error) {
	coords := make([]kml.Coordinate, len(points))
	for i, p := range points {
		coords[i] = kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
	}

	doc := kml.KML(
		kml.Document(
			kml.Name("topomcp path"),
			kml.Placemark(
				kml.Name(fmt.Sprintf("%d points", len(points))),
				kml.LineString(
					kml.Tessellate(true),
					kml.Coordinates(coords...),
				),
			),
		),
	)

	var buf bytes.Buffer
	if err := doc.WriteIndent(&buf, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
