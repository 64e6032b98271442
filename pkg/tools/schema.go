// Package tools provides the topocoding MCP tools implementations.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cast"
	"github.com/twpayne/go-polyline"

	"github.com/NERVsystems/topomcp/pkg/geo"
)

var errNoPath = errors.New("either points or polyline must be provided")

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// jsonResult marshals v into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// withPathParams adds the shared points/polyline parameters to a tool.
func withPathParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithArray("points",
			mcp.Description("Ordered coordinates, each {\"latitude\": ..., \"longitude\": ...} or [lat, lon]"),
		),
		mcp.WithString("polyline",
			mcp.Description("Google encoded polyline (precision 5), used when points is omitted"),
		),
	}
}

// parsePath reads the path from either the points array or the polyline
// string argument and validates every coordinate.
func parsePath(req mcp.CallToolRequest) ([]geo.Location, error) {
	var points []geo.Location

	if raw, ok := req.Params.Arguments["points"]; ok && raw != nil {
		parsed, err := parsePoints(raw)
		if err != nil {
			return nil, err
		}
		points = parsed
	} else if encoded := mcp.ParseString(req, "polyline", ""); encoded != "" {
		decoded, err := decodePolyline(encoded)
		if err != nil {
			return nil, err
		}
		points = decoded
	} else {
		return nil, errNoPath
	}

	for i, p := range points {
		if err := geo.ValidateCoords(p.Latitude, p.Longitude); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return points, nil
}

// parsePoints converts a JSON-decoded array into locations. Numeric values
// may arrive as numbers or strings.
func parsePoints(raw any) ([]geo.Location, error) {
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("points must be an array: %w", err)
	}

	points := make([]geo.Location, 0, len(items))
	for i, item := range items {
		p, err := parsePoint(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func parsePoint(item any) (geo.Location, error) {
	switch v := item.(type) {
	case map[string]any:
		lat, err := firstFloat(v, "latitude", "lat")
		if err != nil {
			return geo.Location{}, err
		}
		lon, err := firstFloat(v, "longitude", "lon", "lng")
		if err != nil {
			return geo.Location{}, err
		}
		return geo.Location{Latitude: lat, Longitude: lon}, nil
	case []any:
		if len(v) != 2 {
			return geo.Location{}, fmt.Errorf("expected [lat, lon], got %d values", len(v))
		}
		lat, err := cast.ToFloat64E(v[0])
		if err != nil {
			return geo.Location{}, fmt.Errorf("invalid latitude: %w", err)
		}
		lon, err := cast.ToFloat64E(v[1])
		if err != nil {
			return geo.Location{}, fmt.Errorf("invalid longitude: %w", err)
		}
		return geo.Location{Latitude: lat, Longitude: lon}, nil
	default:
		return geo.Location{}, fmt.Errorf("unsupported point type %T", item)
	}
}

func firstFloat(m map[string]any, keys ...string) (float64, error) {
	for _, key := range keys {
		if raw, ok := m[key]; ok {
			f, err := cast.ToFloat64E(raw)
			if err != nil {
				return 0, fmt.Errorf("invalid %s: %w", key, err)
			}
			return f, nil
		}
	}
	return 0, fmt.Errorf("missing %s", keys[0])
}

// decodePolyline decodes a Google encoded polyline into locations.
func decodePolyline(encoded string) ([]geo.Location, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("invalid polyline: %w", err)
	}
	points := make([]geo.Location, len(coords))
	for i, c := range coords {
		points[i] = geo.Location{Latitude: c[0], Longitude: c[1]}
	}
	return points, nil
}

// encodePolyline encodes locations as a Google encoded polyline.
func encodePolyline(points []geo.Location) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}
