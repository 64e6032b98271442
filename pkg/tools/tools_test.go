package tools

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/topomcp/pkg/geo"
	"github.com/NERVsystems/topomcp/pkg/testutil"
	"github.com/NERVsystems/topomcp/pkg/topocode"
)

func decodeResult(t *testing.T, text string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(text), v), "result: %s", text)
}

func TestHandleEncodeCoordinates(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		expected    string
		expectError bool
	}{
		{
			name: "Object points",
			args: map[string]any{
				"points": []any{
					map[string]any{"latitude": 0.0, "longitude": 0.0},
					map[string]any{"latitude": 45.0, "longitude": 90.0},
				},
			},
			expected: "aaaaaaarrrrrrs",
		},
		{
			name: "Pair points with string values",
			args: map[string]any{
				"points": []any{
					[]any{"-45", "-90"},
				},
			},
			expected: "ZZZZZZ2",
		},
		{
			name: "Short keys",
			args: map[string]any{
				"points": []any{
					map[string]any{"lat": 90, "lng": 180},
				},
			},
			expected: "IIIIIIK",
		},
		{
			name:     "Polyline",
			args:     map[string]any{"polyline": "_p~iF~ps|U"},
			expected: "oT0*wyB",
		},
		{
			name:     "Empty points",
			args:     map[string]any{"points": []any{}},
			expected: "",
		},
		{
			name:        "Missing path",
			args:        map[string]any{},
			expectError: true,
		},
		{
			name: "Latitude out of range",
			args: map[string]any{
				"points": []any{map[string]any{"latitude": 91, "longitude": 0}},
			},
			expectError: true,
		},
		{
			name: "Missing longitude",
			args: map[string]any{
				"points": []any{map[string]any{"latitude": 10}},
			},
			expectError: true,
		},
		{
			name: "Malformed pair",
			args: map[string]any{
				"points": []any{[]any{1.0, 2.0, 3.0}},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewCallToolRequest("encode_coordinates", tt.args)
			result, err := HandleEncodeCoordinates(context.Background(), req)
			require.NoError(t, err)
			require.NotNil(t, result)

			if tt.expectError {
				assert.True(t, result.IsError)
				assert.Contains(t, testutil.ResultText(result), "Guidance:")
				return
			}

			require.False(t, result.IsError, testutil.ResultText(result))
			var output EncodeOutput
			decodeResult(t, testutil.ResultText(result), &output)
			assert.Equal(t, tt.expected, output.Encoded)
			assert.Equal(t, len(tt.expected), output.Length)
			assert.Equal(t, len(tt.expected)/topocode.CharsPerPoint, output.Points)
		})
	}
}

func TestHandleEncodeCoordinates_TooManyPoints(t *testing.T) {
	points := make([]any, topocode.MaxPoints+1)
	for i := range points {
		points[i] = []any{10.0, 20.0}
	}

	req := testutil.NewCallToolRequest("encode_coordinates", map[string]any{"points": points})
	result, err := HandleEncodeCoordinates(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, testutil.ResultText(result), GuidanceTooManyPoints)
	assert.Contains(t, testutil.ResultText(result), "densify_path")
	assert.NotContains(t, testutil.ResultText(result), "pass resample")
}

func TestHandleGreatCircleDistance(t *testing.T) {
	req := testutil.NewCallToolRequest("great_circle_distance", map[string]any{
		"from_lat": 0.0, "from_lon": 0.0,
		"to_lat": 0.0, "to_lon": 90.0,
	})
	result, err := HandleGreatCircleDistance(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var output DistanceOutput
	decodeResult(t, testutil.ResultText(result), &output)
	assert.InDelta(t, 10018.754, output.Kilometers, 0.001)
	assert.InDelta(t, 10018754, output.Meters, 1)

	req = testutil.NewCallToolRequest("great_circle_distance", map[string]any{
		"from_lat": 0.0, "from_lon": 200.0,
		"to_lat": 0.0, "to_lon": 90.0,
	})
	result, err = HandleGreatCircleDistance(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleInterpolateGreatCircle(t *testing.T) {
	tests := []struct {
		name        string
		args        map[string]any
		expected    geo.Location
		expectError string
	}{
		{
			name: "Midpoint",
			args: map[string]any{
				"from_lat": 0.0, "from_lon": 0.0,
				"to_lat": 0.0, "to_lon": 90.0,
				"fraction": 0.5,
			},
			expected: geo.Location{Latitude: 0, Longitude: 45},
		},
		{
			name: "Coincident endpoints",
			args: map[string]any{
				"from_lat": 12.0, "from_lon": 34.0,
				"to_lat": 12.0, "to_lon": 34.0,
				"fraction": 0.7,
			},
			expected: geo.Location{Latitude: 12, Longitude: 34},
		},
		{
			name: "Antipodal endpoints",
			args: map[string]any{
				"from_lat": 0.0, "from_lon": 0.0,
				"to_lat": 0.0, "to_lon": 180.0,
				"fraction": 0.5,
			},
			expectError: GuidanceDegenerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewCallToolRequest("interpolate_great_circle", tt.args)
			result, err := HandleInterpolateGreatCircle(context.Background(), req)
			require.NoError(t, err)

			if tt.expectError != "" {
				assert.True(t, result.IsError)
				assert.Contains(t, testutil.ResultText(result), tt.expectError)
				return
			}

			require.False(t, result.IsError, testutil.ResultText(result))
			var output InterpolateOutput
			decodeResult(t, testutil.ResultText(result), &output)
			assert.InDelta(t, tt.expected.Latitude, output.Point.Latitude, 1e-6)
			assert.InDelta(t, tt.expected.Longitude, output.Point.Longitude, 1e-6)
		})
	}
}

func TestHandleDensifyPath(t *testing.T) {
	path := []any{
		map[string]any{"latitude": 0.0, "longitude": 0.0},
		map[string]any{"latitude": 0.0, "longitude": 1.0},
	}

	t.Run("JSON", func(t *testing.T) {
		req := testutil.NewCallToolRequest("densify_path", map[string]any{
			"points":         path,
			"max_segment_km": 25.0,
		})
		result, err := HandleDensifyPath(context.Background(), req)
		require.NoError(t, err)
		require.False(t, result.IsError, testutil.ResultText(result))

		var output PathOutput
		decodeResult(t, testutil.ResultText(result), &output)
		assert.Equal(t, FormatJSON, output.Format)
		assert.Equal(t, 6, output.Count)
		assert.Len(t, output.Points, 6)
		assert.InDelta(t, 111.319, output.LengthKm, 0.001)
		require.NotNil(t, output.Bounds)
		assert.Equal(t, 1.0, output.Bounds.MaxLon)
	})

	t.Run("Resample to polyline", func(t *testing.T) {
		req := testutil.NewCallToolRequest("densify_path", map[string]any{
			"points": path,
			"count":  3.0,
			"format": FormatPolyline,
		})
		result, err := HandleDensifyPath(context.Background(), req)
		require.NoError(t, err)
		require.False(t, result.IsError, testutil.ResultText(result))

		var output PathOutput
		decodeResult(t, testutil.ResultText(result), &output)
		assert.Equal(t, 3, output.Count)
		assert.Empty(t, output.Points)

		decoded, err := decodePolyline(output.Polyline)
		require.NoError(t, err)
		require.Len(t, decoded, 3)
		assert.InDelta(t, 0.5, decoded[1].Longitude, 1e-5)
	})

	t.Run("KML", func(t *testing.T) {
		req := testutil.NewCallToolRequest("densify_path", map[string]any{
			"points": path,
			"format": FormatKML,
		})
		result, err := HandleDensifyPath(context.Background(), req)
		require.NoError(t, err)
		require.False(t, result.IsError, testutil.ResultText(result))

		var output PathOutput
		decodeResult(t, testutil.ResultText(result), &output)
		assert.Contains(t, output.KML, "<LineString>")
		assert.Contains(t, output.KML, "<coordinates>")
		assert.True(t, strings.HasPrefix(output.KML, "<?xml") || strings.HasPrefix(output.KML, "<kml"))
	})

	t.Run("Invalid format", func(t *testing.T) {
		req := testutil.NewCallToolRequest("densify_path", map[string]any{
			"points": path,
			"format": "gpx",
		})
		result, err := HandleDensifyPath(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("Invalid segment length", func(t *testing.T) {
		req := testutil.NewCallToolRequest("densify_path", map[string]any{
			"points":         path,
			"max_segment_km": -1.0,
		})
		result, err := HandleDensifyPath(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, testutil.ResultText(result), geo.ErrInvalidSegmentLength.Error())
	})
}

func TestHandleDensifyPath_PathTooLong(t *testing.T) {
	quarter := []any{[]any{0.0, 0.0}, []any{0.0, 90.0}}

	tests := []struct {
		name string
		args map[string]any
	}{
		{"Tiny segments", map[string]any{"points": quarter, "max_segment_km": 0.01, "format": FormatPolyline}},
		{"Smallest segment", map[string]any{"points": quarter, "max_segment_km": math.SmallestNonzeroFloat64}},
		{"Huge count", map[string]any{"points": quarter, "count": 1e9}},
		{"Count beyond int range", map[string]any{"points": quarter, "count": 1e30}},
		{"Count one over the limit", map[string]any{"points": quarter, "count": float64(geo.MaxPathPoints + 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewCallToolRequest("densify_path", tt.args)
			result, err := HandleDensifyPath(context.Background(), req)
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, testutil.ResultText(result), geo.ErrPathTooLong.Error())
			assert.Contains(t, testutil.ResultText(result), GuidancePathTooLong)
		})
	}
}

func TestHandleDensifyPath_AtLimit(t *testing.T) {
	req := testutil.NewCallToolRequest("densify_path", map[string]any{
		"points": []any{[]any{0.0, 0.0}, []any{0.0, 90.0}},
		"count":  float64(geo.MaxPathPoints),
		"format": FormatPolyline,
	})
	result, err := HandleDensifyPath(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError, testutil.ResultText(result))

	var output PathOutput
	decodeResult(t, testutil.ResultText(result), &output)
	assert.Equal(t, geo.MaxPathPoints, output.Count)
}

func TestPolylineRoundTrip(t *testing.T) {
	points, err := decodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.InDelta(t, 38.5, points[0].Latitude, 1e-9)
	assert.InDelta(t, -126.453, points[2].Longitude, 1e-9)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encodePolyline(points))

	_, err = decodePolyline("_p~iF~ps|")
	assert.Error(t, err)
}
