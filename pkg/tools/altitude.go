package tools

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/topomcp/pkg/geo"
	"github.com/NERVsystems/topomcp/pkg/topocode"
	"github.com/NERVsystems/topomcp/pkg/topocoding"
)

// maxAltitudeBatches bounds how many requests one batched lookup may make.
const maxAltitudeBatches = 20

// AltitudeClient is the subset of *topocoding.Client used by the altitude tool.
type AltitudeClient interface {
	Altitudes(ctx context.Context, points []geo.Location) (*topocoding.Profile, error)
	AltitudesBatched(ctx context.Context, points []geo.Location) (*topocoding.Profile, error)
	MaxPoints() int
}

// GetAltitudesTool returns a tool definition for altitude lookups
func GetAltitudesTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Look up ground altitudes for a list of coordinates or along a path using the topocoding.com API"),
		mcp.WithNumber("resample",
			mcp.Description("Resample the path to this many evenly spaced points before the lookup"),
		),
		mcp.WithNumber("max_segment_km",
			mcp.Description("Densify the path so no segment exceeds this length before the lookup"),
		),
		mcp.WithString("units",
			mcp.Description("Altitude units: meters or feet"),
			mcp.Enum(string(UnitsMeters), string(UnitsFeet)),
			mcp.DefaultString(string(UnitsMeters)),
		),
		mcp.WithBoolean("batch",
			mcp.Description(fmt.Sprintf("Split paths longer than the per-request point limit into up to %d requests instead of failing", maxAltitudeBatches)),
		),
	}
	opts = append(opts, withPathParams()...)
	return mcp.NewTool("get_altitudes", opts...)
}

// HandleGetAltitudes implements altitude lookups
func (r *Registry) HandleGetAltitudes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.logger.With("tool", "get_altitudes")

	points, err := parsePath(req)
	if err != nil {
		return ErrorWithGuidance(ValidationError(err)), nil
	}

	units := AltitudeUnits(mcp.ParseString(req, "units", string(UnitsMeters)))
	if units != UnitsMeters && units != UnitsFeet {
		return ErrorWithGuidance(ValidationError(fmt.Errorf("unsupported units %q", units))), nil
	}

	// One request, or a bounded number of them when batching
	batch := mcp.ParseBoolean(req, "batch", false)
	limit := r.client.MaxPoints()
	if batch {
		limit *= maxAltitudeBatches
	}

	// Prepare the path
	n, err := parseCount(req, "resample", limit)
	if err == nil {
		if n > 0 {
			points, err = geo.Resample(points, n)
		} else if maxKm := mcp.ParseFloat64(req, "max_segment_km", 0); maxKm > 0 {
			points, err = geo.DensifyLimit(points, maxKm, limit)
		}
	}
	if err != nil {
		if isInputError(err) {
			return ErrorWithGuidance(ValidationError(err)), nil
		}
		return ErrorWithGuidance(r.altitudeError(err)), nil
	}
	if batch && len(points) > limit {
		return ErrorWithGuidance(r.altitudeError(&geo.PathTooLongError{Max: limit})), nil
	}

	var profile *topocoding.Profile
	if batch {
		profile, err = r.client.AltitudesBatched(ctx, points)
	} else {
		profile, err = r.client.Altitudes(ctx, points)
	}
	if err != nil {
		logger.Error("altitude lookup failed", "points", len(points), "error", err)
		return ErrorWithGuidance(r.altitudeError(err)), nil
	}

	result, err := jsonResult(buildAltitudeOutput(profile, units))
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result"), nil
	}
	return result, nil
}

// altitudeError classifies err with guidance that names this tool's
// parameters.
func (r *Registry) altitudeError(err error) *APIError {
	apiErr := classifyError(err)
	if errors.Is(err, topocode.ErrTooManyPoints) || errors.Is(err, geo.ErrPathTooLong) {
		apiErr.Guidance = GuidanceAltitudePoints
	}
	return apiErr
}

// buildAltitudeOutput converts a profile into per-point samples with
// cumulative distance and elevation statistics.
func buildAltitudeOutput(profile *topocoding.Profile, units AltitudeUnits) AltitudeOutput {
	output := AltitudeOutput{
		Units:    units,
		Points:   make([]AltitudePoint, len(profile.Points)),
		Requests: len(profile.Encoded),
	}
	if len(profile.Points) == 0 {
		return output
	}

	output.Min = math.Inf(1)
	output.Max = math.Inf(-1)

	var distance float64
	for i, p := range profile.Points {
		alt := profile.Altitudes[i]
		if units == UnitsFeet {
			alt = topocoding.MetersToFeet(alt)
		}
		if i > 0 {
			distance += geo.Distance(profile.Points[i-1], p)
			delta := alt - output.Points[i-1].Altitude
			if delta > 0 {
				output.Ascent += delta
			} else {
				output.Descent -= delta
			}
		}

		output.Points[i] = AltitudePoint{
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
			Altitude:   alt,
			DistanceKm: distance,
		}
		output.Min = math.Min(output.Min, alt)
		output.Max = math.Max(output.Max, alt)
	}
	output.LengthKm = distance
	return output
}
