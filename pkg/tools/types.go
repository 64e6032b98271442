// Package tools provides the topocoding MCP tools implementations.
package tools

import (
	"github.com/NERVsystems/topomcp/pkg/geo"
)

// EncodeOutput defines the output format for encoded coordinates
type EncodeOutput struct {
	Encoded string `json:"encoded"`
	Points  int    `json:"points"`
	Length  int    `json:"length"`
}

// DistanceOutput defines the output format for great-circle distances
type DistanceOutput struct {
	From       geo.Location `json:"from"`
	To         geo.Location `json:"to"`
	Kilometers float64      `json:"distance_km"`
	Meters     float64      `json:"distance_m"`
}

// InterpolateOutput defines the output format for a point on a great circle
type InterpolateOutput struct {
	From     geo.Location          `json:"from"`
	To       geo.Location          `json:"to"`
	Fraction float64               `json:"fraction"`
	Point    geo.GreatCircleResult `json:"point"`
}

// PathOutput defines the output format for densified or resampled paths
type PathOutput struct {
	Format   string           `json:"format"`
	Count    int              `json:"count"`
	LengthKm float64          `json:"length_km"`
	Bounds   *geo.BoundingBox `json:"bounds,omitempty"`
	Points   []geo.Location   `json:"points,omitempty"`
	Polyline string           `json:"polyline,omitempty"`
	KML      string           `json:"kml,omitempty"`
}

// AltitudePoint is a single sample of an altitude profile
type AltitudePoint struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Altitude   float64 `json:"altitude"`
	DistanceKm float64 `json:"distance_km"` // cumulative from the first point
}

// AltitudeOutput defines the output format for altitude lookups
type AltitudeOutput struct {
	Units    AltitudeUnits   `json:"units"`
	Points   []AltitudePoint `json:"points"`
	Min      float64         `json:"min"`
	Max      float64         `json:"max"`
	Ascent   float64         `json:"ascent"`
	Descent  float64         `json:"descent"`
	LengthKm float64         `json:"length_km"`
	Requests int             `json:"requests"`
}

// AltitudeUnits represents the unit altitudes are reported in
type AltitudeUnits string

const (
	UnitsMeters AltitudeUnits = "meters"
	UnitsFeet   AltitudeUnits = "feet"
)

// Path output formats
const (
	FormatJSON     = "json"
	FormatPolyline = "polyline"
	FormatKML      = "kml"
)
