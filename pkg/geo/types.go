// Package geo provides common geographic types and great-circle calculations.
// It centralizes the spherical math used to prepare coordinate paths before
// they are encoded, so every caller works from the same Earth model.
//
// None of the functions in this package validate coordinate ranges. Latitude
// outside [-90, 90], longitude outside [-180, 180], or NaN values produce
// garbage or NaN results instead of errors; callers that need strict input
// checks must run ValidateCoords first.
package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the WGS-84 equatorial radius in kilometers. The Earth is
// treated as a sphere of this radius; flattening is not modelled.
const EarthRadius = 6378.137

// Location represents a geographic coordinate (latitude and longitude)
// with standardized JSON field names.
//
// Example:
//
//	loc := geo.Location{Latitude: 55.7558, Longitude: 37.6173}
//	km := geo.Distance(loc, geo.Location{Latitude: 59.9343, Longitude: 30.3351})
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String returns the location as "lat,lon".
func (l Location) String() string {
	return fmt.Sprintf("%f,%f", l.Latitude, l.Longitude)
}

// ValidateCoords validates latitude and longitude values
// Returns an error if the coordinates are invalid
func ValidateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude: %f (must be between -90 and 90)", lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude: %f (must be between -180 and 180)", lon)
	}
	return nil
}

// BoundingBox represents a geographic bounding box with southwest and northeast corners
type BoundingBox struct {
	MinLat float64 `json:"min_lat"` // Southern edge (minimum latitude)
	MinLon float64 `json:"min_lon"` // Western edge (minimum longitude)
	MaxLat float64 `json:"max_lat"` // Northern edge (maximum latitude)
	MaxLon float64 `json:"max_lon"` // Eastern edge (maximum longitude)
}

// NewBoundingBox creates a new empty bounding box
func NewBoundingBox() *BoundingBox {
	return &BoundingBox{
		MinLat: 90.0, // Start with inverted min/max so any point extends correctly
		MinLon: 180.0,
		MaxLat: -90.0,
		MaxLon: -180.0,
	}
}

// BoundsOf returns the bounding box of points, or nil for an empty path.
func BoundsOf(points []Location) *BoundingBox {
	if len(points) == 0 {
		return nil
	}
	bb := NewBoundingBox()
	for _, p := range points {
		bb.ExtendWithPoint(p.Latitude, p.Longitude)
	}
	return bb
}

// ExtendWithPoint extends the bounding box to include the specified point
func (bb *BoundingBox) ExtendWithPoint(lat, lon float64) {
	if lat < bb.MinLat {
		bb.MinLat = lat
	}
	if lat > bb.MaxLat {
		bb.MaxLat = lat
	}
	if lon < bb.MinLon {
		bb.MinLon = lon
	}
	if lon > bb.MaxLon {
		bb.MaxLon = lon
	}
}

// String returns a string representation of the bounding box
func (bb *BoundingBox) String() string {
	return fmt.Sprintf("(%f,%f,%f,%f)", bb.MinLat, bb.MinLon, bb.MaxLat, bb.MaxLon)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Distance calculates the great-circle distance between two points using the
// haversine formula. The result is in kilometers.
//
// Coincident points return 0 and antipodal points return π·EarthRadius. NaN
// coordinates propagate to a NaN result.
func Distance(p1, p2 Location) float64 {
	// Convert to radians
	lat1 := toRadians(p1.Latitude)
	lon1 := toRadians(p1.Longitude)
	lat2 := toRadians(p2.Latitude)
	lon2 := toRadians(p2.Longitude)

	// Haversine formula
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a just past 1 for near-antipodal points.
	a = math.Min(a, 1)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// PathLength returns the sum of great-circle segment lengths along points, in kilometers.
func PathLength(points []Location) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}
