package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	// Test cases with known distances on a sphere of radius EarthRadius
	tests := []struct {
		name      string
		p1        Location
		p2        Location
		expected  float64
		tolerance float64 // relative tolerance (e.g., 0.001 for 0.1%)
	}{
		{
			name:     "Same point",
			p1:       Location{Latitude: 55.7558, Longitude: 37.6173},
			p2:       Location{Latitude: 55.7558, Longitude: 37.6173},
			expected: 0,
		},
		{
			name:      "Quarter great circle along the equator",
			p1:        Location{Latitude: 0, Longitude: 0},
			p2:        Location{Latitude: 0, Longitude: 90},
			expected:  EarthRadius * math.Pi / 2, // ~10018.75 km
			tolerance: 1e-9,
		},
		{
			name:      "Equator to pole",
			p1:        Location{Latitude: 0, Longitude: 0},
			p2:        Location{Latitude: 90, Longitude: 0},
			expected:  EarthRadius * math.Pi / 2,
			tolerance: 1e-9,
		},
		{
			name:      "Moscow to Saint Petersburg",
			p1:        Location{Latitude: 55.7558, Longitude: 37.6173},
			p2:        Location{Latitude: 59.9343, Longitude: 30.3351},
			expected:  633.729,
			tolerance: 0.0001,
		},
		{
			name:      "Antipodal points",
			p1:        Location{Latitude: 0, Longitude: 0},
			p2:        Location{Latitude: 0, Longitude: 180},
			expected:  EarthRadius * math.Pi, // ~20037.51 km
			tolerance: 1e-9,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Distance(tc.p1, tc.p2)
			if tc.expected == 0 {
				assert.Equal(t, 0.0, result)
				return
			}
			assert.InEpsilon(t, tc.expected, result, tc.tolerance)
		})
	}
}

func TestDistance_Properties(t *testing.T) {
	points := []Location{
		{Latitude: 0, Longitude: 0},
		{Latitude: 37.7749, Longitude: -122.4194},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 90, Longitude: 0},
		{Latitude: -90, Longitude: 180},
		{Latitude: 64.1466, Longitude: -21.9426},
		{Latitude: -37.7749, Longitude: 57.5806},
	}

	for _, p1 := range points {
		assert.Equal(t, 0.0, Distance(p1, p1), "distance to self for %s", p1)
		for _, p2 := range points {
			d := Distance(p1, p2)
			assert.Equal(t, d, Distance(p2, p1), "symmetry for %s and %s", p1, p2)
			assert.False(t, math.IsNaN(d), "NaN distance for %s and %s", p1, p2)
			assert.LessOrEqual(t, d, math.Pi*EarthRadius+1e-9)
		}
	}
}

func TestDistance_NaNPropagates(t *testing.T) {
	d := Distance(Location{Latitude: math.NaN()}, Location{})
	assert.True(t, math.IsNaN(d))
}

func TestPathLength(t *testing.T) {
	path := []Location{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 45},
		{Latitude: 0, Longitude: 90},
	}
	assert.InEpsilon(t, EarthRadius*math.Pi/2, PathLength(path), 1e-9)
	assert.Equal(t, 0.0, PathLength(path[:1]))
	assert.Equal(t, 0.0, PathLength(nil))
}

func TestValidateCoords(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{name: "valid coordinates", lat: 40.7128, lon: -74.0060},
		{name: "valid coordinates at boundaries", lat: 90.0, lon: 180.0},
		{name: "valid coordinates at negative boundaries", lat: -90.0, lon: -180.0},
		{name: "invalid latitude too high", lat: 91.0, lon: -74.0060, wantErr: true},
		{name: "invalid latitude too low", lat: -91.0, lon: -74.0060, wantErr: true},
		{name: "invalid longitude too high", lat: 40.7128, lon: 181.0, wantErr: true},
		{name: "invalid longitude too low", lat: 40.7128, lon: -181.0, wantErr: true},
		{name: "NaN latitude", lat: math.NaN(), lon: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoords(tt.lat, tt.lon)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	t.Run("Creation and extension", func(t *testing.T) {
		bbox := NewBoundingBox()
		assert.Equal(t, BoundingBox{MinLat: 90, MinLon: 180, MaxLat: -90, MaxLon: -180}, *bbox)

		bbox.ExtendWithPoint(37.7749, -122.4194) // San Francisco
		bbox.ExtendWithPoint(40.7128, -74.0060)  // New York
		bbox.ExtendWithPoint(39.0, -100.0)       // already contained

		assert.Equal(t, BoundingBox{MinLat: 37.7749, MinLon: -122.4194, MaxLat: 40.7128, MaxLon: -74.0060}, *bbox)
		assert.Equal(t, "(37.774900,-122.419400,40.712800,-74.006000)", bbox.String())
	})

	t.Run("BoundsOf", func(t *testing.T) {
		assert.Nil(t, BoundsOf(nil))

		bb := BoundsOf([]Location{{Latitude: 1, Longitude: 2}, {Latitude: -3, Longitude: 4}})
		require.NotNil(t, bb)
		assert.Equal(t, BoundingBox{MinLat: -3, MinLon: 2, MaxLat: 1, MaxLon: 4}, *bb)
	})
}
