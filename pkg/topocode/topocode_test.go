package topocode

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/topomcp/pkg/geo"
)

func TestAlphabet(t *testing.T) {
	assert.Len(t, Alphabet, 69)
	assert.Equal(t, 8.0, finalBase)

	seen := make(map[rune]bool)
	for _, r := range Alphabet {
		assert.False(t, seen[r], "duplicate symbol %q", r)
		seen[r] = true
	}
}

func TestEncode_Golden(t *testing.T) {
	tests := []struct {
		name     string
		point    geo.Location
		expected string
	}{
		{name: "Origin", point: geo.Location{Latitude: 0, Longitude: 0}, expected: "aaaaaaa"},
		{name: "Negative zero", point: geo.Location{Latitude: math.Copysign(0, -1), Longitude: 0}, expected: "aaaaaaa"},
		{name: "Quarter ranges", point: geo.Location{Latitude: 45, Longitude: 90}, expected: "rrrrrrs"},
		{name: "Negative quarter ranges", point: geo.Location{Latitude: -45, Longitude: -90}, expected: "ZZZZZZ2"},
		{name: "North pole antimeridian", point: geo.Location{Latitude: 90, Longitude: 180}, expected: "IIIIIIK"},
		{name: "South pole antimeridian", point: geo.Location{Latitude: -90, Longitude: -180}, expected: "IIIIIIK"},
		{name: "Just below zero", point: geo.Location{Latitude: 1e-9, Longitude: -1e-9}, expected: "a)a)a)h"},
		{name: "Moscow", point: geo.Location{Latitude: 55.7558, Longitude: 37.6173}, expected: "vhzoZHf"},
		{name: "Sydney", point: geo.Location{Latitude: -33.8688, Longitude: 151.2093}, expected: "4Cb(lZQ"},
		{name: "Polyline reference point", point: geo.Location{Latitude: 38.5, Longitude: -120.2}, expected: "oT0*wyB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := Encode([]geo.Location{tc.point})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, encoded)
		})
	}
}

func TestEncode_PreservesOrder(t *testing.T) {
	encoded, err := Encode([]geo.Location{
		{Latitude: 0, Longitude: 0},
		{Latitude: 45, Longitude: 90},
	})
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaarrrrrrs", encoded)

	reversed, err := Encode([]geo.Location{
		{Latitude: 45, Longitude: 90},
		{Latitude: 0, Longitude: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "rrrrrrsaaaaaaa", reversed)
}

func TestEncode_Length(t *testing.T) {
	points := make([]geo.Location, 0, MaxPoints)
	for n := 0; n <= MaxPoints; n++ {
		encoded, err := Encode(points)
		require.NoError(t, err, "n=%d", n)
		require.Len(t, encoded, CharsPerPoint*n, "n=%d", n)
		require.True(t, Safe(encoded), "n=%d", n)

		// Spread points over the whole coordinate range
		points = append(points, geo.Location{
			Latitude:  -90 + float64(n)*180/MaxPoints,
			Longitude: 180 - float64(n)*360/MaxPoints,
		})
	}
}

func TestEncode_TooManyPoints(t *testing.T) {
	points := make([]geo.Location, MaxPoints+1)
	for i := range points {
		points[i] = geo.Location{Latitude: 55.7558, Longitude: 37.6173}
	}

	encoded, err := Encode(points)
	require.Error(t, err)
	assert.Empty(t, encoded)
	assert.True(t, errors.Is(err, ErrTooManyPoints))

	var tooMany *TooManyPointsError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, MaxPoints+1, tooMany.Count)
	assert.Equal(t, MaxPoints, tooMany.Max)

	// Exactly the limit succeeds
	encoded, err = Encode(points[:MaxPoints])
	require.NoError(t, err)
	assert.Len(t, encoded, 1960)
	assert.Equal(t, strings.Repeat("vhzoZHf", MaxPoints), encoded)
}

func TestEncoder_WithMaxPoints(t *testing.T) {
	enc := NewEncoder(WithMaxPoints(2))
	assert.Equal(t, 2, enc.MaxPoints())

	_, err := enc.Encode(make([]geo.Location, 2))
	require.NoError(t, err)

	_, err = enc.Encode(make([]geo.Location, 3))
	assert.ErrorIs(t, err, ErrTooManyPoints)

	// Non-positive limits keep the default
	assert.Equal(t, MaxPoints, NewEncoder(WithMaxPoints(0)).MaxPoints())
	assert.Equal(t, MaxPoints, NewEncoder(WithMaxPoints(-5)).MaxPoints())
}

func TestEncode_Deterministic(t *testing.T) {
	points := []geo.Location{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
	}

	first, err := Encode(points)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := Encode(points)
			assert.NoError(t, err)
			assert.Equal(t, first, again)
		}()
	}
	wg.Wait()
}

func TestEncode_GarbageInput(t *testing.T) {
	// Out-of-range and non-finite coordinates are not validated but must
	// still produce alphabet-only output of the right length.
	points := []geo.Location{
		{Latitude: math.NaN(), Longitude: math.NaN()},
		{Latitude: math.Inf(1), Longitude: math.Inf(-1)},
		{Latitude: 270, Longitude: 540},
		{Latitude: -1000, Longitude: -1e300},
		{Latitude: -180 - 1e-13, Longitude: -360 - 1e-13},
	}

	encoded, err := Encode(points)
	require.NoError(t, err)
	assert.Len(t, encoded, CharsPerPoint*len(points))
	assert.True(t, Safe(encoded))
	assert.Equal(t, "aaaaaaa", encoded[:CharsPerPoint])
}

func TestSafe(t *testing.T) {
	assert.True(t, Safe(""))
	assert.True(t, Safe(Alphabet))
	assert.False(t, Safe("abc~"))
	assert.False(t, Safe("a b"))
	assert.False(t, Safe("a&b"))
}
