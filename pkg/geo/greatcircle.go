package geo

import (
	"errors"
	"fmt"
	"math"
)

// degenerateEpsilon bounds |sin δ| below which the interpolation weights are
// numerically meaningless.
const degenerateEpsilon = 1e-12

// MaxPathPoints is the largest path Densify and Resample will produce.
const MaxPathPoints = 10000

var (
	// ErrDegenerateGreatCircle is returned when the endpoints of an
	// interpolation are antipodal and no unique great circle joins them.
	ErrDegenerateGreatCircle = errors.New("degenerate great circle")

	// ErrInvalidSegmentLength is returned by Densify for a non-positive segment length.
	ErrInvalidSegmentLength = errors.New("segment length must be greater than 0")

	// ErrInvalidSampleCount is returned by Resample when fewer than two samples are requested.
	ErrInvalidSampleCount = errors.New("sample count must be at least 2")

	// ErrPathTooLong is returned when a densified or resampled path would
	// exceed its point limit.
	ErrPathTooLong = errors.New("path has too many points")
)

// PathTooLongError reports a path whose output size exceeds Max.
type PathTooLongError struct {
	Max int
}

// Error implements the error interface.
func (e *PathTooLongError) Error() string {
	return fmt.Sprintf("%s: result would exceed %d points", ErrPathTooLong, e.Max)
}

// Unwrap lets errors.Is match ErrPathTooLong.
func (e *PathTooLongError) Unwrap() error {
	return ErrPathTooLong
}

// DegenerateGreatCircleError describes an interpolation request whose
// endpoints do not define a unique great circle.
type DegenerateGreatCircleError struct {
	From    Location
	To      Location
	Central float64 // central angle in radians
}

// Error implements the error interface.
func (e *DegenerateGreatCircleError) Error() string {
	return fmt.Sprintf("%s: %s and %s are antipodal (central angle %.12f rad)",
		ErrDegenerateGreatCircle, e.From, e.To, e.Central)
}

// Unwrap lets errors.Is match ErrDegenerateGreatCircle.
func (e *DegenerateGreatCircleError) Unwrap() error {
	return ErrDegenerateGreatCircle
}

// GreatCircleResult is a point on a great-circle path together with its
// distance from the path start in kilometers.
type GreatCircleResult struct {
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	DistanceFromStart float64 `json:"distance_from_start_km"`
}

// Location returns the result's coordinates.
func (r GreatCircleResult) Location() Location {
	return Location{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Interpolate returns the point at fraction along the great circle from p1
// to p2. A fraction of 0 yields p1 and 1 yields p2; values outside [0, 1]
// extrapolate along the same circle.
//
// Coincident endpoints short-circuit to p1 with a zero distance. Antipodal
// endpoints return a *DegenerateGreatCircleError for every fraction other
// than 0 and 1.
func Interpolate(p1, p2 Location, fraction float64) (GreatCircleResult, error) {
	return InterpolateWithDistance(p1, p2, fraction, 0)
}

// InterpolateWithDistance is Interpolate with a precomputed p1→p2 distance in
// kilometers. A distance ≤ 0 is ignored and recomputed with Distance.
func InterpolateWithDistance(p1, p2 Location, fraction, distanceKm float64) (GreatCircleResult, error) {
	if distanceKm <= 0 {
		distanceKm = Distance(p1, p2)
	}

	// Central angle
	delta := distanceKm / EarthRadius
	if delta == 0 {
		return GreatCircleResult{Latitude: p1.Latitude, Longitude: p1.Longitude}, nil
	}

	switch fraction {
	case 0:
		return GreatCircleResult{Latitude: p1.Latitude, Longitude: p1.Longitude}, nil
	case 1:
		return GreatCircleResult{Latitude: p2.Latitude, Longitude: p2.Longitude, DistanceFromStart: distanceKm}, nil
	}

	sinDelta := math.Sin(delta)
	if math.Abs(sinDelta) < degenerateEpsilon {
		if delta < math.Pi/2 {
			return GreatCircleResult{Latitude: p1.Latitude, Longitude: p1.Longitude}, nil
		}
		return GreatCircleResult{}, &DegenerateGreatCircleError{From: p1, To: p2, Central: delta}
	}

	lat1 := toRadians(p1.Latitude)
	lon1 := toRadians(p1.Longitude)
	lat2 := toRadians(p2.Latitude)
	lon2 := toRadians(p2.Longitude)

	a := math.Sin((1-fraction)*delta) / sinDelta
	b := math.Sin(fraction*delta) / sinDelta

	// Weighted direction cosines on the unit sphere
	x := a*math.Cos(lat1)*math.Cos(lon1) + b*math.Cos(lat2)*math.Cos(lon2)
	y := a*math.Cos(lat1)*math.Sin(lon1) + b*math.Cos(lat2)*math.Sin(lon2)
	z := a*math.Sin(lat1) + b*math.Sin(lat2)

	lat := math.Atan2(z, math.Sqrt(x*x+y*y))
	lon := math.Atan2(y, x)

	return GreatCircleResult{
		Latitude:          toDegrees(lat),
		Longitude:         toDegrees(lon),
		DistanceFromStart: delta * fraction * EarthRadius,
	}, nil
}

// Densify inserts great-circle points between consecutive vertices so that
// no segment is longer than maxSegmentKm. Original vertices are kept. The
// result is limited to MaxPathPoints.
func Densify(points []Location, maxSegmentKm float64) ([]Location, error) {
	return DensifyLimit(points, maxSegmentKm, MaxPathPoints)
}

// DensifyLimit is Densify with an explicit point limit. The output size is
// computed before anything is allocated; a path that would exceed limit
// returns a *PathTooLongError.
func DensifyLimit(points []Location, maxSegmentKm float64, limit int) ([]Location, error) {
	if !(maxSegmentKm > 0) {
		return nil, ErrInvalidSegmentLength
	}
	if len(points) > limit {
		return nil, &PathTooLongError{Max: limit}
	}
	if len(points) < 2 {
		return append([]Location(nil), points...), nil
	}

	dists := make([]float64, len(points))
	steps := make([]int, len(points))
	total := 1
	for i := 1; i < len(points); i++ {
		dists[i] = Distance(points[i-1], points[i])
		n := math.Ceil(dists[i] / maxSegmentKm)
		if !(n >= 1) {
			n = 1 // NaN or zero-length segment
		}
		if n > float64(limit) {
			return nil, &PathTooLongError{Max: limit}
		}
		steps[i] = int(n)
		total += steps[i]
		if total > limit {
			return nil, &PathTooLongError{Max: limit}
		}
	}

	result := make([]Location, 0, total)
	result = append(result, points[0])
	for i := 1; i < len(points); i++ {
		from, to := points[i-1], points[i]
		for s := 1; s < steps[i]; s++ {
			r, err := InterpolateWithDistance(from, to, float64(s)/float64(steps[i]), dists[i])
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			result = append(result, r.Location())
		}
		result = append(result, to)
	}
	return result, nil
}

// Resample returns n points spaced evenly by distance along the path. The
// first and last vertices are always preserved. Paths with fewer than two
// points are returned unchanged. n is limited to MaxPathPoints.
func Resample(points []Location, n int) ([]Location, error) {
	if len(points) < 2 {
		return append([]Location(nil), points...), nil
	}
	if n < 2 {
		return nil, ErrInvalidSampleCount
	}
	if n > MaxPathPoints {
		return nil, &PathTooLongError{Max: MaxPathPoints}
	}

	// Cumulative distance at each vertex
	cumulative := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cumulative[i] = cumulative[i-1] + Distance(points[i-1], points[i])
	}
	total := cumulative[len(cumulative)-1]

	result := make([]Location, 0, n)
	result = append(result, points[0])
	seg := 1
	for k := 1; k < n-1; k++ {
		target := total * float64(k) / float64(n-1)
		for seg < len(points)-1 && cumulative[seg] < target {
			seg++
		}
		segLen := cumulative[seg] - cumulative[seg-1]
		if segLen == 0 {
			result = append(result, points[seg])
			continue
		}
		fraction := (target - cumulative[seg-1]) / segLen
		r, err := InterpolateWithDistance(points[seg-1], points[seg], fraction, segLen)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", seg, err)
		}
		result = append(result, r.Location())
	}
	result = append(result, points[len(points)-1])
	return result, nil
}
