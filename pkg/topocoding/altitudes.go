package topocoding

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NERVsystems/topomcp/pkg/geo"
)

// feetPerMeter converts meters to international feet.
const feetPerMeter = 3.28084

// MetersToFeet converts an altitude in meters to feet.
func MetersToFeet(meters float64) float64 {
	return meters * feetPerMeter
}

// Profile is the altitude of each requested point, in meters.
type Profile struct {
	Points    []geo.Location `json:"points"`
	Altitudes []float64      `json:"altitudes"`
	// Encoded holds the topocode sent with each request, in order.
	Encoded []string `json:"encoded"`
}

// Altitudes looks up the altitude of every point with a single request.
// Paths longer than MaxPoints fail with a *topocode.TooManyPointsError;
// use AltitudesBatched for those.
func (c *Client) Altitudes(ctx context.Context, points []geo.Location) (*Profile, error) {
	encoded, err := c.encoder.Encode(points)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Points:  points,
		Encoded: []string{encoded},
	}
	if len(points) == 0 {
		profile.Altitudes = []float64{}
		return profile, nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(encoded); ok {
			c.logger.Debug("altitude cache hit", "points", len(points))
			profile.Altitudes = append([]float64(nil), cached...)
			return profile, nil
		}
	}

	body, err := c.Fetch(ctx, encoded)
	if err != nil {
		return nil, err
	}

	altitudes, err := ParseAltitudes(body)
	if err != nil {
		return nil, err
	}
	if len(altitudes) != len(points) {
		return nil, fmt.Errorf("%w: requested %d, got %d",
			ErrAltitudeCountMismatch, len(points), len(altitudes))
	}

	if c.cache != nil {
		c.cache.Add(encoded, append([]float64(nil), altitudes...))
	}

	profile.Altitudes = altitudes
	return profile, nil
}

// AltitudesBatched splits points into requests of at most MaxPoints each,
// runs them concurrently, and returns one profile in the original order.
func (c *Client) AltitudesBatched(ctx context.Context, points []geo.Location) (*Profile, error) {
	size := c.MaxPoints()
	if len(points) <= size {
		return c.Altitudes(ctx, points)
	}

	var chunks [][]geo.Location
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))
		chunks = append(chunks, points[start:end])
	}

	results := make([]*Profile, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			p, err := c.Altitudes(gctx, chunk)
			if err != nil {
				return fmt.Errorf("batch %d of %d: %w", i+1, len(chunks), err)
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &Profile{
		Points:    points,
		Altitudes: make([]float64, 0, len(points)),
		Encoded:   make([]string, 0, len(chunks)),
	}
	for _, r := range results {
		profile.Altitudes = append(profile.Altitudes, r.Altitudes...)
		profile.Encoded = append(profile.Encoded, r.Encoded...)
	}
	return profile, nil
}

// ParseAltitudes extracts the first bracketed, comma-separated list of
// numbers from a response body. Values may be quoted.
func ParseAltitudes(body []byte) ([]float64, error) {
	open := bytes.IndexByte(body, '[')
	if open < 0 {
		return nil, fmt.Errorf("%w: %q", ErrAltitudesNotFound, snippet(body))
	}
	closeIdx := bytes.IndexByte(body[open:], ']')
	if closeIdx < 0 {
		return nil, fmt.Errorf("%w: unterminated list", ErrAltitudesNotFound)
	}

	list := strings.TrimSpace(string(body[open+1 : open+closeIdx]))
	if list == "" {
		return []float64{}, nil
	}

	fields := strings.Split(list, ",")
	altitudes := make([]float64, 0, len(fields))
	for i, field := range fields {
		value := strings.Trim(strings.TrimSpace(field), `"'`)
		alt, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, &ParseError{Index: i, Value: value, Err: err}
		}
		altitudes = append(altitudes, alt)
	}
	return altitudes, nil
}
