// Package topocode packs coordinate sequences into the short URL-safe strings
// accepted by the topocoding.com altitude API.
//
// Each point becomes seven characters: three interleaved base-N digits of the
// normalized latitude and longitude followed by one combined digit of lower
// precision, where N is the alphabet length. The encoding is lossy and one-way;
// there is no decoder.
//
// Coordinates are not range-checked. Out-of-range or non-finite values encode
// to deterministic but meaningless characters, so callers that need strict
// validation must validate before encoding.
package topocode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/NERVsystems/topomcp/pkg/geo"
)

const (
	// Alphabet is the ordered symbol set of the encoding. Every symbol is an
	// unreserved or sub-delimiter URI character.
	Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.!*()"

	// MaxPoints bounds the number of points so the encoded string fits a safe URL length.
	MaxPoints = 280

	// CharsPerPoint is the encoded width of a single point.
	CharsPerPoint = 7

	// digitRounds is the number of full-precision digits emitted per coordinate.
	digitRounds = 3
)

var (
	base = float64(len(Alphabet))

	// finalBase is the per-coordinate radix of the combined last digit.
	finalBase = math.Floor(math.Sqrt(base))
)

// ErrTooManyPoints is matched by every *TooManyPointsError.
var ErrTooManyPoints = errors.New("too many points to fit into the safe URL length limit")

// TooManyPointsError reports an input sequence longer than the encoder allows.
type TooManyPointsError struct {
	Count int
	Max   int
}

// Error implements the error interface.
func (e *TooManyPointsError) Error() string {
	return fmt.Sprintf("%s: got %d, maximum is %d", ErrTooManyPoints, e.Count, e.Max)
}

// Unwrap lets errors.Is match ErrTooManyPoints.
func (e *TooManyPointsError) Unwrap() error {
	return ErrTooManyPoints
}

// Encoder encodes coordinate sequences up to a configured length.
// The zero value is not usable; call NewEncoder.
type Encoder struct {
	maxPoints int
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithMaxPoints overrides the maximum sequence length. Values ≤ 0 are ignored.
func WithMaxPoints(n int) Option {
	return func(e *Encoder) {
		if n > 0 {
			e.maxPoints = n
		}
	}
}

// NewEncoder creates an encoder with MaxPoints as its default limit.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{maxPoints: MaxPoints}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxPoints returns the encoder's sequence limit.
func (e *Encoder) MaxPoints() int {
	return e.maxPoints
}

var defaultEncoder = NewEncoder()

// Encode encodes points with the default MaxPoints limit.
func Encode(points []geo.Location) (string, error) {
	return defaultEncoder.Encode(points)
}

// Encode returns the 7-characters-per-point encoding of points, in order.
// It fails with a *TooManyPointsError, and no output, when the sequence is
// longer than the encoder's limit.
func (e *Encoder) Encode(points []geo.Location) (string, error) {
	if len(points) > e.maxPoints {
		return "", &TooManyPointsError{Count: len(points), Max: e.maxPoints}
	}

	var sb strings.Builder
	sb.Grow(len(points) * CharsPerPoint)
	for _, p := range points {
		appendPoint(&sb, p)
	}
	return sb.String(), nil
}

func appendPoint(sb *strings.Builder, p geo.Location) {
	lat := normalize(p.Latitude, 180)
	lon := normalize(p.Longitude, 360)

	var d int
	for i := 0; i < digitRounds; i++ {
		d, lat = nextDigit(lat, base)
		sb.WriteByte(Alphabet[d])
		d, lon = nextDigit(lon, base)
		sb.WriteByte(Alphabet[d])
	}

	latDigit, _ := nextDigit(lat, finalBase)
	lonDigit, _ := nextDigit(lon, finalBase)
	sb.WriteByte(Alphabet[latDigit*int(finalBase)+lonDigit])
}

// normalize maps a coordinate onto [0, 1). Negative values are shifted up by
// span first, so the southern and western halves land above 0.5.
func normalize(v, span float64) float64 {
	if v < 0 {
		v += span
	}
	v /= span
	return v - math.Floor(v)
}

// nextDigit scales the unit fraction f by radix and splits it into an
// integer digit and the remaining fraction. The digit is clamped to
// [0, radix-1] so NaN and rounding at the top of the range stay in the alphabet.
func nextDigit(f, radix float64) (int, float64) {
	f *= radix
	d := math.Floor(f)
	rest := f - d
	switch {
	case !(d >= 0):
		d = 0
	case d > radix-1:
		d = radix - 1
	}
	return int(d), rest
}

// Safe reports whether s consists only of alphabet symbols and can therefore
// be placed in a URL query component without percent-encoding.
func Safe(s string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
