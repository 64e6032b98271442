package topocoding

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a request is attempted without an API key.
	ErrMissingAPIKey = errors.New("topocoding API key is not configured")

	// ErrAltitudesNotFound is returned when a response contains no altitude list.
	ErrAltitudesNotFound = errors.New("altitude list not found in response")

	// ErrAltitudeCountMismatch is returned when the number of altitudes does
	// not match the number of requested points.
	ErrAltitudeCountMismatch = errors.New("altitude count does not match point count")
)

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("topocoding API error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("topocoding API error (%d): %s", e.StatusCode, e.Body)
}

// ParseError reports a malformed value inside the altitude list.
type ParseError struct {
	Index int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid altitude %q at index %d: %v", e.Value, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// snippet shortens a response body for inclusion in errors.
func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
