// Package tools provides the topocoding MCP tools implementations.
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/topomcp/pkg/geo"
	"github.com/NERVsystems/topomcp/pkg/topocode"
	"github.com/NERVsystems/topomcp/pkg/topocoding"
)

// APIError represents an error that occurred while communicating with
// an external API service, with information to help users recover.
type APIError struct {
	Service     string // The API service name (e.g., "Topocoding", "Validation")
	StatusCode  int    // HTTP status code
	Message     string // Error message
	Recoverable bool   // Whether the error can be recovered from
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s API error (%d): %s. %s", e.Service, e.StatusCode, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Common error guidance messages
const (
	// Topocoding guidance
	GuidanceTooManyPoints   = "Reduce the number of points, or resample the path first with densify_path and a count."
	GuidanceAltitudePoints  = "Reduce the number of points, pass resample to spread fewer points along the same path, or set batch to split the lookup into several requests."
	GuidancePathTooLong     = "The resulting path is too long. Use a larger max_segment_km or a smaller count."
	GuidanceMissingAPIKey   = "Set topocoding.api_key in the config file or the TOPOCODING_API_KEY environment variable."
	GuidanceTopocodingParse = "The altitude service returned an unexpected response. Check the API key and try again."
	GuidanceDegenerate      = "The endpoints are antipodal, so no unique great circle joins them. Add an intermediate point."

	// Generic guidance
	GuidanceGeneral      = "Please try again later or modify your request parameters."
	GuidanceNetworkError = "Check your internet connection and try again."
	GuidanceInput        = "Please correct the parameters and try again."
)

// NewAPIError creates a new APIError with appropriate guidance based on status code.
func NewAPIError(service string, statusCode int, message, guidance string) *APIError {
	// Use provided guidance if available, otherwise infer based on status code
	if guidance == "" {
		switch statusCode {
		case http.StatusTooManyRequests:
			guidance = "Rate limit exceeded. Please try again in a few moments."
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			guidance = "The request timed out. Try fewer points or try again later."
		case http.StatusBadRequest:
			guidance = "The request was invalid. Check your parameters and try again."
		case http.StatusUnauthorized, http.StatusForbidden:
			guidance = GuidanceMissingAPIKey
		case http.StatusInternalServerError:
			guidance = "The server encountered an error. This is likely temporary, please try again later."
		case http.StatusServiceUnavailable:
			guidance = "The service is temporarily unavailable. Please try again later."
		default:
			guidance = GuidanceGeneral
		}
	}

	return &APIError{
		Service:     service,
		StatusCode:  statusCode,
		Message:     message,
		Recoverable: statusCode != http.StatusBadRequest, // Most errors except bad requests are recoverable
		Guidance:    guidance,
	}
}

// ErrorWithGuidance returns a properly formatted error response with user guidance.
func ErrorWithGuidance(err *APIError) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s\n\nGuidance: %s", err.Message, err.Guidance)
	return mcp.NewToolResultError(errorText)
}

// ValidationError creates an error for invalid tool input.
func ValidationError(err error) *APIError {
	return &APIError{
		Service:     "Validation",
		StatusCode:  http.StatusBadRequest,
		Message:     err.Error(),
		Recoverable: true,
		Guidance:    GuidanceInput,
	}
}

// classifyError maps errors from the geo, topocode, and topocoding packages
// to an APIError.
func classifyError(err error) *APIError {
	var statusErr *topocoding.StatusError
	var parseErr *topocoding.ParseError

	switch {
	case errors.Is(err, topocode.ErrTooManyPoints):
		return NewAPIError("Validation", http.StatusBadRequest, err.Error(), GuidanceTooManyPoints)
	case errors.Is(err, geo.ErrPathTooLong):
		return NewAPIError("Validation", http.StatusBadRequest, err.Error(), GuidancePathTooLong)
	case errors.Is(err, geo.ErrDegenerateGreatCircle):
		return NewAPIError("Validation", http.StatusBadRequest, err.Error(), GuidanceDegenerate)
	case errors.Is(err, topocoding.ErrMissingAPIKey):
		return NewAPIError("Topocoding", http.StatusUnauthorized, err.Error(), GuidanceMissingAPIKey)
	case errors.As(err, &statusErr):
		return NewAPIError("Topocoding", statusErr.StatusCode, err.Error(), "")
	case errors.Is(err, topocoding.ErrAltitudesNotFound),
		errors.Is(err, topocoding.ErrAltitudeCountMismatch),
		errors.As(err, &parseErr):
		return NewAPIError("Topocoding", http.StatusBadGateway, err.Error(), GuidanceTopocodingParse)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAPIError("Topocoding", http.StatusGatewayTimeout, err.Error(), "")
	default:
		return NewAPIError("Topocoding", http.StatusBadGateway, err.Error(), GuidanceNetworkError)
	}
}
