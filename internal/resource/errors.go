package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the addressed object does not exist.
	ErrNotFound = errors.New("resource: not found")

	// ErrTransport is returned when the store could not be reached or the
	// call did not complete (connection refused, timeout, cancelled context).
	ErrTransport = errors.New("resource: transport failure")

	// ErrInvalidSpec is returned when a spec cannot be converted to or from
	// the store's wire representation.
	ErrInvalidSpec = errors.New("resource: invalid spec")
)

// APIError is returned when the store answered but rejected the request.
type APIError struct {
	Code    int32  // HTTP status code reported by the server
	Reason  string // machine-readable reason, e.g. "AlreadyExists"
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("resource: api error %d (%s): %s", e.Code, e.Reason, e.Message)
}

// LookupFailure names the class of a failed lookup for logs and metrics.
type LookupFailure string

// Lookup failure classes.
const (
	LookupNotFound  LookupFailure = "not_found"
	LookupAPI       LookupFailure = "api_error"
	LookupTransport LookupFailure = "transport_error"
	LookupUnknown   LookupFailure = "unknown"
)

// ClassifyLookup reports which class a Find error belongs to.
func ClassifyLookup(err error) LookupFailure {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrNotFound):
		return LookupNotFound
	case errors.As(err, &apiErr):
		return LookupAPI
	case errors.Is(err, ErrTransport):
		return LookupTransport
	default:
		return LookupUnknown
	}
}
