package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLoadInProgress indicates a document load is already in flight.
	// Racing callers are dropped, not queued.
	ErrLoadInProgress = errors.New("document load in progress")

	// ErrDebounced indicates a non-forced load arrived inside the debounce window.
	ErrDebounced = errors.New("document load debounced")

	// ErrStaleGeneration indicates a result arrived after a logout and was discarded.
	ErrStaleGeneration = errors.New("result discarded after session reset")

	// Gateway Errors.

	// ErrAuthRequired indicates the backend rejected the credential (HTTP 401).
	// It is terminal for the current session and must not be retried.
	ErrAuthRequired = errors.New("authentication required")

	// ErrEndpointNotFound indicates a 404 on a known endpoint, which signals
	// a client/backend version mismatch rather than missing data.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrInvalidResponse indicates the response body could not be decoded.
	ErrInvalidResponse = errors.New("invalid response format")

	// ErrUnreachable indicates no response was received from the backend.
	ErrUnreachable = errors.New("cannot reach server")

	// Query Errors.

	// ErrStreamClosed indicates the event stream ended before a done event.
	ErrStreamClosed = errors.New("stream closed before completion")

	// ErrTransportUnavailable indicates no query transport is configured.
	ErrTransportUnavailable = errors.New("query transport unavailable")

	// ErrEmptyQuery indicates the submitted query text was blank.
	ErrEmptyQuery = errors.New("query is empty")
)

// APIError is the typed form of a failed gateway call.
// Status is 0 when no response was received.
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps the status onto the gateway sentinel errors so callers can
// classify failures with errors.Is.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == 0:
		return ErrUnreachable
	case e.Status == 401:
		return ErrAuthRequired
	case e.Status == 404:
		return ErrEndpointNotFound
	case e.Message == ErrInvalidResponse.Error():
		return ErrInvalidResponse
	default:
		return nil
	}
}

// NewAPIError builds an APIError.
func NewAPIError(status int, endpoint, format string, args ...any) *APIError {
	return &APIError{
		Status:   status,
		Endpoint: endpoint,
		Message:  fmt.Sprintf(format, args...),
	}
}
