package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAuthToken is returned when the provider rejects the API key.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrNoDataFound is returned when the provider has no data for the query.
	ErrNoDataFound = errors.New("no data found")
	// ErrMalformedResponse is returned when a response cannot be interpreted.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidRequestParameter is returned for requests rejected before dispatch.
	ErrInvalidRequestParameter = errors.New("invalid request parameter")
)

// MalformedResponseError names the endpoint and field a mapping failed on.
type MalformedResponseError struct {
	Endpoint Kind
	Field    string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s response: %s", ErrMalformedResponse, e.Endpoint, e.Reason)
	}
	return fmt.Sprintf("%s: %s response: field '%s': %s", ErrMalformedResponse, e.Endpoint, e.Field, e.Reason)
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// ParameterError represents a rejected request parameter.
type ParameterError struct {
	Field   string
	Message string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s '%s': %s", ErrInvalidRequestParameter, e.Field, e.Message)
}

func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidRequestParameter
}

// APIError represents a non-2xx provider reply that is neither an auth
// failure nor a missing-data reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}
