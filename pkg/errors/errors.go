package errors

import "fmt"

// ErrSessionMissing is returned when no offline session exists for a shop.
// Non-retriable without re-auth; surfaced as HTTP 403.
type ErrSessionMissing struct {
	Shop string
}

func (e *ErrSessionMissing) Error() string {
	if e.Shop != "" {
		return fmt.Sprintf("no offline session found for shop %s", e.Shop)
	}
	return "no offline session found"
}

// ErrValidation is returned when a request fails validation before anything
// is sent upstream.
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrUpstreamTransport is returned when a Shopify call fails at the transport
// level (network error, non-200 status, GraphQL execution error) rather than
// with field-level user errors.
type ErrUpstreamTransport struct {
	Op  string
	Err error
}

func (e *ErrUpstreamTransport) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": upstream request failed"
}

func (e *ErrUpstreamTransport) Unwrap() error {
	return e.Err
}
