package client

import (
	"encoding/json"
	"fmt"
)

// Error is implemented by every error returned by the Client. Use errors.As
// with a *client.Error target to catch all of them, or with a concrete type
// to handle a specific failure.
type Error interface {
	error

	// Retryable reports whether resending the same request may succeed.
	// Transport and status failures are retryable under at-most-once
	// semantics; a JSON-RPC rejection is not, because the server refused the
	// semantic content of the request.
	Retryable() bool
}

// A NetworkError indicates the underlying transport failed before a response
// was received (network unreachable, DNS failure, connection refused).
type NetworkError struct {
	Cause error
}

// Error implements the error interface for the NetworkError type.
func (err *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", err.Cause)
}

// Unwrap returns the underlying transport failure.
func (err *NetworkError) Unwrap() error {
	return err.Cause
}

// Retryable implements the Error interface for the NetworkError type.
func (err *NetworkError) Retryable() bool {
	return true
}

// A StatusCodeError indicates the endpoint answered with a non-2xx HTTP
// status.
type StatusCodeError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface for the StatusCodeError type.
func (err *StatusCodeError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", err.StatusCode, err.Status)
}

// Retryable implements the Error interface for the StatusCodeError type.
func (err *StatusCodeError) Retryable() bool {
	return true
}

// A JSONRPCError indicates the server explicitly rejected the request at the
// protocol level. Data carries the opaque payload attached by the server, if
// any.
type JSONRPCError struct {
	Message string
	Data    json.RawMessage
}

// Error implements the error interface for the JSONRPCError type.
func (err *JSONRPCError) Error() string {
	return fmt.Sprintf("JSON-RPC error: %s", err.Message)
}

// Retryable implements the Error interface for the JSONRPCError type.
func (err *JSONRPCError) Retryable() bool {
	return false
}

// A ProtocolError indicates a malformed or incomplete response from an
// otherwise reachable endpoint.
type ProtocolError struct {
	Message string
	Cause   error
}

// Error implements the error interface for the ProtocolError type.
func (err *ProtocolError) Error() string {
	if err.Cause != nil {
		return fmt.Sprintf("%s: %v", err.Message, err.Cause)
	}
	return err.Message
}

// Unwrap returns the underlying failure, if any.
func (err *ProtocolError) Unwrap() error {
	return err.Cause
}

// Retryable implements the Error interface for the ProtocolError type.
func (err *ProtocolError) Retryable() bool {
	return false
}
