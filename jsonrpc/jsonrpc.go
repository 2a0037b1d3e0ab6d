// Package jsonrpc defines the JSON-RPC 2.0 envelope and the parameter and
// response types of the Transaction Resolution Protocol (TRP).
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Version of the JSON-RPC standard implemented.
const Version = "2.0"

// Enumeration of TRP methods.
const (
	MethodResolve = "trp.resolve"
	MethodSubmit  = "trp.submit"
)

// Enumeration of JSON-RPC error codes.
const (
	ErrorCodeInvalidJSON    = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternal       = -32603
)

// A Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// A Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	Version string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// NewResponse constructs a new response envelope.
func NewResponse(id interface{}, result interface{}, err *Error) Response {
	return Response{
		Version: Version,
		ID:      id,
		Result:  result,
		Error:   err,
	}
}

// An Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewError constructs a new error object.
func NewError(code int, message string, data json.RawMessage) Error {
	return Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// Error implements the error interface for the Error type.
func (err Error) Error() string {
	return fmt.Sprintf("jsonrpc error (%d): %s", err.Code, err.Message)
}

// A TirEnvelope carries the compiled bytecode of a transaction template.
type TirEnvelope struct {
	Version  string `json:"version"`
	Bytecode string `json:"bytecode"`
	Encoding string `json:"encoding"`
}

// A BytesEnvelope disambiguates hex and base64 serialization of raw bytes at
// the wire boundary.
type BytesEnvelope struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// A Witness is a verification-key witness attached to a submitted
// transaction.
type Witness struct {
	Type      string        `json:"type"`
	Key       BytesEnvelope `json:"key"`
	Signature BytesEnvelope `json:"signature"`
}

// ParamsResolve are the parameters of the trp.resolve method. Args and Env
// carry wire-encoded argument values keyed by name.
type ParamsResolve struct {
	Tir  TirEnvelope            `json:"tir"`
	Args map[string]interface{} `json:"args"`
	Env  map[string]interface{} `json:"env,omitempty"`
}

// ParamsSubmit are the parameters of the trp.submit method.
type ParamsSubmit struct {
	Tx        BytesEnvelope `json:"tx"`
	Witnesses []Witness     `json:"witnesses"`
}

// ResponseResolve is the result of the trp.resolve method: the resolved
// transaction and its hash.
type ResponseResolve struct {
	Tx   string `json:"tx"`
	Hash string `json:"hash"`
}

// ResponseSubmit is the result of the trp.submit method. A missing result is
// also a valid success for this method.
type ResponseSubmit struct{}
