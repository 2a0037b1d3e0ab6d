package http

import (
	"context"

	"github.com/tx3-lang/trp-go/jsonrpc"
)

// A RequestWithResponder wraps a JSON-RPC request with the channel its
// response must be written to. It is the message type passed between the
// pipeline tasks.
type RequestWithResponder struct {
	Context   context.Context
	Request   jsonrpc.Request
	Responder chan jsonrpc.Response
}

// IsMessage implements the `phi.Message` interface.
func (RequestWithResponder) IsMessage() {}

// RespondWithErr writes a JSON-RPC error response for the request.
func (req RequestWithResponder) RespondWithErr(code int, err error) {
	jsonErr := jsonrpc.NewError(code, err.Error(), nil)
	req.Responder <- jsonrpc.NewResponse(req.Request.ID, nil, &jsonErr)
}

// NewRequestWithResponder constructs a new request wrapper object with a
// buffered responder channel.
func NewRequestWithResponder(ctx context.Context, request jsonrpc.Request) RequestWithResponder {
	responder := make(chan jsonrpc.Response, 1)
	return RequestWithResponder{ctx, request, responder}
}
