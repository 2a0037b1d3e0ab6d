// Package validator checks incoming requests against baseline criteria the
// upstream TRP endpoint expects, so that obviously invalid requests never
// leave the proxy.
package validator

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/renproject/phi"
	"github.com/sirupsen/logrus"
	"github.com/tx3-lang/trp-go/argvalue"
	lhttp "github.com/tx3-lang/trp-go/http"
	"github.com/tx3-lang/trp-go/jsonrpc"
)

// A Validator takes as input requests and checks whether they meet some
// baseline criteria. Valid requests are forwarded to the cacher.
type Validator struct {
	logger logrus.FieldLogger
	cacher phi.Sender
}

// New constructs a new `Validator`.
func New(logger logrus.FieldLogger, cacher phi.Sender, opts phi.Options) phi.Task {
	return phi.New(&Validator{logger, cacher}, opts)
}

// Handle implements the `phi.Handler` interface.
func (validator *Validator) Handle(_ phi.Task, message phi.Message) {
	msg, ok := message.(lhttp.RequestWithResponder)
	if !ok {
		validator.logger.Panicf("[validator] unexpected message type %T", message)
	}

	if err := validator.isValid(msg.Request); err != nil {
		msg.Responder <- jsonrpc.NewResponse(msg.Request.ID, nil, err)
		return
	}
	validator.cacher.Send(msg)
}

func (validator *Validator) isValid(request jsonrpc.Request) *jsonrpc.Error {
	// Reject requests that don't conform to the JSON-RPC standard.
	if request.Version != jsonrpc.Version {
		err := jsonrpc.NewError(jsonrpc.ErrorCodeInvalidRequest, fmt.Sprintf("invalid jsonrpc field: expected \"2.0\", got \"%s\"", request.Version), nil)
		return &err
	}

	// Reject unsupported methods.
	if !isSupported(request.Method) {
		err := jsonrpc.NewError(jsonrpc.ErrorCodeMethodNotFound, fmt.Sprintf("unsupported method %s", request.Method), nil)
		return &err
	}

	// Reject requests with invalid parameters.
	if err := validParams(request); err != nil {
		jsonErr := jsonrpc.NewError(jsonrpc.ErrorCodeInvalidParams, fmt.Sprintf("invalid parameters in request: %v", err), nil)
		return &jsonErr
	}
	return nil
}

func isSupported(method string) bool {
	switch method {
	case jsonrpc.MethodResolve, jsonrpc.MethodSubmit:
		return true
	default:
		return false
	}
}

func validParams(request jsonrpc.Request) error {
	switch request.Method {
	case jsonrpc.MethodResolve:
		return validResolveParams(request.Params)
	case jsonrpc.MethodSubmit:
		return validSubmitParams(request.Params)
	default:
		panic(fmt.Sprintf("[validator] unsupported method %s encountered which should have been rejected by the previous checks", request.Method))
	}
}

func validResolveParams(params json.RawMessage) error {
	var data jsonrpc.ParamsResolve
	if err := json.Unmarshal(params, &data); err != nil {
		return fmt.Errorf("parameters object does not match method: %v", err)
	}
	if data.Tir.Bytecode == "" {
		return fmt.Errorf("missing tir bytecode")
	}
	return validEnvelope(jsonrpc.BytesEnvelope{Content: data.Tir.Bytecode, Encoding: data.Tir.Encoding})
}

func validSubmitParams(params json.RawMessage) error {
	var data jsonrpc.ParamsSubmit
	if err := json.Unmarshal(params, &data); err != nil {
		return fmt.Errorf("parameters object does not match method: %v", err)
	}
	if err := validEnvelope(data.Tx); err != nil {
		return err
	}
	for i, witness := range data.Witnesses {
		if witness.Type != "vkey" {
			return fmt.Errorf("unsupported witness type \"%s\"", witness.Type)
		}
		if err := validEnvelope(witness.Key); err != nil {
			return fmt.Errorf("witness %d key: %v", i, err)
		}
		if err := validEnvelope(witness.Signature); err != nil {
			return fmt.Errorf("witness %d signature: %v", i, err)
		}
	}
	return nil
}

func validEnvelope(envelope jsonrpc.BytesEnvelope) error {
	switch envelope.Encoding {
	case "hex":
		_, err := argvalue.HexToBytes(envelope.Content)
		return err
	case "base64":
		_, err := base64.StdEncoding.DecodeString(envelope.Content)
		return err
	default:
		return fmt.Errorf("unknown encoding \"%s\"", envelope.Encoding)
	}
}
