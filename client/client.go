// Package client implements the Transaction Resolution Protocol (TRP) client.
// It marshals typed arguments into their wire form, issues JSON-RPC 2.0
// requests over HTTP and maps every failure into a typed error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/tx3-lang/trp-go/argvalue"
	"github.com/tx3-lang/trp-go/jsonrpc"
)

// A Client resolves and submits transactions against a single TRP endpoint.
// It holds only immutable configuration, so a Client is safe for concurrent
// use; every call carries a freshly generated request id and no ordering is
// guaranteed across calls.
type Client struct {
	opts       Options
	httpClient *http.Client
}

// New returns a new Client with the given options.
func New(opts Options) Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

// Resolve turns a transaction template plus concrete arguments into a
// submittable transaction. Transaction argument names are rewritten to
// snake_case; environment arguments set at construction are marshalled with
// their names preserved and sent as a separate env field.
func (client Client) Resolve(ctx context.Context, tir jsonrpc.TirEnvelope, args argvalue.Args) (jsonrpc.ResponseResolve, error) {
	encodedArgs, err := argvalue.EncodeArgs(args, argvalue.SnakeCase)
	if err != nil {
		return jsonrpc.ResponseResolve{}, err
	}
	params := jsonrpc.ParamsResolve{
		Tir:  tir,
		Args: encodedArgs,
	}
	if len(client.opts.EnvArgs) > 0 {
		env, err := argvalue.EncodeArgs(client.opts.EnvArgs, argvalue.PreserveCase)
		if err != nil {
			return jsonrpc.ResponseResolve{}, err
		}
		params.Env = env
	}

	response, err := client.call(ctx, jsonrpc.MethodResolve, params)
	if err != nil {
		return jsonrpc.ResponseResolve{}, err
	}
	if response.Result == nil {
		return jsonrpc.ResponseResolve{}, &ProtocolError{Message: "No result in response"}
	}
	data, err := json.Marshal(response.Result)
	if err != nil {
		return jsonrpc.ResponseResolve{}, &ProtocolError{Message: "Failed to parse response", Cause: err}
	}
	var result jsonrpc.ResponseResolve
	if err := json.Unmarshal(data, &result); err != nil {
		return jsonrpc.ResponseResolve{}, &ProtocolError{Message: "Failed to parse response", Cause: err}
	}
	return result, nil
}

// Submit sends a signed transaction to the endpoint. A response without a
// result field is a valid success for this method.
func (client Client) Submit(ctx context.Context, tx jsonrpc.BytesEnvelope, witnesses []jsonrpc.Witness) error {
	params := jsonrpc.ParamsSubmit{
		Tx:        tx,
		Witnesses: witnesses,
	}
	_, err := client.call(ctx, jsonrpc.MethodSubmit, params)
	return err
}

// call performs a single JSON-RPC request. There are no retries; callers that
// need them can inspect Retryable on the returned error and resend.
func (client Client) call(ctx context.Context, method string, params interface{}) (jsonrpc.Response, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return jsonrpc.Response{}, &ProtocolError{Message: "Failed to marshal request", Cause: err}
	}
	request := jsonrpc.Request{
		Version: jsonrpc.Version,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  rawParams,
	}
	body, err := json.Marshal(request)
	if err != nil {
		return jsonrpc.Response{}, &ProtocolError{Message: "Failed to marshal request", Cause: err}
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, client.opts.Endpoint, bytes.NewBuffer(body))
	if err != nil {
		return jsonrpc.Response{}, &ProtocolError{Message: "Failed to build request", Cause: err}
	}
	r.Header.Set("Content-Type", "application/json")
	for key, value := range client.opts.Headers {
		r.Header.Set(key, value)
	}

	httpResponse, err := client.httpClient.Do(r)
	if err != nil {
		return jsonrpc.Response{}, &NetworkError{Cause: err}
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return jsonrpc.Response{}, &StatusCodeError{
			StatusCode: httpResponse.StatusCode,
			Status:     httpResponse.Status,
		}
	}

	var response jsonrpc.Response
	if err := json.NewDecoder(httpResponse.Body).Decode(&response); err != nil {
		return jsonrpc.Response{}, &ProtocolError{Message: "Failed to parse response", Cause: err}
	}
	if response.Error != nil {
		return jsonrpc.Response{}, &JSONRPCError{
			Message: response.Error.Message,
			Data:    response.Error.Data,
		}
	}
	return response, nil
}
