// Package testutils provides mock tasks, http handlers and random request
// generators shared by the test suites.
package testutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/renproject/phi"
	"github.com/tx3-lang/trp-go/jsonrpc"
)

// ChanWriter is a io.Writer which writes all messages to an output channel.
type ChanWriter struct {
	output chan string
}

// NewChanWriter returns a new ChanWriter and the output channel.
func NewChanWriter() (ChanWriter, chan string) {
	output := make(chan string, 128)
	return ChanWriter{output: output}, output
}

// Write implements the `io.Writer` interface.
func (cl ChanWriter) Write(p []byte) (n int, err error) {
	select {
	case cl.output <- string(p):
		return len(p), nil
	case <-time.After(time.Second):
		return 0, errors.New("timeout")
	}
}

// A MockSender accepts messages until its buffer is full.
type MockSender struct {
	Messages chan phi.Message
}

// Send implements the `phi.Sender` interface.
func (m *MockSender) Send(message phi.Message) bool {
	select {
	case m.Messages <- message:
		return true
	default:
		return false
	}
}

// NewMockSender returns a new MockSender with a buffer of 128 messages.
func NewMockSender() *MockSender {
	return &MockSender{
		Messages: make(chan phi.Message, 128),
	}
}

// An Inspector is a mock task that will simply write all of its received
// messages out on to a channel for inspection.
type Inspector struct {
	messages chan phi.Message
}

// NewInspector constructs a new `Inspector` task.
func NewInspector(cap int) (phi.Task, <-chan phi.Message) {
	opts := phi.Options{Cap: cap}
	messages := make(chan phi.Message, opts.Cap)
	inspector := Inspector{messages}
	return phi.New(&inspector, opts), messages
}

// Handle implements the `phi.Handler` interface.
func (inspector *Inspector) Handle(_ phi.Task, message phi.Message) {
	inspector.messages <- message
}

// RandomMethod returns a random supported TRP method.
func RandomMethod() string {
	methods := []string{jsonrpc.MethodResolve, jsonrpc.MethodSubmit}
	return methods[rand.Intn(len(methods))]
}

// RandomBytes returns n random bytes.
func RandomBytes(n int) []byte {
	data := make([]byte, n)
	rand.Read(data)
	return data
}

// RandomHex returns a random hex string encoding n bytes.
func RandomHex(n int) string {
	return fmt.Sprintf("%x", RandomBytes(n))
}

// ValidRequest returns a well-formed request for the given method.
func ValidRequest(method string) jsonrpc.Request {
	switch method {
	case jsonrpc.MethodResolve:
		return RandomResolveRequest()
	case jsonrpc.MethodSubmit:
		return RandomSubmitRequest()
	default:
		panic(fmt.Sprintf("unsupported method %s", method))
	}
}

// RandomResolveRequest returns a valid trp.resolve request with random
// bytecode and arguments.
func RandomResolveRequest() jsonrpc.Request {
	params := jsonrpc.ParamsResolve{
		Tir: jsonrpc.TirEnvelope{
			Version:  "v1alpha1",
			Bytecode: RandomHex(32),
			Encoding: "hex",
		},
		Args: map[string]interface{}{
			"quantity": rand.Intn(1000000),
			"sender":   RandomHex(29),
		},
	}
	return requestWithParams(jsonrpc.MethodResolve, params)
}

// RandomSubmitRequest returns a valid trp.submit request with a random
// transaction and one vkey witness.
func RandomSubmitRequest() jsonrpc.Request {
	params := jsonrpc.ParamsSubmit{
		Tx: jsonrpc.BytesEnvelope{
			Content:  RandomHex(64),
			Encoding: "hex",
		},
		Witnesses: []jsonrpc.Witness{
			{
				Type:      "vkey",
				Key:       jsonrpc.BytesEnvelope{Content: RandomHex(32), Encoding: "hex"},
				Signature: jsonrpc.BytesEnvelope{Content: RandomHex(64), Encoding: "hex"},
			},
		},
	}
	return requestWithParams(jsonrpc.MethodSubmit, params)
}

func requestWithParams(method string, params interface{}) jsonrpc.Request {
	raw, err := json.Marshal(params)
	if err != nil {
		panic(err)
	}
	return jsonrpc.Request{
		Version: jsonrpc.Version,
		ID:      rand.Int31(),
		Method:  method,
		Params:  raw,
	}
}
