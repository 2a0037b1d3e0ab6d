package client

import (
	"time"

	"github.com/tx3-lang/trp-go/argvalue"
)

// DefaultTimeout is the recommended timeout for a single TRP call.
var DefaultTimeout = 15 * time.Second

// Options to configure the precise behaviour of the Client. Options are
// immutable for the lifetime of the Client.
type Options struct {
	// Endpoint is the URL of the TRP server.
	Endpoint string

	// Headers are merged into every request alongside Content-Type.
	Headers map[string]string

	// EnvArgs are client-level environment arguments sent with every resolve
	// call, marshalled with their names preserved.
	EnvArgs argvalue.Args

	// Timeout caps the duration of a single call.
	Timeout time.Duration
}

// DefaultOptions returns new options with default configurations that should
// work for the majority of use cases.
func DefaultOptions() Options {
	return Options{
		Timeout: DefaultTimeout,
	}
}

// WithEndpoint updates the endpoint URL.
func (opts Options) WithEndpoint(endpoint string) Options {
	opts.Endpoint = endpoint
	return opts
}

// WithHeaders updates the custom headers.
func (opts Options) WithHeaders(headers map[string]string) Options {
	opts.Headers = headers
	return opts
}

// WithEnvArgs updates the environment arguments.
func (opts Options) WithEnvArgs(env argvalue.Args) Options {
	opts.EnvArgs = env
	return opts
}

// WithTimeout updates the call timeout.
func (opts Options) WithTimeout(timeout time.Duration) Options {
	opts.Timeout = timeout
	return opts
}
