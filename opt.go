package trp

import (
	"time"

	"github.com/tx3-lang/trp-go/server"
)

// Enumerate default options.
var (
	DefaultPort          = "8164"
	DefaultCap           = 128
	DefaultMaxBatchSize  = 10
	DefaultClientTimeout = 15 * time.Second
	DefaultTTL           = 15 * time.Second
)

// Options to configure the precise behaviour of the proxy.
type Options struct {
	Port            string
	Cap             int
	MaxBatchSize    int
	ClientTimeout   time.Duration
	TTL             time.Duration
	UpstreamURL     string
	UpstreamHeaders map[string]string
	RateLimit       server.RateLimiterConf
}

// DefaultOptions returns new options with default configurations that should
// work for the majority of use cases.
func DefaultOptions() Options {
	return Options{
		Port:          DefaultPort,
		Cap:           DefaultCap,
		MaxBatchSize:  DefaultMaxBatchSize,
		ClientTimeout: DefaultClientTimeout,
		TTL:           DefaultTTL,
		RateLimit:     server.DefaultRateLimit(),
	}
}

// WithPort updates the port the proxy listens on.
func (opts Options) WithPort(port string) Options {
	opts.Port = port
	return opts
}

// WithCap updates the task capacity.
func (opts Options) WithCap(cap int) Options {
	opts.Cap = cap
	return opts
}

// WithMaxBatchSize updates the maximum JSON-RPC batch size.
func (opts Options) WithMaxBatchSize(maxBatchSize int) Options {
	opts.MaxBatchSize = maxBatchSize
	return opts
}

// WithClientTimeout updates the upstream client timeout.
func (opts Options) WithClientTimeout(timeout time.Duration) Options {
	opts.ClientTimeout = timeout
	return opts
}

// WithTTL updates how long resolve responses stay cached.
func (opts Options) WithTTL(ttl time.Duration) Options {
	opts.TTL = ttl
	return opts
}

// WithUpstreamURL updates the upstream TRP endpoint.
func (opts Options) WithUpstreamURL(url string) Options {
	opts.UpstreamURL = url
	return opts
}

// WithUpstreamHeaders updates the headers merged into every upstream request.
func (opts Options) WithUpstreamHeaders(headers map[string]string) Options {
	opts.UpstreamHeaders = headers
	return opts
}

// WithRateLimit updates the rate limiter configuration.
func (opts Options) WithRateLimit(conf server.RateLimiterConf) Options {
	opts.RateLimit = conf
	return opts
}
