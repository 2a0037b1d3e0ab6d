// Package trp wires the TRP dev proxy: an HTTP JSON-RPC endpoint that
// validates, caches and forwards trp.resolve and trp.submit requests to an
// upstream Transaction Resolution Protocol server.
package trp

import (
	"context"

	"github.com/renproject/phi"
	"github.com/sirupsen/logrus"
	"github.com/tx3-lang/trp-go/cacher"
	"github.com/tx3-lang/trp-go/db"
	"github.com/tx3-lang/trp-go/dispatcher"
	"github.com/tx3-lang/trp-go/http"
	"github.com/tx3-lang/trp-go/server"
	"github.com/tx3-lang/trp-go/validator"
)

// A Proxy is the assembled request pipeline: server → validator → cacher →
// dispatcher → upstream.
type Proxy struct {
	logger logrus.FieldLogger
	server *server.Server

	// Tasks
	validator  phi.Task
	cacher     phi.Task
	dispatcher phi.Task
}

// New constructs a new Proxy from the given options. A nil database disables
// the submission history.
func New(ctx context.Context, logger logrus.FieldLogger, options Options, database db.DB) Proxy {
	// All tasks have the same capacity, and no scaling.
	opts := phi.Options{Cap: options.Cap}

	serverOptions := server.Options{
		MaxBatchSize: options.MaxBatchSize,
		RateLimit:    options.RateLimit,
	}

	retryOpts := http.DefaultRetryOptions
	dispatcher := dispatcher.New(logger, options.ClientTimeout, options.UpstreamURL, options.UpstreamHeaders, &retryOpts, database, opts)
	cacher := cacher.New(ctx, logger, dispatcher, options.TTL, opts)
	validator := validator.New(logger, cacher, opts)
	server := server.New(logger, options.Port, serverOptions, validator)

	return Proxy{
		logger:     logger,
		server:     server,
		validator:  validator,
		cacher:     cacher,
		dispatcher: dispatcher,
	}
}

// Run starts the pipeline tasks and blocks serving HTTP.
func (proxy Proxy) Run(ctx context.Context) {
	go proxy.validator.Run(ctx)
	go proxy.cacher.Run(ctx)
	go proxy.dispatcher.Run(ctx)

	proxy.server.Run()
}
