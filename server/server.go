// Package server exposes the proxy's JSON-RPC 2.0 endpoint over HTTP. It
// supports single and batched requests, applies rate limiting per remote
// address and forwards accepted requests to the validator task.
package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/renproject/phi"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	lhttp "github.com/tx3-lang/trp-go/http"
	"github.com/tx3-lang/trp-go/jsonrpc"
)

// ErrorCodeMaxBatchSizeExceeded is returned when a batch request carries more
// requests than the server accepts.
const ErrorCodeMaxBatchSizeExceeded = -32001

// ErrorCodeRateLimited is returned when the remote address has exhausted its
// rate limit.
const ErrorCodeRateLimited = -32002

// Options to configure the behaviour of the server.
type Options struct {
	MaxBatchSize int
	RateLimit    RateLimiterConf
}

// A Server decodes JSON-RPC requests from HTTP and fans them out to the
// validator.
type Server struct {
	port        string
	logger      logrus.FieldLogger
	options     Options
	rateLimiter *RateLimiter
	validator   phi.Sender
}

// New constructs a new Server. Requests are forwarded to the given validator.
func New(logger logrus.FieldLogger, port string, options Options, validator phi.Sender) *Server {
	return &Server{
		port:        port,
		logger:      logger,
		options:     options,
		rateLimiter: NewRateLimiter(options.RateLimit),
		validator:   validator,
	}
}

// Run starts listening and serving. It blocks until the listener fails.
func (server *Server) Run() {
	r := mux.NewRouter()
	r.HandleFunc("/", server.handleFunc).Methods(http.MethodPost)

	httpHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"POST"},
	}).Handler(r)

	server.logger.Infof("trp proxy listening on 0.0.0.0:%v...", server.port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", server.port), httpHandler); err != nil {
		server.logger.Errorf("server stopped: %v", err)
	}
}

func (server *Server) handleFunc(w http.ResponseWriter, r *http.Request) {
	rawMessage := json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&rawMessage); err != nil {
		jsonErr := jsonrpc.NewError(jsonrpc.ErrorCodeInvalidJSON, "could not decode JSON request", nil)
		server.writeResponses(w, false, []jsonrpc.Response{jsonrpc.NewResponse(nil, nil, &jsonErr)})
		return
	}

	// Unmarshal requests with support for batching.
	batch := true
	reqs := []jsonrpc.Request{}
	if err := json.Unmarshal(rawMessage, &reqs); err != nil {
		// The raw message is not a batch, try a single JSON-RPC 2.0 request.
		batch = false
		var req jsonrpc.Request
		if err := json.Unmarshal(rawMessage, &req); err != nil {
			jsonErr := jsonrpc.NewError(jsonrpc.ErrorCodeInvalidJSON, "could not parse JSON request", nil)
			server.writeResponses(w, false, []jsonrpc.Response{jsonrpc.NewResponse(nil, nil, &jsonErr)})
			return
		}
		reqs = []jsonrpc.Request{req}
	}

	if len(reqs) > server.options.MaxBatchSize {
		jsonErr := jsonrpc.NewError(ErrorCodeMaxBatchSizeExceeded, fmt.Sprintf("maximum batch size exceeded: maximum is %v but got %v", server.options.MaxBatchSize, len(reqs)), nil)
		server.writeResponses(w, false, []jsonrpc.Response{jsonrpc.NewResponse(nil, nil, &jsonErr)})
		return
	}

	// Handle all requests concurrently and, after all responses have been
	// received, write all responses back to the http.ResponseWriter.
	responses := make([]jsonrpc.Response, len(reqs))
	phi.ParForAll(reqs, func(i int) {
		if !server.rateLimiter.Allow(remoteIP(r)) {
			jsonErr := jsonrpc.NewError(ErrorCodeRateLimited, "rate limit exceeded", nil)
			responses[i] = jsonrpc.NewResponse(reqs[i].ID, nil, &jsonErr)
			return
		}

		reqWithResponder := lhttp.NewRequestWithResponder(r.Context(), reqs[i])
		server.validator.Send(reqWithResponder)
		responses[i] = <-reqWithResponder.Responder
	})

	server.writeResponses(w, batch, responses)
}

func (server *Server) writeResponses(w http.ResponseWriter, batch bool, responses []jsonrpc.Response) {
	w.Header().Set("Content-Type", "application/json")
	if !batch && len(responses) == 1 {
		if err := json.NewEncoder(w).Encode(responses[0]); err != nil {
			server.logger.Errorf("error writing http response: %v", err)
		}
		return
	}
	if err := json.NewEncoder(w).Encode(responses); err != nil {
		server.logger.Errorf("error writing http response: %v", err)
	}
}

func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
