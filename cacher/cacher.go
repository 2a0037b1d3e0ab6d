// Package cacher serves repeated trp.resolve requests from a TTL cache so
// that identical templates with identical arguments do not hit the upstream
// endpoint twice.
package cacher

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/renproject/kv"
	"github.com/renproject/phi"
	"github.com/sirupsen/logrus"
	lhttp "github.com/tx3-lang/trp-go/http"
	"github.com/tx3-lang/trp-go/jsonrpc"
	"golang.org/x/crypto/sha3"
)

// ID is a key for a cached response.
type ID [32]byte

// String returns the hex encoding of the ID.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Cacher is a task responsible for caching responses for corresponding
// requests. Upon receiving a request it checks its cache for a cached
// response and writes it immediately when present; otherwise the request is
// forwarded to the dispatcher and the eventual response is stored before
// being passed along. Only trp.resolve responses are cached: a submit has a
// server-side effect and must always reach the upstream.
type Cacher struct {
	logger     logrus.FieldLogger
	dispatcher phi.Sender

	ttlCache kv.Table
}

// New constructs a new `Cacher` as a `phi.Task` which can be `Run()`.
func New(ctx context.Context, logger logrus.FieldLogger, dispatcher phi.Sender, ttl time.Duration, opts phi.Options) phi.Task {
	ttlCache := kv.NewTTLCache(ctx, kv.NewMemDB(kv.JSONCodec), "responses", ttl)
	return phi.New(&Cacher{logger, dispatcher, ttlCache}, opts)
}

// Handle implements the `phi.Handler` interface.
func (cacher *Cacher) Handle(_ phi.Task, message phi.Message) {
	msg, ok := message.(lhttp.RequestWithResponder)
	if !ok {
		cacher.logger.Panicf("[cacher] unexpected message type %T", message)
	}

	reqID := requestID(msg.Request)

	if isCachable(msg.Request.Method) {
		if response, cached := cacher.get(reqID, msg.Request.ID); cached {
			msg.Responder <- response
			return
		}
	}

	responder := make(chan jsonrpc.Response, 1)
	cacher.dispatcher.Send(lhttp.RequestWithResponder{
		Context:   msg.Context,
		Request:   msg.Request,
		Responder: responder,
	})

	go func() {
		response := <-responder
		if isCachable(msg.Request.Method) && response.Error == nil {
			cacher.insert(reqID, response)
		}
		msg.Responder <- response
	}()
}

func isCachable(method string) bool {
	return method == jsonrpc.MethodResolve
}

func (cacher *Cacher) insert(reqID ID, response jsonrpc.Response) {
	// The caller's request id must not leak into responses served to other
	// callers.
	response.ID = nil
	if err := cacher.ttlCache.Insert(reqID.String(), response); err != nil {
		cacher.logger.Errorf("[cacher] could not insert response into TTL cache: %v", err)
	}
}

func (cacher *Cacher) get(reqID ID, id interface{}) (jsonrpc.Response, bool) {
	var response jsonrpc.Response
	if err := cacher.ttlCache.Get(reqID.String(), &response); err == nil {
		response.ID = id
		return response, true
	}
	return jsonrpc.Response{}, false
}

// requestID derives the cache key from the method and params, so that two
// calls resolving the same template with the same arguments share an entry
// regardless of their JSON-RPC ids.
func requestID(request jsonrpc.Request) ID {
	data := append([]byte(request.Method), request.Params...)
	return ID(sha3.Sum256(data))
}
