package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tx3-lang/trp-go/jsonrpc"
)

// OKHandler returns a `http.HandlerFunc` which responds to every request with
// the given result.
func OKHandler(result interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request jsonrpc.Request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			panic(err)
		}
		response := jsonrpc.NewResponse(request.ID, result, nil)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			panic(err)
		}
	}
}

// ErrorHandler returns a `http.HandlerFunc` which rejects every request with
// the given JSON-RPC error.
func ErrorHandler(err jsonrpc.Error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request jsonrpc.Request
		if decodeErr := json.NewDecoder(r.Body).Decode(&request); decodeErr != nil {
			panic(decodeErr)
		}
		response := jsonrpc.NewResponse(request.ID, nil, &err)
		w.Header().Set("Content-Type", "application/json")
		if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
			panic(encodeErr)
		}
	}
}

// StatusHandler returns a `http.HandlerFunc` which responds to every request
// with the given HTTP status code and no body.
func StatusHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

// NilHandler doesn't do anything with the request, causing an EOF error on
// the client side.
func NilHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
	}
}

// GarbageHandler returns a `http.HandlerFunc` which responds with a body that
// is not valid JSON.
func GarbageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("this is not json"))
	}
}

// TimeoutHandler returns a simple `http.HandlerFunc` which sleeps a certain
// amount of time before responding.
func TimeoutHandler(timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(timeout)
	}
}

// FlakyHandler returns a `http.HandlerFunc` which rejects the first n requests
// with a 500 status code and delegates every subsequent request to the next
// handler.
func FlakyHandler(n int, next http.HandlerFunc) http.HandlerFunc {
	var mu sync.Mutex
	failures := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		failed := failures < n
		if failed {
			failures++
		}
		mu.Unlock()
		if failed {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		next(w, r)
	}
}

// HeaderMiddleware writes the value of the given request header to the channel
// before passing the request on to the next handler.
func HeaderMiddleware(key string, values chan string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values <- r.Header.Get(key)
		next(w, r)
	}
}

// ChanMiddleware writes each decoded request to the given channel before
// passing the request on to the next handler.
func ChanMiddleware(requests chan jsonrpc.Request, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request jsonrpc.Request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			panic(err)
		}
		requests <- request

		data, err := json.Marshal(request)
		if err != nil {
			panic(err)
		}
		r.Body = io.NopCloser(bytes.NewReader(data))
		next(w, r)
	}
}
