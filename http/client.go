// Package http implements the transport used between the proxy and its
// upstream TRP endpoint, and the request plumbing between the proxy pipeline
// tasks.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tx3-lang/trp-go/jsonrpc"
)

// RetryOptions are used for retrying failed requests sent using the client.
type RetryOptions struct {
	Base   time.Duration // Time interval before first retry.
	Max    time.Duration // Maximum time interval between two retries.
	Factor float64       // next_interval = previous_interval * (1 + factor)
}

// DefaultRetryOptions are the recommended retry settings.
var DefaultRetryOptions = RetryOptions{
	Base:   time.Second,
	Max:    5 * time.Second,
	Factor: 0.2,
}

// DefaultClientTimeout is the recommended timeout for the client.
var DefaultClientTimeout = 15 * time.Second

// Client is a http.Client with a fixed timeout and a fixed set of headers
// merged into every request, typically upstream authentication.
type Client struct {
	*http.Client
	headers map[string]string
}

// NewClient returns a new client with the given timeout and headers.
func NewClient(timeout time.Duration, headers map[string]string) Client {
	return Client{
		Client: &http.Client{
			Timeout: timeout,
		},
		headers: headers,
	}
}

// SendRequest sends the `jsonrpc.Request` to the given URL. It only retries
// sending the request if the retry options are non-nil. Otherwise it returns
// the response and error immediately.
func (c Client) SendRequest(ctx context.Context, url string, request jsonrpc.Request, options *RetryOptions) (jsonrpc.Response, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return jsonrpc.Response{}, fmt.Errorf("[client] could not marshal request: %v", err)
	}

	if options == nil {
		return c.send(ctx, url, body)
	}
	return c.retry(ctx, url, body, options)
}

// send the request without retrying.
func (c Client) send(ctx context.Context, url string, body []byte) (jsonrpc.Response, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return jsonrpc.Response{}, fmt.Errorf("[client] could not create http request: %v", err)
	}
	r.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		r.Header.Set(key, value)
	}

	response, err := c.Do(r)
	if err != nil {
		return jsonrpc.Response{}, err
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return jsonrpc.Response{}, fmt.Errorf("unexpected status code %v", response.StatusCode)
	}
	var resp jsonrpc.Response
	err = json.NewDecoder(response.Body).Decode(&resp)
	return resp, err
}

// send the request with the given retry options. A fresh http request is
// built per attempt so that the body can be re-read.
func (c Client) retry(ctx context.Context, url string, body []byte, options *RetryOptions) (jsonrpc.Response, error) {
	interval := options.Base
	for {
		response, err := c.send(ctx, url, body)
		if err == nil {
			return response, err
		}
		select {
		case <-ctx.Done():
			return jsonrpc.Response{}, fmt.Errorf("%v, last error = %v", ctx.Err(), err)
		case <-time.After(interval):
			interval = time.Duration(float64(interval) * (1 + options.Factor))
			if interval > options.Max {
				interval = options.Max
			}
		}
	}
}
