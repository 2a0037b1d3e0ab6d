// Package dispatcher forwards validated requests to the upstream TRP
// endpoint and pipes the responses back to the caller.
package dispatcher

import (
	"encoding/json"
	"time"

	"github.com/renproject/phi"
	"github.com/sirupsen/logrus"
	"github.com/tx3-lang/trp-go/db"
	lhttp "github.com/tx3-lang/trp-go/http"
	"github.com/tx3-lang/trp-go/jsonrpc"
)

// A Dispatcher is a task that is responsible for sending a request to the
// upstream TRP endpoint, waiting for the result, and passing it back to the
// client of the proxy. Successful submissions are recorded in the submission
// history.
type Dispatcher struct {
	logger      logrus.FieldLogger
	client      lhttp.Client
	upstreamURL string
	retryOpts   *lhttp.RetryOptions
	db          db.DB
}

// New constructs a new `Dispatcher`. The headers are merged into every
// upstream request, typically for authentication. A nil db disables the
// submission history.
func New(logger logrus.FieldLogger, timeout time.Duration, upstreamURL string, headers map[string]string, retryOpts *lhttp.RetryOptions, database db.DB, opts phi.Options) phi.Task {
	return phi.New(
		&Dispatcher{
			logger:      logger,
			client:      lhttp.NewClient(timeout, headers),
			upstreamURL: upstreamURL,
			retryOpts:   retryOpts,
			db:          database,
		},
		opts,
	)
}

// Handle implements the `phi.Handler` interface.
func (dispatcher *Dispatcher) Handle(_ phi.Task, message phi.Message) {
	msg, ok := message.(lhttp.RequestWithResponder)
	if !ok {
		dispatcher.logger.Panicf("[dispatcher] unexpected message type %T", message)
	}

	go func() {
		response, err := dispatcher.client.SendRequest(msg.Context, dispatcher.upstreamURL, msg.Request, dispatcher.retryOpts)
		if err != nil {
			dispatcher.logger.Errorf("[dispatcher] sending %v request: %v", msg.Request.Method, err)
			msg.RespondWithErr(jsonrpc.ErrorCodeInternal, err)
			return
		}
		dispatcher.record(msg.Request, response)
		msg.Responder <- response
	}()
}

// record writes a successful submission to the history.
func (dispatcher *Dispatcher) record(request jsonrpc.Request, response jsonrpc.Response) {
	if dispatcher.db == nil || request.Method != jsonrpc.MethodSubmit || response.Error != nil {
		return
	}
	var params jsonrpc.ParamsSubmit
	if err := json.Unmarshal(request.Params, &params); err != nil {
		dispatcher.logger.Errorf("[dispatcher] cannot unmarshal submit params: %v", err)
		return
	}
	if err := dispatcher.db.InsertSubmission(db.Submission{
		Tx:        params.Tx.Content,
		Encoding:  params.Tx.Encoding,
		Witnesses: len(params.Witnesses),
		Time:      time.Now().Unix(),
	}); err != nil {
		dispatcher.logger.Errorf("[dispatcher] cannot record submission: %v", err)
	}
}
