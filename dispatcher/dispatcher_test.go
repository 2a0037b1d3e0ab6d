package dispatcher_test

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/renproject/phi"
	"github.com/sirupsen/logrus"
	"github.com/tx3-lang/trp-go/db"
	lhttp "github.com/tx3-lang/trp-go/http"
	"github.com/tx3-lang/trp-go/jsonrpc"
	"github.com/tx3-lang/trp-go/testutils"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/tx3-lang/trp-go/dispatcher"
)

// memDB records submissions in memory.
type memDB struct {
	submissions chan db.Submission
}

func newMemDB() *memDB {
	return &memDB{submissions: make(chan db.Submission, 8)}
}

func (m *memDB) Init() error {
	return nil
}

func (m *memDB) InsertSubmission(submission db.Submission) error {
	m.submissions <- submission
	return nil
}

func (m *memDB) Submissions(offset, limit int) ([]db.Submission, error) {
	return nil, nil
}

func (m *memDB) Prune(expiry time.Duration) error {
	return nil
}

var _ = Describe("Dispatcher", func() {
	setup := func(ctx context.Context, upstreamURL string, database db.DB) phi.Task {
		logger := logrus.New()
		dispatcher := New(logger, time.Second, upstreamURL, nil, nil, database, phi.Options{Cap: 128})
		go dispatcher.Run(ctx)
		return dispatcher
	}

	send := func(dispatcher phi.Task, request jsonrpc.Request) chan jsonrpc.Response {
		reqWithResponder := lhttp.NewRequestWithResponder(context.Background(), request)
		Expect(dispatcher.Send(reqWithResponder)).To(BeTrue())
		return reqWithResponder.Responder
	}

	Context("when the upstream endpoint is healthy", func() {
		It("should pipe the upstream response back to the caller", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			server := httptest.NewServer(testutils.OKHandler("resolved"))
			defer server.Close()
			dispatcher := setup(ctx, server.URL, nil)

			responder := send(dispatcher, testutils.RandomResolveRequest())

			var response jsonrpc.Response
			Eventually(responder).Should(Receive(&response))
			Expect(response.Error).To(BeNil())
			Expect(response.Result).To(Equal("resolved"))
		})

		It("should record successful submissions", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			server := httptest.NewServer(testutils.OKHandler(nil))
			defer server.Close()
			database := newMemDB()
			dispatcher := setup(ctx, server.URL, database)

			request := testutils.RandomSubmitRequest()
			responder := send(dispatcher, request)
			Eventually(responder).Should(Receive())

			var submission db.Submission
			Eventually(database.submissions).Should(Receive(&submission))
			Expect(submission.Tx).NotTo(BeEmpty())
			Expect(submission.Encoding).To(Equal("hex"))
			Expect(submission.Witnesses).To(Equal(1))
		})

		It("should not record resolve calls", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			server := httptest.NewServer(testutils.OKHandler("resolved"))
			defer server.Close()
			database := newMemDB()
			dispatcher := setup(ctx, server.URL, database)

			responder := send(dispatcher, testutils.RandomResolveRequest())
			Eventually(responder).Should(Receive())
			Expect(database.submissions).To(BeEmpty())
		})
	})

	Context("when the upstream endpoint is unreachable", func() {
		It("should respond with an internal error and log the failure", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			logger := logrus.New()
			writer, logs := testutils.NewChanWriter()
			logger.SetOutput(writer)
			dispatcher := New(logger, time.Second, "http://127.0.0.1:1", nil, nil, nil, phi.Options{Cap: 128})
			go dispatcher.Run(ctx)

			responder := send(dispatcher, testutils.RandomResolveRequest())

			var response jsonrpc.Response
			Eventually(responder, 5).Should(Receive(&response))
			Expect(response.Error).NotTo(BeNil())
			Expect(response.Error.Code).To(Equal(jsonrpc.ErrorCodeInternal))
			Eventually(logs).Should(Receive(ContainSubstring("[dispatcher]")))
		})
	})

	Context("when the upstream endpoint rejects the request", func() {
		It("should pipe the error response back to the caller", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			server := httptest.NewServer(testutils.ErrorHandler(jsonrpc.Error{
				Code:    jsonrpc.ErrorCodeInvalidParams,
				Message: "Invalid transaction",
			}))
			defer server.Close()
			database := newMemDB()
			dispatcher := setup(ctx, server.URL, database)

			responder := send(dispatcher, testutils.RandomSubmitRequest())

			var response jsonrpc.Response
			Eventually(responder).Should(Receive(&response))
			Expect(response.Error).NotTo(BeNil())
			Expect(response.Error.Message).To(Equal("Invalid transaction"))

			// Failed submissions must not enter the history.
			Expect(database.submissions).To(BeEmpty())
		})
	})
})
