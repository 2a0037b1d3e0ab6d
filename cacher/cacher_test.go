package cacher_test

import (
	"context"
	"time"

	"github.com/renproject/phi"
	"github.com/sirupsen/logrus"
	lhttp "github.com/tx3-lang/trp-go/http"
	"github.com/tx3-lang/trp-go/jsonrpc"
	"github.com/tx3-lang/trp-go/testutils"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/tx3-lang/trp-go/cacher"
)

var _ = Describe("Cacher", func() {
	setup := func(ctx context.Context, ttl time.Duration) (phi.Task, *testutils.MockSender) {
		logger := logrus.New()
		dispatcher := testutils.NewMockSender()
		cacher := New(ctx, logger, dispatcher, ttl, phi.Options{Cap: 128})
		go cacher.Run(ctx)
		return cacher, dispatcher
	}

	// respond drains one forwarded request from the dispatcher and answers it.
	respond := func(dispatcher *testutils.MockSender, result interface{}) {
		var message phi.Message
		Eventually(dispatcher.Messages).Should(Receive(&message))
		forwarded, ok := message.(lhttp.RequestWithResponder)
		Expect(ok).To(BeTrue())
		forwarded.Responder <- jsonrpc.NewResponse(forwarded.Request.ID, result, nil)
	}

	send := func(cacher phi.Task, request jsonrpc.Request) chan jsonrpc.Response {
		reqWithResponder := lhttp.NewRequestWithResponder(context.Background(), request)
		Expect(cacher.Send(reqWithResponder)).To(BeTrue())
		return reqWithResponder.Responder
	}

	Context("when receiving resolve requests", func() {
		It("should forward the first request and serve the second from the cache", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cacher, dispatcher := setup(ctx, time.Minute)

			request := testutils.RandomResolveRequest()
			responder := send(cacher, request)
			respond(dispatcher, "resolved")

			var response jsonrpc.Response
			Eventually(responder).Should(Receive(&response))
			Expect(response.Result).To(Equal("resolved"))

			// An identical request with a different id must not reach the
			// dispatcher again, and must carry the new id.
			repeat := request
			repeat.ID = "second"
			responder = send(cacher, repeat)
			Eventually(responder).Should(Receive(&response))
			Expect(response.Result).To(Equal("resolved"))
			Expect(response.ID).To(Equal("second"))
			Expect(dispatcher.Messages).To(BeEmpty())
		})

		It("should not share cache entries between different requests", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cacher, dispatcher := setup(ctx, time.Minute)

			first := send(cacher, testutils.RandomResolveRequest())
			respond(dispatcher, "a")
			Eventually(first).Should(Receive())

			second := send(cacher, testutils.RandomResolveRequest())
			respond(dispatcher, "b")

			var response jsonrpc.Response
			Eventually(second).Should(Receive(&response))
			Expect(response.Result).To(Equal("b"))
		})

		It("should not cache error responses", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cacher, dispatcher := setup(ctx, time.Minute)

			request := testutils.RandomResolveRequest()
			responder := send(cacher, request)

			var message phi.Message
			Eventually(dispatcher.Messages).Should(Receive(&message))
			forwarded := message.(lhttp.RequestWithResponder)
			jsonErr := jsonrpc.NewError(jsonrpc.ErrorCodeInternal, "upstream unavailable", nil)
			forwarded.Responder <- jsonrpc.NewResponse(forwarded.Request.ID, nil, &jsonErr)

			var response jsonrpc.Response
			Eventually(responder).Should(Receive(&response))
			Expect(response.Error).NotTo(BeNil())

			// The retry must reach the dispatcher.
			responder = send(cacher, request)
			respond(dispatcher, "resolved")
			Eventually(responder).Should(Receive(&response))
			Expect(response.Error).To(BeNil())
		})

		It("should expire cache entries after the TTL", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cacher, dispatcher := setup(ctx, 20*time.Millisecond)

			request := testutils.RandomResolveRequest()
			responder := send(cacher, request)
			respond(dispatcher, "resolved")
			Eventually(responder).Should(Receive())

			time.Sleep(100 * time.Millisecond)

			responder = send(cacher, request)
			respond(dispatcher, "resolved again")

			var response jsonrpc.Response
			Eventually(responder).Should(Receive(&response))
			Expect(response.Result).To(Equal("resolved again"))
		})
	})

	Context("when receiving submit requests", func() {
		It("should always forward them to the dispatcher", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			cacher, dispatcher := setup(ctx, time.Minute)

			request := testutils.RandomSubmitRequest()
			for i := 0; i < 2; i++ {
				responder := send(cacher, request)
				respond(dispatcher, nil)
				Eventually(responder).Should(Receive())
			}
		})
	})
})
