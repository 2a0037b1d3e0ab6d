package http_test

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/tx3-lang/trp-go/jsonrpc"
	"github.com/tx3-lang/trp-go/testutils"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/tx3-lang/trp-go/http"
)

var _ = Describe("Client", func() {
	Context("when sending requests without retry options", func() {
		It("should return the response from the server", func() {
			server := httptest.NewServer(testutils.OKHandler("ok"))
			defer server.Close()

			client := NewClient(time.Second, nil)
			request := testutils.RandomResolveRequest()
			response, err := client.SendRequest(context.Background(), server.URL, request, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(response.Result).To(Equal("ok"))
		})

		It("should merge the configured headers into the request", func() {
			headers := make(chan string, 1)
			inner := testutils.OKHandler("ok")
			server := httptest.NewServer(testutils.HeaderMiddleware("dmtr-api-key", headers, inner))
			defer server.Close()

			client := NewClient(time.Second, map[string]string{"dmtr-api-key": "secret"})
			_, err := client.SendRequest(context.Background(), server.URL, testutils.RandomSubmitRequest(), nil)
			Expect(err).NotTo(HaveOccurred())
			Eventually(headers).Should(Receive(Equal("secret")))
		})

		It("should error on a non-2xx status code", func() {
			server := httptest.NewServer(testutils.StatusHandler(502))
			defer server.Close()

			client := NewClient(time.Second, nil)
			_, err := client.SendRequest(context.Background(), server.URL, testutils.RandomResolveRequest(), nil)
			Expect(err).To(MatchError(ContainSubstring("502")))
		})

		It("should timeout when the server is too slow", func() {
			server := httptest.NewServer(testutils.TimeoutHandler(time.Second))
			defer server.Close()

			client := NewClient(10*time.Millisecond, nil)
			_, err := client.SendRequest(context.Background(), server.URL, testutils.RandomResolveRequest(), nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when sending requests with retry options", func() {
		It("should resend the full request body on each attempt", func() {
			requests := make(chan jsonrpc.Request, 8)
			inner := testutils.FlakyHandler(2, testutils.OKHandler("ok"))
			server := httptest.NewServer(testutils.ChanMiddleware(requests, inner))
			defer server.Close()

			client := NewClient(time.Second, nil)
			options := &RetryOptions{Base: 10 * time.Millisecond, Max: 20 * time.Millisecond, Factor: 0.2}
			request := testutils.RandomResolveRequest()
			response, err := client.SendRequest(context.Background(), server.URL, request, options)
			Expect(err).NotTo(HaveOccurred())
			Expect(response.Result).To(Equal("ok"))

			// Every attempt carries the same, complete request.
			Expect(requests).To(HaveLen(3))
			for i := 0; i < 3; i++ {
				var received jsonrpc.Request
				Expect(requests).To(Receive(&received))
				Expect(received.Method).To(Equal(request.Method))
				Expect(string(received.Params)).To(MatchJSON(request.Params))
			}
		})

		It("should give up when the context is cancelled", func() {
			server := httptest.NewServer(testutils.StatusHandler(500))
			defer server.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			client := NewClient(time.Second, nil)
			options := &RetryOptions{Base: 10 * time.Millisecond, Max: 20 * time.Millisecond, Factor: 0.2}
			_, err := client.SendRequest(ctx, server.URL, testutils.RandomResolveRequest(), options)
			Expect(err).To(MatchError(ContainSubstring("context deadline exceeded")))
		})
	})
})
