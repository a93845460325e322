package server

import (
	"context"
	"errors"

	gomock "go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fieldbuslab/modserve/image"
)

var _ = Describe("Server scheduling and lifecycle", func() {
	var (
		mockCtrl  *gomock.Controller
		processor *MockRequestProcessor
		srv       *Server
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		processor = NewMockRequestProcessor(mockCtrl)

		img := image.MakeBuilder().
			WithMaxHoldingRegisterAddress(99).
			WithMaxCoilAddress(99).
			Build()
		srv = MakeBuilder().
			WithImage(img).
			WithProcessor(processor).
			Build("Server")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("in synchronous mode", func() {
		It("should not run a cycle before Update is called", func() {
			Expect(srv.Start()).To(Succeed())
			Expect(srv.Stop()).To(Succeed())
			Expect(srv.CycleCount()).To(Equal(uint64(0)))
		})

		It("should run one cycle per Update", func() {
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				Return(nil).
				Times(2)

			Expect(srv.Start()).To(Succeed())

			srv.Update()
			Eventually(srv.CycleCount).Should(Equal(uint64(1)))

			srv.Update()
			Eventually(srv.CycleCount).Should(Equal(uint64(2)))

			Expect(srv.Stop()).To(Succeed())
		})

		It("should coalesce rapid successive Updates into one cycle", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				DoAndReturn(func(_ context.Context) error {
					close(entered)
					<-release
					return nil
				})

			Expect(srv.Start()).To(Succeed())

			srv.Update()
			srv.Update()

			Eventually(entered).Should(BeClosed())
			close(release)

			Expect(srv.Stop()).To(Succeed())
			Expect(srv.CycleCount()).To(Equal(uint64(1)))
		})

		It("should ignore an Update that arrives mid-cycle", func() {
			entered := make(chan struct{})
			release := make(chan struct{})
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				DoAndReturn(func(_ context.Context) error {
					close(entered)
					<-release
					return nil
				})

			Expect(srv.Start()).To(Succeed())

			srv.Update()
			Eventually(entered).Should(BeClosed())

			srv.Update()
			close(release)

			Expect(srv.Stop()).To(Succeed())
			Expect(srv.CycleCount()).To(Equal(uint64(1)))
		})

		It("should recover the cancellation of a mid-cycle stop", func() {
			entered := make(chan struct{})
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				DoAndReturn(func(ctx context.Context) error {
					close(entered)
					<-ctx.Done()
					return ctx.Err()
				})

			Expect(srv.Start()).To(Succeed())

			srv.Update()
			Eventually(entered).Should(BeClosed())

			Expect(srv.Stop()).To(Succeed())
		})

		It("should surface a background processing failure at Stop", func() {
			processingErr := errors.New("transport exploded")
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				Return(processingErr)

			Expect(srv.Start()).To(Succeed())

			srv.Update()
			Eventually(srv.CycleCount).Should(Equal(uint64(1)))

			Expect(srv.Stop()).To(MatchError(processingErr))
		})

		It("should ignore Update on a stopped server", func() {
			Expect(srv.Start()).To(Succeed())
			Expect(srv.Stop()).To(Succeed())

			srv.Update()

			Expect(srv.CycleCount()).To(Equal(uint64(0)))
		})
	})

	Context("in asynchronous mode", func() {
		BeforeEach(func() {
			srv = MakeBuilder().
				WithMode(Asynchronous).
				WithProcessor(processor).
				Build("Server")
		})

		It("should treat Update as a no-op", func() {
			Expect(srv.Start()).To(Succeed())

			srv.Update()

			Expect(srv.Stop()).To(Succeed())
			Expect(srv.CycleCount()).To(Equal(uint64(0)))
		})

		It("should serve on the caller's goroutine", func() {
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				Return(nil)

			Expect(srv.Start()).To(Succeed())
			Expect(srv.Serve(context.Background())).To(Succeed())
			Expect(srv.CycleCount()).To(Equal(uint64(1)))
			Expect(srv.Stop()).To(Succeed())
		})

		It("should propagate processing failures to the caller", func() {
			processingErr := errors.New("transport exploded")
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				Return(processingErr)

			Expect(srv.Start()).To(Succeed())
			Expect(srv.Serve(context.Background())).To(MatchError(processingErr))
			Expect(srv.Stop()).To(Succeed())
		})

		It("should refuse to serve before Start", func() {
			Expect(srv.Serve(context.Background())).To(MatchError(ErrNotStarted))
		})
	})

	Context("lifecycle misuse", func() {
		It("should refuse a second Start", func() {
			Expect(srv.Start()).To(Succeed())
			Expect(srv.Start()).To(MatchError(ErrAlreadyStarted))
			Expect(srv.Stop()).To(Succeed())
		})

		It("should tolerate Stop before Start", func() {
			Expect(srv.Stop()).To(Succeed())
		})

		It("should tolerate a double Stop", func() {
			Expect(srv.Start()).To(Succeed())
			Expect(srv.Stop()).To(Succeed())
			Expect(srv.Stop()).To(Succeed())
		})

		It("should run the stop sequence exactly once on double Dispose", func() {
			Expect(srv.Start()).To(Succeed())
			Expect(srv.Dispose()).To(Succeed())
			Expect(srv.Dispose()).To(Succeed())
			Expect(srv.stopSequences).To(Equal(1))
		})

		It("should allow a restart after Stop", func() {
			processor.EXPECT().
				ProcessRequests(gomock.Any()).
				Return(nil)

			Expect(srv.Start()).To(Succeed())
			Expect(srv.Stop()).To(Succeed())

			Expect(srv.Start()).To(Succeed())
			srv.Update()
			Eventually(srv.CycleCount).Should(Equal(uint64(1)))
			Expect(srv.Stop()).To(Succeed())
		})
	})
})
