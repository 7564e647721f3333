package stress_test

import (
	"context"
	"time"

	. "github.com/markand/SDL/internal/stress"
	"github.com/markand/SDL/thread"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("func Run()", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		mutex  *thread.Mutex
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		mutex = &thread.Mutex{}
	})

	AfterEach(func() {
		cancel()
	})

	It("enters every critical section exactly once using Lock()", func() {
		r, err := Run(ctx, mutex, Options{
			Workers:    4,
			Iterations: 100,
			Depth:      3,
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Entries).To(BeEquivalentTo(400))
		Expect(r.ForeignUnlocks).To(BeEquivalentTo(4))
		Expect(r.Violations).To(BeZero())
		Expect(mutex.Owner()).To(Equal(thread.NoThread))
	})

	It("enters every critical section exactly once using TryLock()", func() {
		r, err := Run(ctx, mutex, Options{
			Workers:    4,
			Iterations: 100,
			Depth:      2,
			Try:        true,
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Entries).To(BeEquivalentTo(400))
		Expect(r.Violations).To(BeZero())
		Expect(mutex.Owner()).To(Equal(thread.NoThread))
	})

	It("stops when the context is canceled", func() {
		err := mutex.Lock(ctx)
		Expect(err).ShouldNot(HaveOccurred())
		defer mutex.Unlock()

		short, cancelShort := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancelShort()

		r, err := Run(short, mutex, Options{
			Workers:    2,
			Iterations: 10,
			Depth:      1,
		})
		Expect(err).To(Equal(context.DeadlineExceeded))
		Expect(r.Entries).To(BeZero())
	})

	It("rejects invalid options", func() {
		_, err := Run(ctx, mutex, Options{Workers: 0, Depth: 1})
		Expect(err).To(MatchError(ContainSubstring("workers")))

		_, err = Run(ctx, mutex, Options{Workers: 1, Depth: 0})
		Expect(err).To(MatchError(ContainSubstring("depth")))
	})
})
