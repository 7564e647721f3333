package thread

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// MaxSemaphoreValue is the largest number of tokens a Semaphore can hold.
const MaxSemaphoreValue = math.MaxUint32

// Semaphore is a context-aware counting semaphore.
//
// Blocked calls to Wait() are woken in FIFO order.
type Semaphore struct {
	tokens    *semaphore.Weighted
	value     int64  // atomic, number of available tokens
	destroyed uint32 // atomic bool
}

// NewSemaphore returns a semaphore that initially holds the given number of
// tokens.
func NewSemaphore(initial int64) (*Semaphore, error) {
	if initial < 0 || initial > MaxSemaphoreValue {
		return nil, fmt.Errorf(
			"unable to create semaphore with value %d: %w",
			initial,
			ErrSemaphoreValue,
		)
	}

	return newSemaphore(initial), nil
}

// newSemaphore returns a semaphore holding initial tokens. initial must be in
// range.
func newSemaphore(initial int64) *Semaphore {
	s := &Semaphore{
		tokens: semaphore.NewWeighted(MaxSemaphoreValue),
		value:  initial,
	}

	// The weighted semaphore starts with every token available, so take
	// ownership of the ones that should not be.
	if held := MaxSemaphoreValue - initial; held > 0 {
		s.tokens.TryAcquire(held)
	}

	return s
}

// Wait takes one token from the semaphore.
//
// It blocks until a token is available, or ctx is canceled. If ctx is canceled
// no token is taken.
func (s *Semaphore) Wait(ctx context.Context) error {
	if s.isDestroyed() {
		return ErrSemaphoreDestroyed
	}

	if err := s.tokens.Acquire(ctx, 1); err != nil {
		return err
	}

	atomic.AddInt64(&s.value, -1)
	return nil
}

// TryWait takes one token from the semaphore if doing so would not block.
//
// It returns ErrWouldBlock if no token is available.
func (s *Semaphore) TryWait() error {
	if s.isDestroyed() {
		return ErrSemaphoreDestroyed
	}

	if !s.tokens.TryAcquire(1) {
		return ErrWouldBlock
	}

	atomic.AddInt64(&s.value, -1)
	return nil
}

// WaitTimeout takes one token from the semaphore, waiting at most d for one to
// become available.
//
// It returns ErrTimedOut if d elapses first. If d <= 0 it behaves like
// TryWait(), except that it reports ErrTimedOut instead of ErrWouldBlock.
func (s *Semaphore) WaitTimeout(d time.Duration) error {
	if d <= 0 {
		err := s.TryWait()
		if err == ErrWouldBlock {
			return ErrTimedOut
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	err := s.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimedOut
	}

	return err
}

// Post returns one token to the semaphore, waking the longest-blocked call to
// Wait(), if any.
//
// It returns ErrSemaphoreOverflow when Value() is MaxSemaphoreValue. Because a
// token taken by an in-flight Wait() is still counted in Value(), a Post()
// that races such a Wait() on a full semaphore may report an overflow that the
// Wait() would have resolved.
func (s *Semaphore) Post() error {
	if s.isDestroyed() {
		return ErrSemaphoreDestroyed
	}

	// Reserve the new value before releasing the token so that concurrent
	// posts can never release more tokens than the weighted semaphore holds.
	// Waits only decrement the value after acquiring, so it never undercounts.
	for {
		v := atomic.LoadInt64(&s.value)
		if v >= MaxSemaphoreValue {
			return ErrSemaphoreOverflow
		}

		if atomic.CompareAndSwapInt64(&s.value, v, v+1) {
			break
		}
	}

	s.tokens.Release(1)
	return nil
}

// Value returns the number of tokens currently available.
//
// The result is a snapshot, it may be stale by the time it is returned. A
// token taken by a Wait() call that has not yet returned is still counted, so
// the value can briefly be one higher per in-flight Wait(). It is exact while
// no Wait() or Post() call is in progress.
func (s *Semaphore) Value() uint32 {
	v := atomic.LoadInt64(&s.value)
	if v < 0 {
		return 0
	}

	return uint32(v)
}

// Destroy marks the semaphore as unusable. Subsequent operations return
// ErrSemaphoreDestroyed.
//
// Destroying a semaphore while another goroutine is blocked in Wait() leaves
// that goroutine blocked.
func (s *Semaphore) Destroy() {
	if s == nil {
		return
	}

	atomic.StoreUint32(&s.destroyed, 1)
}

func (s *Semaphore) isDestroyed() bool {
	return atomic.LoadUint32(&s.destroyed) != 0
}
