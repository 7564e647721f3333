// Package stress exercises a thread.Mutex from many goroutines and reports
// whether mutual exclusion and ownership checks held throughout.
package stress

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/markand/SDL/thread"
	"golang.org/x/sync/errgroup"
)

// ErrExclusionViolated is returned by Run() when two goroutines were observed
// holding the mutex at the same time, or when an unlock by a goroutine that
// did not hold the mutex succeeded.
var ErrExclusionViolated = errors.New("mutual exclusion violated")

// Options configures a stress run.
type Options struct {
	// Workers is the number of goroutines contending for the mutex.
	Workers int

	// Iterations is the number of critical sections each worker enters.
	Iterations int

	// Depth is the number of times each worker locks the mutex on entry to a
	// critical section.
	Depth int

	// Try causes workers to poll with TryLock() instead of blocking in Lock().
	Try bool
}

// Validate returns an error if the options can not be used for a run.
func (o Options) Validate() error {
	if o.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", o.Workers)
	}
	if o.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", o.Iterations)
	}
	if o.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", o.Depth)
	}
	return nil
}

// Report is the outcome of a stress run.
type Report struct {
	// Entries is the number of critical sections entered.
	Entries int64

	// WouldBlock is the number of TryLock() calls that returned
	// thread.ErrWouldBlock.
	WouldBlock int64

	// ForeignUnlocks is the number of unlock attempts by non-owners that were
	// correctly rejected.
	ForeignUnlocks int64

	// Violations is the number of times exclusion or ownership was broken.
	Violations int64
}

// Run starts opts.Workers goroutines that repeatedly lock m, check that they
// are its sole holder, and unlock it again.
//
// It returns ErrExclusionViolated alongside the report if any violation was
// observed.
func Run(ctx context.Context, m *thread.Mutex, opts Options) (Report, error) {
	if err := opts.Validate(); err != nil {
		return Report{}, err
	}

	var (
		r         Report
		occupancy int64
	)

	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			// Nobody can hold the mutex on behalf of this goroutine yet, so
			// unlocking it must be refused.
			if err := m.Unlock(); errors.Is(err, thread.ErrNotOwner) {
				atomic.AddInt64(&r.ForeignUnlocks, 1)
			} else {
				atomic.AddInt64(&r.Violations, 1)
			}

			self := thread.CurrentThreadID()

			for i := 0; i < opts.Iterations; i++ {
				if err := acquire(ctx, m, opts, &r); err != nil {
					return err
				}

				if atomic.AddInt64(&occupancy, 1) != 1 {
					atomic.AddInt64(&r.Violations, 1)
				}
				if m.Owner() != self || m.Depth() != opts.Depth-1 {
					atomic.AddInt64(&r.Violations, 1)
				}
				atomic.AddInt64(&r.Entries, 1)
				atomic.AddInt64(&occupancy, -1)

				for d := 0; d < opts.Depth; d++ {
					if err := m.Unlock(); err != nil {
						return err
					}
				}
			}

			return nil
		})
	}

	err := g.Wait()

	if err == nil && r.Violations > 0 {
		err = fmt.Errorf("%d violations: %w", r.Violations, ErrExclusionViolated)
	}

	return r, err
}

// acquire locks m opts.Depth times.
//
// Only the first lock can fail, so on error the mutex is never held.
func acquire(ctx context.Context, m *thread.Mutex, opts Options, r *Report) error {
	for d := 0; d < opts.Depth; d++ {
		if !opts.Try {
			if err := m.Lock(ctx); err != nil {
				return err
			}
			continue
		}

		for {
			err := m.TryLock()
			if err == nil {
				break
			}
			if err != thread.ErrWouldBlock {
				return err
			}

			atomic.AddInt64(&r.WouldBlock, 1)

			if err := ctx.Err(); err != nil {
				return err
			}
			runtime.Gosched()
		}
	}

	return nil
}
