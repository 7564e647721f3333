package thread

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Mutex is a context-aware recursive mutex built on a Semaphore.
//
// The goroutine that holds the mutex may lock it again without blocking. The
// mutex becomes available to other goroutines once it has been unlocked as
// many times as it was locked.
//
// All methods may be called on a nil *Mutex, in which case they do nothing and
// succeed.
//
// The zero value is an unlocked mutex. A Mutex must not be copied after first
// use.
type Mutex struct {
	once  sync.Once
	sem   *Semaphore // holds a single token while the mutex is unlocked
	owner int64      // atomic ThreadID, NoThread while unlocked
	depth int        // re-entrant locks beyond the first, only touched by the owner
}

// NewMutex returns a new unlocked mutex.
func NewMutex() (*Mutex, error) {
	sem, err := NewSemaphore(1)
	if err != nil {
		return nil, fmt.Errorf("unable to create mutex: %w", err)
	}

	return &Mutex{sem: sem}, nil
}

// Lock acquires an exclusive lock on the mutex.
//
// If the calling goroutine already holds the mutex it returns immediately.
// Otherwise it blocks until the mutex is acquired, or ctx is canceled.
func (m *Mutex) Lock(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.init()

	id := CurrentThreadID()
	if m.loadOwner() == id {
		m.depth++
		return nil
	}

	// The owner must only be set once the token has been obtained, otherwise
	// another goroutine could see a false owner.
	if err := m.sem.Wait(ctx); err != nil {
		return err
	}

	m.storeOwner(id)
	m.depth = 0

	return nil
}

// TryLock acquires an exclusive lock on the mutex if doing so would not block.
//
// It returns ErrWouldBlock if the mutex is held by another goroutine.
func (m *Mutex) TryLock() error {
	if m == nil {
		return nil
	}

	m.init()

	id := CurrentThreadID()
	if m.loadOwner() == id {
		m.depth++
		return nil
	}

	if err := m.sem.TryWait(); err != nil {
		return err
	}

	m.storeOwner(id)
	m.depth = 0

	return nil
}

// Unlock releases one lock on the mutex.
//
// The mutex is made available to other goroutines when the outermost lock is
// released. It returns an *OwnershipError if the calling goroutine does not
// hold the mutex.
func (m *Mutex) Unlock() error {
	if m == nil {
		return nil
	}

	m.init()

	id := CurrentThreadID()
	if owner := m.loadOwner(); owner != id {
		return &OwnershipError{
			Caller: id,
			Owner:  owner,
		}
	}

	if m.depth > 0 {
		m.depth--
		return nil
	}

	// Clear the owner before returning the token, so that the next goroutine
	// to obtain it never observes the previous owner.
	m.storeOwner(NoThread)

	return m.sem.Post()
}

// Owner returns the goroutine that currently holds the mutex, or NoThread if
// it is unlocked.
func (m *Mutex) Owner() ThreadID {
	if m == nil {
		return NoThread
	}

	return m.loadOwner()
}

// Depth returns the number of times the mutex has been re-locked by its owner
// beyond the first lock.
//
// The result is only meaningful when called by the goroutine that holds the
// mutex.
func (m *Mutex) Depth() int {
	if m == nil || m.loadOwner() != CurrentThreadID() {
		return 0
	}

	return m.depth
}

// Destroy releases the mutex's semaphore. Any subsequent attempt to obtain the
// mutex fails with ErrSemaphoreDestroyed.
//
// The mutex must not be held, or waited on, when it is destroyed.
func (m *Mutex) Destroy() {
	if m == nil {
		return
	}

	m.init()
	m.sem.Destroy()
}

// Locker returns a sync.Locker that locks m without a deadline.
//
// The returned locker panics if m can not be locked or unlocked.
func (m *Mutex) Locker() sync.Locker {
	return locker{m}
}

func (m *Mutex) init() {
	m.once.Do(func() {
		if m.sem == nil {
			m.sem = newSemaphore(1)
		}
	})
}

func (m *Mutex) loadOwner() ThreadID {
	return ThreadID(atomic.LoadInt64(&m.owner))
}

func (m *Mutex) storeOwner(id ThreadID) {
	atomic.StoreInt64(&m.owner, int64(id))
}

type locker struct {
	m *Mutex
}

func (l locker) Lock() {
	if err := l.m.Lock(context.Background()); err != nil {
		panic(err)
	}
}

func (l locker) Unlock() {
	if err := l.m.Unlock(); err != nil {
		panic(err)
	}
}
