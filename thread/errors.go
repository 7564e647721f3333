package thread

import (
	"errors"
	"fmt"
)

var (
	// ErrWouldBlock is returned by non-blocking operations when the lock or
	// semaphore token is not immediately available. It is an expected outcome,
	// not a failure.
	ErrWouldBlock = errors.New("operation would block")

	// ErrTimedOut is returned by Semaphore.WaitTimeout() when no token became
	// available within the given duration.
	ErrTimedOut = errors.New("timed out waiting for semaphore")

	// ErrNotOwner matches any *OwnershipError via errors.Is().
	ErrNotOwner = errors.New("mutex not owned by this thread")

	// ErrSemaphoreValue is returned when a semaphore is created with an
	// initial value outside [0, MaxSemaphoreValue].
	ErrSemaphoreValue = errors.New("semaphore value out of range")

	// ErrSemaphoreOverflow is returned by Semaphore.Post() when the semaphore
	// value is already MaxSemaphoreValue.
	ErrSemaphoreOverflow = errors.New("semaphore value overflow")

	// ErrSemaphoreDestroyed is returned by operations on a semaphore (or a
	// mutex) that has been destroyed.
	ErrSemaphoreDestroyed = errors.New("semaphore has been destroyed")
)

// OwnershipError is returned by Mutex.Unlock() when the calling goroutine does
// not hold the mutex.
type OwnershipError struct {
	// Caller is the goroutine that attempted the unlock.
	Caller ThreadID

	// Owner is the goroutine holding the mutex at the time of the call, or
	// NoThread if the mutex was not locked.
	Owner ThreadID
}

func (e *OwnershipError) Error() string {
	if e.Owner == NoThread {
		return fmt.Sprintf(
			"%s: %s attempted to unlock a mutex that is not locked",
			ErrNotOwner,
			e.Caller,
		)
	}

	return fmt.Sprintf(
		"%s: %s attempted to unlock a mutex held by %s",
		ErrNotOwner,
		e.Caller,
		e.Owner,
	)
}

// Is returns true if target is ErrNotOwner.
func (e *OwnershipError) Is(target error) bool {
	return target == ErrNotOwner
}
