// Package thread provides a recursive mutex implemented on top of a counting
// semaphore, for use where no native recursive mutex is available.
//
// A "thread" is a goroutine. Ownership is tracked by goroutine ID, so a Mutex
// locked by one goroutine can only be unlocked by that same goroutine.
package thread
