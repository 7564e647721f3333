package thread

import (
	"strconv"

	"github.com/petermattis/goid"
)

// ThreadID identifies a goroutine.
//
// Values are only comparable for equality, they carry no other meaning.
type ThreadID int64

// NoThread is the ThreadID of a mutex that has no owner. It is never returned
// by CurrentThreadID().
const NoThread ThreadID = 0

// CurrentThreadID returns the ID of the calling goroutine.
//
// The ID is stable for the lifetime of the goroutine.
func CurrentThreadID() ThreadID {
	return ThreadID(goid.Get())
}

func (id ThreadID) String() string {
	if id == NoThread {
		return "no thread"
	}

	return "goroutine " + strconv.FormatInt(int64(id), 10)
}
