// Package sema implements a process-shared counting semaphore backed by
// a futex(2) word living inside a shared memory mapping. It replaces the
// POSIX sem_t the original arbiter used: two unrelated processes that
// each mmap the same region and call At() on the same offset are waiting
// on the same physical word, so Post from one wakes Wait in the other.
package sema

import (
	"context"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/joacoabraldes/chompchamps/pkg/ipcerr"
)

// Size is the number of bytes a Sema occupies in shared memory.
const Size = 4

const (
	futexWait = 0
	futexWake = 1
)

// Sema is a counting semaphore overlaying a 4-byte word in shared memory.
type Sema struct {
	word *int32
}

// At returns a Sema overlaying the first Size bytes of mem. mem must
// outlive the returned Sema; it is typically a slice into an mmap'd
// shared memory region.
func At(mem []byte) *Sema {
	if len(mem) < Size {
		panic("sema: buffer too small")
	}
	return &Sema{word: (*int32)(unsafe.Pointer(&mem[0]))}
}

// InitAt sets the semaphore word at the front of mem to value. Only the
// creator of a shared region calls this, once, before any waiter can see
// the region.
func InitAt(mem []byte, value uint32) {
	atomic.StoreInt32((*int32)(unsafe.Pointer(&mem[0])), int32(value))
}

// Post increments the semaphore and wakes one waiter, mirroring sem_post.
func (s *Sema) Post() error {
	atomic.AddInt32(s.word, 1)
	if _, _, errno := unix.Syscall(unix.SYS_FUTEX, uintptr(unsafe.Pointer(s.word)), uintptr(futexWake), uintptr(1)); errno != 0 {
		return ipcerr.New(ipcerr.IOFailure, "sema.Post", errno)
	}
	return nil
}

// futexPollInterval bounds how long a single FUTEX_WAIT call blocks, so
// Wait can notice ctx cancellation even though nothing ever posts.
// context.Background() callers pay this cost too, just as an unbounded
// sem_wait would, but never observe it since they have no deadline.
var futexPollInterval = unix.NsecToTimespec(int64(200 * time.Millisecond))

// Wait blocks until the semaphore is positive, then atomically
// decrements it, mirroring sem_wait. A cancelled ctx causes Wait to
// return an Interrupted error within one poll interval; callers that
// must never miss a signal should pass context.Background().
func (s *Sema) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return ipcerr.New(ipcerr.Interrupted, "sema.Wait", err)
		}
		cur := atomic.LoadInt32(s.word)
		if cur > 0 {
			if atomic.CompareAndSwapInt32(s.word, cur, cur-1) {
				return nil
			}
			continue
		}
		ts := futexPollInterval
		_, _, errno := unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(s.word)), uintptr(futexWait), uintptr(cur), uintptr(unsafe.Pointer(&ts)), 0, 0)
		if errno != 0 && errno != unix.EAGAIN && errno != unix.EINTR && errno != unix.ETIMEDOUT {
			return ipcerr.New(ipcerr.IOFailure, "sema.Wait", errno)
		}
		// EAGAIN means the word changed between the load and the futex
		// call; EINTR means a signal interrupted the wait; ETIMEDOUT
		// means the poll interval elapsed. All three loop and re-check,
		// same as the player runtime's interrupted-wait retry.
	}
}

// TryWait decrements the semaphore without blocking if it is currently
// positive, reporting whether it did so.
func (s *Sema) TryWait() bool {
	for {
		cur := atomic.LoadInt32(s.word)
		if cur <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt32(s.word, cur, cur-1) {
			return true
		}
	}
}

// Value returns the current counter value, for diagnostics only: it is
// stale the instant it is read.
func (s *Sema) Value() int32 { return atomic.LoadInt32(s.word) }
