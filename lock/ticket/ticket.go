// Package ticket implements a fair FIFO ticket lock: acquisitions are
// served strictly in the order their tickets were fetched. Grounded on
// original_source/code/include/files/locks/queue_lock.h's head/tail
// shape, adapted from futex-wait to pure userspace busy-wait per the
// "never enter the kernel" requirement on the lock subsystem, with
// cache-line padding between the hot fields in the style of
// codewanderer42820-evm_triarb/ring's Ring struct.
package ticket

import (
	"sync/atomic"

	"github.com/gostonefire/memfilemap/lock/backoff"
)

// Lock - A fair ticket lock. head and tail are kept on separate
// cache-lines to avoid false sharing between the thread fetching a
// ticket and the thread releasing the lock.
type Lock struct {
	head uint64
	_    [56]byte // pad head to its own cache-line
	tail uint64
	_    [56]byte

	policy backoff.Policy
}

// New - Returns a ticket lock using the given back-off policy. A nil
// policy defaults to backoff.None.
func New(policy backoff.Policy) *Lock {
	if policy == nil {
		policy = None
	}
	return &Lock{policy: policy}
}

// None is the shared zero-value no-op back-off policy, used when New is
// called with a nil policy.
var None backoff.Policy = backoff.None{}

// Lock - Fetches-and-increments head to obtain a ticket, then spins,
// consulting the back-off policy between reads, until tail equals that
// ticket. Acquisitions happen strictly in ticket order: FIFO. No
// recursion - a goroutine that holds the lock and calls Lock again
// self-deadlocks.
func (l *Lock) Lock() {
	ticket := atomic.AddUint64(&l.head, 1) - 1
	waits := 0
	for atomic.LoadUint64(&l.tail) != ticket {
		l.policy.Wait()
		waits++
	}
	l.policy.Adjust(waits)
}

// Unlock - Increments tail with release semantics, admitting the next
// ticket holder. A goroutine that calls Unlock without holding the lock
// corrupts the counter; callers must observe the lock/unlock pairing
// discipline.
func (l *Lock) Unlock() {
	atomic.AddUint64(&l.tail, 1)
}
