// Package spin implements the reentrant spin lock: an exclusive lock
// permitting the current owner to re-enter. Grounded directly on
// original_source/code/include/files/locks/spin_lock.h, keeping the same
// state shape (free flag, recursion counter, estimate, owner) and the
// same CAS-retry-on-failure structure.
//
// Go exposes no stable, portable goroutine-ID API (by design), unlike the
// C++ source's pthread_self(). This port requires the caller to supply an
// opaque comparable owner token to Lock/Unlock instead of inferring
// identity - e.g. a *int sentinel unique per goroutine, or any other
// goroutine-local token the caller already tracks.
package spin

import (
	"sync/atomic"

	"github.com/gostonefire/memfilemap/lock/backoff"
)

// Owner - An opaque, comparable token identifying the calling goroutine.
// Equality of two Owner values must hold if and only if they were
// obtained on behalf of the same logical thread of execution.
type Owner any

// Lock - A reentrant spin lock. Only the owner ever observes a non-zero
// recursion counter, and only the owner can transition free from false
// to true.
type Lock struct {
	free    atomic.Bool
	recurse atomic.Uint64
	owner   atomic.Pointer[Owner]
	policy  backoff.Policy
}

// New - Returns a reentrant spin lock using the given back-off policy. A
// nil policy defaults to a Userspace policy seeded at 32, matching
// spin_lock.h's default M_estimate.
func New(policy backoff.Policy) *Lock {
	l := &Lock{policy: policy}
	l.free.Store(true)
	if l.policy == nil {
		l.policy = backoff.NewUserspace(32)
	}
	return l
}

// Lock - Attempts to CAS free from true to false. On failure, if owner
// equals the caller-supplied token, increments the recursion counter and
// returns immediately (reentrant fast path); otherwise waits via the
// back-off policy and retries.
func (l *Lock) Lock(who Owner) {
	waits := 0
	for !l.free.CompareAndSwap(true, false) {
		if cur := l.owner.Load(); cur != nil && *cur == who {
			l.recurse.Add(1)
			return
		}
		l.policy.Wait()
		waits++
	}
	l.policy.Adjust(waits)
	l.owner.Store(&who)
	l.recurse.Add(1)
}

// Unlock - If who is the current owner, decrements the recursion
// counter; once it reaches zero, clears the owner and marks the lock
// free. A no-op when called by a non-owner.
func (l *Lock) Unlock(who Owner) {
	cur := l.owner.Load()
	if cur == nil || *cur != who {
		return
	}
	if l.recurse.Add(^uint64(0)) == 0 {
		l.owner.Store(nil)
		l.free.Store(true)
	}
}
