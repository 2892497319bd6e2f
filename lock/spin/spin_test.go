package spin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockUnlockBasic(t *testing.T) {
	l := New(nil)
	token := new(int)
	l.Lock(token)
	l.Unlock(token)
	l.Lock(token)
	l.Unlock(token)
}

func TestReentrantLock(t *testing.T) {
	l := New(nil)
	token := new(int)

	l.Lock(token)
	l.Lock(token) // reentrant, must not deadlock
	l.Unlock(token)
	l.Unlock(token)

	// Lock should now be free for a different owner.
	other := new(int)
	acquired := make(chan struct{})
	go func() {
		l.Lock(other)
		close(acquired)
		l.Unlock(other)
	}()
	<-acquired
}

func TestUnlockByNonOwnerIsNoOp(t *testing.T) {
	l := New(nil)
	owner := new(int)
	other := new(int)

	l.Lock(owner)
	l.Unlock(other) // no-op, owner still holds the lock

	assert.False(t, l.free.Load(), "lock must still be held after a non-owner Unlock")

	l.Unlock(owner)
	assert.True(t, l.free.Load())
}
