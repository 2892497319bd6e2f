package memfilemap

import (
	"github.com/gostonefire/memfilemap/internal/block"
	"github.com/gostonefire/memfilemap/internal/probe"
)

// Insert - Inserts (k, v) if k is absent. Returns the iterator at k and
// whether an insertion actually happened. When the load factor would
// exceed the configured maximum, the table grows to the next larger
// choice-sequence value before the insert proceeds; every iterator from a
// prior call is invalidated by a growth.
func (m *Map[K, V]) Insert(key K, value V) (Iterator[K, V], bool, error) {
	return m.emplaceWith(key, func() V { return value })
}

// Emplace - Like Insert, but the value is constructed lazily via build
// only when key turns out to be absent, avoiding an unnecessary
// construction when key is already present.
func (m *Map[K, V]) Emplace(key K, build func() V) (Iterator[K, V], bool, error) {
	return m.emplaceWith(key, build)
}

func (m *Map[K, V]) emplaceWith(key K, build func() V) (Iterator[K, V], bool, error) {
	if err := m.checkPoisoned(); err != nil {
		return Iterator[K, V]{}, false, err
	}

	// Growth must land before the real slot array is probed: the
	// candidate index a probe call returns is only valid for the bucket
	// count it ran against (spec's growth-cycle-entanglement note).
	if err := m.grow(m.size + 1); err != nil {
		return Iterator[K, V]{}, false, err
	}

	h := m.hashFunc(key)
	acc := m.accessorsFor(key)
	idx, inserted := probe.Emplace(acc, m.buckets, h)
	if !inserted {
		return Iterator[K, V]{m: m, idx: idx}, false, nil
	}

	m.slots[idx] = block.Slot[K, V]{Free: false, Hash: h, Key: key, Value: build()}
	m.flushSlot(idx)
	m.size++
	m.logMutation("insert", idx)
	return Iterator[K, V]{m: m, idx: idx}, true, nil
}

// InsertOrAssign - If key is present, overwrites its value in place - the
// stored key itself is never rewritten, so any equality-preserving
// transform on K remains stable - otherwise inserts. Returns the
// iterator and whether an insertion happened.
func (m *Map[K, V]) InsertOrAssign(key K, value V) (Iterator[K, V], bool, error) {
	if err := m.checkPoisoned(); err != nil {
		return Iterator[K, V]{}, false, err
	}
	if err := m.grow(m.size + 1); err != nil {
		return Iterator[K, V]{}, false, err
	}

	h := m.hashFunc(key)
	acc := m.accessorsFor(key)
	idx, inserted := probe.Emplace(acc, m.buckets, h)
	if !inserted {
		m.slots[idx].Value = value
		m.flushSlot(idx)
		m.logMutation("assign", idx)
		return Iterator[K, V]{m: m, idx: idx}, false, nil
	}

	m.slots[idx] = block.Slot[K, V]{Free: false, Hash: h, Key: key, Value: value}
	m.flushSlot(idx)
	m.size++
	m.logMutation("insert", idx)
	return Iterator[K, V]{m: m, idx: idx}, true, nil
}

// Find - Read-only lookup; returns the iterator at key and whether it was
// found. Never fails.
func (m *Map[K, V]) Find(key K) (Iterator[K, V], bool) {
	h := m.hashFunc(key)
	idx, found := probe.Find(m.accessorsFor(key), m.buckets, h)
	if !found {
		return Iterator[K, V]{}, false
	}
	return Iterator[K, V]{m: m, idx: idx}, true
}

// Contains - Read-only membership test. Never fails.
func (m *Map[K, V]) Contains(key K) bool {
	_, found := m.Find(key)
	return found
}

// Erase - Removes key if present. Returns 1 if a key was removed, 0
// otherwise; never fails - erase involves no growth, so it carries none
// of Insert's failure modes.
func (m *Map[K, V]) Erase(key K) int {
	h := m.hashFunc(key)
	acc := m.accessorsFor(key)
	idx, erased := probe.Erase(acc, m.buckets, h)
	if !erased {
		return 0
	}
	m.size--
	m.logMutation("erase", idx)
	return 1
}

// EraseAt - Removes the entry it points to, returning an iterator to the
// next occupied slot in index order. it must be a live, non-End iterator
// into m.
func (m *Map[K, V]) EraseAt(it Iterator[K, V]) Iterator[K, V] {
	key := it.Key()
	m.Erase(key)
	next := Iterator[K, V]{m: m, idx: it.idx}
	if next.idx < m.buckets && m.slots[next.idx].Free {
		next.Next()
	}
	return next
}

// Clear - Marks every slot free in one linear pass; size becomes zero.
// The backing file length, if any, is unchanged - only slot markers are
// reset.
func (m *Map[K, V]) Clear() {
	for i := range m.slots {
		if !m.slots[i].Free {
			m.slots[i] = block.Slot[K, V]{Free: true}
			m.flushSlot(i)
		}
	}
	m.size = 0
	m.logMutation("clear", -1)
}

// Reserve - Ensures capacity for at least n keys while respecting the
// max load factor, snapping up to the next choice-sequence value.
// Forwards to the same internal rehash as Rehash, matching
// original_source's own reserve-calls-rehash shape.
func (m *Map[K, V]) Reserve(n int) error {
	return m.rehashForCapacity(n)
}

// Rehash - Ensures capacity for at least n keys, snapping to the next
// choice-sequence value >= n / max_load_factor; may also shrink.
// Preserves the multiset of occupied (key, value) pairs and every key's
// recorded hash. Invalidates all iterators.
func (m *Map[K, V]) Rehash(n int) error {
	return m.rehashForCapacity(n)
}
