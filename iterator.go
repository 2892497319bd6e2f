package memfilemap

// Iterator - A forward/backward cursor over occupied slots, skipping free
// ones transparently. Grounded on the teacher's own bucket-walk-skip-if-
// not-InUse loops (Stat, reorgRecords), generalized here into a
// first-class type rather than repeated inline loops.
//
// The zero value is not usable; obtain an Iterator from Find, Insert, or
// Map.Begin/Map.End. Decrementing past the first occupied slot is
// undefined, matching spec semantics for a singly-linked backward walk.
type Iterator[K comparable, V any] struct {
	m   *Map[K, V]
	idx int
}

// Begin - An iterator at the first occupied slot, or End() if the map is
// empty.
func (m *Map[K, V]) Begin() Iterator[K, V] {
	it := Iterator[K, V]{m: m, idx: 0}
	if it.idx < m.buckets && m.slots[it.idx].Free {
		it.Next()
	}
	return it
}

// End - The one-past-the-last sentinel iterator.
func (m *Map[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{m: m, idx: m.buckets}
}

// End - Reports whether it has advanced past the last occupied slot.
func (it Iterator[K, V]) End() bool {
	return it.idx >= it.m.buckets
}

// Key - The key at the iterator's current position. Undefined if End().
func (it Iterator[K, V]) Key() K {
	return it.m.slots[it.idx].Key
}

// Value - The value at the iterator's current position. Undefined if
// End().
func (it Iterator[K, V]) Value() V {
	return it.m.slots[it.idx].Value
}

// Next - Advances to the next occupied slot, or to End().
func (it *Iterator[K, V]) Next() {
	for {
		it.idx++
		if it.idx >= it.m.buckets {
			it.idx = it.m.buckets
			return
		}
		if !it.m.slots[it.idx].Free {
			return
		}
	}
}

// Prev - Retreats to the previous occupied slot. Undefined if called past
// the first occupied slot, per spec.
func (it *Iterator[K, V]) Prev() {
	for it.idx > 0 {
		it.idx--
		if !it.m.slots[it.idx].Free {
			return
		}
	}
}

// Equal - Address-based equality: same map, same slot index.
func (it Iterator[K, V]) Equal(other Iterator[K, V]) bool {
	return it.m == other.m && it.idx == other.idx
}

// Less - An address-based total order over iterators into the same map,
// used only for diagnostic/comparison purposes; has no relation to key
// ordering since the map is unordered.
func (it Iterator[K, V]) Less(other Iterator[K, V]) bool {
	return it.idx < other.idx
}
