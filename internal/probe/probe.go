package probe

// Find - Searches for the slot holding the key behind acc.KeyEqual,
// starting at the natural bucket of h. Proceeds in three phases: skip a
// wrapped overflow tail, advance to the run whose modded hash equals
// start, then scan that run comparing keys in increasing index order.
// Returns the matching index and true, or the insertion candidate index
// and false.
//
// Each phase advances cyclically with an explicit cap of buckets
// iterations, or stops on a free slot - the algorithm always terminates.
func Find(acc Accessors, buckets int, h uint64) (idx int, found bool) {
	start := mod(h, buckets)
	i := start

	// Phase 1: skip the wrapped tail of an earlier collision run whose
	// natural bucket lies near buckets-1.
	for n := 0; n < buckets; n++ {
		if acc.IsFree(i) {
			return i, false
		}
		if mod(acc.HashOf(i), buckets) <= start {
			break
		}
		i = next(i, buckets)
		if i == start {
			return i, false
		}
	}

	// Phase 2: advance until the modded hash reaches start.
	for n := 0; n < buckets; n++ {
		if acc.IsFree(i) {
			return i, false
		}
		m := mod(acc.HashOf(i), buckets)
		if m == start {
			break
		}
		if m > start {
			// A higher run appeared before start was ever seen: by the
			// probe-order invariant, no slot with the target modded
			// hash exists.
			return i, false
		}
		i = next(i, buckets)
		if i == start {
			return i, false
		}
	}

	// Phase 3: scan the run, comparing keys strictly in increasing index
	// order.
	for n := 0; n < buckets; n++ {
		if acc.IsFree(i) {
			return i, false
		}
		if mod(acc.HashOf(i), buckets) != start {
			return i, false
		}
		if acc.KeyEqual(i) {
			return i, true
		}
		i = next(i, buckets)
	}
	return i, false
}

// Emplace - Invokes Find; if the key is present, returns (index, false).
// Otherwise writes into the free candidate index Find reported, or - if
// that candidate is occupied - shifts the run forward one position to
// open a gap at the candidate and returns it, preserving invariant (2).
// The caller is responsible for actually writing the new entry into the
// returned index; Emplace only makes room for it.
func Emplace(acc Accessors, buckets int, h uint64) (idx int, inserted bool) {
	i, found := Find(acc, buckets, h)
	if found {
		return i, false
	}
	if acc.IsFree(i) {
		return i, true
	}

	// i is occupied: locate the first free slot reachable by cyclically
	// advancing from i, then shift occupied slots one position forward
	// from that free slot back down to i.
	j := i
	for n := 0; n < buckets; n++ {
		if acc.IsFree(j) {
			break
		}
		j = next(j, buckets)
	}
	for j != i {
		p := prev(j, buckets)
		acc.Move(j, p)
		j = p
	}
	return i, true
}

// Erase - Invokes Find; if the key is absent, returns (candidate, false)
// with no change made. Otherwise destroys the slot and compacts backward
// using the textbook backward-shift algorithm for open addressing: a
// later slot j is pulled into the hole exactly when j sits farther from
// its own natural bucket than the hole does, which is precisely the
// condition under which Find would still reach j after the pull.
// Compaction stops at a free slot, at a slot already sitting in its
// natural bucket, or after a full cycle.
func Erase(acc Accessors, buckets int, h uint64) (idx int, erased bool) {
	i, found := Find(acc, buckets, h)
	if !found {
		return i, false
	}
	acc.Destroy(i)

	hole := i
	j := next(hole, buckets)
	for n := 0; n < buckets; n++ {
		if acc.IsFree(j) {
			break
		}
		k := mod(acc.HashOf(j), buckets)
		if k == j {
			break
		}
		distKtoJ := (j - k + buckets) % buckets
		distKtoHole := (hole - k + buckets) % buckets
		if distKtoJ <= distKtoHole {
			break
		}
		acc.Move(hole, j)
		hole = j
		j = next(j, buckets)
	}
	return i, true
}
