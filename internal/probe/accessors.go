// Package probe implements the stateless find/emplace/erase primitives
// that preserve the ordered-probe invariant over a slot array: within any
// contiguous occupied run, the modded hashes are non-decreasing. The
// primitives are parameterised over an Accessors bundle so the same code
// serves both live map mutation and the scratch-array permutation built
// during rehash.
package probe

// Accessors - The only coupling between the probe algorithm and the slot
// layout it runs over; a small views bundle (free-test, hash-read,
// key-test, move, destroy), passed by value. Grounded directly on
// unordered_map_file.h's open_address_find/emplace_index/erase_index
// function family, with Go closures standing in for the C++ functor
// template parameters.
type Accessors struct {
	// IsFree reports whether slot i currently carries no live entry.
	IsFree func(i int) bool

	// HashOf returns the full hash recorded at slot i. Undefined if i is
	// free.
	HashOf func(i int) uint64

	// KeyEqual reports whether the key stored at slot i equals the
	// target key a Find call was given. The target key itself is closed
	// over by the caller building this bundle.
	KeyEqual func(i int) bool

	// Move transfers the occupied slot at from into to, and marks from
	// free as a side effect of the transfer.
	Move func(to, from int)

	// Destroy marks slot i free, discarding its content.
	Destroy func(i int)
}

func next(i, buckets int) int {
	i++
	if i == buckets {
		return 0
	}
	return i
}

func prev(i, buckets int) int {
	if i == 0 {
		return buckets - 1
	}
	return i - 1
}

func mod(h uint64, buckets int) int {
	return int(h % uint64(buckets))
}
