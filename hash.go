package memfilemap

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// defaultHashFunc - Returns a hash function over an arbitrary comparable
// key, seeded once per map instance. Grounded on homier-stablemap's
// MakeDefaultHashFunc: maphash.Comparable hashes any comparable type's
// bytes without requiring a []byte conversion, which keeps the map
// generic without asking every caller for a custom WithHashFunc.
func defaultHashFunc[K comparable]() func(K) uint64 {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// HashString - Hashes s with xxhash. Supplied so callers with string keys
// can opt into a faster, well-known hash via WithHashFunc instead of the
// generic maphash default, e.g. WithHashFunc[string, V](memfilemap.HashString).
func HashString(s string) uint64 {
	return xxhash.Sum64String(s)
}
