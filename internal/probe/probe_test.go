package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTable is a tiny in-memory open-addressing table used to exercise
// the probe primitives directly, independent of the public map.
type testTable struct {
	buckets int
	free    []bool
	hash    []uint64
	key     []int
}

func newTestTable(buckets int) *testTable {
	free := make([]bool, buckets)
	for i := range free {
		free[i] = true
	}
	return &testTable{buckets: buckets, free: free, hash: make([]uint64, buckets), key: make([]int, buckets)}
}

func (tt *testTable) accessorsFor(target int) Accessors {
	return Accessors{
		IsFree: func(i int) bool { return tt.free[i] },
		HashOf: func(i int) uint64 { return tt.hash[i] },
		KeyEqual: func(i int) bool {
			return tt.key[i] == target
		},
		Move: func(to, from int) {
			tt.free[to] = tt.free[from]
			tt.hash[to] = tt.hash[from]
			tt.key[to] = tt.key[from]
			tt.free[from] = true
		},
		Destroy: func(i int) { tt.free[i] = true },
	}
}

func (tt *testTable) insert(key int, hash uint64) int {
	idx, inserted := Emplace(tt.accessorsFor(key), tt.buckets, hash)
	require_(inserted)
	tt.free[idx] = false
	tt.hash[idx] = hash
	tt.key[idx] = key
	return idx
}

func require_(cond bool) {
	if !cond {
		panic("expected true")
	}
}

func (tt *testTable) occupiedIndices() []int {
	var out []int
	for i, f := range tt.free {
		if !f {
			out = append(out, i)
		}
	}
	return out
}

// TestLinearProbeScenario mirrors spec scenario S1: buckets=7, hashes
// 6,6,6,6,6,2 land at {6,0,1,2,3,4}.
func TestLinearProbeScenario(t *testing.T) {
	tt := newTestTable(7)
	idxs := make([]int, 0, 6)
	for i, h := range []uint64{6, 6, 6, 6, 6, 2} {
		idxs = append(idxs, tt.insert(100+i, h))
	}
	assert.ElementsMatch(t, []int{6, 0, 1, 2, 3, 4}, idxs)

	for i, h := range []uint64{6, 6, 6, 6, 6, 2} {
		found, ok := Find(tt.accessorsFor(100+i), 7, h)
		require.True(t, ok)
		assert.Equal(t, idxs[i], found)
	}
}

// TestFullCollisionColumnErase mirrors S4: six identical-hash keys fill
// indices 0..5; erasing in the stated order keeps remaining keys findable
// and always reduces occupied count by exactly one.
func TestFullCollisionColumnErase(t *testing.T) {
	tt := newTestTable(6)
	keys := make([]int, 6)
	for i := 0; i < 6; i++ {
		keys[i] = 200 + i
		tt.insert(keys[i], 0)
	}
	assert.Len(t, tt.occupiedIndices(), 6)

	eraseOrder := []int{5, 2, 0, 4, 1, 3}
	remaining := map[int]bool{}
	for _, k := range keys {
		remaining[k] = true
	}

	for _, pos := range eraseOrder {
		key := -1
		for i, f := range tt.free {
			if !f && tt.key[i] == keys[pos] {
				key = tt.key[i]
			}
		}
		require.NotEqual(t, -1, key)

		before := len(tt.occupiedIndices())
		_, erased := Erase(tt.accessorsFor(keys[pos]), 6, 0)
		require.True(t, erased)
		delete(remaining, keys[pos])
		assert.Len(t, tt.occupiedIndices(), before-1)

		for k := range remaining {
			_, ok := Find(tt.accessorsFor(k), 6, 0)
			assert.True(t, ok, "key %d should still be found after erasing %d", k, keys[pos])
		}
	}
	assert.Len(t, tt.occupiedIndices(), 0)
}

func TestEraseMissingKeyIsNoChange(t *testing.T) {
	tt := newTestTable(5)
	tt.insert(1, 3)
	_, erased := Erase(tt.accessorsFor(999), 5, 3)
	assert.False(t, erased)
	assert.Len(t, tt.occupiedIndices(), 1)
}

func TestFindNotFoundOnEmptyTable(t *testing.T) {
	tt := newTestTable(5)
	_, ok := Find(tt.accessorsFor(1), 5, 2)
	assert.False(t, ok)
}
