//go:build stress

package memfilemap

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRandomOperationSequencePreservesInvariants runs a long randomized
// sequence of Insert/Erase/Rehash calls against both the map and a plain
// Go map tracking expected content. After every operation it checks that
// Size matches the shadow map and stays within the load-factor bound;
// lookup steps and a final pass check that present keys are found with
// their current value. Replaces the teacher's CRT-comparison stress
// test, which stressed a storage layer this design no longer has.
func TestRandomOperationSequencePreservesInvariants(t *testing.T) {
	m, err := New[string, int](WithInitialBuckets[string, int](1))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	shadow := map[string]int{}
	const ops = 50000

	for n := 0; n < ops; n++ {
		key := fmt.Sprintf("k%d", rng.Intn(2000))
		switch rng.Intn(10) {
		case 0, 1, 2, 3, 4:
			v := rng.Int()
			_, inserted, err := m.Insert(key, v)
			require.NoError(t, err)
			if _, present := shadow[key]; !present {
				assert.True(t, inserted)
			}
			shadow[key] = v
		case 5, 6, 7:
			removed := m.Erase(key)
			_, present := shadow[key]
			if present {
				assert.Equal(t, 1, removed)
				delete(shadow, key)
			} else {
				assert.Equal(t, 0, removed)
			}
		case 8:
			if len(shadow) > 0 {
				require.NoError(t, m.Rehash(len(shadow)*2))
			}
		default:
			v, insertedNow := shadow[key]
			found := m.Contains(key)
			if insertedNow {
				assert.True(t, found)
				it, ok := m.Find(key)
				require.True(t, ok)
				assert.Equal(t, v, it.Value())
			} else {
				assert.False(t, found)
			}
		}

		assert.Equal(t, len(shadow), m.Size())
		assert.LessOrEqual(t, m.Size(), int(float64(m.BucketCount())*m.maxLoadFactor)+1)
	}

	for k, v := range shadow {
		it, ok := m.Find(k)
		require.True(t, ok, "key %q should still be present", k)
		assert.Equal(t, v, it.Value())
	}
}
