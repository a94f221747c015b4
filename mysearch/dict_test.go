package mysearch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagilyp/lab4/mydomain"
)

func identityDomain() toyDomain {
	d := newToyDomain(func(x uint64) uint64 { return x })
	d.Bits = 16
	return d
}

func TestDictEviction(t *testing.T) {
	const slots, n = 16, 40
	d, err := NewDict[uint64](identityDomain(), slots)
	require.NoError(t, err)

	for k := uint64(0); k < n; k++ {
		evicted, occupied := d.PopInsert(k+1000, k, 1)
		if k < slots {
			assert.False(t, occupied, "key %d", k)
		} else {
			require.True(t, occupied, "key %d", k)
			assert.Equal(t, k-slots+1000, evicted)
		}
		seed, ok := d.Lookup(k, 1)
		require.True(t, ok)
		assert.Equal(t, k+1000, seed)
	}
	assert.Equal(t, slots, d.Len(1))
	assert.Equal(t, uint64(slots*(2+4)), d.Bytes())
}

func TestDictEpochs(t *testing.T) {
	d, err := NewDict[uint64](identityDomain(), 8)
	require.NoError(t, err)

	_, occupied := d.PopInsert(7, 3, 1)
	assert.False(t, occupied)
	// запись прошлой эпохи не считается
	_, occupied = d.PopInsert(9, 3, 2)
	assert.False(t, occupied)
	_, ok := d.Lookup(3, 1)
	assert.False(t, ok)

	evicted, occupied := d.PopInsert(11, 3, 2)
	assert.True(t, occupied)
	assert.Equal(t, uint64(9), evicted)

	d.Reset()
	_, ok = d.Lookup(3, 2)
	assert.False(t, ok)
	assert.Zero(t, d.Len(2))
}

func TestDictInvalid(t *testing.T) {
	_, err := NewDict[uint64](identityDomain(), 0)
	assert.ErrorIs(t, err, ErrSlots)
	_, err = NewShardedDict[uint64](identityDomain(), 4, 8)
	assert.ErrorIs(t, err, ErrSlots)
}

func TestConcurrentTables(t *testing.T) {
	dom := mydomain.UintDomain{Bits: 32}
	locked, err := NewDict[uint64](dom, 1<<12)
	require.NoError(t, err)
	sharded, err := NewShardedDict[uint64](dom, 1<<12, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<12), sharded.Slots())

	for name, table := range map[string]Table[uint64]{
		"locked":  NewLockedDict(locked),
		"sharded": sharded,
	} {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for w := uint64(0); w < 8; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for k := w * 1000; k < w*1000+200; k++ {
						table.PopInsert(k, k, 1)
					}
				}()
			}
			wg.Wait()
			// слот не становится пустым, в нем лежит один из вставленных ключей
			hits := 0
			for w := uint64(0); w < 8; w++ {
				for k := w * 1000; k < w*1000+200; k++ {
					seed, ok := table.Lookup(k, 1)
					require.True(t, ok)
					require.Less(t, seed%1000, uint64(200))
					if seed == k {
						hits++
					}
				}
			}
			assert.Greater(t, hits, 800)
		})
	}
}
