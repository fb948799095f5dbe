package probetable

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSharded(t *testing.T) {
	tests := []struct {
		shards     int
		wantShards int
	}{
		{1, 1},
		{3, 4},
		{8, 8},
		{9, 16},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.shards), func(t *testing.T) {
			s := NewSharded[int](tt.shards, 10)

			require.Equal(t, tt.wantShards, s.Shards())
			require.Equal(t, tt.wantShards*10, s.Cap())
			require.Equal(t, 0, s.Len())
		})
	}
}

func TestNewSharded_Invalid(t *testing.T) {
	require.Panics(t, func() { NewSharded[int](0, 10) })
	require.Panics(t, func() { NewSharded[int](4, 0) })
}

func TestSharded_Basic(t *testing.T) {
	s := NewSharded[int64](4, 16)

	require.True(t, s.Insert("timeout_ms", 5000))
	require.NoError(t, s.Set("buffer_size", 8192))

	v, ok := s.Get("timeout_ms")
	require.True(t, ok)
	assert.Equal(t, int64(5000), v)

	// Update existing key
	require.True(t, s.Insert("timeout_ms", 100))

	v, ok = s.Get("timeout_ms")
	require.True(t, ok)
	assert.Equal(t, int64(100), v)

	assert.True(t, s.Has("buffer_size"))
	assert.False(t, s.Has("unknown_key"))
	assert.Equal(t, 2, s.Len())
}

func TestSharded_SingleShardMatchesTable(t *testing.T) {
	s := NewSharded[int](1, 8)
	tt := New[int](8)

	for i := range 8 {
		k := fmt.Sprintf("key-%d", i)
		require.True(t, s.Insert(k, i))
		require.True(t, tt.Insert(k, i))
	}

	require.ErrorIs(t, s.Set("overflow", 0), ErrTableFull)
	require.False(t, tt.Insert("overflow", 0))

	// Same hash, same capacity, same slots.
	require.Equal(t, tt.entries, s.shards[0].entries)
}

func TestSharded_ErrTableFull(t *testing.T) {
	// All keys hash the same, so they end up in one shard.
	constHash := func(k string) uint64 {
		return 42
	}

	s := NewSharded(4, 2, WithHashFunc[int](constHash))

	require.NoError(t, s.Set("a", 1))
	require.NoError(t, s.Set("b", 2))
	require.ErrorIs(t, s.Set("c", 3), ErrTableFull)

	// Other shards are still empty.
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 8, s.Cap())
}

func TestSharded_WithHashFunc(t *testing.T) {
	s := NewSharded(4, 32, WithHashFunc[int](XXHash))

	for i := range 16 {
		require.True(t, s.Insert(fmt.Sprintf("key-%d", i), i))
	}

	for i := range 16 {
		v, ok := s.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}

	for i := range s.shards {
		requireProbeChains(t, &s.shards[i].Table)
	}
}

func TestSharded_Stats(t *testing.T) {
	s := NewSharded[int](4, 64)

	for i := range 100 {
		require.True(t, s.Insert(fmt.Sprintf("key-%d", i), i))
	}

	stats := s.Stats()
	assert.Equal(t, 100, stats.Size)
	assert.Equal(t, 256, stats.Capacity)
	assert.InDelta(t, 100.0/256.0, stats.LoadFactor, 1e-6)

	var size, displaced, maxProbe int
	for i := range s.shards {
		st := s.shards[i].Table.Stats()
		size += st.Size
		displaced += st.Displaced
		maxProbe = max(maxProbe, st.MaxProbe)
	}

	assert.Equal(t, size, stats.Size)
	assert.Equal(t, displaced, stats.Displaced)
	assert.Equal(t, maxProbe, stats.MaxProbe)
}

func TestSharded_Concurrent(t *testing.T) {
	const (
		workers = 8
		perKeys = 200
	)

	s := NewSharded[int](16, 256)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range perKeys {
				k := fmt.Sprintf("w%d-%d", w, i)
				if !s.Insert(k, i) {
					continue
				}

				v, ok := s.Get(k)
				if assert.True(t, ok) {
					assert.Equal(t, i, v)
				}
			}
		}()
	}

	wg.Wait()

	require.LessOrEqual(t, s.Len(), workers*perKeys)
	require.Equal(t, s.Len(), s.Stats().Size)

	for i := range s.shards {
		requireProbeChains(t, &s.shards[i].Table)
	}
}
