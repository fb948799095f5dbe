package probetable

import (
	"math/bits"
	"sync"
)

const fibonacciMultiplier = 0x9E3779B97F4A7C15

type shard[V any] struct {
	mu sync.RWMutex
	Table[V]
}

// Sharded splits the key space over independent fixed-capacity tables, each
// behind its own read-write lock. It is safe for concurrent use.
//
// A key always maps to the same shard, so a shard filling up drops inserts
// for its keys even if other shards still have room.
type Sharded[V any] struct {
	shards    []shard[V]
	shiftBits uint
	hashFunc  HashFunc
}

// NewSharded returns a sharded table. The number of shards is rounded up to a
// power of 2, every shard gets capacityPerShard slots.
func NewSharded[V any](shards, capacityPerShard int, opts ...Option[V]) *Sharded[V] {
	if shards <= 0 {
		panic("probetable: number of shards must be positive")
	}

	n := NextPowerOf2(uint32(shards))

	s := &Sharded[V]{
		shards:    make([]shard[V], n),
		shiftBits: uint(64 - bits.TrailingZeros32(n)),
	}

	for i := range s.shards {
		s.shards[i].init(capacityPerShard, opts...)
	}

	// Options are shared, so every shard ends up with the same hash function.
	s.hashFunc = s.shards[0].hashFunc

	return s
}

func (s *Sharded[V]) shardFor(h uint64) *shard[V] {
	// High bits of the mixed hash, so the shard choice doesn't correlate with
	// the slot choice inside the shard (hash % capacity). With a single shard
	// the shift is 64 and the index is always 0.
	return &s.shards[(h*fibonacciMultiplier)>>s.shiftBits]
}

// Insert stores value under key, see Table.Insert.
func (s *Sharded[V]) Insert(key string, value V) bool {
	h := s.hashFunc(key)
	sh := s.shardFor(h)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	return sh.insert(h, key, value)
}

// Set is Insert reporting a dropped insert as ErrTableFull.
func (s *Sharded[V]) Set(key string, value V) error {
	if !s.Insert(key, value) {
		return ErrTableFull
	}

	return nil
}

func (s *Sharded[V]) Get(key string) (V, bool) {
	h := s.hashFunc(key)
	sh := s.shardFor(h)

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return sh.get(h, key)
}

func (s *Sharded[V]) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Sharded[V]) Len() int {
	var n int
	for i := range s.shards {
		sh := &s.shards[i]

		sh.mu.RLock()
		n += sh.Table.Len()
		sh.mu.RUnlock()
	}

	return n
}

func (s *Sharded[V]) Cap() int {
	return len(s.shards) * s.shards[0].Table.Cap()
}

// Shards returns the number of shards after rounding.
func (s *Sharded[V]) Shards() int {
	return len(s.shards)
}

// Stats aggregates statistics over all shards. MaxProbe is the worst one.
func (s *Sharded[V]) Stats() Stats {
	var total Stats
	for i := range s.shards {
		sh := &s.shards[i]

		sh.mu.RLock()
		st := sh.Table.Stats()
		sh.mu.RUnlock()

		total.Size += st.Size
		total.Capacity += st.Capacity
		total.Displaced += st.Displaced
		total.MaxProbe = max(total.MaxProbe, st.MaxProbe)
	}

	total.LoadFactor = float32(total.Size) / float32(total.Capacity)

	return total
}
