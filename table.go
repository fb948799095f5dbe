package probetable

import (
	"errors"
	"iter"
)

// ErrTableFull is returned by Set when a new key can't be placed because
// every slot is already taken.
var ErrTableFull = errors.New("probetable: table is full")

type entry[V any] struct {
	key      string
	value    V
	occupied bool
}

// Table is a fixed-capacity hash table with string keys, open addressing and
// linear probing. It never grows and never deletes: once a key is stored it
// stays in its slot for the lifetime of the table, only its value can change.
//
// A Table is not safe for concurrent use, see Sharded for that.
type Table[V any] struct {
	entries []entry[V]
	size    int

	// Longest distance between a key's starting slot and the slot it landed in.
	maxProbe  int
	displaced int

	hashFunc HashFunc

	emptyV V
}

type Option[V any] func(t *Table[V])

// Override default hash function.
func WithHashFunc[V any](f HashFunc) Option[V] {
	return func(t *Table[V]) {
		t.hashFunc = f
	}
}

// New returns a table with exactly capacity slots, all empty.
// It panics if capacity is not positive.
func New[V any](capacity int, opts ...Option[V]) *Table[V] {
	var t Table[V]
	t.init(capacity, opts...)

	return &t
}

func (t *Table[V]) init(capacity int, opts ...Option[V]) {
	if capacity <= 0 {
		panic("probetable: capacity must be positive")
	}

	t.entries = make([]entry[V], capacity)

	for _, opt := range opts {
		opt(t)
	}

	if t.hashFunc == nil {
		t.hashFunc = DJB2
	}
}

// Insert stores value under key. An existing key has its value overwritten in
// place. It returns false only when key is new and the table is full, in which
// case the table is left untouched.
func (t *Table[V]) Insert(key string, value V) bool {
	return t.insert(t.hashFunc(key), key, value)
}

// Set is Insert reporting a dropped insert as ErrTableFull.
func (t *Table[V]) Set(key string, value V) error {
	if !t.Insert(key, value) {
		return ErrTableFull
	}

	return nil
}

// Get returns the value stored under key and whether it was found.
func (t *Table[V]) Get(key string) (V, bool) {
	return t.get(t.hashFunc(key), key)
}

// GetOr returns the value stored under key, or fallback if the key is absent.
// Note that a stored value equal to fallback can't be told apart from a miss.
func (t *Table[V]) GetOr(key string, fallback V) V {
	if v, ok := t.Get(key); ok {
		return v
	}

	return fallback
}

// Has reports whether key is stored in the table.
func (t *Table[V]) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of occupied slots.
func (t *Table[V]) Len() int {
	return t.size
}

// Cap returns the number of slots the table was created with.
func (t *Table[V]) Cap() int {
	return len(t.entries)
}

// State reports how full the table is.
func (t *Table[V]) State() State {
	switch t.size {
	case 0:
		return StateEmpty
	case len(t.entries):
		return StateFull
	default:
		return StatePartial
	}
}

// All iterates over stored entries in slot order.
func (t *Table[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for i := range t.entries {
			e := &t.entries[i]
			if !e.occupied {
				continue
			}

			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

func (t *Table[V]) Stats() Stats {
	return Stats{
		Size:       t.size,
		Capacity:   len(t.entries),
		LoadFactor: float32(t.size) / float32(len(t.entries)),
		MaxProbe:   t.maxProbe,
		Displaced:  t.displaced,
	}
}

func (t *Table[V]) insert(h uint64, key string, value V) bool {
	capacity := len(t.entries)
	start := startIndex(h, capacity)

	// Every slot is visited at most once, so a full table terminates after
	// capacity steps without finding a match or a hole.
	for p, idx := 0, start; p < capacity; p++ {
		e := &t.entries[idx]

		if !e.occupied {
			e.key = key
			e.value = value
			e.occupied = true
			t.size++

			if p > 0 {
				t.displaced++
				t.maxProbe = max(t.maxProbe, p)
			}

			return true
		}

		if e.key == key {
			e.value = value
			return true
		}

		idx++
		if idx == capacity {
			idx = 0
		}
	}

	return false
}

func (t *Table[V]) get(h uint64, key string) (V, bool) {
	capacity := len(t.entries)
	start := startIndex(h, capacity)

	for p, idx := 0, start; p < capacity; p++ {
		e := &t.entries[idx]

		// Nothing is ever deleted, so the first hole ends the probe chain.
		if !e.occupied {
			return t.emptyV, false
		}

		if e.key == key {
			return e.value, true
		}

		idx++
		if idx == capacity {
			idx = 0
		}
	}

	return t.emptyV, false
}
