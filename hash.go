package probetable

import "github.com/cespare/xxhash/v2"

// HashFunc maps a key to an unsigned hash. The table reduces it
// modulo its capacity to get the starting slot.
type HashFunc func(key string) uint64

const djb2Seed = 5381

// DJB2 is the default hash function: h = h*33 + b for every byte of the key,
// starting from 5381. Arithmetic wraps at 64 bits.
func DJB2(key string) uint64 {
	h := uint64(djb2Seed)
	for i := 0; i < len(key); i++ {
		h = h*33 + uint64(key[i])
	}

	return h
}

// XXHash hashes the key with xxHash64. It spreads short keys far better than
// DJB2 and can be plugged in with WithHashFunc.
func XXHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Returns the slot a probe for hash h starts at.
func startIndex(h uint64, capacity int) int {
	return int(h % uint64(capacity))
}
