// Package cache provides concurrent maps sharded for low lock contention.
package cache

import (
	"hash/fnv"
	"image"
	"sync"
	"sync/atomic"
)

const (
	// DefaultShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16

	// shardMask is used for fast shard selection (DefaultShardCount - 1).
	shardMask = DefaultShardCount - 1
)

// Hasher is a function that computes a hash for a key.
// Used by Sharded for shard selection.
type Hasher[K any] func(K) uint64

// RectHasher computes an FNV-1a hash of the four corners of a rectangle.
//
// The low bits of a plain FNV-1a hash depend only on the low bits of the
// input bytes, so tiles on a power-of-two grid would all select the same
// shard. The result is passed through a finalizer to spread them out.
func RectHasher(r image.Rectangle) uint64 {
	h := fnv.New64a()
	var buf [32]byte
	putInt(buf[0:8], r.Min.X)
	putInt(buf[8:16], r.Min.Y)
	putInt(buf[16:24], r.Max.X)
	putInt(buf[24:32], r.Max.Y)
	_, _ = h.Write(buf[:])
	return mix64(h.Sum64())
}

// mix64 is the 64-bit finalizer of MurmurHash3.
func mix64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

func putInt(buf []byte, i int) {
	for k := range 8 {
		buf[k] = byte(i >> (8 * k))
	}
}

// Sharded is a thread-safe write-once map split into 16 independently
// locked shards.
//
// Each key can be stored at most once: a value, once stored, is never
// replaced or removed. Readers copy out what they need under a shard's
// read lock, so a writer never waits on more than one shard.
type Sharded[K comparable, V any] struct {
	shards [DefaultShardCount]*shard[K, V]
	hasher Hasher[K]

	count    atomic.Int64
	rejected atomic.Uint64
}

// shard is a single shard of the map.
// Each shard has its own mutex for reduced contention.
type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewSharded creates an empty sharded map.
// The hasher function is used to compute hash values for shard selection.
func NewSharded[K comparable, V any](hasher Hasher[K]) *Sharded[K, V] {
	m := &Sharded[K, V]{hasher: hasher}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{entries: make(map[K]V)}
	}
	return m
}

// getShard returns the shard for a given key.
// Uses bitwise AND for fast modulo (only works with power-of-2 shard count).
func (m *Sharded[K, V]) getShard(key K) *shard[K, V] {
	return m.shards[m.hasher(key)&shardMask]
}

// Get retrieves the value stored under key.
// Returns (value, true) if found, (zero, false) otherwise.
func (m *Sharded[K, V]) Get(key K) (V, bool) {
	s := m.getShard(key)
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()
	return v, ok
}

// SetOnce stores value under key unless the key is already present.
// It reports whether the value was stored. An existing value is left
// untouched.
func (m *Sharded[K, V]) SetOnce(key K, value V) bool {
	s := m.getShard(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		m.rejected.Add(1)
		return false
	}
	s.entries[key] = value
	m.count.Add(1)
	return true
}

// Values returns a copy of every stored value, in no particular order.
// Shards are locked one at a time.
func (m *Sharded[K, V]) Values() []V {
	out := make([]V, 0, m.Len())
	for _, s := range m.shards {
		s.mu.RLock()
		for _, v := range s.entries {
			out = append(out, v)
		}
		s.mu.RUnlock()
	}
	return out
}

// Keys returns a copy of every key, in no particular order.
func (m *Sharded[K, V]) Keys() []K {
	out := make([]K, 0, m.Len())
	for _, s := range m.shards {
		s.mu.RLock()
		for k := range s.entries {
			out = append(out, k)
		}
		s.mu.RUnlock()
	}
	return out
}

// Len returns the total number of entries across all shards.
// This operation is lock-free.
func (m *Sharded[K, V]) Len() int {
	return int(m.count.Load())
}

// Rejected returns how many SetOnce calls found their key already present.
func (m *Sharded[K, V]) Rejected() uint64 {
	return m.rejected.Load()
}

// ShardLen returns the number of entries in each shard.
// Useful for debugging load distribution.
func (m *Sharded[K, V]) ShardLen() [DefaultShardCount]int {
	var lens [DefaultShardCount]int
	for i, s := range m.shards {
		s.mu.RLock()
		lens[i] = len(s.entries)
		s.mu.RUnlock()
	}
	return lens
}
