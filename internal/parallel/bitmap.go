package parallel

import (
	"math/bits"
	"sync/atomic"
)

// Bitmap is a fixed-size set of indices backed by atomic words.
// It provides lock-free, thread-safe operations for concurrent access.
//
// The bitmap uses one bit per index, packed into uint64 words (64 indices
// per word). All methods are safe for concurrent use without external
// synchronization.
type Bitmap struct {
	// words is the atomic bitmap.
	// Word index = index / 64, bit position = index % 64.
	words []atomic.Uint64

	// size is the number of valid indices.
	size int
}

// NewBitmap creates an empty bitmap for indices [0, size).
// Returns nil if size is zero or negative.
func NewBitmap(size int) *Bitmap {
	if size <= 0 {
		return nil
	}
	return &Bitmap{
		words: make([]atomic.Uint64, (size+63)/64), // Ceiling division
		size:  size,
	}
}

// Set adds index i to the set and reports whether it was newly added.
// This is a lock-free O(1) operation using atomic OR.
// Out-of-range indices are ignored and report false.
func (b *Bitmap) Set(i int) bool {
	if i < 0 || i >= b.size {
		return false
	}
	mask := uint64(1) << (i & 63) // i & 63 is i % 64, always in [0, 63]
	old := b.words[i/64].Or(mask)
	return old&mask == 0
}

// Count returns the number of indices in the set.
func (b *Bitmap) Count() int {
	count := 0
	for i := range b.words {
		count += bits.OnesCount64(b.words[i].Load())
	}
	return count
}

// ForEachClear calls fn for each index not in the set, in increasing order.
func (b *Bitmap) ForEachClear(fn func(i int)) {
	if fn == nil {
		return
	}

	for wordIdx := range b.words {
		// Invert so that clear bits can be walked like set bits.
		word := ^b.words[wordIdx].Load()
		for word != 0 {
			// Find position of lowest set bit
			bitIdx := bits.TrailingZeros64(word)

			idx := wordIdx*64 + bitIdx
			if idx >= b.size {
				// Beyond valid indices (in partial last word)
				break
			}
			fn(idx)

			// Clear the processed bit (local copy only)
			word &^= 1 << bitIdx
		}
	}
}
