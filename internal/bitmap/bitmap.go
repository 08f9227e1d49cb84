// Package bitmap provides a compact set of small non-negative integer ids.
// Validators use it to track which column positions have been claimed.
package bitmap

import "math/bits"

// Bitmap is a bitset backed by a slice of uint64 words.
type Bitmap struct {
	data []uint64
	n    int
}

// New allocates a bitmap for ids in the range [0, n).
//
// If n <= 0, no backing storage is allocated and the bitmap behaves as an
// empty set.
func New(n int) *Bitmap {
	if n <= 0 {
		return &Bitmap{}
	}
	return &Bitmap{
		data: make([]uint64, (n+63)/64),
		n:    n,
	}
}

// Cap returns the number of ids the bitmap can hold.
func (b *Bitmap) Cap() int { return b.n }

// Add sets the bit for id. Negative or out-of-range ids are ignored.
func (b *Bitmap) Add(id int) {
	if id < 0 || id >= b.n {
		return
	}
	b.data[id/64] |= 1 << uint(id%64)
}

// Has reports whether id is set. Negative or out-of-range ids are never set.
func (b *Bitmap) Has(id int) bool {
	if id < 0 || id >= b.n {
		return false
	}
	return b.data[id/64]&(1<<uint(id%64)) != 0
}

// Or sets every bit that is set in other. Bits beyond b's capacity are
// dropped.
func (b *Bitmap) Or(other *Bitmap) {
	if other == nil {
		return
	}
	for i := 0; i < len(b.data) && i < len(other.data); i++ {
		b.data[i] |= other.data[i]
	}
	b.trim()
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	n := 0
	for _, w := range b.data {
		n += bits.OnesCount64(w)
	}
	return n
}

// Missing returns the ids in [0, Cap()) that are not set, ascending.
func (b *Bitmap) Missing() []int {
	out := make([]int, 0, b.n-b.Count())
	for id := 0; id < b.n; id++ {
		if !b.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// trim clears bits past n in the last word.
func (b *Bitmap) trim() {
	if rem := b.n % 64; rem != 0 && len(b.data) > 0 {
		b.data[len(b.data)-1] &= (1 << uint(rem)) - 1
	}
}
