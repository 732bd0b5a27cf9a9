// Package semispace implements the two-space from/to rotation that backs
// gcheap's young generation. A generalized N-generation TTL-bounded ring
// could give O(1) bulk expiry, but Scavenge only ever needs two spaces with
// no TTL — just a swap on demand — so semispace.Pair narrows the ring to
// N=2, drops any TTL bookkeeping, and keeps a monotonic count of flips.
// Object ages are tracked in object.Header, not by this counter.
package semispace

import (
	"sync/atomic"

	"github.com/voskan/mjsvm/internal/memregion"
)

// Pair owns the two semispaces and tracks which one is active ("from").
type Pair struct {
	spaces [2]*memregion.Region
	activeIdx int
	flipCtr atomic.Uint32
	semiSize int
}

// New constructs a Pair with two semispaces of semiSize bytes each.
func New(semiSize int) *Pair {
	p := &Pair{semiSize: semiSize}
	p.spaces[0] = memregion.New(semiSize)
	p.spaces[1] = memregion.New(semiSize)
	return p
}

// SemiSize returns the configured size of each semispace.
func (p *Pair) SemiSize() int { return p.semiSize }

// From returns the semispace currently used for bump allocation.
func (p *Pair) From() *memregion.Region { return p.spaces[p.activeIdx] }

// To returns the semispace currently idle, the copy destination for the next
// Scavenge.
func (p *Pair) To() *memregion.Region { return p.spaces[1-p.activeIdx] }

// ResetTo clears the idle semispace's bump pointer, readying it to receive
// survivors.
func (p *Pair) ResetTo() { p.To().Reset() }

// Flip swaps from/to and returns the total number of flips so far. Heap's
// Scavenge ignores the returned count.
func (p *Pair) Flip() uint32 {
	p.activeIdx = 1 - p.activeIdx
	return p.flipCtr.Add(1)
}

// Occupancy returns From()'s fill ratio in [0,1], used to decide whether a
// Scavenge should trigger (default threshold 80%, the design).
func (p *Pair) Occupancy() float64 {
	return float64(p.From().Used()) / float64(p.semiSize)
}
