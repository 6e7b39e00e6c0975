package allocator

import "unsafe"

// Verdict tells SweepLarge/SweepRegions what to do with the block just
// visited.
type Verdict int

const (
	// Keep leaves the block exactly as it is.
	Keep Verdict = iota
	// Reclaim frees the block.
	Reclaim
	// ResetToWhite leaves the block occupied but resets its color —
	// used for BLACK survivors at the end of a major cycle.
	ResetToWhite
)

// SweepLarge walks the large zone's live list once, asking visit for a
// verdict on each block's current color. The walk structurally
// tolerates Reclaim removing the node being visited.
func (a *Allocator) SweepLarge(visit func(color Color) Verdict) {
	pp := &a.large.live

	for *pp != nil {
		cur := *pp

		switch visit(cur.color) {
		case Reclaim:
			*pp = cur.next
			a.freeLargeHeader(cur)
		case ResetToWhite:
			cur.color = White
			pp = &cur.next
		default:
			pp = &cur.next
		}
	}
}

// SweepRegions walks every size-class region in block_size strides,
// asking visit for a verdict on each occupied slot's color.
func (a *Allocator) SweepRegions(visit func(color Color) Verdict) {
	for i := range a.regions {
		r := &a.regions[i]
		cur := r.start
		end := r.end()

		for uintptr(cur) < uintptr(end) {
			h := (*blockHeader)(cur)

			if h.occupied {
				switch visit(h.color) {
				case Reclaim:
					a.allocated -= uint64(h.size)
					r.free(h)
				case ResetToWhite:
					h.color = White
				}
			}

			cur = unsafe.Pointer(uintptr(cur) + uintptr(r.blockSize))
		}
	}
}
