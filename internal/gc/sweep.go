package gc

import "github.com/lubsanovdmitry/courseprj-gc/internal/allocator"

// sweep runs the two allocator-level passes of §4.4, translating each
// block's colour into a Verdict. Gray is swept as garbage: a block
// born this cycle that nothing reached stays Gray, since only shading
// from a root or a trace promotes it to DarkGray/Black (the write
// barrier leaves a Gray block as it is).
func (c *Collector) sweep(major bool) {
	verdict := func(color allocator.Color) allocator.Verdict {
		switch color {
		case allocator.White, allocator.Gray:
			return allocator.Reclaim
		case allocator.Black:
			if major {
				return allocator.ResetToWhite
			}

			return allocator.Keep
		default:
			return allocator.Keep
		}
	}

	c.heap.SweepLarge(verdict)
	c.heap.SweepRegions(verdict)
	c.heap.Coalesce()
}
