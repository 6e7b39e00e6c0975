package gc

import (
	"unsafe"

	"github.com/lubsanovdmitry/courseprj-gc/internal/allocator"
)

// traceObject conservatively scans ptr's payload word by word (§3.8),
// treating every aligned word whose bit pattern could plausibly be a
// heap pointer as one. A candidate is accepted only if it lies inside
// the arena and names the start of a header that is currently
// occupied — both checks the allocator itself is authoritative on, so
// tracing never has to understand block-header layout directly.
func (c *Collector) traceObject(ptr unsafe.Pointer) {
	size := c.heap.GetSize(ptr)
	words := uintptr(size) / unsafe.Sizeof(uintptr(0))

	base := uintptr(ptr)
	for i := uintptr(0); i < words; i++ {
		wordAddr := base + i*unsafe.Sizeof(uintptr(0))
		candidate := *(*uintptr)(unsafe.Pointer(wordAddr))

		if candidate == 0 {
			continue
		}

		if !c.heap.ValidHeaderAt(candidate) {
			continue
		}

		c.shade(unsafe.Pointer(candidate))
	}
}

// drainGray pops objects off the gray worklist and scans them, shading
// whatever they conservatively reference, until either the worklist is
// empty or limit objects have been scanned. limit of zero means drain
// to completion — used by a full (non-incremental) mark phase.
func (c *Collector) drainGray(limit int) {
	scanned := 0

	for {
		if limit > 0 && scanned >= limit {
			return
		}

		ptr := c.gray.pop()
		if ptr == nil {
			return
		}

		c.heap.SetColor(ptr, allocator.Black)
		c.traceObject(ptr)
		scanned++
	}
}

// incrementalStep bounds one mark increment to max(worklist/2, 128)
// objects, per §4.4's incremental scheduling discipline.
func (c *Collector) incrementalStep() {
	step := c.gray.len() / 2
	if step < 128 {
		step = 128
	}

	c.drainGray(step)
}
