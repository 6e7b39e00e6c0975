package gc

import (
	"unsafe"

	"github.com/lubsanovdmitry/courseprj-gc/internal/allocator"
)

// shade is the collector's fundamental mark primitive (§4.3): a Black
// or DarkGray object is already known and left alone; anything else is
// promoted to DarkGray and queued. Both root marking and conservative
// tracing funnel through this one function. A Black object surviving
// from a prior minor cycle is left as-is here deliberately — it is a
// root or was already reached, so it needs no rescan unless one of its
// fields is later overwritten, which is exactly what WriteBarrier
// catches by demoting it back to DarkGray.
func (c *Collector) shade(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	switch c.heap.GetColor(ptr) {
	case allocator.Black, allocator.DarkGray:
		return
	default:
		c.heap.SetColor(ptr, allocator.DarkGray)
		c.gray.push(ptr)
	}
}

// WriteBarrier must be invoked by the mutator after writing a pointer
// field into obj (the container whose field changed), per §4.3's
// insertion barrier:
//
//   - Gray or DarkGray container: already outside this cycle's
//     reachability concerns, or already queued — no-op.
//   - White container: a freshly-allocated-but-unseen object must not
//     be swept this cycle just because it hasn't been traced yet, so
//     it is promoted to Gray.
//   - Black container: it was already fully scanned, but may now hold
//     a reference the scan missed — demote it back onto the worklist
//     as DarkGray so it gets rescanned.
//
// Skipping this call after storing a pointer is a mutator safety bug,
// not a collector bug (§5).
func (c *Collector) WriteBarrier(container unsafe.Pointer) {
	if container == nil || !WriteBarrierEnabled {
		return
	}

	switch c.heap.GetColor(container) {
	case allocator.Gray, allocator.DarkGray:
		return
	case allocator.White:
		c.heap.SetColor(container, allocator.Gray)
	case allocator.Black:
		c.heap.SetColor(container, allocator.DarkGray)
		c.gray.push(container)
	}
}
