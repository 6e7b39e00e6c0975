package allocator

import "unsafe"

// largeZone manages the tail of the arena beyond the size-class regions
// as one coalescing, address-ordered free list plus an unsorted live
// list. Sweep walks the live list to find garbage; the free list lets
// sweep put blocks back and lets Coalesce merge adjacent neighbours.
type largeZone struct {
	free *blockHeader // address-sorted ascending
	live *blockHeader // unsorted

	searchLimit int
}

// initLargeZone seeds the zone with one free block spanning the whole
// remainder of the arena.
func initLargeZone(base unsafe.Pointer, size uint32, searchLimit int) largeZone {
	first := (*blockHeader)(base)
	first.size = size - uint32(headerSize)
	first.sizeClass = largeSizeClass
	first.occupied = false
	first.next = nil

	return largeZone{free: first, searchLimit: searchLimit}
}

// blockEnd returns the address one past h's payload.
func blockEnd(h *blockHeader) unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(h)) + headerSize + uintptr(h.size))
}

// insertSorted inserts h into the address-ordered free list.
func (z *largeZone) insertSorted(h *blockHeader) {
	pp := &z.free

	for *pp != nil && uintptr(unsafe.Pointer(*pp)) < uintptr(unsafe.Pointer(h)) {
		pp = &(*pp).next
	}

	h.next = *pp
	*pp = h
}

// alloc implements segregated-fit with early-exit best-fit: walk the
// free list tracking the smallest-slack candidate, stopping early
// after z.searchLimit candidates or as soon as a candidate is within
// 2*Alignment of the request.
func (z *largeZone) alloc(size uint32) unsafe.Pointer {
	var (
		prev, best, bestPrev *blockHeader
		bestSlack            uint32 = ^uint32(0)
		checked               int
	)

	cur := z.free
	for cur != nil && checked < z.searchLimit {
		if cur.size >= size {
			slack := cur.size - size
			if slack < bestSlack {
				best, bestPrev, bestSlack = cur, prev, slack
				if uintptr(slack) < 2*Alignment {
					break
				}
			}
		}

		prev = cur
		cur = cur.next
		checked++
	}

	if best == nil {
		return nil
	}

	if bestPrev != nil {
		bestPrev.next = best.next
	} else {
		z.free = best.next
	}
	best.next = nil

	rem := best.size - size
	if uintptr(rem) >= headerSize+splitSlack {
		tail := (*blockHeader)(unsafe.Pointer(uintptr(unsafe.Pointer(best)) + headerSize + uintptr(size)))
		tail.size = rem - uint32(headerSize)
		tail.sizeClass = largeSizeClass
		tail.occupied = false
		tail.next = nil
		z.insertSorted(tail)

		best.size = size
	}
	// Otherwise rem is too small to carve into its own block: best
	// keeps its full physical size (the unsplit slack goes along with
	// it) so blockEnd stays accurate for coalescing once it is freed
	// again. Callers must credit allocated bytes from best.size, not
	// the requested size, on this path.

	best.occupied = true
	best.color = Gray
	best.sizeClass = largeSizeClass
	best.next = z.live
	z.live = best

	return best.payload()
}

// unlinkLive removes h from the live list. No-op if h is not present.
func (z *largeZone) unlinkLive(h *blockHeader) {
	pp := &z.live
	for *pp != nil {
		if *pp == h {
			*pp = h.next
			h.next = nil

			return
		}

		pp = &(*pp).next
	}
}

// free unlinks h from the live list and inserts it into the
// address-sorted free list.
func (z *largeZone) free(h *blockHeader) {
	z.unlinkLive(h)
	h.occupied = false
	h.next = nil
	z.insertSorted(h)
}

// coalesce performs a single forward pass over the address-sorted free
// list, merging any pair of physically adjacent blocks. Per invariant
// §3.8.4 the list is strictly address-ordered and contains no two
// adjacent free blocks once this returns.
func (z *largeZone) coalesce() {
	cur := z.free
	for cur != nil && cur.next != nil {
		if blockEnd(cur) == unsafe.Pointer(cur.next) {
			absorbed := cur.next
			cur.size += uint32(headerSize) + absorbed.size
			cur.next = absorbed.next
			// Don't advance: cur may now be adjacent to its new next.
			continue
		}

		cur = cur.next
	}
}
