package allocator

import "unsafe"

// region serves fixed-size blocks for one size class: a free list of
// reclaimed blocks tried first, then a bump pointer into virgin arena
// space. A region never borrows space from another class.
type region struct {
	start      unsafe.Pointer
	bump       unsafe.Pointer
	remaining  uint32
	blockSize  uint32
	regionSize uint32
	freeList   *blockHeader
}

// initRegion carves out a region of regionSize bytes at base for the
// given size class.
func initRegion(base unsafe.Pointer, class int, regionSize uint32) region {
	return region{
		start:      base,
		bump:       base,
		remaining:  regionSize,
		blockSize:  SizeClasses[class] + uint32(headerSize),
		regionSize: regionSize,
	}
}

// end returns the exclusive end address of the region, for sweep's
// stride walk.
func (r *region) end() unsafe.Pointer {
	return unsafe.Pointer(uintptr(r.start) + uintptr(r.regionSize))
}

// alloc serves one block of this region's class: free list first, then
// the bump pointer. Returns nil if both are exhausted — reg_alloc in
// the original never borrows from another class or the large zone.
func (r *region) alloc(class int) unsafe.Pointer {
	if r.freeList != nil {
		blk := r.freeList
		r.freeList = blk.next
		blk.occupied = true
		blk.color = Gray

		return blk.payload()
	}

	if r.remaining < r.blockSize {
		return nil
	}

	blk := (*blockHeader)(r.bump)
	blk.size = SizeClasses[class]
	blk.sizeClass = uint8(class)
	blk.occupied = true
	blk.color = Gray
	blk.next = nil

	r.bump = unsafe.Pointer(uintptr(r.bump) + uintptr(r.blockSize))
	r.remaining -= r.blockSize

	return blk.payload()
}

// free returns a block to this region's free list.
func (r *region) free(h *blockHeader) {
	h.occupied = false
	h.next = r.freeList
	r.freeList = h
}
