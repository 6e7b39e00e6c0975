package allocator

import (
	"unsafe"

	gcerrors "github.com/lubsanovdmitry/courseprj-gc/internal/errors"
)

// Allocator is a segregated-fit heap over one fixed-size arena: a
// size-class zone of dedicated bump/free-list regions for small
// requests, and a large zone serving everything above the largest
// class from a single coalescing, address-ordered free list.
type Allocator struct {
	config *Config

	arena []byte
	base  uintptr
	end   uintptr

	regions [NumClasses]region
	large   largeZone

	allocated uint64
}

// New reserves the arena and partitions it per §3.1–§3.5: the first
// half becomes NumClasses equal regions, the remainder becomes one
// large free block.
func New(opts ...Option) (*Allocator, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.ArenaSize == 0 {
		return nil, gcerrors.InvalidArenaSize(cfg.ArenaSize)
	}

	buf, err := reserveArena(cfg.ArenaSize)
	if err != nil {
		return nil, gcerrors.ArenaReserveFailed(cfg.ArenaSize, err)
	}

	a := &Allocator{
		config: cfg,
		arena:  buf,
		base:   uintptr(arenaStart(buf)),
	}
	a.end = a.base + cfg.ArenaSize

	smallRegionSize := uint32(alignUp(uintptr((cfg.ArenaSize / 2) / uintptr(NumClasses))))

	cur := arenaStart(buf)
	for i := range a.regions {
		a.regions[i] = initRegion(cur, i, smallRegionSize)
		cur = unsafe.Pointer(uintptr(cur) + uintptr(smallRegionSize))
	}

	largeSize := uint32(a.end - uintptr(cur))
	a.large = initLargeZone(cur, largeSize, cfg.SearchLimit)

	return a, nil
}

// Close releases the arena back to the host.
func (a *Allocator) Close() error {
	return releaseArena(a.arena)
}

// sizeClassFor returns the smallest size class whose payload fits size,
// or -1 if size exceeds the largest class.
func sizeClassFor(size uint32) int {
	for i, cls := range SizeClasses {
		if size <= cls {
			return i
		}
	}

	return -1
}

// Alloc rounds n up to alignment and routes it to the smallest size
// class that fits, or the large zone above that. Returns nil on
// exhaustion — it never aborts or retries.
func (a *Allocator) Alloc(n uint32) unsafe.Pointer {
	if n == 0 {
		return nil
	}

	size := uint32(alignUp(uintptr(n)))

	var ptr unsafe.Pointer
	if cls := sizeClassFor(size); cls >= 0 {
		ptr = a.regions[cls].alloc(cls)
		if ptr != nil {
			a.allocated += uint64(SizeClasses[cls])
		}
	} else {
		ptr = a.large.alloc(size)
		if ptr != nil {
			// large.alloc leaves an unsplit block's header at its full
			// physical size rather than the request (see largezone.go),
			// so credit allocated from the header, matching what Free
			// will later debit from the same field.
			a.allocated += uint64(headerOf(ptr).size)
		}
	}

	return ptr
}

// Free is idempotent on nil and on an already-freed header.
func (a *Allocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h := headerOf(ptr)
	if !h.occupied {
		return
	}

	a.allocated -= uint64(h.size)

	if h.isLarge() {
		a.large.free(h)
	} else {
		a.regions[h.sizeClass].free(h)
	}
}

// Realloc grows or shrinks in place when the existing block's size
// class already accommodates n; otherwise it allocates fresh, copies
// min(old,new) bytes, and frees the old block.
func (a *Allocator) Realloc(ptr unsafe.Pointer, n uint32) unsafe.Pointer {
	if ptr == nil {
		return a.Alloc(n)
	}

	if n == 0 {
		a.Free(ptr)

		return nil
	}

	h := headerOf(ptr)
	size := uint32(alignUp(uintptr(n)))

	if !h.isLarge() {
		if size <= SizeClasses[h.sizeClass] {
			return ptr
		}
	} else if size <= h.size {
		h.size = size

		return ptr
	}

	newPtr := a.Alloc(n)
	if newPtr == nil {
		return nil
	}

	copySize := h.size
	if size < copySize {
		copySize = size
	}

	copyBytes(newPtr, ptr, uintptr(copySize))
	a.Free(ptr)

	return newPtr
}

// Coalesce merges adjacent free large blocks in a single forward pass.
func (a *Allocator) Coalesce() {
	a.large.coalesce()
}

// GetColor returns the mark color of the block at ptr.
func (a *Allocator) GetColor(ptr unsafe.Pointer) Color {
	if ptr == nil {
		return White
	}

	return headerOf(ptr).color
}

// SetColor sets the mark color of the block at ptr.
func (a *Allocator) SetColor(ptr unsafe.Pointer, c Color) {
	if ptr == nil {
		return
	}

	headerOf(ptr).color = c
}

// GetSize returns the payload size in bytes recorded for ptr.
func (a *Allocator) GetSize(ptr unsafe.Pointer) uint32 {
	if ptr == nil {
		return 0
	}

	return headerOf(ptr).size
}

// AllocatedBytes returns the sum of payload sizes currently occupied.
func (a *Allocator) AllocatedBytes() uint64 {
	return a.allocated
}

// Base returns the first address of the arena.
func (a *Allocator) Base() uintptr { return a.base }

// End returns the address one past the last byte of the arena.
func (a *Allocator) End() uintptr { return a.end }

// ValidHeaderAt reports whether candidate, interpreted as a payload
// address, implies a header that lies inside the arena and is
// currently occupied — the one check the conservative tracer needs to
// decide a bit pattern is a real pointer (§3.8 invariant 5).
func (a *Allocator) ValidHeaderAt(candidate uintptr) bool {
	if candidate < a.base || candidate >= a.end {
		return false
	}

	hdrAddr := candidate - headerSize
	if hdrAddr < a.base || hdrAddr >= a.end {
		return false
	}

	return (*blockHeader)(unsafe.Pointer(hdrAddr)).occupied
}

// freeLargeHeader frees a large block already known to be garbage
// during sweep, without re-deriving its header from a payload pointer.
func (a *Allocator) freeLargeHeader(h *blockHeader) {
	a.allocated -= uint64(h.size)
	a.large.free(h)
}

func copyBytes(dst, src unsafe.Pointer, size uintptr) {
	dstSlice := unsafe.Slice((*byte)(dst), size)
	srcSlice := unsafe.Slice((*byte)(src), size)
	copy(dstSlice, srcSlice)
}
