package allocator

import (
	"testing"
	"unsafe"
)

func newTestAllocator(t *testing.T, arenaSize uintptr) *Allocator {
	t.Helper()

	a, err := New(WithArenaSize(arenaSize))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	return a
}

func TestAllocatorBasics(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	t.Run("ZeroAllocation", func(t *testing.T) {
		if ptr := a.Alloc(0); ptr != nil {
			t.Error("Alloc(0) should return nil")
		}
	})

	t.Run("SmallAllocationIsWordAligned", func(t *testing.T) {
		ptr := a.Alloc(24)
		if ptr == nil {
			t.Fatal("Alloc failed")
		}

		if uintptr(ptr)%Alignment != 0 {
			t.Errorf("payload %p not aligned to %d", ptr, Alignment)
		}

		if got := a.GetSize(ptr); got < 24 {
			t.Errorf("GetSize = %d, want >= 24", got)
		}
	})

	t.Run("NewBlockIsOccupied", func(t *testing.T) {
		ptr := a.Alloc(16)
		if !headerOf(ptr).occupied {
			t.Error("freshly allocated block should be occupied")
		}
	})
}

func TestAllocatorLIFOReuse(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	const n = 1000

	first := make([]unsafe.Pointer, n)
	for i := range first {
		first[i] = a.Alloc(32)
		if first[i] == nil {
			t.Fatalf("alloc %d failed", i)
		}
	}

	for i := 0; i < n; i++ {
		a.Free(first[i])
	}

	second := make([]unsafe.Pointer, n)
	for i := range second {
		second[i] = a.Alloc(32)
		if second[i] == nil {
			t.Fatalf("alloc %d failed on second pass", i)
		}
	}

	for i := 0; i < n; i++ {
		if second[i] != first[n-1-i] {
			t.Fatalf("LIFO reuse violated at %d: got %p, want %p", i, second[i], first[n-1-i])
		}
	}
}

func TestAllocatorReallocInPlace(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ptr := a.Alloc(10)
	cls := sizeClassFor(uint32(alignUp(10)))

	same := a.Realloc(ptr, SizeClasses[cls])
	if same != ptr {
		t.Errorf("Realloc within the same class should return the same pointer, got %p want %p", same, ptr)
	}
}

func TestAllocatorReallocCopiesBytes(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ptr := a.Alloc(32)
	bytes := unsafe.Slice((*byte)(ptr), 32)
	for i := range bytes {
		bytes[i] = byte(i)
	}

	bigger := a.Realloc(ptr, 1024)
	if bigger == nil {
		t.Fatal("Realloc to large zone failed")
	}

	newBytes := unsafe.Slice((*byte)(bigger), 32)
	for i := range newBytes {
		if newBytes[i] != byte(i) {
			t.Fatalf("byte %d not preserved across realloc: got %d", i, newBytes[i])
		}
	}
}

func TestAllocatorLargeBlockBestFit(t *testing.T) {
	a := newTestAllocator(t, 4<<20)

	p1 := a.Alloc(4096)
	p2 := a.Alloc(4096)
	p3 := a.Alloc(4096)

	a.Free(p2)

	// A request that fits the freed slack exactly should reuse it.
	reused := a.Alloc(4096)
	if reused != p2 {
		t.Errorf("expected best-fit reuse of freed slot, got %p want %p", reused, p2)
	}

	_ = p1
	_ = p3
}

func TestAllocatorCoalesceAdjacent(t *testing.T) {
	a := newTestAllocator(t, 4<<20)

	p1 := a.Alloc(4096)
	p2 := a.Alloc(4096)
	p3 := a.Alloc(4096)

	a.Free(p1)
	a.Free(p2)
	a.Free(p3)

	a.Coalesce()

	freeCount := 0
	for h := a.large.free; h != nil; h = h.next {
		freeCount++
	}

	if freeCount != 1 {
		t.Errorf("expected adjacent free blocks to coalesce into one, got %d nodes", freeCount)
	}
}

func TestAllocatorValidHeaderAt(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ptr := a.Alloc(16)
	if !a.ValidHeaderAt(uintptr(ptr)) {
		t.Error("ValidHeaderAt should accept a live payload address")
	}

	if a.ValidHeaderAt(a.base - 8) {
		t.Error("ValidHeaderAt should reject an address before the arena")
	}

	if a.ValidHeaderAt(a.end + 8) {
		t.Error("ValidHeaderAt should reject an address past the arena")
	}

	a.Free(ptr)

	if a.ValidHeaderAt(uintptr(ptr)) {
		t.Error("ValidHeaderAt should reject a freed block")
	}
}

func TestAllocatorColor(t *testing.T) {
	a := newTestAllocator(t, 1<<20)

	ptr := a.Alloc(16)

	if a.GetColor(ptr) != Gray {
		t.Errorf("fresh block color = %v, want Gray", a.GetColor(ptr))
	}

	a.SetColor(ptr, Black)

	if a.GetColor(ptr) != Black {
		t.Errorf("GetColor after SetColor(Black) = %v, want Black", a.GetColor(ptr))
	}
}
