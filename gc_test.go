package gc

import (
	"testing"
	"unsafe"

	gcinternal "github.com/lubsanovdmitry/courseprj-gc/internal/gc"
)

type listNode struct {
	next unsafe.Pointer
	val  int64
}

func newTestCollector(t *testing.T, arenaSize uintptr) *Collector {
	t.Helper()

	c, err := New(WithArenaSize(arenaSize))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	return c
}

func TestCollectorAllocateAndReadBack(t *testing.T) {
	c := newTestCollector(t, 1<<20)

	ptr := c.Allocate(uint32(unsafe.Sizeof(listNode{})))
	if ptr == nil {
		t.Fatal("Allocate returned nil")
	}

	node := (*listNode)(ptr)
	node.val = 42

	if node.val != 42 {
		t.Error("wrote value not readable back")
	}
}

func TestCollectorTreeSurvivesCollection(t *testing.T) {
	c := newTestCollector(t, 1<<20)

	size := uint32(unsafe.Sizeof(listNode{}))

	root := c.Allocate(size)
	c.PushRoot(root)

	rootNode := (*listNode)(root)
	rootNode.val = 1

	child := c.Allocate(size)
	rootNode.next = child
	c.WriteBarrier(root)

	(*listNode)(child).val = 2

	c.Collect(true)

	if rootNode.val != 1 {
		t.Fatal("root's own payload corrupted by collection")
	}

	if rootNode.next != child {
		t.Fatal("root's child pointer corrupted by collection")
	}

	childNode := (*listNode)(rootNode.next)
	if childNode.val != 2 {
		t.Fatal("child did not survive a rooted major collection")
	}

	child2 := c.Allocate(size)
	childNode.next = child2
	c.WriteBarrier(child)

	(*listNode)(child2).val = 3

	c.Collect(true)

	if (*listNode)(childNode.next).val != 3 {
		t.Fatal("transitively reachable grandchild did not survive collection")
	}

	c.PopRoots(1)
}

func TestCollectorReallocUnchangedWithinClass(t *testing.T) {
	c := newTestCollector(t, 1<<20)

	ptr := c.Allocate(10)

	same := c.Realloc(ptr, 14)
	if same != ptr {
		t.Errorf("Realloc within the same size class should return the same pointer")
	}
}

func TestRequireHostVersion(t *testing.T) {
	if err := RequireHost(">= 1.0.0, < 2.0.0"); err != nil {
		t.Errorf("RequireHost(compatible constraint) = %v, want nil", err)
	}

	if err := RequireHost(">= 2.0.0"); err == nil {
		t.Error("RequireHost(incompatible constraint) should return an error")
	}
}

func TestCollectorObserverNotifiedOnCollect(t *testing.T) {
	c := newTestCollector(t, 1<<20)

	var calls int

	c.SetObserver(observerFunc(func(gcinternal.Stats) { calls++ }))

	c.Collect(true)

	if calls != 1 {
		t.Errorf("observer called %d times, want 1", calls)
	}
}

type observerFunc func(gcinternal.Stats)

func (f observerFunc) OnCycleComplete(s gcinternal.Stats) { f(s) }
