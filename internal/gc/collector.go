package gc

import (
	"time"
	"unsafe"

	"github.com/lubsanovdmitry/courseprj-gc/internal/allocator"
)

// phase names the collector's position in the state machine of §4.5.
// The core never blocks beyond the duration of a single Allocate or
// Collect call. An incremental mark phase begun by Allocate stays in
// phaseMarking across calls until a later step drains the worklist or
// Collect runs a full cycle.
type phase int

const (
	phaseIdle phase = iota
	phaseMarking
	phaseSweeping
)

// Collector drives the tri-colour cycle over one Allocator: incremental
// mark steps triggered from Allocate, and full stop-the-world cycles
// from Collect. It holds all collector-owned state the heap itself
// knows nothing about — roots, the gray worklist, cycle bookkeeping.
type Collector struct {
	heap   *allocator.Allocator
	config *Config

	roots rootSet
	gray  grayWorklist

	guard reentrancyGuard

	phase   phase
	isMinor bool

	bytesSinceCollection  uint64
	allocsSinceCollection uint64
	cycleCount            uint64

	stats    Stats
	observer Observer
}

// New wraps an existing allocator with collector state. The allocator
// and collector share one arena for the lifetime of the process; the
// embedder owns closing both via Close.
func New(heap *allocator.Allocator, opts ...Option) *Collector {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Collector{
		heap:   heap,
		config: cfg,
	}
}

// Close releases the underlying arena.
func (c *Collector) Close() error {
	return c.heap.Close()
}

// SetObserver installs a hook invoked at the end of every Collect
// cycle. Passing nil disables it.
func (c *Collector) SetObserver(obs Observer) {
	c.observer = obs
}

// PushRoot appends ptr to the shadow stack if non-nil.
func (c *Collector) PushRoot(ptr unsafe.Pointer) {
	c.roots.push(ptr)
}

// PopRoots removes the last count entries from the shadow stack.
func (c *Collector) PopRoots(count int) {
	c.roots.popN(count)
}

// Allocate implements the policy layer of §4.5: an incremental mark
// step when enough bytes have accumulated, then a possible triggered
// collection, then the actual allocation.
func (c *Collector) Allocate(size uint32) unsafe.Pointer {
	c.guard.enter()
	defer c.guard.exit()

	if c.bytesSinceCollection >= c.config.IncrementalMarkBytes {
		c.step()
	}

	if c.allocsSinceCollection > 0 && c.allocsSinceCollection%c.config.AllocationsPerCollection == 0 {
		major := c.cycleCount%c.config.FullCollectionInterval == 0
		c.collect(major)
	}

	ptr := c.heap.Alloc(size)
	if ptr == nil {
		return nil
	}

	c.heap.SetColor(ptr, allocator.Gray)
	c.bytesSinceCollection += uint64(size)
	c.allocsSinceCollection++
	c.stats.TotalAllocs++

	return ptr
}

// Realloc preserves bytes [0, min(old,new)) via the allocator. A block
// resized in place keeps its colour; a moved block is a fresh Gray
// block.
func (c *Collector) Realloc(ptr unsafe.Pointer, size uint32) unsafe.Pointer {
	c.guard.enter()
	defer c.guard.exit()

	return c.heap.Realloc(ptr, size)
}

// WriteBarrierEnabled gates whether WriteBarrier actually re-shades on
// a store, or is a no-op. Tests use this to demonstrate the
// use-after-free shape that an omitted barrier produces; production
// callers always leave it true.
var WriteBarrierEnabled = true

// step runs one bounded incremental mark increment. If the worklist
// drains to empty, the cycle advances straight to sweep — mirroring
// the state diagram's "worklist empty" transition without requiring a
// caller to notice and invoke Collect separately.
func (c *Collector) step() {
	start := time.Now()

	if c.phase == phaseIdle {
		c.beginMark(false)
	}

	if c.phase == phaseMarking {
		c.incrementalStep()
		c.recordCollectTiming(start, true)

		if c.gray.len() == 0 {
			c.finishCycle()
		}
	}
}

// beginMark shades roots per the minor/major rule of §4.3 and enters
// the marking phase.
func (c *Collector) beginMark(major bool) {
	c.isMinor = !major

	start := 0
	if c.isMinor {
		start = c.roots.prevRootSize
	}

	for i := start; i < len(c.roots.items); i++ {
		c.shade(c.roots.items[i])
	}

	c.roots.prevRootSize = len(c.roots.items)
	c.phase = phaseMarking
}

// finishCycle runs the sweep pass and resets per-cycle bookkeeping,
// the "SWEEPING → IDLE" edge of the state diagram.
func (c *Collector) finishCycle() {
	c.phase = phaseSweeping
	c.sweep(!c.isMinor)

	c.bytesSinceCollection = 0
	c.allocsSinceCollection = 0
	c.cycleCount++
	c.phase = phaseIdle

	if c.observer != nil {
		c.observer.OnCycleComplete(c.stats)
	}
}

// Collect runs a full stop-the-world cycle: mark phase with limit=0,
// sweep, then the same bookkeeping reset step performs incrementally.
func (c *Collector) Collect(forceMajor bool) {
	c.guard.enter()
	defer c.guard.exit()

	c.collect(forceMajor)
}

// collect is Collect's body, factored out so Allocate's internal
// trigger can run a cycle without re-entering the reentrancy guard it
// already holds.
func (c *Collector) collect(forceMajor bool) {
	major := forceMajor || c.cycleCount%c.config.FullCollectionInterval == 0

	start := time.Now()

	c.beginMark(major)
	c.drainGray(0)
	c.recordCollectTiming(start, false)

	c.finishCycle()
}
