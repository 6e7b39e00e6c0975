// Package gc is the embedder-facing surface of a conservative,
// incremental, tri-colour mark-sweep collector over a segregated-fit
// heap allocator. It wraps internal/allocator and internal/gc behind
// the operations spec.md §6 names: New in place of gc_init, Close in
// place of gc_destroy, Allocate/Realloc, PushRoot/PopRoots,
// WriteBarrier, and Collect in place of gc_collect.
package gc

import (
	"unsafe"

	"github.com/lubsanovdmitry/courseprj-gc/internal/allocator"
	gcinternal "github.com/lubsanovdmitry/courseprj-gc/internal/gc"
)

// Config is the embedder-visible configuration surface, combining the
// allocator's arena sizing with the collector's policy thresholds.
type Config struct {
	ArenaSize                uintptr
	IncrementalMarkBytes     uint64
	FullCollectionInterval   uint64
	AllocationsPerCollection uint64
	SearchLimit              int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig matches the original implementation's compile-time
// constants: a 512MiB arena, a 256KiB incremental-mark threshold, a
// major cycle every 10th collection, one collection per 1000 allocations.
func DefaultConfig() *Config {
	return &Config{
		ArenaSize:                512 * 1024 * 1024,
		IncrementalMarkBytes:     256 * 1024,
		FullCollectionInterval:   10,
		AllocationsPerCollection: 1000,
		SearchLimit:              1024,
	}
}

// WithArenaSize overrides the arena size.
func WithArenaSize(size uintptr) Option {
	return func(c *Config) { c.ArenaSize = size }
}

// WithIncrementalMarkBytes overrides the incremental-step byte threshold.
func WithIncrementalMarkBytes(n uint64) Option {
	return func(c *Config) { c.IncrementalMarkBytes = n }
}

// WithFullCollectionInterval overrides the major/minor cycle interval.
func WithFullCollectionInterval(n uint64) Option {
	return func(c *Config) { c.FullCollectionInterval = n }
}

// WithAllocationsPerCollection overrides the allocation-count trigger.
func WithAllocationsPerCollection(n uint64) Option {
	return func(c *Config) { c.AllocationsPerCollection = n }
}

// WithSearchLimit overrides the large zone's best-fit candidate scan
// bound.
func WithSearchLimit(n int) Option {
	return func(c *Config) { c.SearchLimit = n }
}

// Collector is the process-wide handle a mutator program holds: one
// arena, one allocator, one collector. Not re-entrant — see the
// concurrency model in SPEC_FULL.md.
type Collector struct {
	core *gcinternal.Collector
}

// New reserves the arena and initialises all collector state. An
// embedder invokes this once.
func New(opts ...Option) (*Collector, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	heap, err := allocator.New(
		allocator.WithArenaSize(cfg.ArenaSize),
		allocator.WithSearchLimit(cfg.SearchLimit),
	)
	if err != nil {
		return nil, err
	}

	core := gcinternal.New(heap,
		gcinternal.WithIncrementalMarkBytes(cfg.IncrementalMarkBytes),
		gcinternal.WithFullCollectionInterval(cfg.FullCollectionInterval),
		gcinternal.WithAllocationsPerCollection(cfg.AllocationsPerCollection),
	)

	return &Collector{core: core}, nil
}

// Close releases the arena and auxiliary vectors.
func (c *Collector) Close() error {
	return c.core.Close()
}

// SetObserver installs a hook invoked at the end of every collection
// cycle.
func (c *Collector) SetObserver(obs gcinternal.Observer) {
	c.core.SetObserver(obs)
}

// Stats returns a snapshot of running collector statistics.
func (c *Collector) Stats() gcinternal.Stats {
	return c.core.Stats()
}

// Allocate returns a payload pointer of at least n bytes, or nil on
// exhaustion. May trigger an incremental mark step or a full
// collection as a side effect.
func (c *Collector) Allocate(n uint32) unsafe.Pointer {
	return c.core.Allocate(n)
}

// Realloc preserves bytes [0, min(old,new)).
func (c *Collector) Realloc(ptr unsafe.Pointer, n uint32) unsafe.Pointer {
	return c.core.Realloc(ptr, n)
}

// PushRoot appends ptr to the shadow stack if non-nil.
func (c *Collector) PushRoot(ptr unsafe.Pointer) {
	c.core.PushRoot(ptr)
}

// PopRoots removes the last count entries from the shadow stack,
// clamping to zero if count exceeds the current depth.
func (c *Collector) PopRoots(count int) {
	c.core.PopRoots(count)
}

// WriteBarrier must be called after storing a pointer field into
// container. Omitting this call after a store is a mutator safety
// bug, not a collector bug.
func (c *Collector) WriteBarrier(container unsafe.Pointer) {
	c.core.WriteBarrier(container)
}

// Collect runs a full stop-the-world cycle: major if forceMajor or if
// the cycle counter divides the configured full-collection interval,
// minor otherwise.
func (c *Collector) Collect(forceMajor bool) {
	c.core.Collect(forceMajor)
}
