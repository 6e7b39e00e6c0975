// Package allocator implements a segregated-fit heap allocator over a
// single fixed-size contiguous arena. Blocks are header-prefixed;
// small requests are served by per-size-class bump/free-list regions,
// large requests by an address-ordered, coalescing free list.
package allocator

import "unsafe"

// Alignment all payload pointers are guaranteed to satisfy.
const Alignment = unsafe.Sizeof(uintptr(0))

// SizeClasses is the ascending sequence of payload sizes served directly
// by a dedicated region. Requests above the largest class go to the
// large zone.
var SizeClasses = [...]uint32{16, 32, 64, 128, 256, 512}

// NumClasses is the number of small-object size classes.
const NumClasses = len(SizeClasses)

// largeSizeClass is the sentinel size-class index meaning "large zone".
const largeSizeClass = 31

// defaultSearchLimit bounds how many large free-list candidates Alloc
// inspects before giving up on finding a better fit, unless overridden
// via WithSearchLimit.
const defaultSearchLimit = 1024

// splitSlack is the minimum remainder, beyond the requested size and a
// fresh header, required before a large free block is split in two.
const splitSlack = 16 * Alignment

// Config controls arena sizing, alignment, and large-zone search policy
// for an Allocator.
type Config struct {
	// ArenaSize is the total number of bytes reserved for the arena.
	ArenaSize uintptr

	// SearchLimit bounds the large zone's best-fit candidate scan
	// (spec.md §6's configurable search limit).
	SearchLimit int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the configuration the teacher's allocator
// package also defaults to for its arena-backed mode: a 512MiB arena,
// matching HEAP_SIZE in the original C implementation.
func DefaultConfig() *Config {
	return &Config{
		ArenaSize:   512 * 1024 * 1024,
		SearchLimit: defaultSearchLimit,
	}
}

// WithArenaSize overrides the arena size.
func WithArenaSize(size uintptr) Option {
	return func(c *Config) { c.ArenaSize = size }
}

// WithSearchLimit overrides the large zone's best-fit candidate scan
// bound.
func WithSearchLimit(n int) Option {
	return func(c *Config) { c.SearchLimit = n }
}

// alignUp rounds size up to the nearest multiple of Alignment.
func alignUp(size uintptr) uintptr {
	return (size + Alignment - 1) &^ (Alignment - 1)
}
