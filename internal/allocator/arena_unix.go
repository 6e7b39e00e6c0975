//go:build linux || darwin || freebsd
// +build linux darwin freebsd

package allocator

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// reserveArena maps an anonymous, private region of the requested size
// from the OS, mirroring the teacher's platform-specific syscall split
// in internal/runtime/asyncio.
func reserveArena(size uintptr) ([]byte, error) {
	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("allocator: mmap %d bytes: %w", size, err)
	}

	return buf, nil
}

// releaseArena returns a previously reserved arena to the OS.
func releaseArena(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	if err := unix.Munmap(buf); err != nil {
		return fmt.Errorf("allocator: munmap %d bytes: %w", len(buf), err)
	}

	return nil
}

// arenaStart returns the address of the first byte of buf, the same
// way the windows implementation does.
func arenaStart(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(&buf[0])
}
