//go:build windows
// +build windows

package allocator

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// reserveArena reserves and commits a region of the requested size via
// VirtualAlloc, mirroring the teacher's windows-specific syscall split
// in internal/runtime/asyncio.
func reserveArena(size uintptr) ([]byte, error) {
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("allocator: VirtualAlloc %d bytes: %w", size, err)
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// releaseArena releases a previously reserved arena back to the OS.
func releaseArena(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	addr := uintptr(unsafe.Pointer(&buf[0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("allocator: VirtualFree: %w", err)
	}

	return nil
}

func arenaStart(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(&buf[0])
}
