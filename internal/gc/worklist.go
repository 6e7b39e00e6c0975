package gc

import "unsafe"

// grayWorklist is the collector's LIFO queue of objects whose headers
// are currently DarkGray: discovered reachable, not yet scanned.
type grayWorklist struct {
	items []unsafe.Pointer
}

func (w *grayWorklist) push(ptr unsafe.Pointer) {
	w.items = append(w.items, ptr)
}

func (w *grayWorklist) pop() unsafe.Pointer {
	if len(w.items) == 0 {
		return nil
	}

	n := len(w.items) - 1
	ptr := w.items[n]
	w.items = w.items[:n]

	return ptr
}

func (w *grayWorklist) len() int {
	return len(w.items)
}
