//go:build gcdebug

package gc

import "golang.org/x/sync/semaphore"

// reentrancyGuard catches the one reentrancy rule spec.md §5 calls
// undefined behaviour: a mutator allocating or collecting from inside
// a trace or observer callback. Built only into gcdebug binaries so
// release builds stay lock-free on the hot path.
type reentrancyGuard struct {
	sem *semaphore.Weighted
}

func (g *reentrancyGuard) enter() {
	if g.sem == nil {
		g.sem = semaphore.NewWeighted(1)
	}

	if !g.sem.TryAcquire(1) {
		panic("gc: re-entrant call into Allocate/Collect from a trace or observer callback")
	}
}

func (g *reentrancyGuard) exit() {
	g.sem.Release(1)
}
