// Command gcbench is a port of the original implementation's binary
// tree / long-lived array allocation benchmark: it stresses the
// allocator and collector with both top-down (eagerly rooted) and
// bottom-up (rooted only at the subtree boundary) tree construction,
// and reports the same timing and Stats fields the C benchmark printed.
package main

import (
	"fmt"
	"log"
	"time"
	"unsafe"

	gc "github.com/lubsanovdmitry/courseprj-gc"
)

const (
	stretchTreeDepth   = 16
	longLivedTreeDepth = 16
	arraySize          = 500000
	minTreeDepth       = 4
	maxTreeDepth       = 16
)

// node overlays the raw payload the collector hands back: two
// child pointers the conservative tracer will discover by scanning
// raw words, plus two int32 payload fields.
type node struct {
	left, right unsafe.Pointer
	i, j        int32
}

const nodeSize = uint32(unsafe.Sizeof(node{}))

func treeSize(i int) int { return (1 << uint(i+1)) - 1 }

func numIters(i int) int { return 2 * treeSize(stretchTreeDepth) / treeSize(i) }

// populate fills an already-allocated node in place, pushing each
// child as a root before recursing so a collection triggered mid-build
// cannot reclaim it.
func populate(c *gc.Collector, depth int, n *node) {
	if depth <= 0 {
		n.i, n.j = 0, 0
		n.left, n.right = nil, nil

		return
	}

	depth--

	left := c.Allocate(nodeSize)
	right := c.Allocate(nodeSize)

	n.left = left
	n.right = right
	n.i = int32(depth)
	n.j = 0

	c.WriteBarrier(unsafe.Pointer(n))

	c.PushRoot(left)
	populate(c, depth, (*node)(left))
	c.PopRoots(1)

	c.PushRoot(right)
	populate(c, depth, (*node)(right))
	c.PopRoots(1)
}

// makeTree builds bottom-up: only the node currently under
// construction is rooted, its children are already-reachable
// subtrees by the time the write barrier fires.
func makeTree(c *gc.Collector, depth int) *node {
	ptr := c.Allocate(nodeSize)
	if ptr == nil {
		return nil
	}

	n := (*node)(ptr)
	n.left, n.right = nil, nil
	n.i, n.j = int32(depth), 0

	if depth <= 0 {
		return n
	}

	c.PushRoot(ptr)

	left := makeTree(c, depth-1)
	n.left = unsafe.Pointer(left)
	c.WriteBarrier(ptr)

	right := makeTree(c, depth-1)
	n.right = unsafe.Pointer(right)
	c.WriteBarrier(ptr)

	c.PopRoots(1)

	return n
}

func printDiagnostics(c *gc.Collector) {
	s := c.Stats()
	log.Printf("total GC calls: %d", s.GCCalls)
	log.Printf("total GC time: %s", s.GCTime)
	if s.GCCalls > 0 {
		log.Printf("avg GC time: %s", s.GCTime/time.Duration(s.GCCalls))
	}
	log.Printf("peak memory before collection: %d bytes", s.PeakBeforeClean)
	log.Printf("total allocations: %d", s.TotalAllocs)
}

func timeConstruction(c *gc.Collector, depth int) {
	iters := numIters(depth)
	before := c.Stats()

	fmt.Printf("creating %d trees of depth %d\n", iters, depth)

	start := time.Now()

	for i := 0; i < iters; i++ {
		ptr := c.Allocate(nodeSize)
		c.PushRoot(ptr)
		populate(c, depth, (*node)(ptr))
		c.PopRoots(1)
	}

	fmt.Printf("\ttop down construction took %s\n", time.Since(start))

	after := c.Stats()
	fmt.Printf("\ttop down GC calls: %d, GC time: %s\n", after.GCCalls-before.GCCalls, after.GCTime-before.GCTime)

	before = c.Stats()
	start = time.Now()

	for i := 0; i < iters; i++ {
		_ = makeTree(c, depth)
	}

	fmt.Printf("\tbottom up construction took %s\n", time.Since(start))

	after = c.Stats()
	fmt.Printf("\tbottom up GC calls: %d, GC time: %s\n", after.GCCalls-before.GCCalls, after.GCTime-before.GCTime)
}

func main() {
	c, err := gc.New()
	if err != nil {
		log.Fatalf("gc.New: %v", err)
	}
	defer c.Close()

	fmt.Println("garbage collector benchmark")

	overallStart := time.Now()

	tempTree := makeTree(c, stretchTreeDepth)
	_ = tempTree
	c.Collect(true)

	fmt.Printf("creating a long-lived binary tree of depth %d\n", longLivedTreeDepth)

	longLived := c.Allocate(nodeSize)
	c.PushRoot(longLived)
	populate(c, longLivedTreeDepth, (*node)(longLived))

	fmt.Printf("creating a long-lived array of %d float64s\n", arraySize)

	arrayBytes := uint32(arraySize) * uint32(unsafe.Sizeof(float64(0)))
	arrayPtr := c.Allocate(arrayBytes)
	c.PushRoot(arrayPtr)

	arr := unsafe.Slice((*float64)(arrayPtr), arraySize)
	for i := 1; i < arraySize/2; i++ {
		arr[i] = 1.0 / float64(i)
	}
	arr[0] = 0.0

	printDiagnostics(c)

	for d := minTreeDepth; d <= maxTreeDepth; d += 2 {
		timeConstruction(c, d)
	}

	if arr[1000] != 1.0/1000.0 {
		log.Println("failed: long-lived array corrupted")
	}

	fmt.Printf("completed in %s\n", time.Since(overallStart))
	printDiagnostics(c)
}
