// Command pausebench is a port of the original implementation's pause
// time distribution benchmark: it drives a batch of randomly-sized
// allocations (some rooted, some write-barrier-touched) followed by a
// forced collection, repeated for a fixed number of iterations, then
// reports avg/min/max/stddev pause time alongside the collector's own
// running Stats.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"
	"unsafe"

	gc "github.com/lubsanovdmitry/courseprj-gc"
)

const (
	incrIters  = 10
	allocPerIt = 10000
	minAlloc   = 16
	maxAlloc   = 4096
)

type pauseResult struct {
	avgPause, minPause, maxPause, stddevPause time.Duration
	totalAllocs                               uint64
	totalExecTime                             time.Duration
}

func calcStddev(vals []time.Duration, avg time.Duration) time.Duration {
	var sum float64

	for _, v := range vals {
		diff := float64(v - avg)
		sum += diff * diff
	}

	return time.Duration(math.Sqrt(sum / float64(len(vals))))
}

// performAllocs mirrors perform_allocs: each request is a random size
// in [minAlloc, maxAlloc], occasionally rooted and occasionally
// write-barrier-touched to exercise both mutator contracts, followed
// by a forced major collection.
func performAllocs(c *gc.Collector, n int, totalAllocs *uint64) {
	objs := make([]unsafe.Pointer, n)

	for i := 0; i < n; i++ {
		size := uint32(rand.Intn(maxAlloc-minAlloc+1) + minAlloc)

		objs[i] = c.Allocate(size)
		if objs[i] == nil {
			continue
		}

		*totalAllocs++

		if rand.Intn(5) == 0 {
			c.PushRoot(objs[i])
		}

		if rand.Intn(5) == 0 {
			c.WriteBarrier(objs[i])
		}
	}

	c.Collect(true)
}

func runPauseBench(c *gc.Collector) pauseResult {
	var res pauseResult

	pauses := make([]time.Duration, incrIters)
	res.minPause = time.Hour

	start := time.Now()

	var total time.Duration

	for i := 0; i < incrIters; i++ {
		performAllocs(c, allocPerIt, &res.totalAllocs)

		gcStart := time.Now()
		c.Collect(false)
		pause := time.Since(gcStart)

		pauses[i] = pause
		total += pause

		if pause < res.minPause {
			res.minPause = pause
		}

		if pause > res.maxPause {
			res.maxPause = pause
		}
	}

	res.avgPause = total / incrIters
	res.stddevPause = calcStddev(pauses, res.avgPause)
	res.totalExecTime = time.Since(start)

	return res
}

func main() {
	rand.Seed(time.Now().UnixNano())

	c, err := gc.New()
	if err != nil {
		fmt.Println("gc.New:", err)

		return
	}
	defer c.Close()

	fmt.Println("pause time benchmark")

	res := runPauseBench(c)

	fmt.Printf("normal pauses:\n")
	fmt.Printf("avg: %s  min: %s  max: %s  stddev: %s\n", res.avgPause, res.minPause, res.maxPause, res.stddevPause)
	fmt.Printf("total: %s\n", res.totalExecTime)

	stats := c.Stats()
	fmt.Printf("  GC time: %s\n", stats.GCTime)
	fmt.Printf("  GC time max: %s\n", stats.GCTimeMax)
	fmt.Printf("  GC time min: %s\n", stats.GCTimeMin)

	if stats.GCCalls > 0 {
		fmt.Printf("  GC time avg: %s\n", stats.GCTime/time.Duration(stats.GCCalls))
	}

	fmt.Printf("  GC calls: %d\n", stats.GCCalls)
	fmt.Printf("  inc calls: %d\n", stats.IncCalls)
	fmt.Printf("  total allocs: %d\n", stats.TotalAllocs)
	fmt.Printf("  memory peak: %d\n", stats.PeakBeforeClean)
}
