package compute

import (
	"runtime"
	"sync"
)

// defaultMinChunk is the smallest range worth handing to its own goroutine.
const defaultMinChunk = 16

type CPUBackend struct {
	workers  int
	minChunk int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers:  runtime.NumCPU(),
		minChunk: defaultMinChunk,
	}
}

// NewCPUBackendWorkers returns a CPU backend limited to the given number of
// workers.
func NewCPUBackendWorkers(workers, minChunk int) *CPUBackend {
	return &CPUBackend{
		workers:  max(workers, 1),
		minChunk: max(minChunk, 1),
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}
func (c *CPUBackend) Workers() int    { return c.workers }

func (c *CPUBackend) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n <= c.minChunk || c.workers <= 1 {
		fn(0, n)
		return
	}

	workers := c.workers
	if n/c.minChunk < workers {
		workers = n / c.minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
