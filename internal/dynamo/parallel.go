package dynamo

import (
	"runtime"
	"sync"
)

// ParallelFor calls fn on contiguous sub-ranges of [0, n) that together
// cover it exactly once. Ranges hold at least minChunk indices; below
// that, or with a single P, fn runs once on the calling goroutine.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	workers := min(runtime.GOMAXPROCS(0), n/max(minChunk, 1))
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		// balanced split: sizes differ by at most one
		start, end := w*n/workers, (w+1)*n/workers
		go func() {
			defer wg.Done()
			fn(start, end)
		}()
	}
	wg.Wait()
}
