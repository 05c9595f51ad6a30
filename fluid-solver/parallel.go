package fluid

import (
	"runtime"
	"sync"
)

// forEachColumn calls fn for every interior column. The loops it backs write
// only to the column they are given, so columns may run concurrently.
func (fs *Solver) forEachColumn(fn func(i int)) {
	workers := fs.opts.Workers
	if workers == 0 || workers == 1 {
		for i := 1; i < fs.width-1; i++ {
			fn(i)
		}
		return
	}
	parallelRange(1, fs.width-1, workers, fn)
}

// parallelRange executes fn for each i in [start,end), split into at most
// workers contiguous chunks. A negative worker count uses every CPU.
func parallelRange(start, end, workers int, fn func(i int)) {
	total := end - start
	if total <= 0 {
		return
	}
	if workers < 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = total
	}
	var wg sync.WaitGroup
	chunk := (total + workers - 1) / workers
	for w := 0; w < workers; w++ {
		s := start + w*chunk
		e := s + chunk
		if e > end {
			e = end
		}
		if s >= end {
			break
		}
		wg.Add(1)
		go func(ss, ee int) {
			defer wg.Done()
			for i := ss; i < ee; i++ {
				fn(i)
			}
		}(s, e)
	}
	wg.Wait()
}
