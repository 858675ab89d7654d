// Package fileproc provides concurrent per-file processing. Per-file
// work depends only on the file's own content, so files fan out to a
// bounded worker pool and results merge afterwards.
package fileproc

import (
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkerMultiplier is applied to NumCPU for the worker count.
// 2x covers the mixed I/O and parse workload well.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed, including skipped
// ones. Must be safe for concurrent use.
type ProgressFunc func()

// ErrorFunc is called when a file fails processing. The file is skipped;
// the run proceeds. Must be safe for concurrent use.
type ErrorFunc func(path string, err error)

// MapOrdered processes files in parallel and returns the successful
// results in input order. Ordering follows the input list rather than
// goroutine completion, which keeps downstream merges deterministic when
// the input is sorted. Files whose fn errors are omitted.
func MapOrdered[T any](files []string, maxWorkers int, fn func(string) (T, error), onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(files) == 0 {
		return nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	type slot struct {
		val T
		ok  bool
	}
	slots := make([]slot, len(files))

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, path := range files {
		p.Go(func() {
			v, err := fn(path)
			if err != nil {
				if onError != nil {
					onError(path, err)
				}
			} else {
				slots[i] = slot{val: v, ok: true}
			}
			if onProgress != nil {
				onProgress()
			}
		})
	}
	p.Wait()

	results := make([]T, 0, len(files))
	for _, s := range slots {
		if s.ok {
			results = append(results, s.val)
		}
	}
	return results
}
