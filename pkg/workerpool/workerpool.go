// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"
)

// Collect runs fn over items on up to workerCount goroutines and gathers the results fn keeps.
// An item for which fn reports false is skipped without affecting the others.
// Dispatch stops when ctx is canceled; Collect then returns what was gathered together with ctx.Err().
func Collect[T, R any](
	ctx context.Context,
	workerCount int,
	items []T,
	fn func(context.Context, T) (R, bool),
) ([]R, error) {
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(items) {
		workerCount = len(items)
	}

	tasks := make(chan T)
	results := make(chan R, len(items))
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if r, ok := fn(ctx, item); ok {
					results <- r
				}
			}
		}()
	}

dispatch:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- item:
		}
	}
	close(tasks)

	wg.Wait()
	close(results)

	out := make([]R, 0, len(results))
	for r := range results {
		out = append(out, r)
	}
	return out, ctx.Err()
}
