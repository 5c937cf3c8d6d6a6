package util

import (
	"context"
	"sync"
	"sync/atomic"
)

// Map calls fn for every input on at most limit goroutines and returns the
// results in input order. The first error cancels the remaining calls and
// is returned, as is a cancelled parent context.
func Map[T, R any](parent context.Context, inputs []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	limit = max(1, min(limit, len(inputs)))

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		out      = make([]R, len(inputs))
		next     atomic.Int64
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for range limit {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				i := int(next.Add(1)) - 1
				if i >= len(inputs) {
					return
				}
				r, err := fn(ctx, inputs[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				out[i] = r
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
