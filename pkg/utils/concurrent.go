package utils

import (
	"context"
	"sync"
)

// MapOrdered applies fn to every item on at most maxConcurrency goroutines
// and returns the outputs in input order: out[i] and errs[i] always belong to
// items[i], whatever order the calls finish in. A non-positive maxConcurrency
// falls back to GetSemaphoreLimit. Items not yet started when ctx ends get
// ctx.Err(), and a panicking call yields a *PanicError.
func MapOrdered[T any, R any](ctx context.Context, maxConcurrency int, items []T, fn func(ctx context.Context, item T) (R, error)) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = GetSemaphoreLimit()
	}

	sem := make(chan struct{}, maxConcurrency)
	out := make([]R, len(items))
	errs := make([]error, len(items))
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer capturePanic(&errs[i])

			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}

			out[i], errs[i] = fn(ctx, item)
		}()
	}

	wg.Wait()
	return out, errs
}
