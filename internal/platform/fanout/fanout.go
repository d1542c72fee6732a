// Package fanout runs independent lookups concurrently with a bounded number
// of goroutines. The health registry checks its dependencies through it and
// the document store resolves post references with it.
package fanout

import (
	"context"
	"errors"
	"sync"
)

// Result holds the outcome for one item. Exactly one of Value and Err is
// meaningful.
type Result[R any] struct {
	Value R
	Err   error
}

// Run calls fn once per item with at most limit calls in flight and returns
// the results in input order. A limit below one runs everything at once.
//
// Items still waiting for a slot when ctx ends get ctx.Err() and fn is not
// called for them. Run returns after every started call has returned.
func Run[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}
	if limit < 1 || limit > len(items) {
		limit = len(items)
	}

	slots := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			}
			defer func() { <-slots }()

			results[i].Value, results[i].Err = fn(ctx, items[i])
		}()
	}

	wg.Wait()
	return results
}

// Values unpacks results, returning the values in order or all errors joined.
func Values[R any](results []Result[R]) ([]R, error) {
	values := make([]R, len(results))
	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		values[i] = r.Value
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return values, nil
}
