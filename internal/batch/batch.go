// Package batch fans an action out over a list of items in bounded chunks.
package batch

import (
	"context"
	"fmt"
	"sync"
)

// DefaultSize is the chunk size used when callers have no better number.
const DefaultSize = 25

// Result is the settled outcome of one item.
type Result[R any] struct {
	Value R
	Err   error
}

// OK reports whether the item completed without error.
func (r Result[R]) OK() bool { return r.Err == nil }

// Dispatch runs action on every item. Items inside a chunk run concurrently;
// the next chunk starts only after the current one has fully settled. A
// failing or panicking item never affects its siblings. Results are returned
// in input order.
func Dispatch[T, R any](ctx context.Context, items []T, size int, action func(context.Context, T) (R, error)) []Result[R] {
	if size < 1 {
		size = 1
	}
	out := make([]Result[R], len(items))

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				out[i] = run(ctx, items[i], action)
			}(i)
		}
		wg.Wait()
	}

	return out
}

func run[T, R any](ctx context.Context, item T, action func(context.Context, T) (R, error)) (res Result[R]) {
	defer func() {
		if p := recover(); p != nil {
			res = Result[R]{Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	v, err := action(ctx, item)
	return Result[R]{Value: v, Err: err}
}
