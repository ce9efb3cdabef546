// Package pool provides a bounded-concurrency executor used at every
// fan-out point of the discovery pipeline.
package pool

import (
	"context"
	"sync"
)

// Map runs fn over every input with at most size concurrent workers and
// returns the successful results in completion order. A failing or
// panicking unit contributes nothing; it never aborts its siblings.
// Map blocks until all submitted units finish.
func Map[In, Out any](ctx context.Context, size int, inputs []In, fn func(context.Context, In) (Out, error)) []Out {
	if len(inputs) == 0 {
		return nil
	}
	if size <= 0 {
		size = 1
	}

	sem := make(chan struct{}, size)
	results := make(chan Out, len(inputs))

	var wg sync.WaitGroup
	for _, in := range inputs {
		wg.Add(1)
		go func(in In) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()
			out, err := run(ctx, in, fn)
			if err != nil {
				return
			}
			results <- out
		}(in)
	}

	wg.Wait()
	close(results)

	collected := make([]Out, 0, len(inputs))
	for out := range results {
		collected = append(collected, out)
	}
	return collected
}

// Each is Map for callbacks without a result.
func Each[In any](ctx context.Context, size int, inputs []In, fn func(context.Context, In) error) {
	Map(ctx, size, inputs, func(ctx context.Context, in In) (struct{}, error) {
		return struct{}{}, fn(ctx, in)
	})
}

func run[In, Out any](ctx context.Context, in In, fn func(context.Context, In) (Out, error)) (out Out, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = ctx.Err()
			if err == nil {
				err = errPanic
			}
		}
	}()
	return fn(ctx, in)
}

type panicError struct{}

func (panicError) Error() string { return "worker panicked" }

var errPanic = panicError{}
