// Package parallel provides the small concurrency helper behind portfolio
// solving: racing a fixed set of tasks and keeping the first success.
package parallel

import (
	"context"
	"errors"
	"sync"
)

type result[T any] struct {
	value T
	err   error
}

// Race runs every task in its own goroutine and returns the value of the
// first one to finish without error, cancelling the rest. When every task
// fails, it returns the first error that is not a cancellation, falling
// back to the first error seen. The results channel is buffered to the
// task count so losers never block on send after the winner returns.
func Race[T any](ctx context.Context, tasks []func(context.Context) (T, error)) (T, error) {
	var zero T
	if len(tasks) == 0 {
		return zero, errors.New("parallel: no tasks to race")
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan result[T], len(tasks))
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task func(context.Context) (T, error)) {
			defer wg.Done()
			value, err := task(raceCtx)
			results <- result[T]{value: value, err: err}
		}(task)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for r := range results {
		if r.err == nil {
			cancel()
			return r.value, nil
		}
		if firstErr == nil || isCancellation(firstErr) && !isCancellation(r.err) {
			firstErr = r.err
		}
	}
	return zero, firstErr
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
