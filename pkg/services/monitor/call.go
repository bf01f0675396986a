package monitor

import (
	"context"
	"fmt"
)

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// call runs fn on its own goroutine and returns as soon as either fn or ctx
// finishes, so an adapter that ignores cancellation cannot hold the caller
// past its deadline. A panic in fn is returned as *panicError.
func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: &panicError{value: r}}
			}
		}()
		v, err := fn(ctx)
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
