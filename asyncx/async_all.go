package asyncx

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AsyncAll runs fn for every item with at most limit calls in flight (limit <= 0 means no
// limit). Results keep the order of items. The first error cancels the context passed to
// the remaining calls and is returned.
func AsyncAll[T any, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Result pairs the outcome of one item with its position
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Settle runs fn for every item like AsyncAll but never stops early: every item gets its
// own Result, successful or not.
func Settle[T any, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, item := range items {
		g.Go(func() error {
			r, err := fn(ctx, item)
			results[i] = Result[R]{Index: i, Value: r, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
