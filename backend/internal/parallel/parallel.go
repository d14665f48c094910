package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run executes the supplied tasks concurrently, bounded by limit when it is
// positive. Every task receives a context that is cancelled as soon as any
// sibling fails; the first error is returned.
func Run(ctx context.Context, limit int, tasks ...func(context.Context) error) error {
	if len(tasks) == 0 {
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for _, task := range tasks {
		if task == nil {
			continue
		}
		group.Go(func() error { return task(ctx) })
	}
	return group.Wait()
}

// ForEach runs fn once per item with the same cancellation and limit
// semantics as Run.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) error {
	if fn == nil || len(items) == 0 {
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for _, item := range items {
		group.Go(func() error { return fn(ctx, item) })
	}
	return group.Wait()
}
