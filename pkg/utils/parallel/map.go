package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item with at most limit calls in flight and returns the results in
// input order, regardless of completion order. The first error cancels the remaining calls and
// is returned.
//
// Parameters:
//   - ctx: passed to fn; cancelled when any call fails
//   - limit: maximum concurrent calls; values below 1 mean 1
//   - items: input sequence
//   - fn: called once per item with its index
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, idx int, item T) (R, error)) ([]R, error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]R, len(items))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, item := range items {
		eg.Go(func() error {
			r, err := fn(ctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
