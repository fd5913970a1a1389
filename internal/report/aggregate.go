package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"property-api/internal/store"
)

// AggregatePair: run the residential and commercial aggregates concurrently.
// The first failure cancels the other query and is returned.
func AggregatePair(ctx context.Context, agg Aggregator, fn store.AggFunc, group store.Grouping) (res, com map[string]float64, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := agg.Aggregate(gctx, store.Residential, fn, group)
		if err != nil {
			return fmt.Errorf("residential %s: %w", fn, err)
		}
		res = m
		return nil
	})
	g.Go(func() error {
		m, err := agg.Aggregate(gctx, store.Commercial, fn, group)
		if err != nil {
			return fmt.Errorf("commercial %s: %w", fn, err)
		}
		com = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return res, com, nil
}

// Totals: aggregate both kinds with fn and merge them per group
func Totals(ctx context.Context, agg Aggregator, fn store.AggFunc, group store.Grouping) (map[string]GroupTotals, error) {
	res, com, err := AggregatePair(ctx, agg, fn, group)
	if err != nil {
		return nil, err
	}
	return Merge(res, com), nil
}
