package report

import (
	"context"
	"fmt"

	"property-api/internal/store"
)

// Service: query facade; every operation reads through the Store passed at construction
type Service struct {
	st Store
}

func NewService(st Store) *Service { return &Service{st: st} }

func (s *Service) ListProperties(ctx context.Context) ([]store.Property, error) {
	return s.st.ListProperties(ctx)
}

func (s *Service) ListByNeighborhood(ctx context.Context, name string) ([]store.Property, error) {
	return s.st.ListPropertiesByNeighborhood(ctx, name)
}

func (s *Service) PropertyDetail(ctx context.Context, id int64) (PropertyDetail, error) {
	return Detail(ctx, s.st, id)
}

func (s *Service) ValuedAbove(ctx context.Context, threshold float64) ([]AssessmentRecord, error) {
	return ValuedAbove(ctx, s.st, threshold)
}

func (s *Service) ByType(ctx context.Context, token string) ([]AssessmentRecord, error) {
	return ByType(ctx, s.st, token)
}

// NeighborhoodStats: per-neighbourhood averages of both kinds, ordered by name
func (s *Service) NeighborhoodStats(ctx context.Context) ([]GroupRow, error) {
	merged, err := Totals(ctx, s.st, store.Avg, store.ByNeighborhood)
	if err != nil {
		return nil, fmt.Errorf("neighborhood stats: %w", err)
	}
	return Flatten(merged), nil
}

// NeighborhoodTotals: per-neighbourhood sums of both kinds, ordered by name
func (s *Service) NeighborhoodTotals(ctx context.Context) ([]GroupRow, error) {
	merged, err := Totals(ctx, s.st, store.Sum, store.ByNeighborhood)
	if err != nil {
		return nil, fmt.Errorf("neighborhood totals: %w", err)
	}
	return Flatten(merged), nil
}

// RankedTotals: per-group sums ranked by combined total
func (s *Service) RankedTotals(ctx context.Context, group store.Grouping, order Order) ([]RankedTotal, error) {
	merged, err := Totals(ctx, s.st, store.Sum, group)
	if err != nil {
		return nil, fmt.Errorf("%s totals: %w", group, err)
	}
	return Rank(merged, order), nil
}

func (s *Service) NeighborhoodTotalsMax(ctx context.Context) ([]RankedTotal, error) {
	return s.RankedTotals(ctx, store.ByNeighborhood, Descending)
}

func (s *Service) NeighborhoodTotalsMin(ctx context.Context) ([]RankedTotal, error) {
	return s.RankedTotals(ctx, store.ByNeighborhood, Ascending)
}

func (s *Service) WardTotals(ctx context.Context) ([]RankedTotal, error) {
	return s.RankedTotals(ctx, store.ByWard, Descending)
}
