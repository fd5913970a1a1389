// Package report: aggregation, merge, ranking and filtering over the property-assessment store
package report

import (
	"context"

	"property-api/internal/store"
)

// Store: read capabilities the report layer needs; *store.Store satisfies it
type Store interface {
	ListProperties(ctx context.Context) ([]store.Property, error)
	ListPropertiesByNeighborhood(ctx context.Context, name string) ([]store.Property, error)
	GetProperty(ctx context.Context, id int64) (*store.PropertyRecord, error)
	ListResidential(ctx context.Context) ([]store.ResidentialAssessment, error)
	ListCommercial(ctx context.Context) ([]store.CommercialAssessment, error)
	ListResidentialAbove(ctx context.Context, threshold float64) ([]store.ResidentialAssessment, error)
	ListCommercialAbove(ctx context.Context, threshold float64) ([]store.CommercialAssessment, error)
	Aggregator
}

// Aggregator: grouped aggregate of one assessment kind
type Aggregator interface {
	Aggregate(ctx context.Context, kind store.Kind, fn store.AggFunc, group store.Grouping) (map[string]float64, error)
}
