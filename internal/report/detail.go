package report

import (
	"context"
	"fmt"

	"property-api/internal/store"
)

// Assessment: the value record attached to a property; exactly one of
// ResidentialValue, CommercialValue or Untyped.
type Assessment interface {
	assessment()
}

type ResidentialValue struct {
	AssessedValue float64
}

type CommercialValue struct {
	AssessedValue float64
	BusinessType  string
}

// Untyped: property with neither sub-assessment (non-residential, non-commercial class)
type Untyped struct{}

func (ResidentialValue) assessment() {}
func (CommercialValue) assessment()  {}
func (Untyped) assessment()          {}

// PropertyDetail: flattened detail record for one property
type PropertyDetail struct {
	store.Property
	Neighborhood *string
	Ward         *string
	Assessment   Assessment
}

// classify: residential wins when the store holds both rows
func classify(rec *store.PropertyRecord) Assessment {
	switch {
	case rec.Residential != nil:
		return ResidentialValue{AssessedValue: rec.Residential.AssessedValue}
	case rec.Commercial != nil:
		return CommercialValue{AssessedValue: rec.Commercial.AssessedValue, BusinessType: rec.Commercial.BusinessType}
	default:
		return Untyped{}
	}
}

// Detail: compose the detail record for id; ErrNotFound when the property does not exist
func Detail(ctx context.Context, st Store, id int64) (PropertyDetail, error) {
	rec, err := st.GetProperty(ctx, id)
	if err != nil {
		return PropertyDetail{}, err
	}
	if rec == nil {
		return PropertyDetail{}, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	return PropertyDetail{
		Property:     rec.Property,
		Neighborhood: rec.Neighborhood,
		Ward:         rec.Ward,
		Assessment:   classify(rec),
	}, nil
}
