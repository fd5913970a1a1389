package report

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"property-api/internal/store"
)

// AssessmentRecord: one residential or commercial row; BusinessType is only meaningful for commercial rows
type AssessmentRecord struct {
	Kind          store.Kind
	ID            int64
	PropertyID    int64
	AssessedValue float64
	BusinessType  string
}

func fromResidential(rows []store.ResidentialAssessment) []AssessmentRecord {
	out := make([]AssessmentRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, AssessmentRecord{Kind: store.Residential, ID: r.ID, PropertyID: r.PropertyID, AssessedValue: r.AssessedValue})
	}
	return out
}

func fromCommercial(rows []store.CommercialAssessment) []AssessmentRecord {
	out := make([]AssessmentRecord, 0, len(rows))
	for _, c := range rows {
		out = append(out, AssessmentRecord{Kind: store.Commercial, ID: c.ID, PropertyID: c.PropertyID, AssessedValue: c.AssessedValue, BusinessType: c.BusinessType})
	}
	return out
}

// ParseKind: case-insensitive match against residential/commercial after trimming spaces
func ParseKind(token string) (store.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case string(store.Residential):
		return store.Residential, nil
	case string(store.Commercial):
		return store.Commercial, nil
	}
	return "", fmt.Errorf("property type %q: %w", token, ErrInvalidArgument)
}

// ByType: every row of the kind named by token
func ByType(ctx context.Context, st Store, token string) ([]AssessmentRecord, error) {
	kind, err := ParseKind(token)
	if err != nil {
		return nil, err
	}
	if kind == store.Commercial {
		rows, err := st.ListCommercial(ctx)
		if err != nil {
			return nil, err
		}
		return fromCommercial(rows), nil
	}
	rows, err := st.ListResidential(ctx)
	if err != nil {
		return nil, err
	}
	return fromResidential(rows), nil
}

// ValuedAbove: rows of both kinds with assessed_value > threshold, highest value first.
// Ties: residential before commercial, then id ascending.
func ValuedAbove(ctx context.Context, st Store, threshold float64) ([]AssessmentRecord, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("threshold %v: %w", threshold, ErrInvalidArgument)
	}
	res, err := st.ListResidentialAbove(ctx, threshold)
	if err != nil {
		return nil, err
	}
	com, err := st.ListCommercialAbove(ctx, threshold)
	if err != nil {
		return nil, err
	}
	out := append(fromResidential(res), fromCommercial(com)...)
	SortByValue(out)
	return out, nil
}

// SortByValue: assessed_value descending, then residential before commercial, then id ascending
func SortByValue(recs []AssessmentRecord) {
	slices.SortFunc(recs, func(a, b AssessmentRecord) int {
		if c := cmp.Compare(b.AssessedValue, a.AssessedValue); c != 0 {
			return c
		}
		if a.Kind != b.Kind {
			if a.Kind == store.Residential {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
