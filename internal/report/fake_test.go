package report

import (
	"context"
	"errors"
	"sync"

	"property-api/internal/store"
)

type aggKey struct {
	kind  store.Kind
	fn    store.AggFunc
	group store.Grouping
}

// fakeStore: canned rows keyed the way the report layer asks for them
type fakeStore struct {
	mu          sync.Mutex
	properties  []store.Property
	records     map[int64]*store.PropertyRecord
	residential []store.ResidentialAssessment
	commercial  []store.CommercialAssessment
	aggregates  map[aggKey]map[string]float64
	aggErr      map[store.Kind]error
	calls       []aggKey
}

func (f *fakeStore) ListProperties(context.Context) ([]store.Property, error) {
	return f.properties, nil
}

func (f *fakeStore) ListPropertiesByNeighborhood(_ context.Context, name string) ([]store.Property, error) {
	out := []store.Property{}
	for _, p := range f.properties {
		if rec, ok := f.records[p.ID]; ok && rec.Neighborhood != nil && *rec.Neighborhood == name {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProperty(_ context.Context, id int64) (*store.PropertyRecord, error) {
	return f.records[id], nil
}

func (f *fakeStore) ListResidential(context.Context) ([]store.ResidentialAssessment, error) {
	return f.residential, nil
}

func (f *fakeStore) ListCommercial(context.Context) ([]store.CommercialAssessment, error) {
	return f.commercial, nil
}

func (f *fakeStore) ListResidentialAbove(_ context.Context, threshold float64) ([]store.ResidentialAssessment, error) {
	out := []store.ResidentialAssessment{}
	for _, r := range f.residential {
		if r.AssessedValue > threshold {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCommercialAbove(_ context.Context, threshold float64) ([]store.CommercialAssessment, error) {
	out := []store.CommercialAssessment{}
	for _, c := range f.commercial {
		if c.AssessedValue > threshold {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) Aggregate(_ context.Context, kind store.Kind, fn store.AggFunc, group store.Grouping) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := aggKey{kind, fn, group}
	f.calls = append(f.calls, k)
	if err := f.aggErr[kind]; err != nil {
		return nil, err
	}
	src := f.aggregates[k]
	out := make(map[string]float64, len(src))
	for name, v := range src {
		out[name] = v
	}
	return out, nil
}

var errStoreDown = errors.New("store down")

func strPtr(s string) *string { return &s }
