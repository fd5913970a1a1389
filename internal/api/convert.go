package api

import (
	"property-api/internal/report"
	"property-api/internal/store"
)

const untypedProperty = "untyped"

func toPropertyJSON(p store.Property) propertyJSON {
	return propertyJSON{
		ID:          p.ID,
		HouseNumber: p.HouseNumber,
		StreetName:  p.StreetName,
		Garage:      p.Garage,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
	}
}

func toPropertyList(ps []store.Property) []propertyJSON {
	out := make([]propertyJSON, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPropertyJSON(p))
	}
	return out
}

func toDetailJSON(d report.PropertyDetail) propertyDetailJSON {
	out := propertyDetailJSON{
		propertyJSON: toPropertyJSON(d.Property),
		Neighborhood: d.Neighborhood,
		Ward:         d.Ward,
	}
	switch a := d.Assessment.(type) {
	case report.ResidentialValue:
		out.PropertyType = string(store.Residential)
		out.AssessedValue = &a.AssessedValue
	case report.CommercialValue:
		out.PropertyType = string(store.Commercial)
		out.AssessedValue = &a.AssessedValue
		out.BusinessType = &a.BusinessType
	default:
		out.PropertyType = untypedProperty
	}
	return out
}

func toAssessmentList(recs []report.AssessmentRecord) []assessmentJSON {
	out := make([]assessmentJSON, 0, len(recs))
	for _, r := range recs {
		a := assessmentJSON{
			ID:            r.ID,
			PropertyID:    r.PropertyID,
			PropertyType:  string(r.Kind),
			AssessedValue: r.AssessedValue,
		}
		if r.Kind == store.Commercial {
			bt := r.BusinessType
			a.BusinessType = &bt
		}
		out = append(out, a)
	}
	return out
}

func toStatsList(rows []report.GroupRow) []statsJSON {
	out := make([]statsJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, statsJSON{Neighborhood: r.Name, AverageResidentialValue: r.Residential, AverageCommercialValue: r.Commercial})
	}
	return out
}

func toTotalsList(rows []report.GroupRow) []totalsJSON {
	out := make([]totalsJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, totalsJSON{Neighborhood: r.Name, TotalResidentialValue: r.Residential, TotalCommercialValue: r.Commercial})
	}
	return out
}

func toRankedList(rows []report.RankedTotal, group store.Grouping) []rankedJSON {
	out := make([]rankedJSON, 0, len(rows))
	for _, r := range rows {
		j := rankedJSON{TotalValue: r.Total, TotalResidentialValue: r.Residential, TotalCommercialValue: r.Commercial}
		if group == store.ByWard {
			j.Ward = r.Name
		} else {
			j.Neighborhood = r.Name
		}
		out = append(out, j)
	}
	return out
}
