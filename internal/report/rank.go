package report

import (
	"cmp"
	"slices"
	"strings"
)

type Order int

const (
	Descending Order = iota
	Ascending
)

// RankedTotal: one group in ranked output
type RankedTotal struct {
	Name        string
	Total       float64
	Residential float64
	Commercial  float64
}

// GroupRow: one group in unranked output
type GroupRow struct {
	Name string
	GroupTotals
}

// Rank: order groups by residential+commercial; ties fall back to name ascending in both orders
func Rank(merged map[string]GroupTotals, order Order) []RankedTotal {
	out := make([]RankedTotal, 0, len(merged))
	for name, t := range merged {
		out = append(out, RankedTotal{
			Name:        name,
			Total:       t.Total(),
			Residential: t.Residential,
			Commercial:  t.Commercial,
		})
	}
	slices.SortFunc(out, func(a, b RankedTotal) int {
		c := cmp.Compare(a.Total, b.Total)
		if order == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Flatten: merged groups as rows ordered by name
func Flatten(merged map[string]GroupTotals) []GroupRow {
	out := make([]GroupRow, 0, len(merged))
	for name, t := range merged {
		out = append(out, GroupRow{Name: name, GroupTotals: t})
	}
	slices.SortFunc(out, func(a, b GroupRow) int { return strings.Compare(a.Name, b.Name) })
	return out
}
