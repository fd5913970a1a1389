package report

// GroupTotals: per-group values of both assessment kinds; a kind with no rows in the group is 0
type GroupTotals struct {
	Residential float64
	Commercial  float64
}

// Total: residential plus commercial
func (g GroupTotals) Total() float64 { return g.Residential + g.Commercial }

// Merge: union of both key sets; a key missing on one side gets 0 for that side.
// Inputs are not modified.
func Merge(residential, commercial map[string]float64) map[string]GroupTotals {
	out := make(map[string]GroupTotals, len(residential)+len(commercial))
	for name, v := range residential {
		t := out[name]
		t.Residential = v
		out[name] = t
	}
	for name, v := range commercial {
		t := out[name]
		t.Commercial = v
		out[name] = t
	}
	return out
}
