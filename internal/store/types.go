package store

// Kind: assessment classification of a property's value record
type Kind string

const (
	Residential Kind = "residential"
	Commercial  Kind = "commercial"
)

func (k Kind) table() string {
	if k == Commercial {
		return "commercial_properties"
	}
	return "residential_properties"
}

func (k Kind) Valid() bool { return k == Residential || k == Commercial }

// AggFunc: grouped aggregate applied to assessed_value
type AggFunc string

const (
	Sum AggFunc = "SUM"
	Avg AggFunc = "AVG"
)

func (f AggFunc) Valid() bool { return f == Sum || f == Avg }

// Grouping: geographic grouping a property belongs to
type Grouping string

const (
	ByNeighborhood Grouping = "neighborhood"
	ByWard         Grouping = "ward"
)

func (g Grouping) table() string {
	if g == ByWard {
		return "wards"
	}
	return "neighborhoods"
}

func (g Grouping) column() string {
	if g == ByWard {
		return "ward_id"
	}
	return "neighborhood_id"
}

func (g Grouping) Valid() bool { return g == ByNeighborhood || g == ByWard }

// Property: base property row
type Property struct {
	ID          int64
	HouseNumber string
	StreetName  string
	Garage      bool
	Latitude    float64
	Longitude   float64
}

// PropertyRecord: property row joined with its group names and sub-assessments.
// Neighborhood and Ward are nil for a NULL reference; Residential and Commercial are nil when absent.
type PropertyRecord struct {
	Property
	Neighborhood *string
	Ward         *string
	Residential  *ResidentialAssessment
	Commercial   *CommercialAssessment
}

type ResidentialAssessment struct {
	ID            int64
	PropertyID    int64
	AssessedValue float64
}

type CommercialAssessment struct {
	ID            int64
	PropertyID    int64
	AssessedValue float64
	BusinessType  string
}
