package api

// Response shapes. Field names are stable; clients depend on them.

type propertyJSON struct {
	ID          int64   `json:"id"`
	HouseNumber string  `json:"house_number"`
	StreetName  string  `json:"street_name"`
	Garage      bool    `json:"garage"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

type propertyDetailJSON struct {
	propertyJSON
	Neighborhood  *string  `json:"neighborhood"`
	Ward          *string  `json:"ward"`
	PropertyType  string   `json:"property_type"`
	AssessedValue *float64 `json:"assessed_value,omitempty"`
	BusinessType  *string  `json:"business_type,omitempty"`
}

type assessmentJSON struct {
	ID            int64   `json:"id"`
	PropertyID    int64   `json:"property_id"`
	PropertyType  string  `json:"property_type"`
	AssessedValue float64 `json:"assessed_value"`
	BusinessType  *string `json:"business_type,omitempty"`
}

type statsJSON struct {
	Neighborhood            string  `json:"neighborhood"`
	AverageResidentialValue float64 `json:"average_residential_value"`
	AverageCommercialValue  float64 `json:"average_commercial_value"`
}

type totalsJSON struct {
	Neighborhood          string  `json:"neighborhood"`
	TotalResidentialValue float64 `json:"total_residential_value"`
	TotalCommercialValue  float64 `json:"total_commercial_value"`
}

type rankedJSON struct {
	Neighborhood          string  `json:"neighborhood,omitempty"`
	Ward                  string  `json:"ward,omitempty"`
	TotalValue            float64 `json:"total_value"`
	TotalResidentialValue float64 `json:"total_residential_value"`
	TotalCommercialValue  float64 `json:"total_commercial_value"`
}

type errorJSON struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
