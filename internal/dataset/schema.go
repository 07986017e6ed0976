package dataset

import (
	"math"
)

// Domain identifies one of the column projections an uploaded dataset is
// split into.
type Domain string

const (
	DomainEnvironmental Domain = "environmental"
	DomainPest          Domain = "pest"
	DomainMetadata      Domain = "metadata"
)

// Range is an inclusive numeric constraint
type Range struct {
	Min float64
	Max float64
}

func (r Range) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Schema declares what a domain requires of a row: columns that must be
// present, numeric constraints applied when a column is present, and the
// metric columns that make a row a member of the domain at all. A schema
// with no metric columns claims every row.
type Schema struct {
	Domain   Domain
	Required []string
	Numeric  map[string]Range
	Metrics  []string
}

// The shared row key: uploads carry dates as separate year/month/day
// columns.
var keyColumns = []string{"year", "month", "day"}

var keyRanges = map[string]Range{
	"year":  {2000, 2100},
	"month": {1, 12},
	"day":   {1, 31},
}

var pos = Range{0, math.Inf(1)}

// EnvironmentalSchema describes the environmental projection
func EnvironmentalSchema() Schema {
	numeric := map[string]Range{
		"temperature":     {-10, 60},
		"temperature_min": {-10, 60},
		"temperature_max": {-10, 60},
		"humidity":        {0, 100},
		"precipitation":   {0, 1000},
		"wind_speed":      {0, 120},
		"solar_radiation": {0, 1500},
		"soil_moisture":   {0, 1},
	}
	metrics := make([]string, 0, len(numeric))
	for col := range numeric {
		metrics = append(metrics, col)
	}
	for col, r := range keyRanges {
		numeric[col] = r
	}
	return Schema{
		Domain:   DomainEnvironmental,
		Required: keyColumns,
		Numeric:  numeric,
		Metrics:  metrics,
	}
}

// PestSchema describes the pest projection
func PestSchema() Schema {
	numeric := map[string]Range{
		"rbb_count": pos,
		"wsb_count": pos,
		"density":   pos,
	}
	for col, r := range keyRanges {
		numeric[col] = r
	}
	return Schema{
		Domain:   DomainPest,
		Required: keyColumns,
		Numeric:  numeric,
		Metrics:  []string{"rbb_count", "wsb_count"},
	}
}

// MetadataSchema describes the catch-all projection: every row belongs,
// carrying the key plus whatever columns the other domains did not claim.
func MetadataSchema() Schema {
	numeric := map[string]Range{
		"week_number": {1, 53},
	}
	for col, r := range keyRanges {
		numeric[col] = r
	}
	return Schema{
		Domain:   DomainMetadata,
		Required: keyColumns,
		Numeric:  numeric,
	}
}

// Schemas returns the three domain schemas in processing order
func Schemas() []Schema {
	return []Schema{EnvironmentalSchema(), PestSchema(), MetadataSchema()}
}
