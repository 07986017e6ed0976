package models

import (
	"fmt"
	"time"
)

// Environmental data sources. The (area_point_id, date, source) triple is
// unique: at most one record per site, day, and source.
const (
	SourceNASAPower    = "nasa_power"
	SourceMicroclimate = "microclimate"
	SourceManual       = "manual"
)

var validSources = map[string]bool{
	SourceNASAPower:    true,
	SourceMicroclimate: true,
	SourceManual:       true,
}

// EnvironmentalRecord is one day of environmental readings for an area
// point. Missing metrics are nil, not zero.
type EnvironmentalRecord struct {
	ID             int64     `json:"id" db:"id"`
	AreaPointID    string    `json:"area_point_id" db:"area_point_id"`
	Date           time.Time `json:"date" db:"date"`
	Source         string    `json:"source" db:"source"`
	Temperature    *float64  `json:"temperature,omitempty" db:"temperature"`
	TemperatureMin *float64  `json:"temperature_min,omitempty" db:"temperature_min"`
	TemperatureMax *float64  `json:"temperature_max,omitempty" db:"temperature_max"`
	Humidity       *float64  `json:"humidity,omitempty" db:"humidity"`
	Precipitation  *float64  `json:"precipitation,omitempty" db:"precipitation"`
	WindSpeed      *float64  `json:"wind_speed,omitempty" db:"wind_speed"`
	SolarRadiation *float64  `json:"solar_radiation,omitempty" db:"solar_radiation"`
	SoilMoisture   *float64  `json:"soil_moisture,omitempty" db:"soil_moisture"`
	CreatedBy      string    `json:"created_by" db:"created_by"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Validate checks the source enum and physically plausible metric ranges
func (r *EnvironmentalRecord) Validate() error {
	if r.AreaPointID == "" {
		return &ValidationError{Field: "area_point_id", Message: "area_point_id is required"}
	}
	if r.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if !validSources[r.Source] {
		return &ValidationError{
			Field:   "source",
			Value:   r.Source,
			Message: fmt.Sprintf("invalid source %q, must be one of nasa_power, microclimate, manual", r.Source),
		}
	}

	checks := []struct {
		field    string
		value    *float64
		min, max float64
	}{
		{"temperature", r.Temperature, -10, 60},
		{"temperature_min", r.TemperatureMin, -10, 60},
		{"temperature_max", r.TemperatureMax, -10, 60},
		{"humidity", r.Humidity, 0, 100},
		{"precipitation", r.Precipitation, 0, 1000},
		{"wind_speed", r.WindSpeed, 0, 120},
		{"solar_radiation", r.SolarRadiation, 0, 1500},
		{"soil_moisture", r.SoilMoisture, 0, 1},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if *c.value < c.min || *c.value > c.max {
			return &ValidationError{
				Field:   c.field,
				Value:   fmt.Sprintf("%v", *c.value),
				Message: fmt.Sprintf("%s %v outside [%v, %v]", c.field, *c.value, c.min, c.max),
			}
		}
	}

	return nil
}
