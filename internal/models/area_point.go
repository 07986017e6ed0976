package models

import (
	"time"
)

// AreaPoint is a named, geolocated monitoring site. Every observational
// record is anchored to one. Area points are soft-deleted: once referenced
// by environmental or pest data they are deactivated, never removed.
type AreaPoint struct {
	AreaPointID  string    `json:"area_point_id" db:"area_point_id"`
	Name         string    `json:"name" db:"name"`
	Latitude     float64   `json:"latitude" db:"latitude"`
	Longitude    float64   `json:"longitude" db:"longitude"`
	Cluster      *int      `json:"cluster,omitempty" db:"cluster"`
	Municipality *string   `json:"municipality,omitempty" db:"municipality"`
	Barangay     *string   `json:"barangay,omitempty" db:"barangay"`
	Description  *string   `json:"description,omitempty" db:"description"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedBy    string    `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks identity and coordinate constraints
func (a *AreaPoint) Validate() error {
	if a.AreaPointID == "" {
		return &ValidationError{Field: "area_point_id", Message: "area_point_id is required"}
	}
	if a.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if a.Latitude < -90 || a.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "latitude must be within [-90, 90]"}
	}
	if a.Longitude < -180 || a.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "longitude must be within [-180, 180]"}
	}
	return nil
}
