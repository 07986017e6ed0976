package models

import (
	"fmt"
	"time"
)

// Pest types form a closed set. Anything else is rejected at the boundary,
// not left to the database CHECK constraint.
const (
	PestTypeRBB = "rbb" // rice black bug (Scotinophara coarctata)
	PestTypeWSB = "wsb" // white stem borer (Scirpophaga innotata)
)

var validPestTypes = map[string]bool{
	PestTypeRBB: true,
	PestTypeWSB: true,
}

// PestObservation is a single pest sighting at an area point: a count or a
// density (at least one), optionally with free-text notes and an image.
type PestObservation struct {
	ID          int64     `json:"id" db:"id"`
	AreaPointID string    `json:"area_point_id" db:"area_point_id"`
	PestType    string    `json:"pest_type" db:"pest_type"`
	Date        time.Time `json:"date" db:"date"`
	Count       *int64    `json:"count,omitempty" db:"count"`
	Density     *float64  `json:"density,omitempty" db:"density"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	ImagePath   *string   `json:"image_path,omitempty" db:"image_path"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Validate enforces the pest-type enum and non-negative population measures
func (p *PestObservation) Validate() error {
	if p.AreaPointID == "" {
		return &ValidationError{Field: "area_point_id", Message: "area_point_id is required"}
	}
	if !validPestTypes[p.PestType] {
		return &ValidationError{
			Field:   "pest_type",
			Value:   p.PestType,
			Message: fmt.Sprintf("invalid pest_type %q, must be rbb or wsb", p.PestType),
		}
	}
	if p.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	if p.Count == nil && p.Density == nil {
		return &ValidationError{Field: "count", Message: "count or density is required"}
	}
	if p.Count != nil && *p.Count < 0 {
		return &ValidationError{
			Field:   "count",
			Value:   fmt.Sprintf("%d", *p.Count),
			Message: "count must be non-negative",
		}
	}
	if p.Density != nil && *p.Density < 0 {
		return &ValidationError{
			Field:   "density",
			Value:   fmt.Sprintf("%v", *p.Density),
			Message: "density must be non-negative",
		}
	}
	return nil
}
