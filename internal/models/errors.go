package models

import (
	"fmt"
)

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// MissingAreaPointError is returned when a write references an area point
// that does not exist or has been deactivated. For dataset ingestion this is
// fatal: the whole run is rejected before any row is written.
type MissingAreaPointError struct {
	AreaPointID string
}

func (e *MissingAreaPointError) Error() string {
	return fmt.Sprintf("area point %s does not exist or is inactive", e.AreaPointID)
}

func (e *MissingAreaPointError) IsTransient() bool {
	return false
}
