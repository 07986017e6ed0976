package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Activity log actions and modules are fixed enumerations. Writes with
// values outside these sets are rejected, mirroring the CHECK constraints
// on the table.
const (
	ActionUpload = "upload"
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionLogin  = "login"
	ActionLogout = "logout"
	ActionExport = "export"
	ActionImport = "import"
)

const (
	ModuleDataset       = "dataset"
	ModuleEnvironmental = "environmental"
	ModulePest          = "pest"
	ModuleAreaPoint     = "area_point"
	ModuleAuth          = "auth"
	ModuleVisualization = "visualization"
	ModuleSettings      = "settings"
)

var validActions = map[string]bool{
	ActionUpload: true, ActionCreate: true, ActionRead: true,
	ActionUpdate: true, ActionDelete: true, ActionLogin: true,
	ActionLogout: true, ActionExport: true, ActionImport: true,
}

var validModules = map[string]bool{
	ModuleDataset: true, ModuleEnvironmental: true, ModulePest: true,
	ModuleAreaPoint: true, ModuleAuth: true, ModuleVisualization: true,
	ModuleSettings: true,
}

// ActivityLogEntry is an append-only audit record
type ActivityLogEntry struct {
	ID         int64          `json:"id" db:"id"`
	Username   string         `json:"username" db:"username"`
	Action     string         `json:"action" db:"action"`
	Module     string         `json:"module" db:"module"`
	EntityType string         `json:"entity_type" db:"entity_type"`
	EntityID   *string        `json:"entity_id,omitempty" db:"entity_id"`
	Details    types.JSONText `json:"details,omitempty" db:"details"`
	IPAddress  *string        `json:"ip_address,omitempty" db:"ip_address"`
	Timestamp  time.Time      `json:"timestamp" db:"timestamp"`
}

// Validate rejects entries with unknown action or module values
func (e *ActivityLogEntry) Validate() error {
	if e.Username == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if !validActions[e.Action] {
		return &ValidationError{
			Field:   "action",
			Value:   e.Action,
			Message: fmt.Sprintf("invalid action: %s", e.Action),
		}
	}
	if !validModules[e.Module] {
		return &ValidationError{
			Field:   "module",
			Value:   e.Module,
			Message: fmt.Sprintf("invalid module: %s", e.Module),
		}
	}
	return nil
}
