package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// UploadStatus is the processing state of a dataset upload
type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
)

// CanTransitionTo reports whether the state machine permits moving to next.
// pending -> processing -> {completed, failed}; completed and failed are
// terminal.
func (s UploadStatus) CanTransitionTo(next UploadStatus) bool {
	switch s {
	case UploadPending:
		return next == UploadProcessing || next == UploadFailed
	case UploadProcessing:
		return next == UploadCompleted || next == UploadFailed
	default:
		return false
	}
}

// DatasetUpload records one ingestion attempt. The area point association is
// mandatory: uploads without one are rejected before any row is written.
type DatasetUpload struct {
	ID               string       `json:"id" db:"id"`
	Filename         string       `json:"filename" db:"filename"`
	OriginalFilename string       `json:"original_filename" db:"original_filename"`
	AreaPointID      string       `json:"area_point_id" db:"area_point_id"`
	UploadedBy       string       `json:"uploaded_by" db:"uploaded_by"`
	RowCount         int          `json:"row_count" db:"row_count"`
	FileSize         int64        `json:"file_size" db:"file_size"`
	ColumnsDetected  string       `json:"columns_detected" db:"columns_detected"`
	ProcessingStatus UploadStatus `json:"processing_status" db:"processing_status"`
	UploadedAt       time.Time    `json:"uploaded_at" db:"uploaded_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// DatasetDomainResult is the per-domain accounting row for an upload:
// attempted = accepted + rejected, accepted = persisted + failed.
type DatasetDomainResult struct {
	ID            int64     `json:"id" db:"id"`
	UploadID      string    `json:"upload_id" db:"upload_id"`
	Domain        string    `json:"domain" db:"domain"`
	RowsAttempted int       `json:"rows_attempted" db:"rows_attempted"`
	RowsAccepted  int       `json:"rows_accepted" db:"rows_accepted"`
	RowsRejected  int       `json:"rows_rejected" db:"rows_rejected"`
	RowsPersisted int       `json:"rows_persisted" db:"rows_persisted"`
	RowsFailed    int       `json:"rows_failed" db:"rows_failed"`
	ErrorDetails  *string   `json:"error_details,omitempty" db:"error_details"`
	ProcessedAt   time.Time `json:"processed_at" db:"processed_at"`
}

// DatasetRow is the metadata-domain record: provenance for one accepted
// source row, carrying any columns not claimed by the environmental or pest
// projections.
type DatasetRow struct {
	ID          int64          `json:"id" db:"id"`
	UploadID    string         `json:"upload_id" db:"upload_id"`
	AreaPointID string         `json:"area_point_id" db:"area_point_id"`
	Date        time.Time      `json:"date" db:"date"`
	RowNumber   int            `json:"row_number" db:"row_number"`
	Attributes  types.JSONText `json:"attributes,omitempty" db:"attributes"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}
