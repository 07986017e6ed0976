package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
)

// MonitoringRepository provides data access for all monitoring entities
type MonitoringRepository interface {
	// Area point operations
	CreateAreaPoint(ctx context.Context, point *models.AreaPoint) error
	GetAreaPoint(ctx context.Context, areaPointID string) (*models.AreaPoint, error)
	ListAreaPoints(ctx context.Context, filter AreaPointFilter) ([]*models.AreaPoint, int, error)
	UpdateAreaPoint(ctx context.Context, point *models.AreaPoint) error
	DeactivateAreaPoint(ctx context.Context, areaPointID string) error
	AreaPointExistsActive(ctx context.Context, areaPointID string) (bool, error)

	// Environmental record operations
	CreateEnvironmentalRecord(ctx context.Context, record *models.EnvironmentalRecord) error
	ListEnvironmentalRecords(ctx context.Context, filter EnvironmentalFilter) ([]*models.EnvironmentalRecord, int, error)

	// Pest observation operations
	CreatePestObservation(ctx context.Context, obs *models.PestObservation) error
	ListPestObservations(ctx context.Context, filter PestFilter) ([]*models.PestObservation, int, error)
	UpdatePestObservation(ctx context.Context, obs *models.PestObservation) error
	DeletePestObservation(ctx context.Context, id int64) error

	// Dataset upload operations
	CreateUpload(ctx context.Context, upload *models.DatasetUpload) error
	UpdateUploadStatus(ctx context.Context, uploadID string, status models.UploadStatus) error
	ListUploads(ctx context.Context, filter UploadFilter) ([]*models.DatasetUpload, int, error)
	CreateDomainResult(ctx context.Context, result *models.DatasetDomainResult) error
	CreateDatasetRow(ctx context.Context, row *models.DatasetRow) error

	// Activity log operations
	AppendActivity(ctx context.Context, entry *models.ActivityLogEntry) error
	ListActivity(ctx context.Context, filter ActivityFilter) ([]*models.ActivityLogEntry, error)

	// Statistics operations
	PestSummary(ctx context.Context, filter PestFilter) (*models.PestSummary, error)
	TemporalAggregates(ctx context.Context, groupBy string, areaPointID *string) ([]*models.TemporalAggregate, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// AreaPointFilter defines filters for querying area points
type AreaPointFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}

// EnvironmentalFilter defines filters for querying environmental records
type EnvironmentalFilter struct {
	AreaPointID *string
	Source      *string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}

// PestFilter defines filters for querying pest observations
type PestFilter struct {
	AreaPointID *string
	PestType    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
	Offset      int
}

// UploadFilter defines filters for querying dataset uploads
type UploadFilter struct {
	AreaPointID *string
	UploadedBy  *string
	Limit       int
	Offset      int
}

// ActivityFilter defines filters for querying activity logs
type ActivityFilter struct {
	Username *string
	Module   *string
	Action   *string
	Limit    int
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}

// ConflictError represents a uniqueness violation: the store already holds a
// record with the same key. Row-scoped during ingestion.
type ConflictError struct {
	Resource string
	Key      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}

func (e *ConflictError) IsTransient() bool {
	return false
}

// StorageError represents a storage or transport failure. Fatal during
// ingestion: remaining writes are aborted, rows already written stand.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) IsTransient() bool {
	return true
}

// IsConflict reports whether err is a uniqueness violation
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsNotFound reports whether err is a missing-resource error
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
