package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/markMSUIIT/riceprotek-web-app/internal/dataset"
	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
)

// Persistence failure reasons, reported per row alongside the validation
// reason codes.
const (
	reasonDuplicateRecord    = "duplicate_record"
	reasonStorageUnavailable = "storage_unavailable"
)

// IngestionService runs the dataset ingestion pipeline: normalize, split
// into domains, validate row by row, persist with per-row accounting, and
// mirror every write into the activity log.
type IngestionService struct {
	repo    repository.MonitoringRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.MonitoringRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// UploadRequest describes one dataset to ingest. AreaPointID is mandatory:
// every record in the file is linked to that monitoring site.
type UploadRequest struct {
	OriginalFilename string
	AreaPointID      string
	UploadedBy       string
	FileSize         int64
	Data             io.Reader
}

// DomainReport is the four-way accounting for one domain batch:
// Attempted == Accepted + len(Rejected) and, when the run completes,
// Accepted == Persisted + len(Failed).
type DomainReport struct {
	Domain    dataset.Domain     `json:"domain"`
	Attempted int                `json:"attempted"`
	Accepted  int                `json:"accepted"`
	Rejected  []dataset.RowError `json:"rejected"`
	Persisted int                `json:"persisted"`
	Failed    []dataset.RowError `json:"failed"`
}

// IngestResult is the caller-visible outcome of one ingestion run
type IngestResult struct {
	UploadID string              `json:"upload_id"`
	Status   models.UploadStatus `json:"status"`
	RowCount int                 `json:"row_count"`
	Reports  []*DomainReport     `json:"reports"`
	Duration time.Duration       `json:"-"`
}

// ProcessUpload runs one ingestion synchronously, start to finish.
//
// The area-point precondition is the only whole-run gate: if the referenced
// area point is missing or inactive, nothing is written and the upload is
// marked failed. After that, failures are row-scoped — a duplicate or
// invalid row is recorded and never aborts its siblings. A storage failure
// is fatal: remaining writes are abandoned, rows already written stand, and
// the partial counts accumulated so far are still returned.
func (s *IngestionService) ProcessUpload(ctx context.Context, req UploadRequest) (*IngestResult, error) {
	startTime := time.Now()

	rows, columns, err := dataset.ReadCSV(req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	s.metrics.IngestionUploadSize.Observe(float64(len(rows)))

	upload := &models.DatasetUpload{
		ID:               uuid.NewString(),
		Filename:         fmt.Sprintf("%s_%s", req.AreaPointID, req.OriginalFilename),
		OriginalFilename: req.OriginalFilename,
		AreaPointID:      req.AreaPointID,
		UploadedBy:       req.UploadedBy,
		RowCount:         len(rows),
		FileSize:         req.FileSize,
		ColumnsDetected:  fmt.Sprintf("%v", columns),
		ProcessingStatus: models.UploadPending,
		UploadedAt:       time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.repo.CreateUpload(ctx, upload); err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	result := &IngestResult{
		UploadID: upload.ID,
		RowCount: len(rows),
	}

	s.logger.Info(ctx, "[INGEST_START] Starting dataset ingestion", logging.Fields{
		"upload_id":     upload.ID,
		"area_point_id": req.AreaPointID,
		"filename":      req.OriginalFilename,
		"row_count":     len(rows),
	})

	// precondition: the parent area point must exist and be active
	exists, err := s.repo.AreaPointExistsActive(ctx, req.AreaPointID)
	if err != nil {
		s.transition(ctx, upload, models.UploadFailed)
		result.Status = models.UploadFailed
		return result, err
	}
	if !exists {
		s.transition(ctx, upload, models.UploadFailed)
		result.Status = models.UploadFailed
		s.logger.Warn(ctx, "[INGEST_REJECTED] Upload references missing or inactive area point", logging.Fields{
			"upload_id":     upload.ID,
			"area_point_id": req.AreaPointID,
		})
		return result, &models.MissingAreaPointError{AreaPointID: req.AreaPointID}
	}

	s.transition(ctx, upload, models.UploadProcessing)

	schemas := dataset.Schemas()
	batches := dataset.Partition(rows, schemas)

	var fatal error
	for _, schema := range schemas {
		batch := batches[schema.Domain]
		report := &DomainReport{Domain: schema.Domain, Attempted: len(batch)}
		result.Reports = append(result.Reports, report)

		if fatal != nil {
			continue
		}

		validated := dataset.Validate(batch, schema)
		report.Accepted = len(validated.Accepted)
		report.Rejected = validated.Rejected
		for range validated.Rejected {
			s.metrics.RecordRowRejected(string(schema.Domain))
		}

		fatal = s.persistBatch(ctx, upload, schema.Domain, validated.Accepted, report)

		s.storeDomainResult(ctx, upload.ID, report)
	}

	result.Duration = time.Since(startTime)
	s.metrics.IngestionDuration.Observe(result.Duration.Seconds())

	if fatal != nil {
		s.transition(ctx, upload, models.UploadFailed)
		result.Status = models.UploadFailed
		s.logger.Error(ctx, "[INGEST_ABORTED] Ingestion aborted by storage failure", logging.Fields{
			"upload_id": upload.ID,
		}, fatal)
		return result, fatal
	}

	s.transition(ctx, upload, models.UploadCompleted)
	result.Status = models.UploadCompleted

	s.audit(ctx, &models.ActivityLogEntry{
		Username:   req.UploadedBy,
		Action:     models.ActionUpload,
		Module:     models.ModuleDataset,
		EntityType: "dataset_uploads",
		EntityID:   &upload.ID,
		Details: mustJSON(map[string]interface{}{
			"area_point_id": req.AreaPointID,
			"filename":      req.OriginalFilename,
			"row_count":     len(rows),
		}),
		Timestamp: time.Now().UTC(),
	})

	s.logger.Info(ctx, "[INGEST_COMPLETE] Dataset ingestion completed", logging.Fields{
		"upload_id":        upload.ID,
		"row_count":        len(rows),
		"duration_seconds": result.Duration.Seconds(),
	})

	return result, nil
}

// persistBatch writes one domain batch row by row. Returns a non-nil error
// only for fatal storage failures; conflicts and other row-scoped failures
// are recorded in the report.
func (s *IngestionService) persistBatch(ctx context.Context, upload *models.DatasetUpload, domain dataset.Domain, accepted []dataset.TypedRow, report *DomainReport) error {
	for i, row := range accepted {
		err := s.persistRow(ctx, upload, domain, row)

		switch {
		case err == nil:
			report.Persisted++
			s.metrics.RecordRowPersisted(string(domain))
			s.auditRow(ctx, upload, domain, row.Position, "persisted", "")

		case repository.IsConflict(err):
			report.Failed = append(report.Failed, dataset.RowError{
				Position: row.Position,
				Reason:   reasonDuplicateRecord,
			})
			s.metrics.RecordRowConflict(string(domain))
			s.auditRow(ctx, upload, domain, row.Position, "failed", reasonDuplicateRecord)

		case isTransient(err):
			// fatal: abort this and all remaining batches; rows already
			// written stand
			report.Failed = append(report.Failed, dataset.RowError{
				Position: row.Position,
				Reason:   reasonStorageUnavailable,
			})
			s.logger.Error(ctx, "[INGEST_STORAGE_ERROR] Row write hit storage failure", logging.Fields{
				"upload_id": upload.ID,
				"domain":    domain,
				"row":       row.Position,
				"remaining": len(accepted) - i - 1,
			}, err)
			return err

		default:
			report.Failed = append(report.Failed, dataset.RowError{
				Position: row.Position,
				Reason:   err.Error(),
			})
			s.auditRow(ctx, upload, domain, row.Position, "failed", err.Error())
		}
	}

	return nil
}

func (s *IngestionService) persistRow(ctx context.Context, upload *models.DatasetUpload, domain dataset.Domain, row dataset.TypedRow) error {
	switch domain {
	case dataset.DomainEnvironmental:
		record := environmentalFromRow(upload, row)
		if err := record.Validate(); err != nil {
			return err
		}
		return s.repo.CreateEnvironmentalRecord(ctx, record)

	case dataset.DomainPest:
		// one observation per pest-count column; a row carrying both rbb
		// and wsb counts yields two records sharing the same key
		for _, pestType := range []string{models.PestTypeRBB, models.PestTypeWSB} {
			value, ok := row.Numbers[pestType+"_count"]
			if !ok {
				continue
			}
			count := int64(value)
			obs := &models.PestObservation{
				AreaPointID: upload.AreaPointID,
				PestType:    pestType,
				Date:        row.Date,
				Count:       &count,
				CreatedBy:   upload.UploadedBy,
				CreatedAt:   time.Now().UTC(),
			}
			if density, ok := row.Numbers["density"]; ok {
				obs.Density = &density
			}
			if err := obs.Validate(); err != nil {
				return err
			}
			if err := s.repo.CreatePestObservation(ctx, obs); err != nil {
				return err
			}
		}
		return nil

	case dataset.DomainMetadata:
		attributes := make(map[string]interface{}, len(row.Numbers)+len(row.Text))
		for k, v := range row.Numbers {
			attributes[k] = v
		}
		for k, v := range row.Text {
			attributes[k] = v
		}
		return s.repo.CreateDatasetRow(ctx, &models.DatasetRow{
			UploadID:    upload.ID,
			AreaPointID: upload.AreaPointID,
			Date:        row.Date,
			RowNumber:   row.Position,
			Attributes:  mustJSON(attributes),
			CreatedAt:   time.Now().UTC(),
		})

	default:
		return fmt.Errorf("unknown domain: %s", domain)
	}
}

func environmentalFromRow(upload *models.DatasetUpload, row dataset.TypedRow) *models.EnvironmentalRecord {
	record := &models.EnvironmentalRecord{
		AreaPointID: upload.AreaPointID,
		Date:        row.Date,
		Source:      models.SourceManual,
		CreatedBy:   upload.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}

	assign := map[string]**float64{
		"temperature":     &record.Temperature,
		"temperature_min": &record.TemperatureMin,
		"temperature_max": &record.TemperatureMax,
		"humidity":        &record.Humidity,
		"precipitation":   &record.Precipitation,
		"wind_speed":      &record.WindSpeed,
		"solar_radiation": &record.SolarRadiation,
		"soil_moisture":   &record.SoilMoisture,
	}
	for column, target := range assign {
		if value, ok := row.Numbers[column]; ok {
			v := value
			*target = &v
		}
	}

	return record
}

// transition moves an upload through its state machine, logging but not
// failing on an illegal transition
func (s *IngestionService) transition(ctx context.Context, upload *models.DatasetUpload, next models.UploadStatus) {
	if !upload.ProcessingStatus.CanTransitionTo(next) {
		s.logger.Warn(ctx, "[INGEST_STATE] Illegal upload state transition skipped", logging.Fields{
			"upload_id": upload.ID,
			"from":      upload.ProcessingStatus,
			"to":        next,
		})
		return
	}

	if err := s.repo.UpdateUploadStatus(ctx, upload.ID, next); err != nil {
		s.logger.Error(ctx, "[INGEST_STATE_ERROR] Failed to update upload status", logging.Fields{
			"upload_id": upload.ID,
			"to":        next,
		}, err)
		return
	}

	upload.ProcessingStatus = next
}

func (s *IngestionService) storeDomainResult(ctx context.Context, uploadID string, report *DomainReport) {
	var errorDetails *string
	if len(report.Rejected) > 0 || len(report.Failed) > 0 {
		details := string(mustJSON(map[string]interface{}{
			"rejected": report.Rejected,
			"failed":   report.Failed,
		}))
		errorDetails = &details
	}

	domainResult := &models.DatasetDomainResult{
		UploadID:      uploadID,
		Domain:        string(report.Domain),
		RowsAttempted: report.Attempted,
		RowsAccepted:  report.Accepted,
		RowsRejected:  len(report.Rejected),
		RowsPersisted: report.Persisted,
		RowsFailed:    len(report.Failed),
		ErrorDetails:  errorDetails,
		ProcessedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateDomainResult(ctx, domainResult); err != nil {
		s.logger.Error(ctx, "[INGEST_RESULT_ERROR] Failed to store domain result", logging.Fields{
			"upload_id": uploadID,
			"domain":    report.Domain,
		}, err)
	}
}

// auditRow mirrors one row write into the activity log with the row's
// position in the source file
func (s *IngestionService) auditRow(ctx context.Context, upload *models.DatasetUpload, domain dataset.Domain, position int, status, reason string) {
	details := map[string]interface{}{
		"upload_id": upload.ID,
		"row":       position,
		"status":    status,
	}
	if reason != "" {
		details["reason"] = reason
	}

	s.audit(ctx, &models.ActivityLogEntry{
		Username:   upload.UploadedBy,
		Action:     models.ActionImport,
		Module:     moduleFor(domain),
		EntityType: entityTypeFor(domain),
		EntityID:   &upload.AreaPointID,
		Details:    mustJSON(details),
		Timestamp:  time.Now().UTC(),
	})
}

// audit appends an activity log entry, swallowing failures: the audit sink
// must never fail an ingestion run
func (s *IngestionService) audit(ctx context.Context, entry *models.ActivityLogEntry) {
	if err := s.repo.AppendActivity(ctx, entry); err != nil {
		s.logger.Warn(ctx, "[AUDIT_DROPPED] Failed to append activity log entry", logging.Fields{
			"action": entry.Action,
			"module": entry.Module,
			"error":  err.Error(),
		})
	}
}

func moduleFor(domain dataset.Domain) string {
	switch domain {
	case dataset.DomainEnvironmental:
		return models.ModuleEnvironmental
	case dataset.DomainPest:
		return models.ModulePest
	default:
		return models.ModuleDataset
	}
}

func entityTypeFor(domain dataset.Domain) string {
	switch domain {
	case dataset.DomainEnvironmental:
		return "environmental_data"
	case dataset.DomainPest:
		return "pest_records"
	default:
		return "dataset_rows"
	}
}

func isTransient(err error) bool {
	var storageErr *repository.StorageError
	return errors.As(err, &storageErr)
}

func mustJSON(v interface{}) types.JSONText {
	data, err := json.Marshal(v)
	if err != nil {
		return types.JSONText("{}")
	}
	return types.JSONText(data)
}
