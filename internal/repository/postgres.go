package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/database"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
)

// monitoringRepository implements MonitoringRepository on PostgreSQL
type monitoringRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewMonitoringRepository creates a new PostgreSQL-backed repository
func NewMonitoringRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) MonitoringRepository {
	return &monitoringRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateAreaPoint creates a new area point
func (r *monitoringRepository) CreateAreaPoint(ctx context.Context, point *models.AreaPoint) error {
	query := `
		INSERT INTO area_points (
			area_point_id, name, latitude, longitude,
			cluster, municipality, barangay, description,
			is_active, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, "insert_area_point", query,
		point.AreaPointID,
		point.Name,
		point.Latitude,
		point.Longitude,
		point.Cluster,
		point.Municipality,
		point.Barangay,
		point.Description,
		point.IsActive,
		point.CreatedBy,
		point.CreatedAt,
		point.UpdatedAt,
	)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return &ConflictError{Resource: "area_point", Key: point.AreaPointID}
		}
		return &StorageError{Op: "insert_area_point", Err: err}
	}

	r.logger.Debug(ctx, "[REPO_CREATE_AREA_POINT] Area point created", logging.Fields{
		"area_point_id": point.AreaPointID,
	})

	return nil
}

// GetAreaPoint retrieves an area point by its identifier
func (r *monitoringRepository) GetAreaPoint(ctx context.Context, areaPointID string) (*models.AreaPoint, error) {
	query := `
		SELECT area_point_id, name, latitude, longitude,
		       cluster, municipality, barangay, description,
		       is_active, created_by, created_at, updated_at
		FROM area_points
		WHERE area_point_id = $1
	`

	var point models.AreaPoint
	err := r.db.GetContext(ctx, "get_area_point", &point, query, areaPointID)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "area_point", ID: areaPointID}
	}
	if err != nil {
		return nil, &StorageError{Op: "get_area_point", Err: err}
	}

	return &point, nil
}

// ListAreaPoints retrieves area points with filtering and pagination
func (r *monitoringRepository) ListAreaPoints(ctx context.Context, filter AreaPointFilter) ([]*models.AreaPoint, int, error) {
	query := `
		SELECT area_point_id, name, latitude, longitude,
		       cluster, municipality, barangay, description,
		       is_active, created_by, created_at, updated_at
		FROM area_points
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argNum)
		args = append(args, *filter.IsActive)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_area_points", &totalCount, countQuery, args...); err != nil {
		return nil, 0, &StorageError{Op: "count_area_points", Err: err}
	}

	query += " ORDER BY created_at DESC, area_point_id"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var points []*models.AreaPoint
	if err := r.db.SelectContext(ctx, "list_area_points", &points, query, args...); err != nil {
		return nil, 0, &StorageError{Op: "list_area_points", Err: err}
	}

	return points, totalCount, nil
}

// UpdateAreaPoint updates an existing area point
func (r *monitoringRepository) UpdateAreaPoint(ctx context.Context, point *models.AreaPoint) error {
	query := `
		UPDATE area_points
		SET name = $2, latitude = $3, longitude = $4,
		    cluster = $5, municipality = $6, barangay = $7, description = $8,
		    updated_at = $9
		WHERE area_point_id = $1
	`

	result, err := r.db.ExecContext(ctx, "update_area_point", query,
		point.AreaPointID,
		point.Name,
		point.Latitude,
		point.Longitude,
		point.Cluster,
		point.Municipality,
		point.Barangay,
		point.Description,
		point.UpdatedAt,
	)
	if err != nil {
		return &StorageError{Op: "update_area_point", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StorageError{Op: "update_area_point", Err: err}
	}
	if affected == 0 {
		return &NotFoundError{Resource: "area_point", ID: point.AreaPointID}
	}

	return nil
}

// DeactivateAreaPoint soft-deletes an area point. Historical environmental
// and pest records keep referencing it.
func (r *monitoringRepository) DeactivateAreaPoint(ctx context.Context, areaPointID string) error {
	query := `
		UPDATE area_points
		SET is_active = FALSE, updated_at = $2
		WHERE area_point_id = $1 AND is_active = TRUE
	`

	result, err := r.db.ExecContext(ctx, "deactivate_area_point", query, areaPointID, time.Now().UTC())
	if err != nil {
		return &StorageError{Op: "deactivate_area_point", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StorageError{Op: "deactivate_area_point", Err: err}
	}
	if affected == 0 {
		return &NotFoundError{Resource: "area_point", ID: areaPointID}
	}

	return nil
}

// AreaPointExistsActive reports whether an area point exists and is active
func (r *monitoringRepository) AreaPointExistsActive(ctx context.Context, areaPointID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM area_points WHERE area_point_id = $1 AND is_active = TRUE)`

	var exists bool
	if err := r.db.GetContext(ctx, "area_point_exists_active", &exists, query, areaPointID); err != nil {
		return false, &StorageError{Op: "area_point_exists_active", Err: err}
	}

	return exists, nil
}

// CreateEnvironmentalRecord inserts one environmental record. The
// (area_point_id, date, source) uniqueness constraint is enforced by the
// store; a violation surfaces as a ConflictError.
func (r *monitoringRepository) CreateEnvironmentalRecord(ctx context.Context, record *models.EnvironmentalRecord) error {
	query := `
		INSERT INTO environmental_data (
			area_point_id, date, source,
			temperature, temperature_min, temperature_max,
			humidity, precipitation, wind_speed, solar_radiation, soil_moisture,
			created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		record.AreaPointID,
		record.Date,
		record.Source,
		record.Temperature,
		record.TemperatureMin,
		record.TemperatureMax,
		record.Humidity,
		record.Precipitation,
		record.WindSpeed,
		record.SolarRadiation,
		record.SoilMoisture,
		record.CreatedBy,
		record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return &ConflictError{
				Resource: "environmental_record",
				Key:      fmt.Sprintf("%s:%s:%s", record.AreaPointID, record.Date.Format("2006-01-02"), record.Source),
			}
		}
		return &StorageError{Op: "insert_environmental_record", Err: err}
	}

	return nil
}

// ListEnvironmentalRecords retrieves environmental records with filtering
func (r *monitoringRepository) ListEnvironmentalRecords(ctx context.Context, filter EnvironmentalFilter) ([]*models.EnvironmentalRecord, int, error) {
	query := `
		SELECT id, area_point_id, date, source,
		       temperature, temperature_min, temperature_max,
		       humidity, precipitation, wind_speed, solar_radiation, soil_moisture,
		       created_by, created_at
		FROM environmental_data
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.AreaPointID != nil {
		query += fmt.Sprintf(" AND area_point_id = $%d", argNum)
		args = append(args, *filter.AreaPointID)
		argNum++
	}
	if filter.Source != nil {
		query += fmt.Sprintf(" AND source = $%d", argNum)
		args = append(args, *filter.Source)
		argNum++
	}
	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argNum)
		args = append(args, *filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argNum)
		args = append(args, *filter.EndDate)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_environmental", &totalCount, countQuery, args...); err != nil {
		return nil, 0, &StorageError{Op: "count_environmental", Err: err}
	}

	query += " ORDER BY date DESC, area_point_id, source"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var records []*models.EnvironmentalRecord
	if err := r.db.SelectContext(ctx, "list_environmental", &records, query, args...); err != nil {
		return nil, 0, &StorageError{Op: "list_environmental", Err: err}
	}

	return records, totalCount, nil
}

// CreatePestObservation inserts one pest observation
func (r *monitoringRepository) CreatePestObservation(ctx context.Context, obs *models.PestObservation) error {
	query := `
		INSERT INTO pest_records (
			area_point_id, pest_type, date, count, density,
			notes, image_path, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		obs.AreaPointID,
		obs.PestType,
		obs.Date,
		obs.Count,
		obs.Density,
		obs.Notes,
		obs.ImagePath,
		obs.CreatedBy,
		obs.CreatedAt,
	).Scan(&obs.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return &ConflictError{
				Resource: "pest_observation",
				Key:      fmt.Sprintf("%s:%s:%s", obs.AreaPointID, obs.Date.Format("2006-01-02"), obs.PestType),
			}
		}
		return &StorageError{Op: "insert_pest_observation", Err: err}
	}

	return nil
}

// ListPestObservations retrieves pest observations with filtering
func (r *monitoringRepository) ListPestObservations(ctx context.Context, filter PestFilter) ([]*models.PestObservation, int, error) {
	query := `
		SELECT id, area_point_id, pest_type, date, count, density,
		       notes, image_path, created_by, created_at
		FROM pest_records
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.AreaPointID != nil {
		query += fmt.Sprintf(" AND area_point_id = $%d", argNum)
		args = append(args, *filter.AreaPointID)
		argNum++
	}
	if filter.PestType != nil {
		query += fmt.Sprintf(" AND pest_type = $%d", argNum)
		args = append(args, *filter.PestType)
		argNum++
	}
	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argNum)
		args = append(args, *filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argNum)
		args = append(args, *filter.EndDate)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_pests", &totalCount, countQuery, args...); err != nil {
		return nil, 0, &StorageError{Op: "count_pests", Err: err}
	}

	query += " ORDER BY date DESC, area_point_id, pest_type"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var observations []*models.PestObservation
	if err := r.db.SelectContext(ctx, "list_pests", &observations, query, args...); err != nil {
		return nil, 0, &StorageError{Op: "list_pests", Err: err}
	}

	return observations, totalCount, nil
}

// UpdatePestObservation updates an existing pest observation
func (r *monitoringRepository) UpdatePestObservation(ctx context.Context, obs *models.PestObservation) error {
	query := `
		UPDATE pest_records
		SET area_point_id = $2, pest_type = $3, date = $4,
		    count = $5, density = $6, notes = $7, image_path = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, "update_pest_observation", query,
		obs.ID,
		obs.AreaPointID,
		obs.PestType,
		obs.Date,
		obs.Count,
		obs.Density,
		obs.Notes,
		obs.ImagePath,
	)
	if err != nil {
		return &StorageError{Op: "update_pest_observation", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StorageError{Op: "update_pest_observation", Err: err}
	}
	if affected == 0 {
		return &NotFoundError{Resource: "pest_observation", ID: fmt.Sprintf("%d", obs.ID)}
	}

	return nil
}

// DeletePestObservation deletes a pest observation by id
func (r *monitoringRepository) DeletePestObservation(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "delete_pest_observation",
		`DELETE FROM pest_records WHERE id = $1`, id)
	if err != nil {
		return &StorageError{Op: "delete_pest_observation", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StorageError{Op: "delete_pest_observation", Err: err}
	}
	if affected == 0 {
		return &NotFoundError{Resource: "pest_observation", ID: fmt.Sprintf("%d", id)}
	}

	return nil
}

// CreateUpload creates a dataset upload record
func (r *monitoringRepository) CreateUpload(ctx context.Context, upload *models.DatasetUpload) error {
	query := `
		INSERT INTO dataset_uploads (
			id, filename, original_filename, area_point_id, uploaded_by,
			row_count, file_size, columns_detected, processing_status,
			uploaded_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, "insert_upload", query,
		upload.ID,
		upload.Filename,
		upload.OriginalFilename,
		upload.AreaPointID,
		upload.UploadedBy,
		upload.RowCount,
		upload.FileSize,
		upload.ColumnsDetected,
		upload.ProcessingStatus,
		upload.UploadedAt,
		upload.UpdatedAt,
	)
	if err != nil {
		return &StorageError{Op: "insert_upload", Err: err}
	}

	return nil
}

// UpdateUploadStatus moves an upload through its state machine
func (r *monitoringRepository) UpdateUploadStatus(ctx context.Context, uploadID string, status models.UploadStatus) error {
	query := `
		UPDATE dataset_uploads
		SET processing_status = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, "update_upload_status", query, uploadID, status, time.Now().UTC())
	if err != nil {
		return &StorageError{Op: "update_upload_status", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return &StorageError{Op: "update_upload_status", Err: err}
	}
	if affected == 0 {
		return &NotFoundError{Resource: "dataset_upload", ID: uploadID}
	}

	return nil
}

// ListUploads retrieves dataset uploads with filtering
func (r *monitoringRepository) ListUploads(ctx context.Context, filter UploadFilter) ([]*models.DatasetUpload, int, error) {
	query := `
		SELECT id, filename, original_filename, area_point_id, uploaded_by,
		       row_count, file_size, columns_detected, processing_status,
		       uploaded_at, updated_at
		FROM dataset_uploads
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.AreaPointID != nil {
		query += fmt.Sprintf(" AND area_point_id = $%d", argNum)
		args = append(args, *filter.AreaPointID)
		argNum++
	}
	if filter.UploadedBy != nil {
		query += fmt.Sprintf(" AND uploaded_by = $%d", argNum)
		args = append(args, *filter.UploadedBy)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_uploads", &totalCount, countQuery, args...); err != nil {
		return nil, 0, &StorageError{Op: "count_uploads", Err: err}
	}

	query += " ORDER BY uploaded_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var uploads []*models.DatasetUpload
	if err := r.db.SelectContext(ctx, "list_uploads", &uploads, query, args...); err != nil {
		return nil, 0, &StorageError{Op: "list_uploads", Err: err}
	}

	return uploads, totalCount, nil
}

// CreateDomainResult persists the per-domain accounting row for an upload
func (r *monitoringRepository) CreateDomainResult(ctx context.Context, domainResult *models.DatasetDomainResult) error {
	query := `
		INSERT INTO dataset_domain_results (
			upload_id, domain, rows_attempted, rows_accepted, rows_rejected,
			rows_persisted, rows_failed, error_details, processed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		domainResult.UploadID,
		domainResult.Domain,
		domainResult.RowsAttempted,
		domainResult.RowsAccepted,
		domainResult.RowsRejected,
		domainResult.RowsPersisted,
		domainResult.RowsFailed,
		domainResult.ErrorDetails,
		domainResult.ProcessedAt,
	).Scan(&domainResult.ID)
	if err != nil {
		return &StorageError{Op: "insert_domain_result", Err: err}
	}

	return nil
}

// CreateDatasetRow persists one metadata-domain row
func (r *monitoringRepository) CreateDatasetRow(ctx context.Context, row *models.DatasetRow) error {
	query := `
		INSERT INTO dataset_rows (
			upload_id, area_point_id, date, row_number, attributes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		row.UploadID,
		row.AreaPointID,
		row.Date,
		row.RowNumber,
		row.Attributes,
		row.CreatedAt,
	).Scan(&row.ID)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return &ConflictError{
				Resource: "dataset_row",
				Key:      fmt.Sprintf("%s:%d", row.UploadID, row.RowNumber),
			}
		}
		return &StorageError{Op: "insert_dataset_row", Err: err}
	}

	return nil
}

// AppendActivity appends an audit record. Enum values are validated before
// touching the store.
func (r *monitoringRepository) AppendActivity(ctx context.Context, entry *models.ActivityLogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO activity_logs (
			username, action, module, entity_type, entity_id,
			details, ip_address, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		entry.Username,
		entry.Action,
		entry.Module,
		entry.EntityType,
		entry.EntityID,
		entry.Details,
		entry.IPAddress,
		entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return &StorageError{Op: "insert_activity_log", Err: err}
	}

	return nil
}

// ListActivity retrieves audit records, most recent first
func (r *monitoringRepository) ListActivity(ctx context.Context, filter ActivityFilter) ([]*models.ActivityLogEntry, error) {
	query := `
		SELECT id, username, action, module, entity_type, entity_id,
		       details, ip_address, timestamp
		FROM activity_logs
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.Username != nil {
		query += fmt.Sprintf(" AND username = $%d", argNum)
		args = append(args, *filter.Username)
		argNum++
	}
	if filter.Module != nil {
		query += fmt.Sprintf(" AND module = $%d", argNum)
		args = append(args, *filter.Module)
		argNum++
	}
	if filter.Action != nil {
		query += fmt.Sprintf(" AND action = $%d", argNum)
		args = append(args, *filter.Action)
		argNum++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", argNum)
	args = append(args, limit)

	var entries []*models.ActivityLogEntry
	if err := r.db.SelectContext(ctx, "list_activity", &entries, query, args...); err != nil {
		return nil, &StorageError{Op: "list_activity", Err: err}
	}

	return entries, nil
}

// PestSummary calculates descriptive pest statistics store-side
func (r *monitoringRepository) PestSummary(ctx context.Context, filter PestFilter) (*models.PestSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total_observations,
			COALESCE(SUM(count) FILTER (WHERE pest_type = 'rbb'), 0) AS rbb_total,
			AVG(count) FILTER (WHERE pest_type = 'rbb') AS rbb_avg,
			MAX(count) FILTER (WHERE pest_type = 'rbb') AS rbb_max,
			COALESCE(SUM(count) FILTER (WHERE pest_type = 'wsb'), 0) AS wsb_total,
			AVG(count) FILTER (WHERE pest_type = 'wsb') AS wsb_avg,
			MAX(count) FILTER (WHERE pest_type = 'wsb') AS wsb_max,
			MIN(date) AS first_date,
			MAX(date) AS last_date
		FROM pest_records
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.AreaPointID != nil {
		query += fmt.Sprintf(" AND area_point_id = $%d", argNum)
		args = append(args, *filter.AreaPointID)
		argNum++
	}
	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argNum)
		args = append(args, *filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date <= $%d", argNum)
		args = append(args, *filter.EndDate)
		argNum++
	}

	var summary models.PestSummary
	if err := r.db.GetContext(ctx, "pest_summary", &summary, query, args...); err != nil {
		return nil, &StorageError{Op: "pest_summary", Err: err}
	}

	return &summary, nil
}

// TemporalAggregates combines per-period pest sums with environmental means.
// groupBy is "month" or "year".
func (r *monitoringRepository) TemporalAggregates(ctx context.Context, groupBy string, areaPointID *string) ([]*models.TemporalAggregate, error) {
	format := "YYYY-MM"
	if groupBy == "year" {
		format = "YYYY"
	}

	areaClause := ""
	args := []interface{}{format}
	if areaPointID != nil {
		areaClause = " WHERE area_point_id = $2"
		args = append(args, *areaPointID)
	}

	query := fmt.Sprintf(`
		WITH pest AS (
			SELECT to_char(date, $1) AS period,
			       COALESCE(SUM(count) FILTER (WHERE pest_type = 'rbb'), 0) AS rbb_total,
			       COALESCE(SUM(count) FILTER (WHERE pest_type = 'wsb'), 0) AS wsb_total
			FROM pest_records%s
			GROUP BY 1
		), env AS (
			SELECT to_char(date, $1) AS period,
			       AVG(temperature) AS avg_temperature,
			       AVG(humidity) AS avg_humidity,
			       SUM(precipitation) AS total_precipitation
			FROM environmental_data%s
			GROUP BY 1
		)
		SELECT COALESCE(p.period, e.period) AS period,
		       COALESCE(p.rbb_total, 0) AS rbb_total,
		       COALESCE(p.wsb_total, 0) AS wsb_total,
		       e.avg_temperature,
		       e.avg_humidity,
		       e.total_precipitation
		FROM pest p
		FULL OUTER JOIN env e USING (period)
		ORDER BY period
	`, areaClause, areaClause)

	var aggregates []*models.TemporalAggregate
	if err := r.db.SelectContext(ctx, "temporal_aggregates", &aggregates, query, args...); err != nil {
		return nil, &StorageError{Op: "temporal_aggregates", Err: err}
	}

	return aggregates, nil
}

// HealthCheck performs a repository health check
func (r *monitoringRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
