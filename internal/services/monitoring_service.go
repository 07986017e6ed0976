package services

import (
	"context"
	"fmt"
	"time"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
)

// MonitoringService implements the CRUD surface over area points,
// environmental records, and pest observations. Every mutation is mirrored
// into the activity log under the caller's username.
type MonitoringService struct {
	repo    repository.MonitoringRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewMonitoringService creates a new monitoring service
func NewMonitoringService(repo repository.MonitoringRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *MonitoringService {
	return &MonitoringService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateAreaPoint registers a new monitoring site
func (s *MonitoringService) CreateAreaPoint(ctx context.Context, point *models.AreaPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}

	point.IsActive = true
	point.CreatedAt = time.Now().UTC()
	point.UpdatedAt = point.CreatedAt

	if err := s.repo.CreateAreaPoint(ctx, point); err != nil {
		return err
	}

	s.logger.Info(ctx, "[AREA_POINT_CREATED] Area point registered", logging.Fields{
		"area_point_id": point.AreaPointID,
		"name":          point.Name,
	})

	s.audit(ctx, models.ActionCreate, models.ModuleAreaPoint, "area_points", point.AreaPointID, map[string]interface{}{
		"name":      point.Name,
		"latitude":  point.Latitude,
		"longitude": point.Longitude,
	})

	return nil
}

// GetAreaPoint returns one area point by its identifier
func (s *MonitoringService) GetAreaPoint(ctx context.Context, areaPointID string) (*models.AreaPoint, error) {
	return s.repo.GetAreaPoint(ctx, areaPointID)
}

// ListAreaPoints returns area points matching the filter plus the total count
func (s *MonitoringService) ListAreaPoints(ctx context.Context, filter repository.AreaPointFilter) ([]*models.AreaPoint, int, error) {
	return s.repo.ListAreaPoints(ctx, filter)
}

// UpdateAreaPoint replaces the mutable attributes of an area point
func (s *MonitoringService) UpdateAreaPoint(ctx context.Context, point *models.AreaPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}

	point.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateAreaPoint(ctx, point); err != nil {
		return err
	}

	s.audit(ctx, models.ActionUpdate, models.ModuleAreaPoint, "area_points", point.AreaPointID, map[string]interface{}{
		"name": point.Name,
	})

	return nil
}

// DeactivateAreaPoint soft-deletes a site. Its historical records remain;
// new records and uploads referencing it are rejected.
func (s *MonitoringService) DeactivateAreaPoint(ctx context.Context, areaPointID string) error {
	if err := s.repo.DeactivateAreaPoint(ctx, areaPointID); err != nil {
		return err
	}

	s.logger.Info(ctx, "[AREA_POINT_DEACTIVATED] Area point deactivated", logging.Fields{
		"area_point_id": areaPointID,
	})

	s.audit(ctx, models.ActionDelete, models.ModuleAreaPoint, "area_points", areaPointID, nil)

	return nil
}

// CreateEnvironmentalRecord stores one day of readings for an active area
// point. The (area point, date, source) key is unique; a duplicate surfaces
// as a conflict.
func (s *MonitoringService) CreateEnvironmentalRecord(ctx context.Context, record *models.EnvironmentalRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	exists, err := s.repo.AreaPointExistsActive(ctx, record.AreaPointID)
	if err != nil {
		return err
	}
	if !exists {
		return &models.MissingAreaPointError{AreaPointID: record.AreaPointID}
	}

	record.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateEnvironmentalRecord(ctx, record); err != nil {
		return err
	}

	s.audit(ctx, models.ActionCreate, models.ModuleEnvironmental, "environmental_data", record.AreaPointID, map[string]interface{}{
		"date":   record.Date.Format("2006-01-02"),
		"source": record.Source,
	})

	return nil
}

// ListEnvironmentalRecords returns readings matching the filter plus the
// total count
func (s *MonitoringService) ListEnvironmentalRecords(ctx context.Context, filter repository.EnvironmentalFilter) ([]*models.EnvironmentalRecord, int, error) {
	return s.repo.ListEnvironmentalRecords(ctx, filter)
}

// CreatePestObservation stores one pest sighting for an active area point
func (s *MonitoringService) CreatePestObservation(ctx context.Context, obs *models.PestObservation) error {
	if err := obs.Validate(); err != nil {
		return err
	}

	exists, err := s.repo.AreaPointExistsActive(ctx, obs.AreaPointID)
	if err != nil {
		return err
	}
	if !exists {
		return &models.MissingAreaPointError{AreaPointID: obs.AreaPointID}
	}

	obs.CreatedAt = time.Now().UTC()

	if err := s.repo.CreatePestObservation(ctx, obs); err != nil {
		return err
	}

	s.audit(ctx, models.ActionCreate, models.ModulePest, "pest_records", obs.AreaPointID, map[string]interface{}{
		"pest_type": obs.PestType,
		"date":      obs.Date.Format("2006-01-02"),
	})

	return nil
}

// ListPestObservations returns observations matching the filter plus the
// total count
func (s *MonitoringService) ListPestObservations(ctx context.Context, filter repository.PestFilter) ([]*models.PestObservation, int, error) {
	return s.repo.ListPestObservations(ctx, filter)
}

// UpdatePestObservation replaces the mutable attributes of an observation
func (s *MonitoringService) UpdatePestObservation(ctx context.Context, obs *models.PestObservation) error {
	if err := obs.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpdatePestObservation(ctx, obs); err != nil {
		return err
	}

	s.audit(ctx, models.ActionUpdate, models.ModulePest, "pest_records", fmt.Sprintf("%d", obs.ID), nil)

	return nil
}

// DeletePestObservation removes one observation by id
func (s *MonitoringService) DeletePestObservation(ctx context.Context, id int64) error {
	if err := s.repo.DeletePestObservation(ctx, id); err != nil {
		return err
	}

	s.audit(ctx, models.ActionDelete, models.ModulePest, "pest_records", fmt.Sprintf("%d", id), nil)

	return nil
}

// ListUploads returns dataset uploads matching the filter plus the total
// count
func (s *MonitoringService) ListUploads(ctx context.Context, filter repository.UploadFilter) ([]*models.DatasetUpload, int, error) {
	return s.repo.ListUploads(ctx, filter)
}

// ListActivity returns the most recent activity log entries matching the
// filter
func (s *MonitoringService) ListActivity(ctx context.Context, filter repository.ActivityFilter) ([]*models.ActivityLogEntry, error) {
	return s.repo.ListActivity(ctx, filter)
}

// HealthCheck verifies the storage backend is reachable
func (s *MonitoringService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *MonitoringService) audit(ctx context.Context, action, module, entityType, entityID string, details map[string]interface{}) {
	entry := &models.ActivityLogEntry{
		Username:   logging.UsernameFromContext(ctx),
		Action:     action,
		Module:     module,
		EntityType: entityType,
		EntityID:   &entityID,
		Timestamp:  time.Now().UTC(),
	}
	if details != nil {
		entry.Details = mustJSON(details)
	}

	if err := s.repo.AppendActivity(ctx, entry); err != nil {
		s.logger.Warn(ctx, "[AUDIT_DROPPED] Failed to append activity log entry", logging.Fields{
			"action": action,
			"module": module,
			"error":  err.Error(),
		})
	}
}
