package services

import (
	"context"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
)

// Temporal grouping periods for aggregate queries
const (
	GroupByMonth = "month"
	GroupByYear  = "year"
)

// StatisticsService computes read-only summaries over the stored pest and
// environmental data
type StatisticsService struct {
	repo   repository.MonitoringRepository
	logger *logging.StructuredLogger
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(repo repository.MonitoringRepository, logger *logging.StructuredLogger) *StatisticsService {
	return &StatisticsService{
		repo:   repo,
		logger: logger,
	}
}

// PestSummary returns totals, averages, and peaks per pest type for the
// observations matching the filter
func (s *StatisticsService) PestSummary(ctx context.Context, filter repository.PestFilter) (*models.PestSummary, error) {
	return s.repo.PestSummary(ctx, filter)
}

// TemporalAggregates returns pest counts joined with average environmental
// conditions, grouped by month or year. areaPointID nil means all sites.
func (s *StatisticsService) TemporalAggregates(ctx context.Context, groupBy string, areaPointID *string) ([]*models.TemporalAggregate, error) {
	if groupBy != GroupByMonth && groupBy != GroupByYear {
		return nil, &models.ValidationError{
			Field:   "group_by",
			Value:   groupBy,
			Message: "group_by must be month or year",
		}
	}
	return s.repo.TemporalAggregates(ctx, groupBy, areaPointID)
}
