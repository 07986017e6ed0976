package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
)

func newTestMonitoring(repo *fakeRepo) *MonitoringService {
	return NewMonitoringService(repo, logging.NewNop(), newTestCollector())
}

func TestCreateAreaPoint_AuditsWithCallerUsername(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestMonitoring(repo)

	ctx := logging.WithUsername(context.Background(), "agronomist1")
	err := svc.CreateAreaPoint(ctx, &models.AreaPoint{
		AreaPointID: "AP-001",
		Name:        "Barangay Libertad Paddy 3",
		Latitude:    8.157,
		Longitude:   124.214,
		CreatedBy:   "agronomist1",
	})
	require.NoError(t, err)

	assert.True(t, repo.areaPoints["AP-001"])

	require.Len(t, repo.activity, 1)
	entry := repo.activity[0]
	assert.Equal(t, "agronomist1", entry.Username)
	assert.Equal(t, models.ActionCreate, entry.Action)
	assert.Equal(t, models.ModuleAreaPoint, entry.Module)
}

func TestCreateAreaPoint_RejectsInvalidCoordinates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestMonitoring(repo)

	err := svc.CreateAreaPoint(context.Background(), &models.AreaPoint{
		AreaPointID: "AP-002",
		Name:        "Bad point",
		Latitude:    91,
		Longitude:   0,
		CreatedBy:   "x",
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "latitude", validationErr.Field)
	assert.Empty(t, repo.activity)
}

func TestCreateEnvironmentalRecord_RequiresActiveAreaPoint(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = false
	svc := newTestMonitoring(repo)

	temp := 28.4
	err := svc.CreateEnvironmentalRecord(context.Background(), &models.EnvironmentalRecord{
		AreaPointID: "AP-001",
		Date:        time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Source:      models.SourceManual,
		Temperature: &temp,
		CreatedBy:   "x",
	})

	var missing *models.MissingAreaPointError
	require.ErrorAs(t, err, &missing)
	assert.Empty(t, repo.envRecords)
}

func TestCreatePestObservation_AuditsCreate(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestMonitoring(repo)

	count := int64(7)
	err := svc.CreatePestObservation(context.Background(), &models.PestObservation{
		AreaPointID: "AP-001",
		PestType:    models.PestTypeRBB,
		Date:        time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Count:       &count,
		CreatedBy:   "x",
	})
	require.NoError(t, err)

	require.Len(t, repo.pests, 1)
	require.Len(t, repo.activity, 1)
	assert.Equal(t, models.ModulePest, repo.activity[0].Module)
	// no username in context falls back to the system user
	assert.Equal(t, "system", repo.activity[0].Username)
}

func TestCreatePestObservation_RejectsUnknownPestType(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestMonitoring(repo)

	count := int64(7)
	err := svc.CreatePestObservation(context.Background(), &models.PestObservation{
		AreaPointID: "AP-001",
		PestType:    "locust",
		Date:        time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Count:       &count,
		CreatedBy:   "x",
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, repo.pests)
}

func TestDeactivateAreaPoint_SoftDelete(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestMonitoring(repo)

	require.NoError(t, svc.DeactivateAreaPoint(context.Background(), "AP-001"))

	assert.False(t, repo.areaPoints["AP-001"])
	require.Len(t, repo.activity, 1)
	assert.Equal(t, models.ActionDelete, repo.activity[0].Action)
}
