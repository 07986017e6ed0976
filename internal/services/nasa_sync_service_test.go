package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/nasapower"
)

type fakeWeatherSource struct {
	readings []nasapower.DailyReading
	err      error
}

func (f *fakeWeatherSource) FetchDaily(ctx context.Context, latitude, longitude float64, start, end time.Time) ([]nasapower.DailyReading, error) {
	return f.readings, f.err
}

func floatPtr(v float64) *float64 { return &v }

func TestSyncAreaPoint_PersistsReadings(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	source := &fakeWeatherSource{
		readings: []nasapower.DailyReading{
			{Date: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Temperature: floatPtr(28.1), Humidity: floatPtr(80)},
			{Date: time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC), Temperature: floatPtr(28.9)},
		},
	}
	svc := NewNASASyncService(repo, source, logging.NewNop(), newTestCollector())

	result, err := svc.SyncAreaPoint(context.Background(), "AP-001",
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Persisted)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, repo.envRecords, 2)
	assert.Equal(t, models.SourceNASAPower, repo.envRecords[0].Source)
}

func TestSyncAreaPoint_SkipsDaysAlreadyOnRecord(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	repo.envKeys[envKey("AP-001", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), models.SourceNASAPower)] = true
	source := &fakeWeatherSource{
		readings: []nasapower.DailyReading{
			{Date: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), Temperature: floatPtr(28.1)},
			{Date: time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC), Temperature: floatPtr(28.9)},
		},
	}
	svc := NewNASASyncService(repo, source, logging.NewNop(), newTestCollector())

	result, err := svc.SyncAreaPoint(context.Background(), "AP-001",
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Persisted)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, repo.envRecords, 1)
}

func TestSyncAreaPoint_InactiveAreaPoint(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = false
	svc := NewNASASyncService(repo, &fakeWeatherSource{}, logging.NewNop(), newTestCollector())

	_, err := svc.SyncAreaPoint(context.Background(), "AP-001",
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC))

	var missing *models.MissingAreaPointError
	require.ErrorAs(t, err, &missing)
	assert.Empty(t, repo.envRecords)
}
