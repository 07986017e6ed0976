package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markMSUIIT/riceprotek-web-app/internal/dataset"
	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
)

// fakeRepo is an in-memory MonitoringRepository for pipeline tests
type fakeRepo struct {
	areaPoints    map[string]bool
	envRecords    []*models.EnvironmentalRecord
	envKeys       map[string]bool
	pests         []*models.PestObservation
	uploads       map[string]*models.DatasetUpload
	domainResults []*models.DatasetDomainResult
	datasetRows   []*models.DatasetRow
	activity      []*models.ActivityLogEntry

	envInserts   int
	failEnvAfter int // fail the Nth environmental insert with a storage error
	auditErr     error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		areaPoints: map[string]bool{},
		envKeys:    map[string]bool{},
		uploads:    map[string]*models.DatasetUpload{},
	}
}

func envKey(areaPointID string, date time.Time, source string) string {
	return fmt.Sprintf("%s|%s|%s", areaPointID, date.Format("2006-01-02"), source)
}

func (f *fakeRepo) CreateAreaPoint(ctx context.Context, point *models.AreaPoint) error {
	f.areaPoints[point.AreaPointID] = point.IsActive
	return nil
}

func (f *fakeRepo) GetAreaPoint(ctx context.Context, areaPointID string) (*models.AreaPoint, error) {
	active, ok := f.areaPoints[areaPointID]
	if !ok {
		return nil, &repository.NotFoundError{Resource: "area point", ID: areaPointID}
	}
	return &models.AreaPoint{AreaPointID: areaPointID, IsActive: active, Latitude: 8.1, Longitude: 124.2}, nil
}

func (f *fakeRepo) ListAreaPoints(ctx context.Context, filter repository.AreaPointFilter) ([]*models.AreaPoint, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) UpdateAreaPoint(ctx context.Context, point *models.AreaPoint) error { return nil }

func (f *fakeRepo) DeactivateAreaPoint(ctx context.Context, areaPointID string) error {
	f.areaPoints[areaPointID] = false
	return nil
}

func (f *fakeRepo) AreaPointExistsActive(ctx context.Context, areaPointID string) (bool, error) {
	return f.areaPoints[areaPointID], nil
}

func (f *fakeRepo) CreateEnvironmentalRecord(ctx context.Context, record *models.EnvironmentalRecord) error {
	f.envInserts++
	if f.failEnvAfter > 0 && f.envInserts >= f.failEnvAfter {
		return &repository.StorageError{Op: "create environmental record", Err: errors.New("connection reset")}
	}

	key := envKey(record.AreaPointID, record.Date, record.Source)
	if f.envKeys[key] {
		return &repository.ConflictError{Resource: "environmental record", Key: key}
	}
	f.envKeys[key] = true
	f.envRecords = append(f.envRecords, record)
	return nil
}

func (f *fakeRepo) ListEnvironmentalRecords(ctx context.Context, filter repository.EnvironmentalFilter) ([]*models.EnvironmentalRecord, int, error) {
	return f.envRecords, len(f.envRecords), nil
}

func (f *fakeRepo) CreatePestObservation(ctx context.Context, obs *models.PestObservation) error {
	f.pests = append(f.pests, obs)
	return nil
}

func (f *fakeRepo) ListPestObservations(ctx context.Context, filter repository.PestFilter) ([]*models.PestObservation, int, error) {
	return f.pests, len(f.pests), nil
}

func (f *fakeRepo) UpdatePestObservation(ctx context.Context, obs *models.PestObservation) error {
	return nil
}

func (f *fakeRepo) DeletePestObservation(ctx context.Context, id int64) error { return nil }

func (f *fakeRepo) CreateUpload(ctx context.Context, upload *models.DatasetUpload) error {
	f.uploads[upload.ID] = upload
	return nil
}

func (f *fakeRepo) UpdateUploadStatus(ctx context.Context, uploadID string, status models.UploadStatus) error {
	if u, ok := f.uploads[uploadID]; ok {
		u.ProcessingStatus = status
	}
	return nil
}

func (f *fakeRepo) ListUploads(ctx context.Context, filter repository.UploadFilter) ([]*models.DatasetUpload, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) CreateDomainResult(ctx context.Context, result *models.DatasetDomainResult) error {
	f.domainResults = append(f.domainResults, result)
	return nil
}

func (f *fakeRepo) CreateDatasetRow(ctx context.Context, row *models.DatasetRow) error {
	f.datasetRows = append(f.datasetRows, row)
	return nil
}

func (f *fakeRepo) AppendActivity(ctx context.Context, entry *models.ActivityLogEntry) error {
	if f.auditErr != nil {
		return f.auditErr
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	f.activity = append(f.activity, entry)
	return nil
}

func (f *fakeRepo) ListActivity(ctx context.Context, filter repository.ActivityFilter) ([]*models.ActivityLogEntry, error) {
	return f.activity, nil
}

func (f *fakeRepo) PestSummary(ctx context.Context, filter repository.PestFilter) (*models.PestSummary, error) {
	return &models.PestSummary{}, nil
}

func (f *fakeRepo) TemporalAggregates(ctx context.Context, groupBy string, areaPointID *string) ([]*models.TemporalAggregate, error) {
	return nil, nil
}

func (f *fakeRepo) HealthCheck(ctx context.Context) error { return nil }

// the collector registers in the global prometheus registry, so every test
// needs its own namespace
var collectorSeq atomic.Int64

func newTestCollector() *metrics.Collector {
	return metrics.NewCollector(fmt.Sprintf("test_%d", collectorSeq.Add(1)))
}

func newTestIngestion(repo repository.MonitoringRepository) *IngestionService {
	return NewIngestionService(repo, logging.NewNop(), newTestCollector())
}

func uploadRequest(csv string) UploadRequest {
	return UploadRequest{
		OriginalFilename: "field_data.csv",
		AreaPointID:      "AP-001",
		UploadedBy:       "encoder1",
		FileSize:         int64(len(csv)),
		Data:             strings.NewReader(csv),
	}
}

func reportFor(t *testing.T, result *IngestResult, domain dataset.Domain) *DomainReport {
	t.Helper()
	for _, r := range result.Reports {
		if r.Domain == domain {
			return r
		}
	}
	t.Fatalf("no report for domain %s", domain)
	return nil
}

func TestProcessUpload_HappyPath(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestIngestion(repo)

	csv := strings.Join([]string{
		"Year,Month,Day,T2M,RH2M,RBB,WSB,Week No",
		"2023,6,1,28.4,81,5,2,22",
		"2023,6,2,29.0,78,0,,22",
		"2023,6,3,,,3,1,22",
	}, "\n")

	result, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.NoError(t, err)

	assert.Equal(t, models.UploadCompleted, result.Status)
	assert.Equal(t, 3, result.RowCount)

	env := reportFor(t, result, dataset.DomainEnvironmental)
	assert.Equal(t, 2, env.Attempted)
	assert.Equal(t, 2, env.Persisted)
	assert.Empty(t, env.Rejected)
	assert.Empty(t, env.Failed)

	pest := reportFor(t, result, dataset.DomainPest)
	assert.Equal(t, 3, pest.Attempted)
	assert.Equal(t, 3, pest.Persisted)

	meta := reportFor(t, result, dataset.DomainMetadata)
	assert.Equal(t, 3, meta.Attempted)
	assert.Equal(t, 3, meta.Persisted)

	// row 1 carries both pest counts, rows 2 and 3 contribute two and
	// one counted columns respectively; zero counts persist
	require.Len(t, repo.pests, 5)
	var zeroCount int
	for _, p := range repo.pests {
		require.NotNil(t, p.Count)
		if *p.Count == 0 {
			zeroCount++
		}
	}
	assert.Equal(t, 1, zeroCount, "a zero pest count is a real observation")

	require.Len(t, repo.envRecords, 2)
	assert.Equal(t, models.SourceManual, repo.envRecords[0].Source)

	assert.Len(t, repo.datasetRows, 3)
	assert.Len(t, repo.domainResults, 3)

	upload := repo.uploads[result.UploadID]
	require.NotNil(t, upload)
	assert.Equal(t, models.UploadCompleted, upload.ProcessingStatus)
}

func TestProcessUpload_AccountingInvariants(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestIngestion(repo)

	csv := strings.Join([]string{
		"year,month,day,temperature,rbb_count",
		"2023,6,1,28.4,4",
		"2023,13,1,28.0,2", // bad month rejects in every domain
		"2023,6,3,oops,1",  // rejects in environmental only
	}, "\n")

	result, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.NoError(t, err)

	for _, report := range result.Reports {
		assert.Equal(t, report.Attempted, report.Accepted+len(report.Rejected),
			"attempted = accepted + rejected for %s", report.Domain)
		assert.Equal(t, report.Accepted, report.Persisted+len(report.Failed),
			"accepted = persisted + failed for %s", report.Domain)
	}

	env := reportFor(t, result, dataset.DomainEnvironmental)
	assert.Equal(t, 3, env.Attempted)
	assert.Equal(t, 1, env.Persisted)
	require.Len(t, env.Rejected, 2)
	assert.Equal(t, "range_error:month", env.Rejected[0].Reason)
	assert.Equal(t, "type_error:temperature", env.Rejected[1].Reason)

	pest := reportFor(t, result, dataset.DomainPest)
	assert.Equal(t, 3, pest.Attempted)
	assert.Equal(t, 2, pest.Persisted)
	require.Len(t, pest.Rejected, 1)
	assert.Equal(t, 2, pest.Rejected[0].Position)
}

func TestProcessUpload_MissingAreaPointWritesNothing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestIngestion(repo)

	csv := "year,month,day,rbb_count\n2023,6,1,4\n"

	result, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))

	var missing *models.MissingAreaPointError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "AP-001", missing.AreaPointID)

	require.NotNil(t, result)
	assert.Equal(t, models.UploadFailed, result.Status)

	assert.Empty(t, repo.envRecords)
	assert.Empty(t, repo.pests)
	assert.Empty(t, repo.datasetRows)

	upload := repo.uploads[result.UploadID]
	require.NotNil(t, upload)
	assert.Equal(t, models.UploadFailed, upload.ProcessingStatus)
}

func TestProcessUpload_InactiveAreaPointRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = false
	svc := newTestIngestion(repo)

	_, err := svc.ProcessUpload(context.Background(), uploadRequest("year,month,day,rbb_count\n2023,6,1,4\n"))

	var missing *models.MissingAreaPointError
	require.ErrorAs(t, err, &missing)
}

func TestProcessUpload_DuplicateRowsAreRowScoped(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	repo.envKeys[envKey("AP-001", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), models.SourceManual)] = true
	svc := newTestIngestion(repo)

	csv := strings.Join([]string{
		"year,month,day,temperature",
		"2023,6,1,28.4", // already on record
		"2023,6,2,29.0",
	}, "\n")

	result, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.NoError(t, err, "a duplicate row never fails the run")

	assert.Equal(t, models.UploadCompleted, result.Status)

	env := reportFor(t, result, dataset.DomainEnvironmental)
	assert.Equal(t, 2, env.Accepted)
	assert.Equal(t, 1, env.Persisted)
	require.Len(t, env.Failed, 1)
	assert.Equal(t, 1, env.Failed[0].Position)
	assert.Equal(t, "duplicate_record", env.Failed[0].Reason)
}

func TestProcessUpload_StorageFailureIsFatal(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	repo.failEnvAfter = 2
	svc := newTestIngestion(repo)

	csv := strings.Join([]string{
		"year,month,day,temperature,rbb_count",
		"2023,6,1,28.4,1",
		"2023,6,2,29.0,2",
		"2023,6,3,30.1,3",
	}, "\n")

	result, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.Error(t, err)

	var storageErr *repository.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.True(t, storageErr.IsTransient())

	require.NotNil(t, result)
	assert.Equal(t, models.UploadFailed, result.Status)

	// the first row stands, remaining domains were never attempted
	env := reportFor(t, result, dataset.DomainEnvironmental)
	assert.Equal(t, 1, env.Persisted)
	require.Len(t, env.Failed, 1)
	assert.Equal(t, "storage_unavailable", env.Failed[0].Reason)

	assert.Empty(t, repo.pests)
	assert.Empty(t, repo.datasetRows)

	upload := repo.uploads[result.UploadID]
	assert.Equal(t, models.UploadFailed, upload.ProcessingStatus)
}

func TestProcessUpload_AuditMirrorsRowWrites(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestIngestion(repo)

	csv := "year,month,day,temperature,rbb_count\n2023,6,1,28.4,4\n"

	result, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.NoError(t, err)
	require.Equal(t, models.UploadCompleted, result.Status)

	var imports, uploads int
	for _, entry := range repo.activity {
		switch entry.Action {
		case models.ActionImport:
			imports++
			assert.Equal(t, "encoder1", entry.Username)
		case models.ActionUpload:
			uploads++
			assert.Equal(t, models.ModuleDataset, entry.Module)
		}
	}

	// one import entry per row write (env, pest, metadata) plus the
	// upload-level entry
	assert.Equal(t, 3, imports)
	assert.Equal(t, 1, uploads)
}

func TestProcessUpload_AuditFailuresAreSwallowed(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	repo.auditErr = errors.New("audit sink down")
	svc := newTestIngestion(repo)

	csv := "year,month,day,rbb_count\n2023,6,1,4\n"

	result, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.NoError(t, err)
	assert.Equal(t, models.UploadCompleted, result.Status)
	assert.Len(t, repo.pests, 1)
}

func TestProcessUpload_RerunIsIdempotentForEnvironmental(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestIngestion(repo)

	csv := "year,month,day,temperature\n2023,6,1,28.4\n2023,6,2,29.0\n"

	first, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, reportFor(t, first, dataset.DomainEnvironmental).Persisted)

	second, err := svc.ProcessUpload(context.Background(), uploadRequest(csv))
	require.NoError(t, err)

	env := reportFor(t, second, dataset.DomainEnvironmental)
	assert.Equal(t, 0, env.Persisted)
	assert.Len(t, env.Failed, 2)
	assert.Len(t, repo.envRecords, 2, "re-running the same upload must not duplicate readings")
}

func TestProcessUpload_UnparseableDataset(t *testing.T) {
	repo := newFakeRepo()
	repo.areaPoints["AP-001"] = true
	svc := newTestIngestion(repo)

	_, err := svc.ProcessUpload(context.Background(), uploadRequest(""))
	require.Error(t, err)
	assert.Empty(t, repo.uploads, "nothing is recorded for a file that cannot be read")
}
