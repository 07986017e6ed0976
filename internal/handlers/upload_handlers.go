package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/internal/services"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
)

// UploadHandler handles dataset upload and NASA POWER sync endpoints
type UploadHandler struct {
	ingestionService  *services.IngestionService
	monitoringService *services.MonitoringService
	syncService       *services.NASASyncService
	maxUploadBytes    int64
	logger            *logging.StructuredLogger
	metrics           *metrics.Collector
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(
	ingestionService *services.IngestionService,
	monitoringService *services.MonitoringService,
	syncService *services.NASASyncService,
	maxUploadBytes int64,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *UploadHandler {
	return &UploadHandler{
		ingestionService:  ingestionService,
		monitoringService: monitoringService,
		syncService:       syncService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger,
		metrics:           metricsCollector,
	}
}

// UploadDataset handles POST /api/uploads. The request is multipart form
// data with a "file" part holding the CSV and an "area_point_id" field
// naming the site every row belongs to.
func (h *UploadHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/uploads").Observe(duration.Seconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		sendError(h.metrics, w, r, "invalid multipart form or file too large", http.StatusBadRequest)
		return
	}

	areaPointID := r.FormValue("area_point_id")
	if areaPointID == "" {
		sendError(h.metrics, w, r, "area_point_id is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		sendError(h.metrics, w, r, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.ingestionService.ProcessUpload(ctx, services.UploadRequest{
		OriginalFilename: header.Filename,
		AreaPointID:      areaPointID,
		UploadedBy:       logging.UsernameFromContext(ctx),
		FileSize:         header.Size,
		Data:             file,
	})
	if err != nil {
		var missingAreaPoint *models.MissingAreaPointError
		switch {
		case errors.As(err, &missingAreaPoint):
			sendError(h.metrics, w, r, missingAreaPoint.Error(), http.StatusUnprocessableEntity)
		case result != nil:
			// storage failure mid-run: partial counts are still reported
			h.logger.Error(ctx, "[API_UPLOAD_ABORTED] Ingestion aborted", logging.Fields{
				"upload_id": result.UploadID,
			}, err)
			h.metrics.RecordAPIError("ingestion_aborted", "/api/uploads")
			sendJSON(w, result, http.StatusInternalServerError)
		default:
			h.metrics.RecordAPIError("bad_dataset", "/api/uploads")
			sendError(h.metrics, w, r, err.Error(), http.StatusBadRequest)
		}
		return
	}

	h.metrics.RecordAPIRequest("/api/uploads", "POST", "201")
	sendJSON(w, result, http.StatusCreated)
}

// ListUploads handles GET /api/uploads
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit := parsePagination(r)
	filter := repository.UploadFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if areaPointID := r.URL.Query().Get("area_point_id"); areaPointID != "" {
		filter.AreaPointID = &areaPointID
	}
	if uploadedBy := r.URL.Query().Get("uploaded_by"); uploadedBy != "" {
		filter.UploadedBy = &uploadedBy
	}

	uploads, total, err := h.monitoringService.ListUploads(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_UPLOADS_ERROR] Failed to list uploads", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/uploads")
		sendError(h.metrics, w, r, "failed to retrieve uploads", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/uploads", "GET", "200")
	sendJSON(w, paginate(uploads, total, page, limit), http.StatusOK)
}

type nasaSyncRequest struct {
	AreaPointID string `json:"area_point_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// SyncNASAPower handles POST /api/nasa-sync
func (h *UploadHandler) SyncNASAPower(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/nasa-sync").Observe(duration.Seconds())
	}()

	var req nasaSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.metrics, w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AreaPointID == "" {
		sendError(h.metrics, w, r, "area_point_id is required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		sendError(h.metrics, w, r, "invalid start_date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		sendError(h.metrics, w, r, "invalid end_date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		sendError(h.metrics, w, r, "end_date must not precede start_date", http.StatusBadRequest)
		return
	}

	result, err := h.syncService.SyncAreaPoint(ctx, req.AreaPointID, start, end)
	if err != nil {
		var missingAreaPoint *models.MissingAreaPointError
		switch {
		case errors.As(err, &missingAreaPoint):
			sendError(h.metrics, w, r, missingAreaPoint.Error(), http.StatusUnprocessableEntity)
		case repository.IsNotFound(err):
			sendError(h.metrics, w, r, err.Error(), http.StatusNotFound)
		default:
			h.logger.Error(ctx, "[API_NASA_SYNC_ERROR] NASA POWER sync failed", logging.Fields{
				"area_point_id": req.AreaPointID,
			}, err)
			h.metrics.RecordAPIError("sync_failed", "/api/nasa-sync")
			sendError(h.metrics, w, r, "NASA POWER sync failed", http.StatusBadGateway)
		}
		return
	}

	h.metrics.RecordAPIRequest("/api/nasa-sync", "POST", "200")
	sendJSON(w, result, http.StatusOK)
}

// RegisterRoutes registers upload and sync API routes
func (h *UploadHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/uploads", h.UploadDataset).Methods("POST")
	router.HandleFunc("/api/uploads", h.ListUploads).Methods("GET")
	router.HandleFunc("/api/nasa-sync", h.SyncNASAPower).Methods("POST")
}
