package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/markMSUIIT/riceprotek-web-app/internal/models"
	"github.com/markMSUIIT/riceprotek-web-app/internal/repository"
	"github.com/markMSUIIT/riceprotek-web-app/internal/services"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/logging"
	"github.com/markMSUIIT/riceprotek-web-app/pkg/metrics"
)

// MonitoringHandler handles the area point, environmental, pest, activity,
// and statistics API endpoints
type MonitoringHandler struct {
	monitoringService *services.MonitoringService
	statsService      *services.StatisticsService
	logger            *logging.StructuredLogger
	metrics           *metrics.Collector
}

// NewMonitoringHandler creates a new monitoring handler
func NewMonitoringHandler(
	monitoringService *services.MonitoringService,
	statsService *services.StatisticsService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *MonitoringHandler {
	return &MonitoringHandler{
		monitoringService: monitoringService,
		statsService:      statsService,
		logger:            logger,
		metrics:           metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// CreateAreaPoint handles POST /api/area-points
func (h *MonitoringHandler) CreateAreaPoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var point models.AreaPoint
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		sendError(h.metrics, w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	point.CreatedBy = logging.UsernameFromContext(ctx)

	if err := h.monitoringService.CreateAreaPoint(ctx, &point); err != nil {
		h.handleServiceError(w, r, "/api/area-points", err, "failed to create area point")
		return
	}

	h.metrics.RecordAPIRequest("/api/area-points", "POST", "201")
	sendJSON(w, point, http.StatusCreated)
}

// GetAreaPoint handles GET /api/area-points/{id}
func (h *MonitoringHandler) GetAreaPoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	areaPointID := mux.Vars(r)["id"]

	point, err := h.monitoringService.GetAreaPoint(ctx, areaPointID)
	if err != nil {
		h.handleServiceError(w, r, "/api/area-points/{id}", err, "failed to retrieve area point")
		return
	}

	h.metrics.RecordAPIRequest("/api/area-points/{id}", "GET", "200")
	sendJSON(w, point, http.StatusOK)
}

// ListAreaPoints handles GET /api/area-points
func (h *MonitoringHandler) ListAreaPoints(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/area-points").Observe(duration.Seconds())
	}()

	page, limit := parsePagination(r)
	filter := repository.AreaPointFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if activeStr := r.URL.Query().Get("is_active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			sendError(h.metrics, w, r, "invalid is_active, expected true or false", http.StatusBadRequest)
			return
		}
		filter.IsActive = &active
	}

	points, total, err := h.monitoringService.ListAreaPoints(ctx, filter)
	if err != nil {
		h.handleServiceError(w, r, "/api/area-points", err, "failed to retrieve area points")
		return
	}

	h.metrics.RecordAPIRequest("/api/area-points", "GET", "200")
	sendJSON(w, paginate(points, total, page, limit), http.StatusOK)
}

// UpdateAreaPoint handles PUT /api/area-points/{id}
func (h *MonitoringHandler) UpdateAreaPoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	areaPointID := mux.Vars(r)["id"]

	var point models.AreaPoint
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		sendError(h.metrics, w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	point.AreaPointID = areaPointID

	if err := h.monitoringService.UpdateAreaPoint(ctx, &point); err != nil {
		h.handleServiceError(w, r, "/api/area-points/{id}", err, "failed to update area point")
		return
	}

	h.metrics.RecordAPIRequest("/api/area-points/{id}", "PUT", "200")
	sendJSON(w, point, http.StatusOK)
}

// DeactivateAreaPoint handles DELETE /api/area-points/{id}
func (h *MonitoringHandler) DeactivateAreaPoint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	areaPointID := mux.Vars(r)["id"]

	if err := h.monitoringService.DeactivateAreaPoint(ctx, areaPointID); err != nil {
		h.handleServiceError(w, r, "/api/area-points/{id}", err, "failed to deactivate area point")
		return
	}

	h.metrics.RecordAPIRequest("/api/area-points/{id}", "DELETE", "204")
	w.WriteHeader(http.StatusNoContent)
}

// CreateEnvironmentalRecord handles POST /api/environmental
func (h *MonitoringHandler) CreateEnvironmentalRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var record models.EnvironmentalRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		sendError(h.metrics, w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	record.CreatedBy = logging.UsernameFromContext(ctx)
	if record.Source == "" {
		record.Source = models.SourceManual
	}

	if err := h.monitoringService.CreateEnvironmentalRecord(ctx, &record); err != nil {
		h.handleServiceError(w, r, "/api/environmental", err, "failed to create environmental record")
		return
	}

	h.metrics.RecordAPIRequest("/api/environmental", "POST", "201")
	sendJSON(w, record, http.StatusCreated)
}

// ListEnvironmentalRecords handles GET /api/environmental
func (h *MonitoringHandler) ListEnvironmentalRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/environmental").Observe(duration.Seconds())
	}()

	page, limit := parsePagination(r)
	filter := repository.EnvironmentalFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if areaPointID := r.URL.Query().Get("area_point_id"); areaPointID != "" {
		filter.AreaPointID = &areaPointID
	}
	if source := r.URL.Query().Get("source"); source != "" {
		filter.Source = &source
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		sendError(h.metrics, w, r, err.Error(), http.StatusBadRequest)
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	records, total, err := h.monitoringService.ListEnvironmentalRecords(ctx, filter)
	if err != nil {
		h.handleServiceError(w, r, "/api/environmental", err, "failed to retrieve environmental records")
		return
	}

	h.metrics.RecordAPIRequest("/api/environmental", "GET", "200")
	sendJSON(w, paginate(records, total, page, limit), http.StatusOK)
}

// CreatePestObservation handles POST /api/pests
func (h *MonitoringHandler) CreatePestObservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var obs models.PestObservation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		sendError(h.metrics, w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	obs.CreatedBy = logging.UsernameFromContext(ctx)

	if err := h.monitoringService.CreatePestObservation(ctx, &obs); err != nil {
		h.handleServiceError(w, r, "/api/pests", err, "failed to create pest observation")
		return
	}

	h.metrics.RecordAPIRequest("/api/pests", "POST", "201")
	sendJSON(w, obs, http.StatusCreated)
}

// ListPestObservations handles GET /api/pests
func (h *MonitoringHandler) ListPestObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/pests").Observe(duration.Seconds())
	}()

	page, limit := parsePagination(r)
	filter := repository.PestFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if areaPointID := r.URL.Query().Get("area_point_id"); areaPointID != "" {
		filter.AreaPointID = &areaPointID
	}
	if pestType := r.URL.Query().Get("pest_type"); pestType != "" {
		filter.PestType = &pestType
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		sendError(h.metrics, w, r, err.Error(), http.StatusBadRequest)
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	observations, total, err := h.monitoringService.ListPestObservations(ctx, filter)
	if err != nil {
		h.handleServiceError(w, r, "/api/pests", err, "failed to retrieve pest observations")
		return
	}

	h.metrics.RecordAPIRequest("/api/pests", "GET", "200")
	sendJSON(w, paginate(observations, total, page, limit), http.StatusOK)
}

// UpdatePestObservation handles PUT /api/pests/{id}
func (h *MonitoringHandler) UpdatePestObservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(h.metrics, w, r, "invalid observation id", http.StatusBadRequest)
		return
	}

	var obs models.PestObservation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		sendError(h.metrics, w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	obs.ID = id

	if err := h.monitoringService.UpdatePestObservation(ctx, &obs); err != nil {
		h.handleServiceError(w, r, "/api/pests/{id}", err, "failed to update pest observation")
		return
	}

	h.metrics.RecordAPIRequest("/api/pests/{id}", "PUT", "200")
	sendJSON(w, obs, http.StatusOK)
}

// DeletePestObservation handles DELETE /api/pests/{id}
func (h *MonitoringHandler) DeletePestObservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(h.metrics, w, r, "invalid observation id", http.StatusBadRequest)
		return
	}

	if err := h.monitoringService.DeletePestObservation(ctx, id); err != nil {
		h.handleServiceError(w, r, "/api/pests/{id}", err, "failed to delete pest observation")
		return
	}

	h.metrics.RecordAPIRequest("/api/pests/{id}", "DELETE", "204")
	w.WriteHeader(http.StatusNoContent)
}

// ListActivity handles GET /api/activity
func (h *MonitoringHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, limit := parsePagination(r)
	filter := repository.ActivityFilter{Limit: limit}

	if username := r.URL.Query().Get("username"); username != "" {
		filter.Username = &username
	}
	if module := r.URL.Query().Get("module"); module != "" {
		filter.Module = &module
	}
	if action := r.URL.Query().Get("action"); action != "" {
		filter.Action = &action
	}

	entries, err := h.monitoringService.ListActivity(ctx, filter)
	if err != nil {
		h.handleServiceError(w, r, "/api/activity", err, "failed to retrieve activity log")
		return
	}

	h.metrics.RecordAPIRequest("/api/activity", "GET", "200")
	sendJSON(w, map[string]interface{}{"data": entries}, http.StatusOK)
}

// GetPestSummary handles GET /api/stats/pests
func (h *MonitoringHandler) GetPestSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/stats/pests").Observe(duration.Seconds())
	}()

	filter := repository.PestFilter{}
	if areaPointID := r.URL.Query().Get("area_point_id"); areaPointID != "" {
		filter.AreaPointID = &areaPointID
	}

	startDate, endDate, err := parseDateRange(r)
	if err != nil {
		sendError(h.metrics, w, r, err.Error(), http.StatusBadRequest)
		return
	}
	filter.StartDate = startDate
	filter.EndDate = endDate

	summary, err := h.statsService.PestSummary(ctx, filter)
	if err != nil {
		h.handleServiceError(w, r, "/api/stats/pests", err, "failed to compute pest summary")
		return
	}

	h.metrics.RecordAPIRequest("/api/stats/pests", "GET", "200")
	sendJSON(w, summary, http.StatusOK)
}

// GetTemporalAggregates handles GET /api/stats/temporal
func (h *MonitoringHandler) GetTemporalAggregates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/stats/temporal").Observe(duration.Seconds())
	}()

	groupBy := r.URL.Query().Get("group_by")
	if groupBy == "" {
		groupBy = services.GroupByMonth
	}

	var areaPointID *string
	if id := r.URL.Query().Get("area_point_id"); id != "" {
		areaPointID = &id
	}

	aggregates, err := h.statsService.TemporalAggregates(ctx, groupBy, areaPointID)
	if err != nil {
		h.handleServiceError(w, r, "/api/stats/temporal", err, "failed to compute temporal aggregates")
		return
	}

	h.metrics.RecordAPIRequest("/api/stats/temporal", "GET", "200")
	sendJSON(w, map[string]interface{}{"data": aggregates, "group_by": groupBy}, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *MonitoringHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.monitoringService.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_FAILED] Storage backend unreachable", logging.Fields{}, err)
		sendJSON(w, map[string]string{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, http.StatusServiceUnavailable)
		return
	}

	sendJSON(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleServiceError maps service and repository errors onto HTTP statuses
func (h *MonitoringHandler) handleServiceError(w http.ResponseWriter, r *http.Request, endpoint string, err error, fallback string) {
	var validationErr *models.ValidationError
	var missingAreaPoint *models.MissingAreaPointError

	switch {
	case errors.As(err, &validationErr):
		sendError(h.metrics, w, r, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &missingAreaPoint):
		sendError(h.metrics, w, r, missingAreaPoint.Error(), http.StatusUnprocessableEntity)
	case repository.IsNotFound(err):
		sendError(h.metrics, w, r, err.Error(), http.StatusNotFound)
	case repository.IsConflict(err):
		sendError(h.metrics, w, r, err.Error(), http.StatusConflict)
	default:
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
			"method":   r.Method,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		sendError(h.metrics, w, r, fallback, http.StatusInternalServerError)
	}
}

// RegisterRoutes registers all monitoring API routes
func (h *MonitoringHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/area-points", h.CreateAreaPoint).Methods("POST")
	router.HandleFunc("/api/area-points", h.ListAreaPoints).Methods("GET")
	router.HandleFunc("/api/area-points/{id}", h.GetAreaPoint).Methods("GET")
	router.HandleFunc("/api/area-points/{id}", h.UpdateAreaPoint).Methods("PUT")
	router.HandleFunc("/api/area-points/{id}", h.DeactivateAreaPoint).Methods("DELETE")

	router.HandleFunc("/api/environmental", h.CreateEnvironmentalRecord).Methods("POST")
	router.HandleFunc("/api/environmental", h.ListEnvironmentalRecords).Methods("GET")

	router.HandleFunc("/api/pests", h.CreatePestObservation).Methods("POST")
	router.HandleFunc("/api/pests", h.ListPestObservations).Methods("GET")
	router.HandleFunc("/api/pests/{id}", h.UpdatePestObservation).Methods("PUT")
	router.HandleFunc("/api/pests/{id}", h.DeletePestObservation).Methods("DELETE")

	router.HandleFunc("/api/activity", h.ListActivity).Methods("GET")

	router.HandleFunc("/api/stats/pests", h.GetPestSummary).Methods("GET")
	router.HandleFunc("/api/stats/temporal", h.GetTemporalAggregates).Methods("GET")

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

// parsePagination reads page and limit query parameters, defaulting to
// page 1 and limit 100, capped at 1000
func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 100

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	return page, limit
}

// parseDateRange reads optional start_date and end_date query parameters
func parseDateRange(r *http.Request) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, errors.New("invalid start_date format, expected YYYY-MM-DD")
		}
		start = &t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, errors.New("invalid end_date format, expected YYYY-MM-DD")
		}
		end = &t
	}

	return start, end, nil
}

func paginate(data interface{}, total, page, limit int) PaginatedResponse {
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

// sendJSON sends a JSON response
func sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func sendError(m *metrics.Collector, w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	m.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}, statusCode)
}
