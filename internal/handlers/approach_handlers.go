package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"neo-platform/internal/filters"
	"neo-platform/internal/models"
	"neo-platform/internal/repository"
	"neo-platform/internal/writers"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

const (
	endpointApproaches = "/api/approaches"
	endpointNEO        = "/api/neos/{designation}"
)

// ApproachReader is the read side the API is served from
type ApproachReader interface {
	ListApproaches(ctx context.Context, filter repository.ApproachFilter) (*repository.ApproachPage, error)
	GetNEO(ctx context.Context, designation string) (*repository.NEOView, error)
	HealthCheck(ctx context.Context) error
}

// ApproachHandler handles close approach API endpoints
type ApproachHandler struct {
	reader       ApproachReader
	logger       *logging.StructuredLogger
	metrics      *metrics.Collector
	defaultLimit int
	maxLimit     int
}

// NewApproachHandler creates a new approach handler
func NewApproachHandler(
	reader ApproachReader,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	defaultLimit, maxLimit int,
) *ApproachHandler {
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(100, maxLimit)
	}
	return &ApproachHandler{
		reader:       reader,
		logger:       logger,
		metrics:      metricsCollector,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
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

// NEOResponse is an object with its recorded close approaches
type NEOResponse struct {
	Designation          string                 `json:"designation"`
	Name                 string                 `json:"name"`
	Fullname             string                 `json:"fullname"`
	DiameterKm           models.Float           `json:"diameter_km"`
	PotentiallyHazardous bool                   `json:"potentially_hazardous"`
	Approaches           []writers.ApproachJSON `json:"approaches"`
}

// GetApproaches handles GET /api/approaches
func (h *ApproachHandler) GetApproaches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues(endpointApproaches).Observe(time.Since(startTime).Seconds())
	}()

	query := r.URL.Query()

	criteria, err := filters.ParseValues(query.Get)
	if err != nil {
		h.metrics.RecordAPIError("bad_request", endpointApproaches)
		h.sendError(w, r, endpointApproaches, err.Error(), http.StatusBadRequest)
		return
	}

	// Default pagination
	page := 1
	limit := h.defaultLimit

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= h.maxLimit {
			limit = l
		}
	}

	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	// the offset must fit in an int
	if page-1 > math.MaxInt/limit {
		h.metrics.RecordAPIError("bad_request", endpointApproaches)
		h.sendError(w, r, endpointApproaches, fmt.Sprintf("page %d is out of range", page), http.StatusBadRequest)
		return
	}

	filter := repository.ApproachFilter{
		Criteria: criteria,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	result, err := h.reader.ListApproaches(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_APPROACHES_ERROR] Failed to get close approaches", logging.Fields{
			"page":  page,
			"limit": limit,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpointApproaches)
		h.sendError(w, r, endpointApproaches, "failed to retrieve close approaches", http.StatusInternalServerError)
		return
	}

	data, err := serializeApproaches(result.Catalog, result.Approaches)
	if err != nil {
		h.logger.Error(ctx, "[API_SERIALIZE_ERROR] Failed to serialize close approaches", logging.Fields{}, err)
		h.metrics.RecordAPIError("serialize_error", endpointApproaches)
		h.sendError(w, r, endpointApproaches, "failed to serialize close approaches", http.StatusInternalServerError)
		return
	}

	response := PaginatedResponse{
		Data:       data,
		Total:      result.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: (result.Total + limit - 1) / limit,
	}

	h.metrics.RecordAPIRequest(endpointApproaches, "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetNEO handles GET /api/neos/{designation}
func (h *ApproachHandler) GetNEO(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues(endpointNEO).Observe(time.Since(startTime).Seconds())
	}()

	designation := mux.Vars(r)["designation"]

	view, err := h.reader.GetNEO(ctx, designation)
	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		h.metrics.RecordAPIError("not_found", endpointNEO)
		h.sendError(w, r, endpointNEO, notFound.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error(ctx, "[API_GET_NEO_ERROR] Failed to get neo", logging.Fields{
			"designation": designation,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpointNEO)
		h.sendError(w, r, endpointNEO, "failed to retrieve neo", http.StatusInternalServerError)
		return
	}

	approaches, err := serializeApproaches(view.Catalog, view.Approaches)
	if err != nil {
		h.logger.Error(ctx, "[API_SERIALIZE_ERROR] Failed to serialize close approaches", logging.Fields{
			"designation": designation,
		}, err)
		h.metrics.RecordAPIError("serialize_error", endpointNEO)
		h.sendError(w, r, endpointNEO, "failed to serialize close approaches", http.StatusInternalServerError)
		return
	}

	rec := view.NEO.Serialize()
	response := NEOResponse{
		Designation:          view.NEO.Designation(),
		Name:                 rec.Name,
		Fullname:             view.NEO.Fullname(),
		DiameterKm:           rec.DiameterKm,
		PotentiallyHazardous: rec.PotentiallyHazardous,
		Approaches:           approaches,
	}

	h.metrics.RecordAPIRequest(endpointNEO, "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ApproachHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK

	if err := h.reader.HealthCheck(ctx); err != nil {
		h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Backing store unavailable", logging.Fields{
			"error": err.Error(),
		})
		status["status"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, code)
}

func serializeApproaches(s writers.Serializer, approaches []*models.CloseApproach) ([]writers.ApproachJSON, error) {
	out := make([]writers.ApproachJSON, 0, len(approaches))
	for _, ca := range approaches {
		rec, err := s.Serialize(ca)
		if err != nil {
			return nil, err
		}
		out = append(out, writers.NewApproachJSON(rec))
	}
	return out, nil
}

// sendJSON sends a JSON response
func (h *ApproachHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response; endpoint is the route template, never the raw path
func (h *ApproachHandler) sendError(w http.ResponseWriter, r *http.Request, endpoint, message string, statusCode int) {
	h.metrics.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all close approach API routes
func (h *ApproachHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(endpointApproaches, h.GetApproaches).Methods("GET")
	router.HandleFunc(endpointNEO, h.GetNEO).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
}
