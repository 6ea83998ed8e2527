package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"pvcycle-platform/internal/models"
	"pvcycle-platform/internal/repository"
	"pvcycle-platform/internal/services"
	"pvcycle-platform/pkg/logging"
	"pvcycle-platform/pkg/metrics"
)

// SimulationHandler handles the scenario and simulation API endpoints
type SimulationHandler struct {
	scenarioService   *services.ScenarioService
	simulationService *services.SimulationService
	lcaService        *services.LCAService
	logger            *logging.StructuredLogger
	metrics           *metrics.Collector
}

// NewSimulationHandler creates a new simulation handler
func NewSimulationHandler(
	scenarioService *services.ScenarioService,
	simulationService *services.SimulationService,
	lcaService *services.LCAService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *SimulationHandler {
	return &SimulationHandler{
		scenarioService:   scenarioService,
		simulationService: simulationService,
		lcaService:        lcaService,
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

// ListScenarios handles GET /api/scenarios
func (h *SimulationHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/scenarios").Observe(duration.Seconds())
	}()

	page, limit := parsePagination(r)
	offset := (page - 1) * limit

	scenarios, total, err := h.scenarioService.ListScenarios(ctx, limit, offset)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_SCENARIOS_ERROR] Failed to list scenarios", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/scenarios")
		h.sendError(w, r, "failed to retrieve scenarios", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       scenarios,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/scenarios", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetScenario handles GET /api/scenarios/{id}
func (h *SimulationHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scenarioID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	scenario, err := h.scenarioService.GetScenario(ctx, scenarioID)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/scenarios/{id}", "GET", "200")
	h.sendJSON(w, scenario, http.StatusOK)
}

// GetModuleBaseline handles GET /api/scenarios/{id}/baseline
func (h *SimulationHandler) GetModuleBaseline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scenarioID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	rows, err := h.scenarioService.GetModuleBaseline(ctx, scenarioID)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/baseline", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/scenarios/{id}/baseline", "GET", "200")
	h.sendJSON(w, rows, http.StatusOK)
}

// ListMaterials handles GET /api/scenarios/{id}/materials
func (h *SimulationHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scenarioID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	materials, err := h.scenarioService.ListMaterials(ctx, scenarioID)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/materials", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/scenarios/{id}/materials", "GET", "200")
	h.sendJSON(w, materials, http.StatusOK)
}

// GetMaterialBaseline handles GET /api/scenarios/{id}/materials/{material}
func (h *SimulationHandler) GetMaterialBaseline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scenarioID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	material := mux.Vars(r)["material"]

	rows, err := h.scenarioService.GetMaterialBaseline(ctx, scenarioID, material)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/materials/{material}", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/scenarios/{id}/materials/{material}", "GET", "200")
	h.sendJSON(w, rows, http.StatusOK)
}

// RunSimulation handles POST /api/scenarios/{id}/run
func (h *SimulationHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/scenarios/{id}/run").Observe(duration.Seconds())
	}()

	scenarioID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.simulationService.RunScenario(ctx, scenarioID)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/run", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/scenarios/{id}/run", "POST", "200")
	h.sendJSON(w, result, http.StatusOK)
}

// GetYearlyResults handles GET /api/scenarios/{id}/results
func (h *SimulationHandler) GetYearlyResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scenarioID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	runID, err := h.resolveRunID(r, scenarioID)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/results", err)
		return
	}

	filter, ok := h.parseYearFilter(w, r)
	if !ok {
		return
	}

	rows, err := h.scenarioService.GetYearlyResults(ctx, runID, filter)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/results", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/scenarios/{id}/results", "GET", "200")
	h.sendJSON(w, rows, http.StatusOK)
}

// GetMaterialFlows handles GET /api/scenarios/{id}/materials/{material}/flows
func (h *SimulationHandler) GetMaterialFlows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scenarioID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	material := mux.Vars(r)["material"]

	runID, err := h.resolveRunID(r, scenarioID)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/materials/{material}/flows", err)
		return
	}

	filter, ok := h.parseYearFilter(w, r)
	if !ok {
		return
	}

	rows, err := h.scenarioService.GetMaterialFlows(ctx, runID, material, filter)
	if err != nil {
		h.handleServiceError(w, r, "/api/scenarios/{id}/materials/{material}/flows", err)
		return
	}

	h.metrics.RecordAPIRequest("/api/scenarios/{id}/materials/{material}/flows", "GET", "200")
	h.sendJSON(w, rows, http.StatusOK)
}

// LCARequest is the payload of POST /api/lca
type LCARequest struct {
	AreaM2    float64                          `json:"area_m2"`
	Overrides map[string]services.ImpactFactor `json:"overrides,omitempty"`
}

// EvaluateLCA handles POST /api/lca
func (h *SimulationHandler) EvaluateLCA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LCARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AreaM2 < 0 {
		h.sendError(w, r, "area_m2 must not be negative", http.StatusBadRequest)
		return
	}

	results := h.lcaService.Evaluate(ctx, req.AreaM2, req.Overrides)

	h.metrics.RecordAPIRequest("/api/lca", "POST", "200")
	h.sendJSON(w, results, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *SimulationHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// pathID parses the numeric {id} path variable
func (h *SimulationHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id < 1 {
		h.sendError(w, r, "invalid scenario id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// resolveRunID picks the run to serve results from: an explicit run_id query
// parameter, or the scenario's latest run.
func (h *SimulationHandler) resolveRunID(r *http.Request, scenarioID int) (int, error) {
	if runStr := r.URL.Query().Get("run_id"); runStr != "" {
		runID, err := strconv.Atoi(runStr)
		if err != nil || runID < 1 {
			return 0, &repository.NotFoundError{Resource: "simulation_run", ID: runStr}
		}
		return runID, nil
	}

	run, err := h.scenarioService.GetLatestRun(r.Context(), scenarioID)
	if err != nil {
		return 0, err
	}
	return run.ID, nil
}

// parseYearFilter parses the optional from_year/to_year query parameters
func (h *SimulationHandler) parseYearFilter(w http.ResponseWriter, r *http.Request) (repository.YearFilter, bool) {
	var filter repository.YearFilter

	if fromStr := r.URL.Query().Get("from_year"); fromStr != "" {
		from, err := strconv.Atoi(fromStr)
		if err != nil {
			h.sendError(w, r, "invalid from_year, expected integer", http.StatusBadRequest)
			return filter, false
		}
		filter.FromYear = &from
	}

	if toStr := r.URL.Query().Get("to_year"); toStr != "" {
		to, err := strconv.Atoi(toStr)
		if err != nil {
			h.sendError(w, r, "invalid to_year, expected integer", http.StatusBadRequest)
			return filter, false
		}
		filter.ToYear = &to
	}

	return filter, true
}

// parsePagination parses page/limit query parameters with defaults
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

// handleServiceError maps service errors to HTTP responses
func (h *SimulationHandler) handleServiceError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var notFound *repository.NotFoundError
	if errors.As(err, &notFound) {
		h.sendError(w, r, err.Error(), http.StatusNotFound)
		return
	}

	var rateErr *models.InvalidRateError
	var scenarioErr *models.InconsistentScenarioError
	if errors.As(err, &rateErr) || errors.As(err, &scenarioErr) {
		h.sendError(w, r, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
		"endpoint": endpoint,
	}, err)
	h.metrics.RecordAPIError("internal_error", endpoint)
	h.sendError(w, r, "request failed", http.StatusInternalServerError)
}

// sendJSON sends a JSON response
func (h *SimulationHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *SimulationHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all simulation API routes
func (h *SimulationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/scenarios", h.ListScenarios).Methods("GET")
	router.HandleFunc("/api/scenarios/{id}", h.GetScenario).Methods("GET")
	router.HandleFunc("/api/scenarios/{id}/baseline", h.GetModuleBaseline).Methods("GET")
	router.HandleFunc("/api/scenarios/{id}/materials", h.ListMaterials).Methods("GET")
	router.HandleFunc("/api/scenarios/{id}/materials/{material}", h.GetMaterialBaseline).Methods("GET")
	router.HandleFunc("/api/scenarios/{id}/materials/{material}/flows", h.GetMaterialFlows).Methods("GET")
	router.HandleFunc("/api/scenarios/{id}/run", h.RunSimulation).Methods("POST")
	router.HandleFunc("/api/scenarios/{id}/results", h.GetYearlyResults).Methods("GET")
	router.HandleFunc("/api/lca", h.EvaluateLCA).Methods("POST")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
