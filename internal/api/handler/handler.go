package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"trip-data-pipeline/internal/config"
	"trip-data-pipeline/internal/metrics"
	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/internal/pipeline"
	"trip-data-pipeline/pkg/utils"
)

// Cleaner runs the cleaning pipeline. *pipeline.Runner implements it.
type Cleaner interface {
	Run(ctx context.Context, spec model.RunSpec) model.CleanResult
}

// Store is the persistence used by the API. *store.Store implements it.
type Store interface {
	pipeline.TripSink
	ListRuns(ctx context.Context) ([]model.Run, error)
	GetRun(ctx context.Context, runID string) (model.Run, []model.StageSummary, error)
	ListTrips(ctx context.Context, limit int) ([]model.Trip, error)
}

// Handler serves the pipeline API
type Handler struct {
	cleaner  Cleaner
	store    Store
	cfg      *config.Config
	metrics  *metrics.Collectors
	logger   *zap.SugaredLogger
	outputs  *utils.OutputManager
	validate *validator.Validate
}

// New creates a handler. store and m may be nil; endpoints needing the store then
// respond with 503.
func New(cfg *config.Config, cleaner Cleaner, store Store, m *metrics.Collectors, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{
		cleaner:  cleaner,
		store:    store,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		outputs:  utils.NewOutputManager(cfg.Paths.ReportsDir),
		validate: validator.New(),
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: model.StatusError, Message: message})
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "database is not configured")
		return false
	}
	return true
}

// queryInt reads a positive integer query parameter, falling back to def and capping at max
func queryInt(r *http.Request, name string, def, max int) int {
	v := def
	if s := r.URL.Query().Get(name); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil && parsed > 0 {
			v = parsed
		}
	}
	if max > 0 && v > max {
		v = max
	}
	return v
}
