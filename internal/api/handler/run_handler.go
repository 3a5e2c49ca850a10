package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/internal/store"
	"trip-data-pipeline/pkg/utils"
)

// RunDetail is a stored run with its stage summaries
type RunDetail struct {
	model.Run
	Stages []model.StageSummary `json:"stages"`
}

// CleanData runs the pipeline on the configured raw file
// @Summary Clean trip data
// @Description Run the cleaning pipeline on the configured raw file and write the clean and excluded files. Failures are reported in the body with status "error".
// @Tags cleaning
// @Produce json
// @Success 200 {object} model.CleanResult "Run summary"
// @Router /clean_data [get]
func (h *Handler) CleanData(w http.ResponseWriter, r *http.Request) {
	result := h.cleaner.Run(r.Context(), model.RunSpec{})
	writeJSON(w, http.StatusOK, result)
}

// CreateRun runs the pipeline with optional source and output overrides
// @Summary Start a cleaning run
// @Description Run the cleaning pipeline. Empty fields fall back to the configured paths. Overrides are plain file names resolved in the directory of the configured raw file (source) or clean file (outputs).
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec false "Run overrides"
// @Success 200 {object} model.CleanResult "Run succeeded"
// @Failure 400 {object} ErrorResponse "Invalid request payload"
// @Failure 422 {object} model.CleanResult "Run failed"
// @Router /api/v1/runs [post]
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var spec model.RunSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(spec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.checkOverrides(spec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.cleaner.Run(r.Context(), spec)
	if !result.Succeeded() {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// checkOverrides rejects override names that would leave the configured directories
func (h *Handler) checkOverrides(spec model.RunSpec) error {
	overrides := []struct {
		field, name, dir string
	}{
		{"source", spec.Source, filepath.Dir(h.cfg.Paths.RawFile)},
		{"clean_file", spec.CleanFile, filepath.Dir(h.cfg.Paths.CleanFile)},
		{"excluded_file", spec.ExcludedFile, filepath.Dir(h.cfg.Paths.CleanFile)},
	}
	for _, o := range overrides {
		if o.name == "" {
			continue
		}
		if _, err := utils.ConfinedPath(o.dir, o.name); err != nil {
			return fmt.Errorf("%s: %w", o.field, err)
		}
	}
	return nil
}

// ListRuns returns the run history
// @Summary List runs
// @Description Get all cleaning runs, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} model.Run "Runs"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/runs [get]
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	runs, err := h.store.ListRuns(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns one run
// @Summary Get run
// @Description Retrieve a run with its per-stage summaries
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunDetail "Run details"
// @Failure 404 {object} ErrorResponse "Run not found"
// @Router /api/v1/runs/{id} [get]
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	runID := mux.Vars(r)["id"]

	run, stages, err := h.store.GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to get run", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch run")
		return
	}
	writeJSON(w, http.StatusOK, RunDetail{Run: run, Stages: stages})
}
