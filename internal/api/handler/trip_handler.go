package handler

import (
	"net/http"

	"trip-data-pipeline/internal/pipeline"
)

// ListTrips returns trips from the trips table
// @Summary List trips
// @Description Get clean trips loaded into the database
// @Tags trips
// @Produce json
// @Param limit query int false "Maximum number of trips"
// @Success 200 {array} model.Trip "Trips"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/trips [get]
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	limit := queryInt(r, "limit", h.cfg.Database.TripsLimit, h.cfg.Database.TripsLimit)

	trips, err := h.store.ListTrips(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("Failed to list trips", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch trips")
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// LoadTrips replaces the trips table with the contents of the clean file
// @Summary Load trips
// @Description Load the clean file into the trips table in chunks
// @Tags trips
// @Produce json
// @Success 200 {object} model.LoadResult "Load summary"
// @Failure 500 {object} ErrorResponse "Load failed"
// @Router /api/v1/trips/load [post]
func (h *Handler) LoadTrips(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}

	retry := pipeline.DefaultRetryConfig
	retry.MaxAttempts = h.cfg.Database.MaxAttempts

	result, err := pipeline.LoadTripsFromFile(r.Context(), h.cfg.Paths.CleanFile, h.store, pipeline.LoadOptions{
		ChunkSize: h.cfg.Database.ChunkSize,
		Retry:     retry,
		Logger:    h.logger,
		Metrics:   h.metrics,
	})
	if err != nil {
		h.logger.Errorw("Failed to load trips", "source", h.cfg.Paths.CleanFile, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
