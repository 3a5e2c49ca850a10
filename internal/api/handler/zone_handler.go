package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/internal/pipeline"
)

const maxTopZones = 1000

var reportExtensions = map[string]string{
	"csv":  ".csv",
	"json": ".json",
	"xlsx": ".xlsx",
}

// FileInfo describes a report file
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// FastestZones returns the pickup zones with the highest average speed
// @Summary Fastest pickup zones
// @Description Rank 0.01° pickup zones of the clean file by average speed
// @Tags zones
// @Produce json
// @Param top query int false "Number of zones"
// @Success 200 {array} model.ZoneStat "Zones, fastest first"
// @Failure 404 {object} ErrorResponse "Clean file not found"
// @Failure 422 {object} ErrorResponse "Clean file lacks required columns"
// @Router /api/v1/zones/fastest [get]
func (h *Handler) FastestZones(w http.ResponseWriter, r *http.Request) {
	zones, ok := h.fastestZones(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, zones)
}

// ExportZones writes the fastest zones report to the reports directory
// @Summary Export fastest pickup zones
// @Description Write the fastest zones report as CSV, JSON or XLSX
// @Tags zones
// @Produce json
// @Param top query int false "Number of zones"
// @Param format query string false "csv, json or xlsx" default(csv)
// @Success 200 {object} model.ExportResult "Export result"
// @Failure 400 {object} ErrorResponse "Unsupported format"
// @Failure 500 {object} model.ExportResult "Export failed"
// @Router /api/v1/zones/fastest/export [post]
func (h *Handler) ExportZones(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	ext, ok := reportExtensions[format]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	zones, ok := h.fastestZones(w, r)
	if !ok {
		return
	}

	path, err := h.outputs.GetOutputFilePath(fmt.Sprintf("fastest_zones_%s%s", time.Now().UTC().Format("20060102T150405"), ext))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := pipeline.ExportZones(zones, path)
	if !result.Success {
		h.logger.Errorw("Zone export failed", "path", path, "error", result.Error)
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	h.logger.Infow("Zone report exported", "path", path, "zones", result.RecordCount)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) fastestZones(w http.ResponseWriter, r *http.Request) ([]model.ZoneStat, bool) {
	top := queryInt(r, "top", h.cfg.Report.TopN, maxTopZones)

	zones, err := pipeline.FastestPickupZones(r.Context(), h.cfg.Paths.CleanFile, top)
	if err != nil {
		var loadErr *model.LoadError
		var missing *model.MissingColumnsError
		switch {
		case errors.As(err, &missing):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &loadErr):
			writeError(w, http.StatusNotFound, "clean data is not available: "+err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return zones, true
}

// DownloadFile serves a report file for download
// @Summary Download report
// @Description Download a file from the reports directory
// @Tags files
// @Produce application/octet-stream
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 404 {object} ErrorResponse "File not found"
// @Router /api/v1/download/{filename} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileName := mux.Vars(r)["filename"]
	filePath, ok := h.reportPath(w, fileName)
	if !ok {
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, filePath)
}

// GetFileInfo returns the type and size of a report file
// @Summary Get file information
// @Tags files
// @Produce json
// @Param filename path string true "File name"
// @Success 200 {object} FileInfo "File information"
// @Failure 404 {object} ErrorResponse "File not found"
// @Router /api/v1/files/{filename} [get]
func (h *Handler) GetFileInfo(w http.ResponseWriter, r *http.Request) {
	fileName := mux.Vars(r)["filename"]
	filePath, ok := h.reportPath(w, fileName)
	if !ok {
		return
	}

	size, err := h.outputs.GetFileSize(filePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, FileInfo{
		Name: fileName,
		Type: h.outputs.GetFileType(fileName),
		Size: size,
	})
}

// reportPath resolves fileName inside the reports directory and checks that it exists
func (h *Handler) reportPath(w http.ResponseWriter, fileName string) (string, bool) {
	filePath, err := h.outputs.GetOutputFilePath(fileName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "File not found")
		return "", false
	}
	return filePath, true
}
