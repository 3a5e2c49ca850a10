package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"trip-data-pipeline/internal/api/handler"
	"trip-data-pipeline/pkg/router"
)

// RegisterRoutes wires the API endpoints. metrics may be nil.
func RegisterRoutes(r *router.Router, h *handler.Handler, metrics http.Handler) {
	r.GET("/clean_data", h.CleanData)

	r.POST("/api/v1/runs", h.CreateRun)
	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/{id}", h.GetRun)

	r.GET("/api/trips", h.ListTrips)
	r.POST("/api/v1/trips/load", h.LoadTrips)

	r.GET("/api/v1/zones/fastest", h.FastestZones)
	r.POST("/api/v1/zones/fastest/export", h.ExportZones)

	r.GET("/api/v1/download/{filename}", h.DownloadFile)
	r.GET("/api/v1/files/{filename}", h.GetFileInfo)

	if metrics != nil {
		r.GET("/metrics", metrics.ServeHTTP)
	}
	r.Handle("/swagger/", httpSwagger.WrapHandler)
}
