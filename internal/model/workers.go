package model

import "time"

// ZoneStat is the aggregated speed of trips starting in one 0.01° grid cell
type ZoneStat struct {
	Zone        string  `json:"zone"`
	AvgSpeedKmh float64 `json:"avg_speed_kmh"`
	StdDevKmh   float64 `json:"stddev_speed_kmh"`
	Trips       int     `json:"trips"`
}

// ExportResult represents the result of writing a report file
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json", "excel"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}
