package model

import "time"

// Run statuses
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunSpec is the payload for POST /api/v1/runs. Empty fields fall back to configured paths.
type RunSpec struct {
	Source       string `json:"source,omitempty" validate:"omitempty,min=1"`
	CleanFile    string `json:"clean_file,omitempty" validate:"omitempty,endswith=.csv"`
	ExcludedFile string `json:"excluded_file,omitempty" validate:"omitempty,endswith=.csv,nefield=CleanFile"`
}

// CleanResult is the summary returned to callers of a cleaning run
type CleanResult struct {
	RunID           string         `json:"run_id,omitempty"`
	Status          string         `json:"status"`
	Message         string         `json:"message,omitempty"`
	RowsCleaned     int            `json:"rows_cleaned"`
	RowsExcluded    int            `json:"rows_excluded"`
	CleanFile       string         `json:"clean_file,omitempty"`
	LogFile         string         `json:"log_file,omitempty"`
	DerivedFeatures []string       `json:"derived_features,omitempty"`
	Stages          []StageSummary `json:"stages,omitempty"`
	DurationMs      int64          `json:"duration_ms"`
}

// Succeeded reports whether the run produced both outputs
func (r CleanResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Failed builds an error result carrying a human-readable message
func Failed(runID string, err error) CleanResult {
	return CleanResult{
		RunID:   runID,
		Status:  StatusError,
		Message: err.Error(),
	}
}

// Run is a persisted cleaning run
type Run struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	RowsCleaned  int       `json:"rows_cleaned"`
	RowsExcluded int       `json:"rows_excluded"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
