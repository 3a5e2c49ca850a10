package model

import "time"

// Stage names, in execution order
const (
	StageLoad          = "load"
	StageMissingValues = "missing_values"
	StageDuplicates    = "duplicates"
	StageInvalidTime   = "invalid_time"
	StageDerive        = "derive"
	StageOutliers      = "outliers"
	StagePartition     = "partition"
	StageWrite         = "write"
)

// StageSummary describes one pipeline stage of a run
type StageSummary struct {
	Name         string        `json:"name"`
	RowsIn       int           `json:"rows_in"`
	RowsExcluded int           `json:"rows_excluded"`
	Duration     time.Duration `json:"-"`
	DurationMs   int64         `json:"duration_ms"`
}

// RowsOut is the number of rows surviving the stage
func (s StageSummary) RowsOut() int {
	return s.RowsIn - s.RowsExcluded
}
