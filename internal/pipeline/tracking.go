package pipeline

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"trip-data-pipeline/internal/metrics"
	"trip-data-pipeline/internal/model"
)

// Tracker records per-stage row counts and timings for one cleaning run. It logs every
// finished stage and feeds the Prometheus collectors when they are set. A nil *Tracker
// is valid and records nothing.
type Tracker struct {
	RunID     string
	StartTime time.Time

	logger  *zap.SugaredLogger
	metrics *metrics.Collectors

	mu     sync.RWMutex
	stages []model.StageSummary
}

// NewTracker creates a tracker for runID. logger and m may be nil.
func NewTracker(runID string, logger *zap.SugaredLogger, m *metrics.Collectors) *Tracker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Tracker{
		RunID:     runID,
		StartTime: time.Now(),
		logger:    logger.With("run_id", runID),
		metrics:   m,
	}
}

// StartStage marks the start of a stage that receives rowsIn rows. The returned function
// ends the stage with the number of rows it excluded.
func (t *Tracker) StartStage(name string, rowsIn int) func(rowsExcluded int) {
	if t == nil {
		return func(int) {}
	}

	start := time.Now()
	t.logger.Debugw("Stage started", "stage", name, "rows_in", rowsIn)

	return func(rowsExcluded int) {
		t.record(name, rowsIn, rowsExcluded, time.Since(start))
	}
}

func (t *Tracker) record(name string, rowsIn, rowsExcluded int, elapsed time.Duration) {
	summary := model.StageSummary{
		Name:         name,
		RowsIn:       rowsIn,
		RowsExcluded: rowsExcluded,
		Duration:     elapsed,
		DurationMs:   elapsed.Milliseconds(),
	}

	t.mu.Lock()
	t.stages = append(t.stages, summary)
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		if rowsExcluded > 0 {
			t.metrics.RowsExcluded.WithLabelValues(name).Add(float64(rowsExcluded))
		}
	}

	t.logger.Infow("Stage completed",
		"stage", name,
		"rows_in", rowsIn,
		"rows_excluded", rowsExcluded,
		"rows_out", summary.RowsOut(),
		"duration", elapsed,
	)
}

// Stages returns a copy of the finished stage summaries in completion order
func (t *Tracker) Stages() []model.StageSummary {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.StageSummary(nil), t.stages...)
}

// Complete records the final outcome of the run
func (t *Tracker) Complete(result model.CleanResult) {
	if t == nil {
		return
	}
	elapsed := time.Since(t.StartTime)

	if t.metrics != nil {
		t.metrics.Runs.WithLabelValues(result.Status).Inc()
		if result.Succeeded() {
			t.metrics.RunDuration.Observe(elapsed.Seconds())
			t.metrics.RowsOutput.WithLabelValues("clean").Add(float64(result.RowsCleaned))
			t.metrics.RowsOutput.WithLabelValues("excluded").Add(float64(result.RowsExcluded))
		}
	}

	if !result.Succeeded() {
		t.logger.Errorw("Cleaning run failed", "error", result.Message, "duration", elapsed)
		return
	}
	t.logger.Infow("Cleaning run completed",
		"rows_cleaned", result.RowsCleaned,
		"rows_excluded", result.RowsExcluded,
		"duration", elapsed,
	)
}
