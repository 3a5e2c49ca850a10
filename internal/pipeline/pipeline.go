package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trip-data-pipeline/internal/metrics"
	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/pkg/utils"
)

// Default artifact names
const (
	DefaultCleanFile    = "clean_data.csv"
	DefaultExcludedFile = "excluded_data_log.csv"
)

// Clean runs the cleaning stages on a loaded dataset: validation, feature derivation,
// outlier filtering and partitioning. It fails only when a required column is absent.
func Clean(ds *model.Dataset, tracker *Tracker) (*Outputs, error) {
	if err := ds.RequireColumns(model.RawTripColumns...); err != nil {
		return nil, err
	}

	valid, excluded := ValidateRecords(ds, tracker)
	derived := DeriveFeatures(valid, tracker)
	clean, dropped := FilterOutliers(derived, tracker)
	excluded = append(excluded, dropped...)

	return Partition(clean, excluded, tracker), nil
}

// RunStore persists run history. *store.Store implements it.
type RunStore interface {
	SaveRun(ctx context.Context, run model.Run) error
	FinishRun(ctx context.Context, result model.CleanResult) error
}

// Runner executes complete cleaning runs: load, clean, write
type Runner struct {
	Source       string
	CleanFile    string
	ExcludedFile string

	// When set, overrides in a RunSpec must be plain file names and resolve inside
	// these directories. Left empty, overrides are used as given.
	SourceDir string
	OutputDir string

	Store   RunStore
	Metrics *metrics.Collectors
	Logger  *zap.SugaredLogger

	// runs sharing output paths must not interleave their writes
	mu sync.Mutex
}

// NewRunner creates a runner with default output paths
func NewRunner(source string, logger *zap.SugaredLogger) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Runner{
		Source:       source,
		CleanFile:    DefaultCleanFile,
		ExcludedFile: DefaultExcludedFile,
		Logger:       logger,
	}
}

// Run loads spec.Source (or the runner's source), cleans it and writes both outputs.
// Every failure is reported through the returned result; nothing is written unless the
// whole run succeeds.
func (r *Runner) Run(ctx context.Context, spec model.RunSpec) model.CleanResult {
	runID := uuid.New().String()
	tracker := NewTracker(runID, r.logger(), r.Metrics)

	spec, err := r.resolve(spec)
	if err != nil {
		r.logger().Warnw("Rejected run overrides", "run_id", runID, "error", err)
		result := model.Failed(runID, err)
		tracker.Complete(result)
		return result
	}

	r.saveRun(ctx, model.Run{ID: runID, Source: spec.Source, Status: model.StatusRunning})

	result := r.run(ctx, spec, tracker)
	result.RunID = runID
	result.Stages = tracker.Stages()
	result.DurationMs = time.Since(tracker.StartTime).Milliseconds()

	tracker.Complete(result)
	r.finishRun(ctx, result)
	return result
}

func (r *Runner) run(ctx context.Context, spec model.RunSpec, tracker *Tracker) model.CleanResult {
	start := time.Now()
	ds, err := LoadCSV(ctx, spec.Source)
	if err != nil {
		return model.Failed("", err)
	}
	if tracker != nil {
		tracker.record(model.StageLoad, ds.Len(), 0, time.Since(start))
	}

	out, err := Clean(ds, tracker)
	if err != nil {
		var missing *model.MissingColumnsError
		if errors.As(err, &missing) {
			r.logger().Warnw("Source is missing required columns", "columns", missing.Columns)
		}
		return model.Failed("", err)
	}
	if out.Sanitized > 0 {
		r.logger().Infow("Replaced non-finite values in clean data", "cells", out.Sanitized)
	}

	r.mu.Lock()
	done := tracker.StartStage(model.StageWrite, out.Clean.Len()+out.Excluded.Len())
	err = WriteOutputs(out, spec.CleanFile, spec.ExcludedFile)
	done(0)
	r.mu.Unlock()
	if err != nil {
		return model.Failed("", err)
	}

	return model.CleanResult{
		Status:          model.StatusSuccess,
		RowsCleaned:     out.Clean.Len(),
		RowsExcluded:    out.Excluded.Len(),
		CleanFile:       spec.CleanFile,
		LogFile:         spec.ExcludedFile,
		DerivedFeatures: model.DerivedFeatures(),
	}
}

// resolve fills empty fields from the runner's defaults and confines overrides to
// SourceDir and OutputDir
func (r *Runner) resolve(spec model.RunSpec) (model.RunSpec, error) {
	var err error
	if spec.Source, err = confine(r.SourceDir, spec.Source, r.Source); err != nil {
		return spec, fmt.Errorf("source: %w", err)
	}
	if spec.CleanFile, err = confine(r.OutputDir, spec.CleanFile, r.CleanFile); err != nil {
		return spec, fmt.Errorf("clean_file: %w", err)
	}
	if spec.ExcludedFile, err = confine(r.OutputDir, spec.ExcludedFile, r.ExcludedFile); err != nil {
		return spec, fmt.Errorf("excluded_file: %w", err)
	}
	return spec, nil
}

func confine(dir, name, def string) (string, error) {
	if name == "" {
		return def, nil
	}
	if dir == "" {
		return name, nil
	}
	return utils.ConfinedPath(dir, name)
}

func (r *Runner) saveRun(ctx context.Context, run model.Run) {
	if r.Store == nil {
		return
	}
	if err := r.Store.SaveRun(ctx, run); err != nil {
		r.logger().Warnw("Failed to save run", "run_id", run.ID, "error", err)
	}
}

func (r *Runner) finishRun(ctx context.Context, result model.CleanResult) {
	if r.Store == nil {
		return
	}
	if err := r.Store.FinishRun(ctx, result); err != nil {
		r.logger().Warnw("Failed to record run result", "run_id", result.RunID, "error", err)
	}
}

func (r *Runner) logger() *zap.SugaredLogger {
	if r.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return r.Logger
}
