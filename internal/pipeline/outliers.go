package pipeline

import (
	"trip-data-pipeline/internal/model"
)

// Realistic trip bounds
const (
	MaxDistanceKm = 100.0
	MaxSpeedKmh   = 200.0
)

// FilterOutliers drops trips with distance outside (0, 100] km or speed outside
// (0, 200] km/h. NaN values are outside every bound.
func FilterOutliers(ds *model.Dataset, tracker *Tracker) (*model.Dataset, []*model.Record) {
	return runFilter(model.StageOutliers, ds, dropOutliers, tracker)
}

func dropOutliers(ds *model.Dataset) (*model.Dataset, []*model.Record) {
	return partitionBy(ds, func(rec *model.Record) bool {
		return WithinBounds(rec.Features)
	})
}

// WithinBounds reports whether derived features describe a realistic trip
func WithinBounds(f *model.Features) bool {
	if f == nil {
		return false
	}
	return f.DistanceKm > 0 && f.DistanceKm <= MaxDistanceKm &&
		f.SpeedKmh > 0 && f.SpeedKmh <= MaxSpeedKmh
}
