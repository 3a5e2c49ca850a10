package pipeline

import (
	"strconv"
	"strings"

	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/pkg/utils"
)

// filterFunc splits a dataset into surviving records and dropped records
type filterFunc func(ds *model.Dataset) (kept *model.Dataset, dropped []*model.Record)

// ValidateRecords removes rows with missing values, exact duplicates and inconsistent
// timestamps, in that order. Each step runs on the survivors of the previous one.
// Dropped records are returned in stage order, tagged with the stage that dropped them.
func ValidateRecords(ds *model.Dataset, tracker *Tracker) (*model.Dataset, []*model.Record) {
	var excluded []*model.Record

	ds, dropped := runFilter(model.StageMissingValues, ds, dropMissing, tracker)
	excluded = append(excluded, dropped...)

	ds, dropped = runFilter(model.StageDuplicates, ds, dropDuplicates, tracker)
	excluded = append(excluded, dropped...)

	parseTimestamps(ds)
	ds, dropped = runFilter(model.StageInvalidTime, ds, dropInvalidTimes, tracker)
	excluded = append(excluded, dropped...)

	return ds, excluded
}

func runFilter(stage string, ds *model.Dataset, fn filterFunc, tracker *Tracker) (*model.Dataset, []*model.Record) {
	done := tracker.StartStage(stage, ds.Len())
	kept, dropped := fn(ds)
	for _, rec := range dropped {
		rec.ExcludedBy = stage
	}
	done(len(dropped))
	return kept, dropped
}

// partitionBy keeps the records for which keep returns true, preserving order
func partitionBy(ds *model.Dataset, keep func(rec *model.Record) bool) (*model.Dataset, []*model.Record) {
	kept := ds.Empty()
	var dropped []*model.Record
	for _, rec := range ds.Records {
		if keep(rec) {
			kept.Append(rec)
		} else {
			dropped = append(dropped, rec)
		}
	}
	return kept, dropped
}

// dropMissing drops rows with a missing value in any column
func dropMissing(ds *model.Dataset) (*model.Dataset, []*model.Record) {
	width := len(ds.Columns)
	return partitionBy(ds, func(rec *model.Record) bool {
		if len(rec.Values) < width {
			return false
		}
		for _, v := range rec.Values {
			if v == "" {
				return false
			}
		}
		return true
	})
}

// dropDuplicates drops every row equal in all columns to an earlier row
func dropDuplicates(ds *model.Dataset) (*model.Dataset, []*model.Record) {
	seen := make(map[string]struct{}, ds.Len())
	return partitionBy(ds, func(rec *model.Record) bool {
		key := rowKey(rec.Values)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// rowKey builds an unambiguous key from all values of a row
func rowKey(values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// parseTimestamps coerces pickup/dropoff values. Unparseable values leave a zero time.
func parseTimestamps(ds *model.Dataset) {
	for _, rec := range ds.Records {
		rec.Pickup, _ = utils.ParseTimestamp(ds.Value(rec, model.ColPickupDatetime))
		rec.Dropoff, _ = utils.ParseTimestamp(ds.Value(rec, model.ColDropoffDatetime))
	}
}

// dropInvalidTimes drops rows whose dropoff precedes pickup, and rows where either
// timestamp could not be parsed
func dropInvalidTimes(ds *model.Dataset) (*model.Dataset, []*model.Record) {
	return partitionBy(ds, func(rec *model.Record) bool {
		if rec.Pickup.IsZero() || rec.Dropoff.IsZero() {
			return false
		}
		return !rec.Dropoff.Before(rec.Pickup)
	})
}
