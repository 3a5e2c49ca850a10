package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trip-data-pipeline/internal/metrics"
	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/pkg/utils"
)

// DefaultChunkSize is the number of trips inserted per transaction
const DefaultChunkSize = 5000

// TripSink receives clean trips. *store.Store implements it.
type TripSink interface {
	ResetTrips(ctx context.Context) error
	InsertTrips(ctx context.Context, trips []model.Trip) error
}

// LoadOptions tunes LoadTripsFromFile. Zero values fall back to defaults.
type LoadOptions struct {
	ChunkSize int
	Retry     model.RetryConfig
	Logger    *zap.SugaredLogger
	Metrics   *metrics.Collectors
}

// LoadTripsFromFile replaces the contents of the trips table with the trips of a clean
// CSV file. Rows whose timestamps cannot be parsed are skipped. Trips are inserted in
// chunks, each chunk retried as a unit on failure.
func LoadTripsFromFile(ctx context.Context, path string, sink TripSink, opts LoadOptions) (model.LoadResult, error) {
	start := time.Now()
	result := model.LoadResult{Source: path}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	retry := opts.Retry
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryConfig
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ds, err := LoadCSV(ctx, path)
	if err != nil {
		return result, err
	}
	if err := ds.RequireColumns(model.RawTripColumns...); err != nil {
		return result, err
	}

	trips, skipped := TripsFromDataset(ds)
	result.Skipped = skipped

	if err := withRetry(ctx, retry, logger, "reset trips", sink.ResetTrips); err != nil {
		return result, fmt.Errorf("failed to reset trips table: %w", err)
	}

	for offset := 0; offset < len(trips); offset += chunkSize {
		end := min(offset+chunkSize, len(trips))
		chunk := trips[offset:end]

		err := withRetry(ctx, retry, logger, "insert trips", func(ctx context.Context) error {
			return sink.InsertTrips(ctx, chunk)
		})
		if err != nil {
			return result, fmt.Errorf("failed to insert rows %d-%d: %w", offset, end, err)
		}

		result.Inserted += len(chunk)
		result.Chunks++
		if opts.Metrics != nil {
			opts.Metrics.TripsLoaded.Add(float64(len(chunk)))
		}
		logger.Debugw("Inserted trip chunk", "chunk", result.Chunks, "rows", len(chunk), "total", result.Inserted)
	}

	result.DurationMs = time.Since(start).Milliseconds()
	logger.Infow("Trips loaded",
		"source", path,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"chunks", result.Chunks,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// TripsFromDataset converts rows to typed trips. Rows with an unparseable pickup or
// dropoff timestamp are skipped and counted; other unparseable numbers become NaN.
func TripsFromDataset(ds *model.Dataset) ([]model.Trip, int) {
	trips := make([]model.Trip, 0, ds.Len())
	skipped := 0

	for _, rec := range ds.Records {
		pickup, ok := utils.ParseTimestamp(ds.Value(rec, model.ColPickupDatetime))
		if !ok {
			skipped++
			continue
		}
		dropoff, ok := utils.ParseTimestamp(ds.Value(rec, model.ColDropoffDatetime))
		if !ok {
			skipped++
			continue
		}
		passengers, _ := utils.ParseInt(ds.Value(rec, model.ColPassengerCount))

		trips = append(trips, model.Trip{
			ID:               ds.Value(rec, model.ColID),
			VendorID:         ds.Value(rec, model.ColVendorID),
			PickupDatetime:   pickup,
			DropoffDatetime:  dropoff,
			PassengerCount:   passengers,
			PickupLongitude:  utils.ParseFloat(ds.Value(rec, model.ColPickupLongitude)),
			PickupLatitude:   utils.ParseFloat(ds.Value(rec, model.ColPickupLatitude)),
			DropoffLongitude: utils.ParseFloat(ds.Value(rec, model.ColDropoffLongitude)),
			DropoffLatitude:  utils.ParseFloat(ds.Value(rec, model.ColDropoffLatitude)),
			StoreAndFwdFlag:  ds.Value(rec, model.ColStoreAndFwdFlag),
			TripDuration:     utils.ParseFloat(ds.Value(rec, model.ColTripDuration)),
			TripDurationMin:  utils.ParseFloat(ds.Value(rec, model.ColTripDurationMin)),
			TripDistanceKm:   utils.ParseFloat(ds.Value(rec, model.ColTripDistanceKm)),
			SpeedKmh:         utils.ParseFloat(ds.Value(rec, model.ColSpeedKmh)),
		})
	}
	return trips, skipped
}
