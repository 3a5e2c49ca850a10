package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"trip-data-pipeline/internal/model"
)

const tripColumns = `id, vendor_id, pickup_datetime, dropoff_datetime, passenger_count,
	pickup_longitude, pickup_latitude, dropoff_longitude, dropoff_latitude,
	store_and_fwd_flag, trip_duration, trip_duration_min, trip_distance_km, speed_kmh`

func (s *Store) tripsTable() string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS trips (
		id VARCHAR(50),
		vendor_id VARCHAR(10),
		pickup_datetime %[1]s,
		dropoff_datetime %[1]s,
		passenger_count INTEGER,
		pickup_longitude %[2]s,
		pickup_latitude %[2]s,
		dropoff_longitude %[2]s,
		dropoff_latitude %[2]s,
		store_and_fwd_flag VARCHAR(3),
		trip_duration %[2]s,
		trip_duration_min %[2]s,
		trip_distance_km %[2]s,
		speed_kmh %[2]s
	);`, s.timeType(), s.floatType())
}

// ResetTrips drops and recreates the trips table
func (s *Store) ResetTrips(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS trips`); err != nil {
		return fmt.Errorf("failed to drop trips table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.tripsTable()); err != nil {
		return fmt.Errorf("failed to create trips table: %w", err)
	}
	return nil
}

// InsertTrips inserts trips in a single transaction
func (s *Store) InsertTrips(ctx context.Context, trips []model.Trip) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO trips (`+tripColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range trips {
		_, err = stmt.ExecContext(ctx,
			t.ID, t.VendorID, t.PickupDatetime, t.DropoffDatetime, t.PassengerCount,
			nullFloat(t.PickupLongitude), nullFloat(t.PickupLatitude),
			nullFloat(t.DropoffLongitude), nullFloat(t.DropoffLatitude),
			t.StoreAndFwdFlag, nullFloat(t.TripDuration), nullFloat(t.TripDurationMin),
			nullFloat(t.TripDistanceKm), nullFloat(t.SpeedKmh),
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// ListTrips returns up to limit trips in insertion order
func (s *Store) ListTrips(ctx context.Context, limit int) ([]model.Trip, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+tripColumns+` FROM trips LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []model.Trip{}
	for rows.Next() {
		var t model.Trip
		var floats [8]sql.NullFloat64
		if err := rows.Scan(
			&t.ID, &t.VendorID, &t.PickupDatetime, &t.DropoffDatetime, &t.PassengerCount,
			&floats[0], &floats[1], &floats[2], &floats[3],
			&t.StoreAndFwdFlag, &floats[4], &floats[5], &floats[6], &floats[7],
		); err != nil {
			return nil, err
		}
		t.PickupLongitude = floats[0].Float64
		t.PickupLatitude = floats[1].Float64
		t.DropoffLongitude = floats[2].Float64
		t.DropoffLatitude = floats[3].Float64
		t.TripDuration = floats[4].Float64
		t.TripDurationMin = floats[5].Float64
		t.TripDistanceKm = floats[6].Float64
		t.SpeedKmh = floats[7].Float64
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// nullFloat stores non-finite values as NULL
func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: !math.IsNaN(f) && !math.IsInf(f, 0)}
}
