package model

import "time"

// Trip is a typed clean trip row, as stored in the trips table
type Trip struct {
	ID               string    `json:"id"`
	VendorID         string    `json:"vendor_id"`
	PickupDatetime   time.Time `json:"pickup_datetime"`
	DropoffDatetime  time.Time `json:"dropoff_datetime"`
	PassengerCount   int       `json:"passenger_count"`
	PickupLongitude  float64   `json:"pickup_longitude"`
	PickupLatitude   float64   `json:"pickup_latitude"`
	DropoffLongitude float64   `json:"dropoff_longitude"`
	DropoffLatitude  float64   `json:"dropoff_latitude"`
	StoreAndFwdFlag  string    `json:"store_and_fwd_flag"`
	TripDuration     float64   `json:"trip_duration"`
	TripDurationMin  float64   `json:"trip_duration_min"`
	TripDistanceKm   float64   `json:"trip_distance_km"`
	SpeedKmh         float64   `json:"speed_kmh"`
}

// LoadResult summarizes a load of clean trips into the database
type LoadResult struct {
	Source     string `json:"source"`
	Inserted   int    `json:"inserted"`
	Skipped    int    `json:"skipped"`
	Chunks     int    `json:"chunks"`
	DurationMs int64  `json:"duration_ms"`
}
