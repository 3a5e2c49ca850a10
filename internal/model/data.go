package model

import (
	"time"
)

// Raw trip columns, after header normalization
const (
	ColID               = "id"
	ColVendorID         = "vendor_id"
	ColPickupDatetime   = "pickup_datetime"
	ColDropoffDatetime  = "dropoff_datetime"
	ColPassengerCount   = "passenger_count"
	ColPickupLongitude  = "pickup_longitude"
	ColPickupLatitude   = "pickup_latitude"
	ColDropoffLongitude = "dropoff_longitude"
	ColDropoffLatitude  = "dropoff_latitude"
	ColStoreAndFwdFlag  = "store_and_fwd_flag"
	ColTripDuration     = "trip_duration"
)

// Derived feature columns
const (
	ColTripDurationMin = "trip_duration_min"
	ColTripDistanceKm  = "trip_distance_km"
	ColSpeedKmh        = "speed_kmh"
)

// RawTripColumns lists the columns every raw source must provide.
var RawTripColumns = []string{
	ColID,
	ColVendorID,
	ColPickupDatetime,
	ColDropoffDatetime,
	ColPassengerCount,
	ColPickupLongitude,
	ColPickupLatitude,
	ColDropoffLongitude,
	ColDropoffLatitude,
	ColStoreAndFwdFlag,
	ColTripDuration,
}

// NumericColumns lists the columns holding numbers, raw and derived. Only these are
// checked for non-finite values in the clean output.
func NumericColumns() []string {
	return []string{
		ColPassengerCount,
		ColPickupLongitude,
		ColPickupLatitude,
		ColDropoffLongitude,
		ColDropoffLatitude,
		ColTripDuration,
		ColTripDurationMin,
		ColTripDistanceKm,
		ColSpeedKmh,
	}
}

// DerivedFeatures lists the columns added by the feature deriver, in output order.
func DerivedFeatures() []string {
	return []string{ColTripDurationMin, ColTripDistanceKm, ColSpeedKmh}
}

// Features holds the derived metrics of one trip
type Features struct {
	DurationMin float64 `json:"trip_duration_min"`
	DistanceKm  float64 `json:"trip_distance_km"`
	SpeedKmh    float64 `json:"speed_kmh"`
}

// Record is one row of a dataset. Values are aligned with the owning Dataset's Columns;
// an empty value is a missing value.
type Record struct {
	Index  int      `json:"index"` // position in the source file, 0-based
	Values []string `json:"values"`

	// Parsed timestamps; zero when missing or unparseable
	Pickup  time.Time `json:"-"`
	Dropoff time.Time `json:"-"`

	Features   *Features `json:"features,omitempty"`
	ExcludedBy string    `json:"excluded_by,omitempty"` // stage that dropped the row
}

// Dataset is an ordered sequence of records sharing a column set.
type Dataset struct {
	Columns []string
	Records []*Record
	index   map[string]int
}

// NewDataset creates an empty dataset with the given columns
func NewDataset(columns []string) *Dataset {
	ds := &Dataset{
		Columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range ds.Columns {
		if _, exists := ds.index[c]; !exists {
			ds.index[c] = i
		}
	}
	return ds
}

// Empty returns a dataset with the same columns and no records
func (d *Dataset) Empty() *Dataset {
	return NewDataset(d.Columns)
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Append adds records to the end of the dataset
func (d *Dataset) Append(recs ...*Record) {
	d.Records = append(d.Records, recs...)
}

// ColumnIndex returns the position of a column
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// HasColumn reports whether the dataset carries the column
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Value returns the raw value of a column for a record, or "" when absent
func (d *Dataset) Value(rec *Record, name string) string {
	i, ok := d.index[name]
	if !ok || i >= len(rec.Values) {
		return ""
	}
	return rec.Values[i]
}

// RequireColumns returns a *MissingColumnsError naming every absent column
func (d *Dataset) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if !d.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}
