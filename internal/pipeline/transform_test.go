package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-data-pipeline/internal/model"
)

func TestHaversine(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(40.7128, -74.0060, 40.7128, -74.0060))
	})

	t.Run("antipodal points", func(t *testing.T) {
		assert.InDelta(t, 20015.09, Haversine(0, 0, 0, 180), 0.1)
		assert.InDelta(t, 20015.09, Haversine(90, 0, -90, 0), 0.1)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Haversine(40.7128, -74.0060, 40.7306, -73.9352)
		b := Haversine(40.7306, -73.9352, 40.7128, -74.0060)
		assert.InDelta(t, a, b, 1e-9)
	})

	t.Run("lower manhattan", func(t *testing.T) {
		assert.InDelta(t, 6.286, Haversine(40.7128, -74.0060, 40.7306, -73.9352), 0.01)
	})

	t.Run("unparseable input", func(t *testing.T) {
		assert.True(t, math.IsNaN(Haversine(math.NaN(), 0, 0, 0)))
	})
}

func TestSpeed(t *testing.T) {
	assert.Equal(t, 30.0, Speed(5, 10))
	assert.True(t, math.IsInf(Speed(5, 0), 1))
	assert.True(t, math.IsNaN(Speed(0, 0)))
}

func TestDeriveFeatures(t *testing.T) {
	ds := readDataset(t, tripCSV(validTrip))

	out := DeriveFeatures(ds, nil)

	require.Equal(t, 1, out.Len())
	f := out.Records[0].Features
	require.NotNil(t, f)
	assert.Equal(t, 10.0, f.DurationMin)
	assert.InDelta(t, 6.286, f.DistanceKm, 0.01)
	assert.InDelta(t, 37.72, f.SpeedKmh, 0.05)
}

func TestDeriveFeatures_KeepsEveryRow(t *testing.T) {
	ds := readDataset(t, tripCSV(
		validTrip,
		"id9,1,2016-03-14 08:00:00,2016-03-14 08:00:00,1,-73.98,40.75,-73.97,40.76,N,0",
		"id10,1,2016-03-14 08:00:00,2016-03-14 08:10:00,1,abc,40.75,-73.97,40.76,N,600",
	))

	out := DeriveFeatures(ds, nil)

	require.Equal(t, 3, out.Len())
	assert.True(t, math.IsInf(out.Records[1].Features.SpeedKmh, 1), "zero duration gives infinite speed")
	assert.True(t, math.IsNaN(out.Records[2].Features.DistanceKm), "unparseable coordinate gives NaN distance")
	for _, rec := range out.Records {
		assert.NotNil(t, rec.Features)
	}
	assert.Equal(t, []string{model.ColTripDurationMin, model.ColTripDistanceKm, model.ColSpeedKmh}, model.DerivedFeatures())
}
