package pipeline

import (
	"math"

	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/pkg/utils"
)

// EarthRadiusKm is the sphere radius used for great-circle distances
const EarthRadiusKm = 6371.0

// DeriveFeatures adds trip duration in minutes, haversine distance and average speed to
// every record. No record is dropped; unparseable inputs and zero durations produce
// non-finite values that later stages deal with.
func DeriveFeatures(ds *model.Dataset, tracker *Tracker) *model.Dataset {
	done := tracker.StartStage(model.StageDerive, ds.Len())
	defer done(0)

	for _, rec := range ds.Records {
		durationMin := utils.ParseFloat(ds.Value(rec, model.ColTripDuration)) / 60
		distance := Haversine(
			utils.ParseFloat(ds.Value(rec, model.ColPickupLatitude)),
			utils.ParseFloat(ds.Value(rec, model.ColPickupLongitude)),
			utils.ParseFloat(ds.Value(rec, model.ColDropoffLatitude)),
			utils.ParseFloat(ds.Value(rec, model.ColDropoffLongitude)),
		)
		rec.Features = &model.Features{
			DurationMin: durationMin,
			DistanceKm:  distance,
			SpeedKmh:    Speed(distance, durationMin),
		}
	}
	return ds
}

// Haversine returns the great-circle distance in km between two points given in degrees
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1, lon1 = toRadians(lat1), toRadians(lon1)
	lat2, lon2 = toRadians(lat2), toRadians(lon2)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	// rounding can push a just past 1 for antipodal points
	c := 2 * math.Asin(math.Sqrt(math.Min(a, 1)))
	return EarthRadiusKm * c
}

// Speed returns km/h for a distance covered in durationMin minutes. A zero duration
// yields ±Inf, or NaN for a zero distance.
func Speed(distanceKm, durationMin float64) float64 {
	return distanceKm / (durationMin / 60)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
