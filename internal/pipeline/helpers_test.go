package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"trip-data-pipeline/internal/model"
)

const tripHeader = "id,vendor_id,pickup_datetime,dropoff_datetime,passenger_count,pickup_longitude,pickup_latitude,dropoff_longitude,dropoff_latitude,store_and_fwd_flag,trip_duration"

// validTrip is the lower Manhattan trip: 10 minutes, about 6.29 km
const validTrip = "id1,2,2016-03-14 17:24:55,2016-03-14 17:34:55,1,-74.0060,40.7128,-73.9352,40.7306,N,600"

// tripCSV joins rows under the trip header
func tripCSV(rows ...string) string {
	return tripHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func readDataset(t *testing.T, data string) *model.Dataset {
	t.Helper()
	ds, err := ReadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	return ds
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// sampleRows covers every exclusion stage plus two clean trips
var sampleRows = []string{
	validTrip,
	// missing passenger count
	"id2,1,2016-03-14 08:00:00,2016-03-14 08:10:00,,-73.98,40.75,-73.97,40.76,N,600",
	// exact duplicate of the first row
	validTrip,
	// dropoff before pickup
	"id3,1,2016-03-14 09:00:00,2016-03-14 08:50:00,1,-73.98,40.75,-73.97,40.76,N,600",
	// unparseable pickup timestamp
	"id4,1,not-a-date,2016-03-14 08:10:00,1,-73.98,40.75,-73.97,40.76,N,600",
	// identical pickup and dropoff: zero distance
	"id5,2,2016-03-14 10:00:00,2016-03-14 10:05:00,1,-73.98,40.75,-73.98,40.75,N,300",
	// 1 second for several km: speed far above 200 km/h
	"id6,2,2016-03-14 11:00:00,2016-03-14 11:00:01,1,-74.0060,40.7128,-73.9352,40.7306,N,1",
	// second clean trip
	"id7,1,2016-03-14 12:00:00,2016-03-14 12:20:00,2,-73.9857,40.7484,-73.9680,40.7851,N,1200",
}
