package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-data-pipeline/internal/model"
)

func ids(ds *model.Dataset, recs []*model.Record) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ds.Value(rec, model.ColID))
	}
	return out
}

func TestValidateRecords(t *testing.T) {
	ds := readDataset(t, tripCSV(sampleRows...))

	valid, excluded := ValidateRecords(ds, nil)

	assert.Equal(t, []string{"id1", "id5", "id6", "id7"}, ids(valid, valid.Records))
	assert.Equal(t, []string{"id2", "id1", "id3", "id4"}, ids(ds, excluded))

	stages := make([]string, 0, len(excluded))
	for _, rec := range excluded {
		stages = append(stages, rec.ExcludedBy)
	}
	assert.Equal(t, []string{
		model.StageMissingValues,
		model.StageDuplicates,
		model.StageInvalidTime,
		model.StageInvalidTime,
	}, stages)
}

func TestDropDuplicates_KeepsFirst(t *testing.T) {
	ds := readDataset(t, tripCSV(validTrip, validTrip, validTrip))

	kept, dropped := dropDuplicates(ds)

	require.Equal(t, 1, kept.Len())
	assert.Equal(t, 0, kept.Records[0].Index)
	require.Len(t, dropped, 2)
	assert.Equal(t, 1, dropped[0].Index)
	assert.Equal(t, 2, dropped[1].Index)
}

func TestRowKey_Unambiguous(t *testing.T) {
	assert.NotEqual(t, rowKey([]string{"ab", "c"}), rowKey([]string{"a", "bc"}))
	assert.Equal(t, rowKey([]string{"a", "b"}), rowKey([]string{"a", "b"}))
}

func TestDropInvalidTimes(t *testing.T) {
	tests := []struct {
		name    string
		pickup  string
		dropoff string
		keep    bool
	}{
		{"ordered", "2016-03-14 08:00:00", "2016-03-14 08:10:00", true},
		{"equal", "2016-03-14 08:00:00", "2016-03-14 08:00:00", true},
		{"reversed", "2016-03-14 08:10:00", "2016-03-14 08:00:00", false},
		{"unparseable pickup", "yesterday", "2016-03-14 08:00:00", false},
		{"unparseable dropoff", "2016-03-14 08:00:00", "14/03/2016 8am", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := readDataset(t, "id,pickup_datetime,dropoff_datetime\nx,"+tt.pickup+","+tt.dropoff+"\n")
			parseTimestamps(ds)

			kept, dropped := dropInvalidTimes(ds)
			if tt.keep {
				assert.Equal(t, 1, kept.Len())
				assert.Empty(t, dropped)
			} else {
				assert.Equal(t, 0, kept.Len())
				assert.Len(t, dropped, 1)
			}
		})
	}
}
