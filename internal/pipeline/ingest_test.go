package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-data-pipeline/internal/model"
)

func TestReadCSV_NormalizesHeaders(t *testing.T) {
	data := "\ufeff ID , Vendor_ID,\"Pickup_Datetime\",id\n" +
		"a,1,2016-01-01 00:00:00,dup\n"

	ds := readDataset(t, data)

	assert.Equal(t, []string{"id", "vendor_id", "pickup_datetime"}, ds.Columns)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, []string{"a", "1", "2016-01-01 00:00:00"}, ds.Records[0].Values)
	assert.Equal(t, 0, ds.Records[0].Index)
}

func TestReadCSV_MissingValues(t *testing.T) {
	data := "a,b,c\n" +
		"1,NA,\n" +
		"2,null,NaN\n" +
		"3\n"

	ds := readDataset(t, data)

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"1", "", ""}, ds.Records[0].Values)
	assert.Equal(t, []string{"2", "", ""}, ds.Records[1].Values)
	assert.Equal(t, []string{"3", "", ""}, ds.Records[2].Values, "short rows are padded with missing values")
	assert.Equal(t, 2, ds.Records[2].Index)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrEmptySource)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	ds := readDataset(t, tripHeader+"\n")
	assert.Equal(t, 0, ds.Len())
	assert.Len(t, ds.Columns, len(model.RawTripColumns))
}

func TestReadCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader(tripCSV(validTrip)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCSV_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "train.csv", tripCSV(validTrip))

	ds, err := LoadCSV(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, "id1", ds.Value(ds.Records[0], model.ColID))
}

func TestLoadCSV_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	_, err := LoadCSV(context.Background(), path)
	require.Error(t, err)

	var loadErr *model.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Source)
}

func TestLoadCSV_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/train.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(tripCSV(validTrip)))
	}))
	defer server.Close()

	ds, err := LoadCSV(context.Background(), server.URL+"/train.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = LoadCSV(context.Background(), server.URL+"/other.csv")
	var loadErr *model.LoadError
	assert.True(t, errors.As(err, &loadErr))
}
