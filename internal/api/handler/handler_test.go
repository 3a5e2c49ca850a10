package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-data-pipeline/internal/config"
	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/internal/pipeline"
	"trip-data-pipeline/internal/store"
)

type fakeCleaner struct {
	result model.CleanResult
	specs  []model.RunSpec
}

func (f *fakeCleaner) Run(_ context.Context, spec model.RunSpec) model.CleanResult {
	f.specs = append(f.specs, spec)
	return f.result
}

type fakeStore struct {
	runs      []model.Run
	stages    map[string][]model.StageSummary
	trips     []model.Trip
	limits    []int
	inserted  int
	resetting int
}

func (f *fakeStore) ResetTrips(context.Context) error {
	f.resetting++
	return nil
}

func (f *fakeStore) InsertTrips(_ context.Context, trips []model.Trip) error {
	f.inserted += len(trips)
	return nil
}

func (f *fakeStore) ListRuns(context.Context) ([]model.Run, error) {
	return f.runs, nil
}

func (f *fakeStore) GetRun(_ context.Context, runID string) (model.Run, []model.StageSummary, error) {
	for _, run := range f.runs {
		if run.ID == runID {
			return run, f.stages[runID], nil
		}
	}
	return model.Run{}, nil, store.ErrNotFound
}

func (f *fakeStore) ListTrips(_ context.Context, limit int) ([]model.Trip, error) {
	f.limits = append(f.limits, limit)
	if limit < len(f.trips) {
		return f.trips[:limit], nil
	}
	return f.trips, nil
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Paths: config.PathsConfig{
			RawFile:      filepath.Join(dir, "train.csv"),
			CleanFile:    filepath.Join(dir, "clean_data.csv"),
			ExcludedFile: filepath.Join(dir, "excluded_data_log.csv"),
			ReportsDir:   filepath.Join(dir, "reports"),
		},
		Database: config.DatabaseConfig{ChunkSize: 10, TripsLimit: 2, MaxAttempts: 1},
		Report:   config.ReportConfig{TopN: 5},
	}
}

func do(h http.HandlerFunc, method, target, body string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestCleanData(t *testing.T) {
	cleaner := &fakeCleaner{result: model.CleanResult{Status: model.StatusError, Message: "missing required columns: [trip_duration]"}}
	h := New(testConfig(t), cleaner, nil, nil, nil)

	rec := do(h.CleanData, http.MethodGet, "/clean_data", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var result model.CleanResult
	decode(t, rec, &result)
	assert.Equal(t, model.StatusError, result.Status)
	assert.Contains(t, result.Message, "trip_duration")
	assert.Equal(t, []model.RunSpec{{}}, cleaner.specs)
}

func TestCreateRun(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		result   model.CleanResult
		wantCode int
		wantSpec *model.RunSpec
	}{
		{
			name:     "empty body uses defaults",
			result:   model.CleanResult{Status: model.StatusSuccess, RowsCleaned: 2},
			wantCode: http.StatusOK,
			wantSpec: &model.RunSpec{},
		},
		{
			name:     "overrides",
			body:     `{"source":"other.csv","clean_file":"out.csv","excluded_file":"log.csv"}`,
			result:   model.CleanResult{Status: model.StatusSuccess},
			wantCode: http.StatusOK,
			wantSpec: &model.RunSpec{Source: "other.csv", CleanFile: "out.csv", ExcludedFile: "log.csv"},
		},
		{
			name:     "failed run",
			body:     `{}`,
			result:   model.CleanResult{Status: model.StatusError, Message: "boom"},
			wantCode: http.StatusUnprocessableEntity,
			wantSpec: &model.RunSpec{},
		},
		{name: "malformed json", body: `{`, wantCode: http.StatusBadRequest},
		{name: "non csv output", body: `{"clean_file":"out.txt"}`, wantCode: http.StatusBadRequest},
		{name: "same outputs", body: `{"clean_file":"a.csv","excluded_file":"a.csv"}`, wantCode: http.StatusBadRequest},
		{name: "absolute output path", body: `{"clean_file":"/tmp/new/sub/victim.csv"}`, wantCode: http.StatusBadRequest},
		{name: "output outside directory", body: `{"excluded_file":"../victim.csv"}`, wantCode: http.StatusBadRequest},
		{name: "source path", body: `{"source":"/etc/passwd"}`, wantCode: http.StatusBadRequest},
		{name: "source url", body: `{"source":"http://example.com/train.csv"}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaner := &fakeCleaner{result: tt.result}
			h := New(testConfig(t), cleaner, nil, nil, nil)

			rec := do(h.CreateRun, http.MethodPost, "/api/v1/runs", tt.body, nil)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantSpec == nil {
				assert.Empty(t, cleaner.specs)
				return
			}
			require.Len(t, cleaner.specs, 1)
			assert.Equal(t, *tt.wantSpec, cleaner.specs[0])
		})
	}
}

func TestRuns(t *testing.T) {
	st := &fakeStore{
		runs: []model.Run{{ID: "run-2", Status: model.StatusError}, {ID: "run-1", Status: model.StatusSuccess}},
		stages: map[string][]model.StageSummary{
			"run-1": {{Name: model.StageLoad, RowsIn: 8}},
		},
	}
	h := New(testConfig(t), &fakeCleaner{}, st, nil, nil)

	rec := do(h.ListRuns, http.MethodGet, "/api/v1/runs", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var runs []model.Run
	decode(t, rec, &runs)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)

	rec = do(h.GetRun, http.MethodGet, "/api/v1/runs/run-1", "", map[string]string{"id": "run-1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	var detail RunDetail
	decode(t, rec, &detail)
	assert.Equal(t, "run-1", detail.ID)
	require.Len(t, detail.Stages, 1)
	assert.Equal(t, 8, detail.Stages[0].RowsIn)

	rec = do(h.GetRun, http.MethodGet, "/api/v1/runs/nope", "", map[string]string{"id": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreNotConfigured(t *testing.T) {
	h := New(testConfig(t), &fakeCleaner{}, nil, nil, nil)

	for name, fn := range map[string]http.HandlerFunc{
		"runs":  h.ListRuns,
		"run":   h.GetRun,
		"trips": h.ListTrips,
		"load":  h.LoadTrips,
	} {
		rec := do(fn, http.MethodGet, "/", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, name)
	}
}

func TestListTrips_Limit(t *testing.T) {
	st := &fakeStore{trips: []model.Trip{{ID: "id1"}, {ID: "id2"}, {ID: "id3"}}}
	h := New(testConfig(t), &fakeCleaner{}, st, nil, nil)

	rec := do(h.ListTrips, http.MethodGet, "/api/trips", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var trips []model.Trip
	decode(t, rec, &trips)
	assert.Len(t, trips, 2)

	do(h.ListTrips, http.MethodGet, "/api/trips?limit=1", "", nil)
	do(h.ListTrips, http.MethodGet, "/api/trips?limit=50", "", nil)
	do(h.ListTrips, http.MethodGet, "/api/trips?limit=abc", "", nil)
	assert.Equal(t, []int{2, 1, 2, 2}, st.limits)
}

func TestLoadTrips(t *testing.T) {
	cfg := testConfig(t)
	ds, err := pipeline.ReadCSV(context.Background(), strings.NewReader(
		"id,vendor_id,pickup_datetime,dropoff_datetime,passenger_count,pickup_longitude,pickup_latitude,dropoff_longitude,dropoff_latitude,store_and_fwd_flag,trip_duration\n"+
			"id1,2,2016-03-14 17:24:55,2016-03-14 17:34:55,1,-74.0060,40.7128,-73.9352,40.7306,N,600\n"+
			"id2,1,2016-03-14 12:00:00,2016-03-14 12:20:00,2,-73.9857,40.7484,-73.9680,40.7851,N,1200\n",
	))
	require.NoError(t, err)
	out, err := pipeline.Clean(ds, nil)
	require.NoError(t, err)
	require.NoError(t, pipeline.WriteOutputs(out, cfg.Paths.CleanFile, cfg.Paths.ExcludedFile))

	st := &fakeStore{}
	h := New(cfg, &fakeCleaner{}, st, nil, nil)

	rec := do(h.LoadTrips, http.MethodPost, "/api/v1/trips/load", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var result model.LoadResult
	decode(t, rec, &result)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Chunks)
	assert.Equal(t, 1, st.resetting)
	assert.Equal(t, 2, st.inserted)
}

const zonesCSV = `pickup_latitude,pickup_longitude,speed_kmh
40.7512,-73.9851,30
40.6400,-73.7800,60
40.8000,-73.9500,10
`

func TestFastestZones(t *testing.T) {
	cfg := testConfig(t)
	h := New(cfg, &fakeCleaner{}, nil, nil, nil)

	rec := do(h.FastestZones, http.MethodGet, "/api/v1/zones/fastest", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, os.WriteFile(cfg.Paths.CleanFile, []byte("pickup_latitude\n40.7\n"), 0644))
	rec = do(h.FastestZones, http.MethodGet, "/api/v1/zones/fastest", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.NoError(t, os.WriteFile(cfg.Paths.CleanFile, []byte(zonesCSV), 0644))
	rec = do(h.FastestZones, http.MethodGet, "/api/v1/zones/fastest?top=2", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var zones []model.ZoneStat
	decode(t, rec, &zones)
	require.Len(t, zones, 2)
	assert.Equal(t, "40.64_-73.78", zones[0].Zone)
	assert.Equal(t, "40.75_-73.99", zones[1].Zone)
}

func TestExportZonesAndFiles(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Paths.CleanFile, []byte(zonesCSV), 0644))
	h := New(cfg, &fakeCleaner{}, nil, nil, nil)

	rec := do(h.ExportZones, http.MethodPost, "/api/v1/zones/fastest/export?format=xml", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.ExportZones, http.MethodPost, "/api/v1/zones/fastest/export?format=json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result model.ExportResult
	decode(t, rec, &result)
	assert.True(t, result.Success)
	assert.Equal(t, "json", result.Type)
	assert.Equal(t, 3, result.RecordCount)
	assert.Equal(t, cfg.Paths.ReportsDir, filepath.Dir(result.Path))
	assert.FileExists(t, result.Path)

	name := filepath.Base(result.Path)

	rec = do(h.GetFileInfo, http.MethodGet, "/api/v1/files/"+name, "", map[string]string{"filename": name})
	assert.Equal(t, http.StatusOK, rec.Code)
	var info FileInfo
	decode(t, rec, &info)
	assert.Equal(t, name, info.Name)
	assert.Equal(t, "json", info.Type)
	assert.Greater(t, info.Size, int64(0))

	rec = do(h.DownloadFile, http.MethodGet, "/api/v1/download/"+name, "", map[string]string{"filename": name})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), name)
	assert.Contains(t, rec.Body.String(), "40.64_-73.78")

	rec = do(h.DownloadFile, http.MethodGet, "/api/v1/download/missing.csv", "", map[string]string{"filename": "missing.csv"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
