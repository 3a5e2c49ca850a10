package pipeline

import (
	"container/heap"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"

	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/pkg/utils"
)

// DefaultTopZones is the number of zones reported when no limit is given
const DefaultTopZones = 5

// ZoneKey names the 0.01° grid cell containing a point. Coordinates are rounded to two
// decimals and printed in their shortest form, keeping one decimal for whole numbers:
// 40.7, -74.0 gives "40.7_-74.0".
func ZoneKey(lat, lon float64) string {
	return zoneCoord(lat) + "_" + zoneCoord(lon)
}

func zoneCoord(v float64) string {
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// FastestPickupZones reads a clean trip file and returns the topN pickup zones by
// average speed, fastest first. Ties are ordered by zone name. Rows with an unparseable
// or non-finite latitude, longitude or speed are skipped.
func FastestPickupZones(ctx context.Context, path string, topN int) ([]model.ZoneStat, error) {
	if topN <= 0 {
		topN = DefaultTopZones
	}

	ds, err := LoadCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ds.RequireColumns(model.ColPickupLatitude, model.ColPickupLongitude, model.ColSpeedKmh); err != nil {
		return nil, err
	}

	speeds := make(map[string][]float64)
	for _, rec := range ds.Records {
		lat, ok1 := finite(ds.Value(rec, model.ColPickupLatitude))
		lon, ok2 := finite(ds.Value(rec, model.ColPickupLongitude))
		speed, ok3 := finite(ds.Value(rec, model.ColSpeedKmh))
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		zone := ZoneKey(lat, lon)
		speeds[zone] = append(speeds[zone], speed)
	}

	return topZones(speeds, topN), nil
}

func finite(s string) (float64, bool) {
	f := utils.ParseFloat(s)
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

// topZones keeps the n fastest zones in a bounded min-heap
func topZones(speeds map[string][]float64, n int) []model.ZoneStat {
	h := &zoneHeap{}
	for zone, values := range speeds {
		mean, std := stat.MeanStdDev(values, nil)
		if len(values) < 2 {
			std = 0
		}
		heap.Push(h, model.ZoneStat{Zone: zone, AvgSpeedKmh: mean, StdDevKmh: std, Trips: len(values)})
		if h.Len() > n {
			heap.Pop(h)
		}
	}

	out := make([]model.ZoneStat, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(model.ZoneStat)
	}
	return out
}

// zoneHeap has the slowest zone at its root
type zoneHeap []model.ZoneStat

func (h zoneHeap) Len() int { return len(h) }
func (h zoneHeap) Less(i, j int) bool {
	if h[i].AvgSpeedKmh != h[j].AvgSpeedKmh {
		return h[i].AvgSpeedKmh < h[j].AvgSpeedKmh
	}
	return h[i].Zone > h[j].Zone
}
func (h zoneHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *zoneHeap) Push(x any)   { *h = append(*h, x.(model.ZoneStat)) }
func (h *zoneHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// ------------------- Zone report export -------------------

var zoneHeader = []string{"rank", "zone", "avg_speed_kmh", "stddev_speed_kmh", "trips"}

// ExportZones writes a zone report. The format follows the file extension: .csv, .json
// or .xlsx.
func ExportZones(zones []model.ZoneStat, path string) model.ExportResult {
	om := utils.NewOutputManager(filepath.Dir(path))
	result := model.ExportResult{
		Type:       om.GetFileType(path),
		Path:       path,
		ExportedAt: time.Now(),
	}

	var err error
	if err = om.EnsureOutputDirExists(); err == nil {
		switch result.Type {
		case "csv":
			err = exportZonesCSV(zones, path)
		case "json":
			err = exportZonesJSON(zones, path)
		case "excel":
			err = exportZonesExcel(zones, path)
		default:
			err = fmt.Errorf("unsupported report format %q", filepath.Ext(path))
		}
	}

	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Success = true
	result.RecordCount = len(zones)
	return result
}

func zoneRow(rank int, z model.ZoneStat) []string {
	return []string{
		strconv.Itoa(rank),
		z.Zone,
		strconv.FormatFloat(z.AvgSpeedKmh, 'f', 2, 64),
		strconv.FormatFloat(z.StdDevKmh, 'f', 2, 64),
		strconv.Itoa(z.Trips),
	}
}

func exportZonesCSV(zones []model.ZoneStat, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(zoneHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, z := range zones {
		if err := writer.Write(zoneRow(i+1, z)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

func exportZonesJSON(zones []model.ZoneStat, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"exported_at":  time.Now().UTC(),
			"record_count": len(zones),
			"export_type":  "fastest_pickup_zones",
		},
		"data": zones,
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return file.Close()
}

func exportZonesExcel(zones []model.ZoneStat, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Zones"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(zoneHeader))
	for i, h := range zoneHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, z := range zones {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, z.Zone, z.AvgSpeedKmh, z.StdDevKmh, z.Trips}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
