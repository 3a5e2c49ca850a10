package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/pkg/utils"
)

// SanitizedValue replaces non-finite cells of numeric columns in the clean output
const SanitizedValue = "0"

// Outputs holds the two final partitions of a run
type Outputs struct {
	Clean     *model.Dataset
	Excluded  *model.Dataset
	Sanitized int // clean cells replaced by SanitizedValue
}

// Partition freezes the surviving records as the clean dataset and every dropped record
// as the excluded dataset. Both carry the source columns followed by the derived feature
// columns. Clean rows get normalized timestamps and non-finite numeric cells replaced by
// "0"; text columns are written as read. Excluded rows keep their raw values, with empty
// derived cells when they were dropped before features were derived.
func Partition(clean *model.Dataset, excluded []*model.Record, tracker *Tracker) *Outputs {
	done := tracker.StartStage(model.StagePartition, clean.Len()+len(excluded))
	defer done(0)

	columns := append(append([]string(nil), clean.Columns...), model.DerivedFeatures()...)
	out := &Outputs{
		Clean:    model.NewDataset(columns),
		Excluded: model.NewDataset(columns),
	}

	pickupIdx, _ := clean.ColumnIndex(model.ColPickupDatetime)
	dropoffIdx, _ := clean.ColumnIndex(model.ColDropoffDatetime)
	numeric := numericIndexes(out.Clean)

	for _, rec := range clean.Records {
		values := outputValues(rec, len(clean.Columns))
		values[pickupIdx] = utils.FormatTimestamp(rec.Pickup)
		values[dropoffIdx] = utils.FormatTimestamp(rec.Dropoff)
		for _, i := range numeric {
			if utils.IsNonFinite(values[i]) {
				values[i] = SanitizedValue
				out.Sanitized++
			}
		}
		out.Clean.Append(withValues(rec, values))
	}

	for _, rec := range excluded {
		out.Excluded.Append(withValues(rec, outputValues(rec, len(clean.Columns))))
	}

	return out
}

// numericIndexes returns the positions of the numeric columns present in ds
func numericIndexes(ds *model.Dataset) []int {
	var idx []int
	for _, name := range model.NumericColumns() {
		if i, ok := ds.ColumnIndex(name); ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// outputValues returns the record's source values padded to width, followed by its
// formatted derived features
func outputValues(rec *model.Record, width int) []string {
	values := make([]string, width, width+3)
	copy(values, rec.Values)
	if rec.Features == nil {
		return append(values, "", "", "")
	}
	return append(values,
		utils.FormatFloat(rec.Features.DurationMin),
		utils.FormatFloat(rec.Features.DistanceKm),
		utils.FormatFloat(rec.Features.SpeedKmh),
	)
}

func withValues(rec *model.Record, values []string) *model.Record {
	cp := *rec
	cp.Values = values
	return &cp
}

// WriteCSV writes a dataset with its header row
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range ds.Records {
		if err := writer.Write(rec.Values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rec.Index, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteOutputs writes the clean and excluded datasets. Both files are written to temp
// files next to their destinations first and only renamed into place once both are
// complete. If the excluded file cannot be moved into place, the previous clean file is
// restored, so a failed write leaves no partial output behind.
func WriteOutputs(out *Outputs, cleanPath, excludedPath string) error {
	cleanTmp, err := writeTemp(cleanPath, out.Clean)
	if err != nil {
		return fmt.Errorf("failed to write clean data: %w", err)
	}

	excludedTmp, err := writeTemp(excludedPath, out.Excluded)
	if err != nil {
		os.Remove(cleanTmp)
		return fmt.Errorf("failed to write excluded data: %w", err)
	}

	backup, err := moveAside(cleanPath)
	if err != nil {
		os.Remove(cleanTmp)
		os.Remove(excludedTmp)
		return fmt.Errorf("failed to back up clean data: %w", err)
	}

	if err := os.Rename(cleanTmp, cleanPath); err != nil {
		restore(backup, cleanPath)
		os.Remove(cleanTmp)
		os.Remove(excludedTmp)
		return fmt.Errorf("failed to move clean data into place: %w", err)
	}
	if err := os.Rename(excludedTmp, excludedPath); err != nil {
		restore(backup, cleanPath)
		os.Remove(excludedTmp)
		return fmt.Errorf("failed to move excluded data into place: %w", err)
	}

	if backup != "" {
		os.Remove(backup)
	}
	return nil
}

// moveAside renames an existing file at path to a hidden backup in the same directory and
// returns the backup path, or "" when there is no file to keep
func moveAside(path string) (string, error) {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.bak")
	if err != nil {
		return "", err
	}
	file.Close()

	if err := os.Rename(path, file.Name()); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}

// restore puts backup back at path. Without a backup, path is removed.
func restore(backup, path string) {
	if backup == "" {
		os.Remove(path)
		return
	}
	os.Rename(backup, path)
}

// writeTemp writes ds to a temp file in the directory of dest and returns its path
func writeTemp(dest string, ds *model.Dataset) (path string, err error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(file.Name())
		}
	}()

	if err := WriteCSV(file, ds); err != nil {
		return "", err
	}
	return file.Name(), nil
}
