package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"trip-data-pipeline/internal/model"
	"trip-data-pipeline/pkg/utils"
)

// ------------------- Ingestion -------------------

// LoadCSV reads a whole CSV source into memory. The source is a local path or an
// http(s) URL. Any failure is returned as a *model.LoadError.
func LoadCSV(ctx context.Context, source string) (*model.Dataset, error) {
	reader, err := openSource(ctx, source)
	if err != nil {
		return nil, &model.LoadError{Source: source, Err: err}
	}
	defer reader.Close()

	ds, err := ReadCSV(ctx, reader)
	if err != nil {
		return nil, &model.LoadError{Source: source, Err: err}
	}
	return ds, nil
}

func openSource(ctx context.Context, pathOrURL string) (io.ReadCloser, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build CSV request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to GET CSV: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to GET CSV: unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	}

	file, err := os.Open(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	return file, nil
}

// ReadCSV parses CSV data with a header row. Headers are trimmed and lower-cased and a
// repeated column keeps only its first occurrence. Missing cells are stored as "".
func ReadCSV(ctx context.Context, r io.Reader) (*model.Dataset, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err == io.EOF {
		return nil, model.ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, sourceIndex := normalizeHeaders(headers)
	ds := model.NewDataset(columns)

	for rowIndex := 0; ; rowIndex++ {
		if rowIndex%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %w", err)
		}

		values := make([]string, len(columns))
		for i, src := range sourceIndex {
			if src < len(row) && !utils.IsMissing(row[src]) {
				values[i] = row[src]
			}
		}
		ds.Append(&model.Record{Index: rowIndex, Values: values})
	}

	return ds, nil
}

// normalizeHeaders cleans header names and drops repeated columns. It returns the kept
// column names and, for each, its position in the raw header.
func normalizeHeaders(headers []string) ([]string, []int) {
	seen := make(map[string]bool, len(headers))
	columns := make([]string, 0, len(headers))
	sourceIndex := make([]int, 0, len(headers))

	for i, h := range headers {
		// Strip a UTF-8 BOM, surrounding whitespace and stray quotes
		clean := strings.TrimPrefix(h, "\ufeff")
		clean = strings.ReplaceAll(clean, `"`, "")
		clean = strings.ToLower(strings.TrimSpace(clean))
		if seen[clean] {
			continue
		}
		seen[clean] = true
		columns = append(columns, clean)
		sourceIndex = append(sourceIndex, i)
	}
	return columns, sourceIndex
}
