// Package dataset reads and writes the pipeline CSV working file and watches
// it for external changes. Reading is column-name keyed, so column order in
// the source file does not matter; writing always produces the canonical
// two-column shape with the exact header the dataset has always carried.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"flowledger/internal/logging"
	"flowledger/internal/record"
	"flowledger/internal/store"
)

// Canonical column headers. Save writes them verbatim in this order; Load
// matches them by trimmed name.
const (
	HeaderThroughput        = "Throughput (1000 m3/d)"
	HeaderAvailableCapacity = "Available Capacity (1000 m3/d)"
)

// Load reads the CSV at path and returns its data rows in file order,
// unvalidated. Open/read/parse failures and a missing required column are
// *SourceUnavailableError; per-row quantity validation belongs to
// store.Load. A row missing a cell yields an empty field value, which store
// validation then rejects row-by-row.
func Load(path string) ([]store.Row, error) {
	timer := logging.StartTimer(logging.CategoryDataset, "Load "+path)
	defer timer.Stop()

	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &SourceUnavailableError{Path: path, Err: fmt.Errorf("file is empty")}
		}
		return nil, &SourceUnavailableError{Path: path, Err: fmt.Errorf("failed to read header: %w", err)}
	}

	thruIdx, capIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case HeaderThroughput:
			thruIdx = i
		case HeaderAvailableCapacity:
			capIdx = i
		}
	}
	if thruIdx < 0 {
		return nil, &SourceUnavailableError{Path: path, Err: fmt.Errorf("missing column %q", HeaderThroughput)}
	}
	if capIdx < 0 {
		return nil, &SourceUnavailableError{Path: path, Err: fmt.Errorf("missing column %q", HeaderAvailableCapacity)}
	}

	var rows []store.Row
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &SourceUnavailableError{Path: path, Err: fmt.Errorf("failed to read rows: %w", err)}
		}
		rows = append(rows, store.Row{
			Throughput:        cell(cells, thruIdx),
			AvailableCapacity: cell(cells, capIdx),
		})
	}

	logging.Dataset("Loaded %d rows from %s", len(rows), path)
	return rows, nil
}

// cell returns the trimmed cell at idx, or "" when the row is short.
func cell(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// Save writes the records to path in the canonical two-column shape, header
// included. Returns the number of records written.
func Save(path string, records []record.Record) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write([]string{HeaderThroughput, HeaderAvailableCapacity}); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write([]string{r.Throughput, r.AvailableCapacity}); err != nil {
			return 0, fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush %s: %w", path, err)
	}

	logging.Dataset("Saved %d records to %s", len(records), path)
	return len(records), nil
}

// SourceUnavailableError reports a row source that could not be opened or
// read at the source level, as opposed to a per-row validation failure.
type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("dataset %s unavailable: %v", e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
