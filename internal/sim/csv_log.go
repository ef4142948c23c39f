// CSV export/import of the collector log, matching the field-readings
// viewer contract: one row per received reading, N/A for missing fields.
package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"fieldsim/internal/field"
)

// csvTimeLayout matches the timestamps consumed by the readings viewer.
const csvTimeLayout = "2006-01-02 15:04:05"

const csvMissing = "N/A"

var csvHeader = []string{"Timestamp", "Temperature", "Moisture", "Humidity", "Light", "Ph"}

// Reading keys backing the header columns, in column order.
var csvColumns = []string{"temperature", "moisture", "humidity", "light", "ph"}

func recordToCSV(rec field.Record) []string {
	row := make([]string, 0, len(csvHeader))
	row = append(row, rec.Timestamp.Format(csvTimeLayout))
	for _, key := range csvColumns {
		if v, ok := rec.Readings[key]; ok {
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		} else {
			row = append(row, csvMissing)
		}
	}
	return row
}

// WriteCSV writes the collector log to w, header first.
func WriteCSV(w io.Writer, records []field.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(recordToCSV(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the collector log to path.
func ExportCSV(path string, records []field.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, records)
}

// ReadCSV parses an exported log. Node identity is not part of the CSV
// contract, so reloaded records carry only timestamp and readings.
// Unparseable or N/A cells are treated as missing.
func ReadCSV(r io.Reader) ([]field.Record, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	tsIdx := -1
	colKeys := make(map[int]string)
	for i, name := range header {
		if name == "Timestamp" {
			tsIdx = i
			continue
		}
		for j, col := range csvHeader[1:] {
			if name == col {
				colKeys[i] = csvColumns[j]
			}
		}
	}
	if tsIdx == -1 {
		return nil, fmt.Errorf("parse csv: missing Timestamp column")
	}

	var records []field.Record
	for _, row := range rows[1:] {
		if tsIdx >= len(row) {
			continue
		}
		ts, err := time.Parse(csvTimeLayout, row[tsIdx])
		if err != nil {
			continue
		}
		readings := make(map[string]float64)
		for i, key := range colKeys {
			if i >= len(row) || row[i] == csvMissing || row[i] == "" {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				continue
			}
			readings[key] = v
		}
		records = append(records, field.Record{Timestamp: ts, Readings: readings})
	}
	return records, nil
}

// LoadCSV opens path and parses its records.
func LoadCSV(path string) ([]field.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// LatestRecord returns the record with the maximum timestamp, the row the
// readings viewer displays. ok is false for an empty log.
func LatestRecord(records []field.Record) (latest field.Record, ok bool) {
	for _, rec := range records {
		if !ok || rec.Timestamp.After(latest.Timestamp) {
			latest = rec
			ok = true
		}
	}
	return latest, ok
}

// CSVWriter is a ReadingWriter sink appending one CSV row per successful
// transmission.
type CSVWriter struct {
	f  *os.File
	cw *csv.Writer
	mu sync.Mutex
}

// NewCSVWriter creates the file and writes the header.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		f.Close()
		return nil, err
	}
	cw.Flush()
	return &CSVWriter{f: f, cw: cw}, nil
}

// Write appends one row for the transmitted reading.
func (w *CSVWriter) Write(row field.ReadingRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec := field.Record{Timestamp: row.Timestamp, Readings: row.Readings}
	if err := w.cw.Write(recordToCSV(rec)); err != nil {
		return err
	}
	w.cw.Flush()
	return w.cw.Error()
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
