// Writer implementation printing readings to STDOUT
package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fieldsim/internal/field"
)

// StdoutWriter prints reading rows as JSON lines.
type StdoutWriter struct {
	out io.Writer
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout}
}

// Write outputs a single reading row.
func (w *StdoutWriter) Write(row field.ReadingRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple reading rows.
func (w *StdoutWriter) WriteBatch(rows []field.ReadingRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent prints a scheduler event.
func (w *StdoutWriter) WriteEvent(e field.EventRow) error {
	data, _ := json.Marshal(e)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteEvents prints multiple scheduler events.
func (w *StdoutWriter) WriteEvents(events []field.EventRow) error {
	for _, e := range events {
		_ = w.WriteEvent(e)
	}
	return nil
}
