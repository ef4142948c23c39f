package sim

import "fieldsim/internal/field"

// MultiWriter fans readings and events out to multiple writers.
type MultiWriter struct {
	readingWriters []ReadingWriter
	eventWriters   []EventWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(rws []ReadingWriter, ews []EventWriter) *MultiWriter {
	return &MultiWriter{readingWriters: rws, eventWriters: ews}
}

// Write sends a reading row to all writers.
func (mw *MultiWriter) Write(row field.ReadingRow) error {
	for _, w := range mw.readingWriters {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch sends multiple reading rows to all writers, using batch mode
// where supported.
func (mw *MultiWriter) WriteBatch(rows []field.ReadingRow) error {
	for _, w := range mw.readingWriters {
		if bw, ok := w.(batchReadingWriter); ok {
			if err := bw.WriteBatch(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteEvent sends an event to all event writers.
func (mw *MultiWriter) WriteEvent(e field.EventRow) error {
	for _, w := range mw.eventWriters {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// WriteEvents sends multiple events to all event writers, using batch
// mode where supported.
func (mw *MultiWriter) WriteEvents(events []field.EventRow) error {
	for _, w := range mw.eventWriters {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(events); err != nil {
				return err
			}
			continue
		}
		for _, e := range events {
			if err := w.WriteEvent(e); err != nil {
				return err
			}
		}
	}
	return nil
}
