package sim

import "fieldsim/internal/field"

// ReadingWriter is an interface to support different output writers.
type ReadingWriter interface {
	Write(field.ReadingRow) error
}

// EventWriter handles scheduler status events.
type EventWriter interface {
	WriteEvent(field.EventRow) error
}

// Optional: writers may support batch mode for readings.
type batchReadingWriter interface {
	WriteBatch([]field.ReadingRow) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]field.EventRow) error
}
