package sim

import (
	"context"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"fieldsim/internal/field"
)

type mockGreptimeClient struct {
	tables []*table.Table
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.tables = append(m.tables, tables...)
	return &gpb.GreptimeResponse{}, nil
}

func TestGreptimeWriterReadingsJSON(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	rows := []field.ReadingRow{
		{
			FieldID:   "f1",
			NodeID:    2,
			RecordID:  "r1",
			X:         33.8,
			Y:         61.8,
			DataType:  field.TypeHumidity,
			Battery:   99.7,
			Active:    true,
			Readings:  map[string]float64{"humidity": 61.5},
			Timestamp: ts,
		},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, readingTable: "field_readings"}

	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("expected one table write, got %d", len(m.tables))
	}

	schema := m.tables[0].GetRows().Schema
	if len(schema) != 10 {
		t.Fatalf("unexpected schema length: %d", len(schema))
	}
	if schema[8].Datatype != gpb.ColumnDataType_JSON {
		t.Fatalf("readings column type = %v, want %v", schema[8].Datatype, gpb.ColumnDataType_JSON)
	}

	values := m.tables[0].GetRows().Rows[0].Values
	if got := values[0].GetStringValue(); got != "f1" {
		t.Fatalf("field_id = %s, want f1", got)
	}
	if got := values[8].GetStringValue(); got != "{\"humidity\":61.5}" {
		t.Fatalf("readings = %s", got)
	}
}

func TestGreptimeWriterEvents(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, readingTable: "field_readings", eventTable: "field_events"}

	events := []field.EventRow{{
		FieldID:   "f1",
		NodeID:    -1,
		Type:      field.EventCompleted,
		Cycle:     5,
		Message:   "cycle budget reached",
		Timestamp: time.Unix(0, 0).UTC(),
	}}
	if err := w.WriteEvents(events); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("expected one table write, got %d", len(m.tables))
	}
	values := m.tables[0].GetRows().Rows[0].Values
	if got := values[1].GetStringValue(); got != string(field.EventCompleted) {
		t.Fatalf("type = %s, want %s", got, field.EventCompleted)
	}
}

func TestGreptimeWriterSkipsEventsWithoutTable(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, readingTable: "field_readings"}

	if err := w.WriteEvents([]field.EventRow{{Type: field.EventDepleted}}); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if len(m.tables) != 0 {
		t.Fatalf("event table unset, expected no writes, got %d", len(m.tables))
	}
}
