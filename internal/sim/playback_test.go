package sim

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"fieldsim/internal/field"
)

func TestReplayLogPreservesOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := 0; i < 3; i++ {
		row := field.ReadingRow{
			FieldID:   "f1",
			NodeID:    i,
			Timestamp: base.Add(time.Duration(i) * 2 * time.Second),
		}
		if err := enc.Encode(row); err != nil {
			t.Fatal(err)
		}
	}

	writer := &MockWriter{}
	if err := ReplayLog(&buf, writer, 0); err != nil {
		t.Fatal(err)
	}
	if len(writer.Rows) != 3 {
		t.Fatalf("replayed %d rows, want 3", len(writer.Rows))
	}
	for i, row := range writer.Rows {
		if row.NodeID != i {
			t.Errorf("row %d: node = %d", i, row.NodeID)
		}
	}
}

func TestReplayLogStopsOnMalformedInput(t *testing.T) {
	buf := bytes.NewBufferString("{\"node_id\":1}\nnot json\n")
	writer := &MockWriter{}
	if err := ReplayLog(buf, writer, 0); err == nil {
		t.Fatal("expected decode error")
	}
	if len(writer.Rows) != 1 {
		t.Errorf("replayed %d rows before failure, want 1", len(writer.Rows))
	}
}
