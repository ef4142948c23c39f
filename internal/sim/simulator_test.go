package sim

import (
	"math/rand"
	"testing"
	"time"

	"fieldsim/internal/config"
	"fieldsim/internal/field"
)

// MockWriter collects reading rows for validation.
type MockWriter struct {
	Rows []field.ReadingRow
}

func (w *MockWriter) Write(row field.ReadingRow) error {
	w.Rows = append(w.Rows, row)
	return nil
}

// MockEventWriter collects scheduler events.
type MockEventWriter struct {
	Events []field.EventRow
}

func (w *MockEventWriter) WriteEvent(e field.EventRow) error {
	w.Events = append(w.Events, e)
	return nil
}

func testConfig() *config.SimulationConfig {
	return &config.SimulationConfig{
		Field:       config.FieldInfo{Name: "test-field", Width: 100, Height: 100},
		BaseStation: config.Point{X: 50, Y: 50},
		Defaults: config.Energy{
			Battery:           100,
			SensingRange:      10,
			CommRange:         50,
			EnergyPerSense:    0.05,
			EnergyPerTransmit: 0.1,
		},
		Nodes: []config.NodeSpec{
			{ID: 0, Type: "moisture", X: 70, Y: 50},
			{ID: 1, Type: "temperature", X: 56.2, Y: 69},
			{ID: 2, Type: "humidity", X: 33.8, Y: 61.8},
			{ID: 3, Type: "light", X: 33.8, Y: 38.2},
			{ID: 4, Type: "ph", X: 56.2, Y: 31},
		},
		MaxCycles: 5,
	}
}

func newTestSimulator(cfg *config.SimulationConfig, w ReadingWriter, e EventWriter) *Simulator {
	s := NewSimulator("field-test", cfg, w, e, time.Second)
	s.rng = rand.New(rand.NewSource(42))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestCycleGeneratesReadings(t *testing.T) {
	writer := &MockWriter{}
	events := &MockEventWriter{}
	s := newTestSimulator(testConfig(), writer, events)

	if st := s.RunCycle(); st != StatusRunning {
		t.Fatalf("status after first cycle = %s, want running", st)
	}
	if len(writer.Rows) != 5 {
		t.Fatalf("expected readings from 5 nodes, got %d", len(writer.Rows))
	}
	for _, row := range writer.Rows {
		if row.FieldID == "" || row.RecordID == "" {
			t.Errorf("reading row missing IDs: %+v", row)
		}
		if len(row.Readings) == 0 {
			t.Errorf("node %d: empty readings", row.NodeID)
		}
	}
	if got := s.LogSnapshot(); len(got) != 5 {
		t.Errorf("collector logged %d records, want 5", len(got))
	}
}

func TestSchedulerStopsAtCycleBudget(t *testing.T) {
	writer := &MockWriter{}
	events := &MockEventWriter{}
	s := newTestSimulator(testConfig(), writer, events)

	for i := 1; i <= 5; i++ {
		if st := s.RunCycle(); st != StatusRunning {
			t.Fatalf("cycle %d: status = %s, want running", i, st)
		}
	}
	if st := s.RunCycle(); st != StatusCompleted {
		t.Fatalf("cycle 6: status = %s, want completed", st)
	}
	// Exactly 5 cycles worth of rows, never 6.
	if len(writer.Rows) != 25 {
		t.Errorf("expected 25 rows (5 cycles x 5 nodes), got %d", len(writer.Rows))
	}
	found := false
	for _, e := range events.Events {
		if e.Type == field.EventCompleted {
			found = true
		}
	}
	if !found {
		t.Error("expected a completed event")
	}
}

func TestTerminalStatusIsIdempotent(t *testing.T) {
	writer := &MockWriter{}
	events := &MockEventWriter{}
	s := newTestSimulator(testConfig(), writer, events)

	for i := 0; i < 6; i++ {
		s.RunCycle()
	}
	rows, evs := len(writer.Rows), len(events.Events)
	for i := 0; i < 3; i++ {
		if st := s.RunCycle(); st != StatusCompleted {
			t.Fatalf("post-terminal cycle: status = %s, want completed", st)
		}
	}
	if len(writer.Rows) != rows || len(events.Events) != evs {
		t.Error("ticks after termination must be no-ops")
	}
}

func TestSchedulerStopsWhenAllNodesDeplete(t *testing.T) {
	cfg := testConfig()
	cfg.Defaults.Battery = 0.04
	cfg.Defaults.EnergyPerSense = 0.05
	writer := &MockWriter{}
	events := &MockEventWriter{}
	s := newTestSimulator(cfg, writer, events)

	// First cycle: every node senses once (draining to zero) and then
	// fails to transmit because the sense deactivated it.
	if st := s.RunCycle(); st != StatusRunning {
		t.Fatalf("first cycle: status = %s, want running", st)
	}
	if len(writer.Rows) != 0 {
		t.Errorf("expected no successful transmissions, got %d", len(writer.Rows))
	}
	failures, depleted := 0, 0
	for _, e := range events.Events {
		switch e.Type {
		case field.EventTransmitFailed:
			failures++
		case field.EventNodeDepleted:
			depleted++
		}
	}
	if failures != 5 {
		t.Errorf("expected 5 transmit failures, got %d", failures)
	}
	if depleted != 5 {
		t.Errorf("expected 5 node_depleted events, got %d", depleted)
	}

	// Second cycle: nothing senses, scheduler reports depletion.
	if st := s.RunCycle(); st != StatusDepleted {
		t.Fatalf("second cycle: status = %s, want depleted", st)
	}
	h := s.Health()
	if h.Depleted != 5 || h.Active != 0 {
		t.Errorf("health = %+v, want all depleted", h)
	}
}

func TestOutOfRangeTransmitCostsNoEnergy(t *testing.T) {
	cfg := testConfig()
	cfg.Nodes = []config.NodeSpec{{ID: 0, Type: "moisture", X: 0, Y: 0}}
	cfg.BaseStation = config.Point{X: 100, Y: 100} // well beyond comm range
	writer := &MockWriter{}
	events := &MockEventWriter{}
	s := newTestSimulator(cfg, writer, events)

	if st := s.RunCycle(); st != StatusRunning {
		t.Fatalf("status = %s, want running", st)
	}
	if len(writer.Rows) != 0 {
		t.Errorf("out-of-range node transmitted %d rows", len(writer.Rows))
	}
	snap := s.NodeSnapshot()
	want := 100 - cfg.Defaults.EnergyPerSense // sensing cost only
	if snap[0].Battery != want {
		t.Errorf("battery = %f, want %f (no transmit cost out of range)", snap[0].Battery, want)
	}
	if len(events.Events) != 1 || events.Events[0].Type != field.EventTransmitFailed {
		t.Errorf("expected one transmit_failed event, got %+v", events.Events)
	}
}

func TestSummary(t *testing.T) {
	writer := &MockWriter{}
	events := &MockEventWriter{}
	s := newTestSimulator(testConfig(), writer, events)
	for i := 0; i < 6; i++ {
		s.RunCycle()
	}
	sum := s.Summary()
	if sum.Status != StatusCompleted || sum.Cycles != 5 {
		t.Errorf("summary = %+v, want completed after 5 cycles", sum)
	}
	if sum.Records != 25 || sum.TotalNodes != 5 {
		t.Errorf("summary counts = %+v", sum)
	}
	if len(sum.LastRecords) != 5 {
		t.Errorf("expected last 5 records, got %d", len(sum.LastRecords))
	}
}
