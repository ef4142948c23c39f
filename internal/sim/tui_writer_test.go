package sim

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"fieldsim/internal/field"
)

type fakeProgram struct {
	msgs []tea.Msg
}

func (p *fakeProgram) Send(m tea.Msg) { p.msgs = append(p.msgs, m) }

func TestTUIWriterForwardsMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p, done: make(chan struct{})}

	row := field.ReadingRow{NodeID: 1, DataType: field.TypeEnv, Battery: 100}
	if err := w.Write(row); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteEvent(field.EventRow{Type: field.EventCompleted, Cycle: 5}); err != nil {
		t.Fatal(err)
	}

	if len(p.msgs) != 2 {
		t.Fatalf("forwarded %d messages, want 2", len(p.msgs))
	}
	if rm, ok := p.msgs[0].(readingMsg); !ok || rm.NodeID != 1 {
		t.Errorf("first message = %#v, want readingMsg for node 1", p.msgs[0])
	}
	if em, ok := p.msgs[1].(eventMsg); !ok || em.Type != field.EventCompleted {
		t.Errorf("second message = %#v, want completed eventMsg", p.msgs[1])
	}
}

func TestTUIModelTracksLatestReadings(t *testing.T) {
	m := newTUIModel(testConfig())

	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	first := field.ReadingRow{NodeID: 2, DataType: field.TypeHumidity, Battery: 90,
		Readings: map[string]float64{"humidity": 50}, Timestamp: ts}
	m.Update(readingMsg{first})
	second := first
	second.Battery = 80
	second.Readings = map[string]float64{"humidity": 61}
	m.Update(readingMsg{second})

	if len(m.latest) != 1 {
		t.Fatalf("latest tracks %d nodes, want 1", len(m.latest))
	}
	if got := m.latest[2].Battery; got != 80 {
		t.Errorf("latest battery = %f, want newest value 80", got)
	}
	if rows := m.nodes.Rows(); len(rows) != 1 {
		t.Errorf("table has %d rows, want 1", len(rows))
	}
}

func TestTUIModelAppendsEventLines(t *testing.T) {
	m := newTUIModel(nil)
	m.Update(eventMsg{field.EventRow{
		Type:      field.EventTransmitFailed,
		NodeID:    3,
		Cycle:     2,
		Message:   "node 3: transmit failed",
		Timestamp: time.Now(),
	}})
	if len(m.lines) != 1 {
		t.Fatalf("log has %d lines, want 1", len(m.lines))
	}
}

func TestTUIModelQuitKeys(t *testing.T) {
	m := newTUIModel(nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q must quit")
	}
}
