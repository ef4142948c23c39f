// Simulator orchestrating discrete sense-transmit-log cycles
package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"fieldsim/internal/config"
	"fieldsim/internal/field"
)

// Status is the scheduler state. Completed and Depleted are terminal;
// further cycles after either are no-ops.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusDepleted  Status = "depleted"
)

// FieldHealth summarizes node status counts.
type FieldHealth struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Depleted int `json:"depleted"`
}

// Summary aggregates a finished simulation for reporting.
type Summary struct {
	Status      Status         `json:"status"`
	Cycles      int            `json:"cycles"`
	Records     int            `json:"records"`
	DeadNodes   int            `json:"dead_nodes"`
	TotalNodes  int            `json:"total_nodes"`
	LastRecords []field.Record `json:"last_records"`
}

// Simulator drives the discrete cycle scheduler: each cycle every active
// node senses, transmits to the collector, and successful transmissions
// are logged and written out.
type Simulator struct {
	fieldID      string
	cfg          *config.SimulationConfig
	nodes        []*field.Node
	collector    *field.Collector
	writer       ReadingWriter
	events       EventWriter
	tickInterval time.Duration
	maxCycles    int
	cycle        int
	status       Status
	rng          *rand.Rand
	now          func() time.Time
	mu           sync.Mutex
}

// NewSimulator initializes nodes and the collector from config.
func NewSimulator(fieldID string, cfg *config.SimulationConfig, writer ReadingWriter, events EventWriter, tickInterval time.Duration) *Simulator {
	s := &Simulator{
		fieldID:      fieldID,
		cfg:          cfg,
		writer:       writer,
		events:       events,
		tickInterval: tickInterval,
		maxCycles:    cfg.MaxCycles,
		status:       StatusRunning,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
	s.collector = field.NewCollector(field.Position{X: cfg.BaseStation.X, Y: cfg.BaseStation.Y})
	for _, spec := range cfg.Nodes {
		n := field.NewNode(spec.ID, field.Position{X: spec.X, Y: spec.Y}, field.DataType(spec.Type))
		n.Battery = cfg.Defaults.Battery
		n.SensingRange = cfg.Defaults.SensingRange
		n.CommRange = cfg.Defaults.CommRange
		n.EnergyPerSense = cfg.Defaults.EnergyPerSense
		n.EnergyPerTransmit = cfg.Defaults.EnergyPerTransmit
		s.nodes = append(s.nodes, n)
	}
	return s
}

// RunCycle advances the scheduler by one cycle and returns the status
// afterwards. Calling it after a terminal status is a no-op.
func (s *Simulator) RunCycle() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return s.status
	}
	s.cycle++
	if s.cycle > s.maxCycles {
		s.status = StatusCompleted
		s.writeEvents([]field.EventRow{{
			FieldID:   s.fieldID,
			NodeID:    -1,
			Type:      field.EventCompleted,
			Cycle:     s.maxCycles,
			Message:   fmt.Sprintf("completed after %d cycles", s.maxCycles),
			Timestamp: s.now().UTC(),
		}})
		return s.status
	}

	var batch []field.ReadingRow
	var notices []field.EventRow
	produced := 0
	for _, n := range s.nodes {
		if !n.Active {
			continue
		}
		readings, ok := n.Sense(s.rng)
		if !ok {
			continue
		}
		produced++
		if n.Transmit(s.collector.Position) {
			rec := s.collector.Receive(n.ID, readings, s.now().UTC())
			batch = append(batch, field.ReadingRow{
				FieldID:   s.fieldID,
				NodeID:    n.ID,
				RecordID:  rec.ID,
				X:         n.Position.X,
				Y:         n.Position.Y,
				DataType:  n.Type,
				Battery:   n.Battery,
				Active:    n.Active,
				Readings:  readings,
				Timestamp: rec.Timestamp,
			})
		} else {
			// Out of range or drained mid-cycle. Display-only, no retry.
			notices = append(notices, field.EventRow{
				FieldID:   s.fieldID,
				NodeID:    n.ID,
				Type:      field.EventTransmitFailed,
				Cycle:     s.cycle,
				Message:   fmt.Sprintf("node %d failed to transmit", n.ID),
				Timestamp: s.now().UTC(),
			})
		}
		if !n.Active {
			notices = append(notices, field.EventRow{
				FieldID:   s.fieldID,
				NodeID:    n.ID,
				Type:      field.EventNodeDepleted,
				Cycle:     s.cycle,
				Message:   fmt.Sprintf("node %d battery exhausted", n.ID),
				Timestamp: s.now().UTC(),
			})
		}
	}

	s.writeBatch(batch)

	if produced == 0 {
		s.status = StatusDepleted
		notices = append(notices, field.EventRow{
			FieldID:   s.fieldID,
			NodeID:    -1,
			Type:      field.EventDepleted,
			Cycle:     s.cycle,
			Message:   "all nodes depleted",
			Timestamp: s.now().UTC(),
		})
	}
	s.writeEvents(notices)
	return s.status
}

// Status returns the current scheduler status.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Cycle returns the last started cycle number.
func (s *Simulator) Cycle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cycle > s.maxCycles {
		return s.maxCycles
	}
	return s.cycle
}

// Health returns aggregated node health.
func (s *Simulator) Health() FieldHealth {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := FieldHealth{Total: len(s.nodes)}
	for _, n := range s.nodes {
		if n.Active {
			h.Active++
		} else {
			h.Depleted++
		}
	}
	return h
}

// NodeSnapshot returns the latest state of all nodes as reading rows.
func (s *Simulator) NodeSnapshot() []field.ReadingRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]field.ReadingRow, 0, len(s.nodes))
	for _, n := range s.nodes {
		rows = append(rows, field.ReadingRow{
			FieldID:   s.fieldID,
			NodeID:    n.ID,
			X:         n.Position.X,
			Y:         n.Position.Y,
			DataType:  n.Type,
			Battery:   n.Battery,
			Active:    n.Active,
			Readings:  n.CopyReadings(),
			Timestamp: s.now().UTC(),
		})
	}
	return rows
}

// LogSnapshot returns a copy of the collector log.
func (s *Simulator) LogSnapshot() []field.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collector.Snapshot()
}

// Summary reports totals and the last five records, for end-of-run output.
func (s *Simulator) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.collector.Snapshot()
	last := records
	if len(last) > 5 {
		last = last[len(last)-5:]
	}
	dead := 0
	for _, n := range s.nodes {
		if !n.Active {
			dead++
		}
	}
	cycles := s.cycle
	if cycles > s.maxCycles {
		cycles = s.maxCycles
	}
	return Summary{
		Status:      s.status,
		Cycles:      cycles,
		Records:     len(records),
		DeadNodes:   dead,
		TotalNodes:  len(s.nodes),
		LastRecords: last,
	}
}
