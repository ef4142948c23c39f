// Continuous frame loop with in-flight packet animation
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fieldsim/internal/config"
	"fieldsim/internal/field"
	"fieldsim/internal/logging"
)

// Loop drives the continuous variant: per-node refresh timers, packet
// spawn and movement, and a last-write-wins collector snapshot. There is
// no energy model; nodes never deactivate.
type Loop struct {
	fieldID       string
	nodes         []*field.Node
	collector     *field.Collector
	writer        ReadingWriter
	packets       []*Packet
	packetSpeed   float64
	commRange     float64
	frameInterval time.Duration
	rng           *rand.Rand
	now           func() time.Time
	mu            sync.Mutex
}

// NewLoop initializes continuous-variant nodes from the animation config.
func NewLoop(fieldID string, cfg *config.SimulationConfig, writer ReadingWriter) *Loop {
	anim := cfg.Animation
	base := cfg.BaseStation
	if anim.BaseStation != nil {
		base = *anim.BaseStation
	}
	l := &Loop{
		fieldID:       fieldID,
		collector:     field.NewCollector(field.Position{X: base.X, Y: base.Y}),
		writer:        writer,
		packetSpeed:   anim.PacketSpeed,
		commRange:     anim.CommRange,
		frameInterval: time.Second / time.Duration(anim.FrameRate),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
	}
	start := l.now()
	for _, spec := range anim.Nodes {
		n := field.NewNode(spec.ID, field.Position{X: spec.X, Y: spec.Y}, field.DataType(spec.Type))
		n.RefreshEvery = anim.RefreshInterval()
		n.StartTimers(start)
		l.nodes = append(l.nodes, n)
	}
	return l
}

// Step advances the loop by one frame delta. Order per frame: refresh
// node readings, evaluate send triggers and spawn packets, advance live
// packets, then update the collector snapshot. Arrived packets leave the
// live set in the same step, exactly once.
func (l *Loop) Step(dt time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, n := range l.nodes {
		n.Refresh(now, l.rng)
	}

	for _, n := range l.nodes {
		if !n.ShouldSend(now) {
			continue
		}
		if field.Distance(n.Position, l.collector.Position) >= l.commRange {
			continue
		}
		l.packets = append(l.packets, NewPacket(n.Position, l.collector.Position))
		if l.writer != nil {
			row := field.ReadingRow{
				FieldID:   l.fieldID,
				NodeID:    n.ID,
				X:         n.Position.X,
				Y:         n.Position.Y,
				DataType:  n.Type,
				Battery:   n.Battery,
				Active:    n.Active,
				Readings:  n.CopyReadings(),
				Timestamp: now.UTC(),
			}
			if err := l.writer.Write(row); err != nil {
				// Sinks never stop the loop.
				continue
			}
		}
	}

	live := l.packets[:0]
	for _, p := range l.packets {
		if !p.Advance(dt, l.packetSpeed) {
			live = append(live, p)
		}
	}
	l.packets = live

	l.collector.UpdateLatest(l.nodes)
}

// Run steps the loop at the configured frame rate until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting frame loop", "frame_interval", l.frameInterval, "nodes", len(l.nodes))
	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-ticker.C:
			now := l.now()
			l.Step(now.Sub(last))
			last = now
		case <-ctx.Done():
			log.Info("stopping frame loop")
			return
		}
	}
}

// PacketSnapshot returns a copy of the live packet set.
func (l *Loop) PacketSnapshot() []Packet {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Packet, len(l.packets))
	for i, p := range l.packets {
		out[i] = *p
	}
	return out
}

// Latest returns the collector's per-node snapshot.
func (l *Loop) Latest() map[int]map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.collector.Latest()
}

// NodeSnapshot returns the current state of all loop nodes.
func (l *Loop) NodeSnapshot() []field.ReadingRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]field.ReadingRow, 0, len(l.nodes))
	for _, n := range l.nodes {
		rows = append(rows, field.ReadingRow{
			FieldID:   l.fieldID,
			NodeID:    n.ID,
			X:         n.Position.X,
			Y:         n.Position.Y,
			DataType:  n.Type,
			Battery:   n.Battery,
			Active:    n.Active,
			Readings:  n.CopyReadings(),
			Timestamp: l.now().UTC(),
		})
	}
	return rows
}
