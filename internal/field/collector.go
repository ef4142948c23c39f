package field

import (
	"time"

	"github.com/google/uuid"
)

// Record is one received reading in the collector log.
type Record struct {
	ID        string             `json:"id"`
	NodeID    int                `json:"node_id"`
	Timestamp time.Time          `json:"ts"`
	Readings  map[string]float64 `json:"readings"`
}

// Collector is the base station sink. It performs no validation of what
// it receives; all business logic lives in the nodes and schedulers.
type Collector struct {
	Position Position

	records []Record
	latest  map[int]map[string]float64
}

// NewCollector creates a collector at a fixed position.
func NewCollector(pos Position) *Collector {
	return &Collector{
		Position: pos,
		latest:   make(map[int]map[string]float64),
	}
}

// Receive appends a record to the log and returns it. The readings are
// copied so later node mutations cannot reach back into the log.
func (c *Collector) Receive(nodeID int, readings map[string]float64, ts time.Time) Record {
	cp := make(map[string]float64, len(readings))
	for k, v := range readings {
		cp[k] = v
	}
	rec := Record{
		ID:        uuid.New().String(),
		NodeID:    nodeID,
		Timestamp: ts,
		Readings:  cp,
	}
	c.records = append(c.records, rec)
	return rec
}

// Len returns the number of logged records.
func (c *Collector) Len() int {
	return len(c.records)
}

// Snapshot returns a deep copy of the log in arrival order. Callers
// cannot mutate collector state through it.
func (c *Collector) Snapshot() []Record {
	out := make([]Record, len(c.records))
	for i, rec := range c.records {
		cp := make(map[string]float64, len(rec.Readings))
		for k, v := range rec.Readings {
			cp[k] = v
		}
		rec.Readings = cp
		out[i] = rec
	}
	return out
}

// UpdateLatest overwrites the per-node snapshot with each node's current
// readings, last write wins. Used by the continuous loop instead of the
// append-only log.
func (c *Collector) UpdateLatest(nodes []*Node) {
	for _, n := range nodes {
		c.latest[n.ID] = n.CopyReadings()
	}
}

// Latest returns a copy of the per-node snapshot.
func (c *Collector) Latest() map[int]map[string]float64 {
	out := make(map[int]map[string]float64, len(c.latest))
	for id, readings := range c.latest {
		cp := make(map[string]float64, len(readings))
		for k, v := range readings {
			cp[k] = v
		}
		out[id] = cp
	}
	return out
}
