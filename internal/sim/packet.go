package sim

import (
	"time"

	"github.com/google/uuid"

	"fieldsim/internal/field"
)

// Packet is a reading in flight between a node and the collector. It
// exists purely for time-based arrival semantics; the payload already
// lives in the collector snapshot.
type Packet struct {
	ID       string         `json:"id"`
	Source   field.Position `json:"source"`
	Dest     field.Position `json:"dest"`
	Progress float64        `json:"progress"`
}

// NewPacket creates a packet at the source position.
func NewPacket(src, dst field.Position) *Packet {
	return &Packet{ID: uuid.New().String(), Source: src, Dest: dst}
}

// Advance moves the packet by speed*dt normalized over the source to
// destination distance, clamping progress to 1. It returns true once the
// packet has arrived. A zero-distance packet arrives immediately.
func (p *Packet) Advance(dt time.Duration, speed float64) bool {
	dist := field.Distance(p.Source, p.Dest)
	if dist == 0 {
		p.Progress = 1
		return true
	}
	p.Progress += speed * dt.Seconds() / dist
	if p.Progress >= 1 {
		p.Progress = 1
		return true
	}
	return false
}

// Position interpolates between source and destination by progress.
func (p *Packet) Position() field.Position {
	return field.Position{
		X: p.Source.X + (p.Dest.X-p.Source.X)*p.Progress,
		Y: p.Source.Y + (p.Dest.Y-p.Source.Y)*p.Progress,
	}
}
