package field

import (
	"math/rand"
	"time"
)

// Default node parameters, applied when the config leaves them unset.
const (
	DefaultBattery           = 100.0
	DefaultSensingRange      = 10.0
	DefaultCommRange         = 50.0
	DefaultEnergyPerSense    = 0.05
	DefaultEnergyPerTransmit = 0.1
)

// Node holds runtime state for one simulated sensor. Battery stays within
// [0,100] and only decreases; Active flips true→false exactly once and a
// deactivated node never mutates its readings or battery again.
type Node struct {
	ID                int
	Position          Position
	Type              DataType
	Battery           float64
	SensingRange      float64
	CommRange         float64
	Active            bool
	Readings          map[string]float64
	EnergyPerSense    float64
	EnergyPerTransmit float64

	// Profile is the reading-generation table. It defaults to the
	// data type's ranges and may be swapped for deterministic tests.
	Profile []ReadingSpec

	// RefreshEvery gates the continuous-loop timers below. The cycle
	// scheduler leaves it zero.
	RefreshEvery time.Duration
	lastRefresh  time.Time
	lastSend     time.Time
}

// NewNode creates an active node with default energy parameters.
func NewNode(id int, pos Position, t DataType) *Node {
	return &Node{
		ID:                id,
		Position:          pos,
		Type:              t,
		Battery:           DefaultBattery,
		SensingRange:      DefaultSensingRange,
		CommRange:         DefaultCommRange,
		Active:            true,
		Readings:          make(map[string]float64),
		EnergyPerSense:    DefaultEnergyPerSense,
		EnergyPerTransmit: DefaultEnergyPerTransmit,
		Profile:           t.Profile(),
	}
}

func (n *Node) sample(rng *rand.Rand) {
	for _, spec := range n.Profile {
		n.Readings[spec.Key] = spec.Min + rng.Float64()*(spec.Max-spec.Min)
	}
}

// Sense generates a fresh value for every reading key and deducts the
// sensing cost. It fails softly when the node is inactive or exhausted.
// If the deduction empties the battery the node deactivates, but the
// readings sampled in that same call are still returned.
func (n *Node) Sense(rng *rand.Rand) (map[string]float64, bool) {
	if !n.Active || n.Battery <= 0 {
		n.Active = false
		return nil, false
	}
	n.sample(rng)
	n.Battery -= n.EnergyPerSense
	if n.Battery <= 0 {
		n.Battery = 0
		n.Active = false
	}
	return n.CopyReadings(), true
}

// Transmit attempts to reach the collector at the given position. Out of
// range is a soft failure with no energy cost. In range, the cost scales
// with normalized distance: EnergyPerTransmit * (distance / CommRange),
// so a transmission at distance zero is free.
func (n *Node) Transmit(to Position) bool {
	if !n.Active || n.Battery <= 0 {
		n.Active = false
		return false
	}
	dist := Distance(n.Position, to)
	if dist > n.CommRange {
		return false
	}
	n.Battery -= n.EnergyPerTransmit * (dist / n.CommRange)
	if n.Battery <= 0 {
		n.Battery = 0
		n.Active = false
	}
	return true
}

// CopyReadings returns a copy of the current reading map.
func (n *Node) CopyReadings() map[string]float64 {
	out := make(map[string]float64, len(n.Readings))
	for k, v := range n.Readings {
		out[k] = v
	}
	return out
}

// StartTimers seeds the interval gates used by the continuous loop.
func (n *Node) StartTimers(now time.Time) {
	n.lastRefresh = now
	n.lastSend = now
}

// Refresh regenerates the readings once RefreshEvery has elapsed since
// the last refresh. The continuous loop has no energy model, so this
// costs nothing and never deactivates the node.
func (n *Node) Refresh(now time.Time, rng *rand.Rand) bool {
	if n.RefreshEvery <= 0 || now.Sub(n.lastRefresh) < n.RefreshEvery {
		return false
	}
	n.sample(rng)
	n.lastRefresh = now
	return true
}

// ShouldSend fires at most once per RefreshEvery. It is an independent
// edge trigger from Refresh, so readings and sends drift apart freely.
func (n *Node) ShouldSend(now time.Time) bool {
	if n.RefreshEvery <= 0 || now.Sub(n.lastSend) < n.RefreshEvery {
		return false
	}
	n.lastSend = now
	return true
}
