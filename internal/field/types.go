// Core entities shared by both scheduler variants.
package field

import (
	"math"
	"os"
	"time"
)

// Position is a point in field coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// DataType determines which readings a node produces and their valid ranges.
type DataType string

// Single-reading types used by the cycle scheduler.
const (
	TypeMoisture    DataType = "moisture"
	TypeTemperature DataType = "temperature"
	TypeHumidity    DataType = "humidity"
	TypeLight       DataType = "light"
	TypePH          DataType = "ph"
)

// Multi-reading types used by the continuous loop.
const (
	TypeEnv   DataType = "env"
	TypeSoil  DataType = "soil"
	TypeRelay DataType = "relay"
)

// ReadingSpec is one reading key with its sampling interval.
type ReadingSpec struct {
	Key string
	Min float64
	Max float64
}

var profiles = map[DataType][]ReadingSpec{
	TypeMoisture:    {{Key: "moisture", Min: 20, Max: 80}},
	TypeTemperature: {{Key: "temperature", Min: 15, Max: 35}},
	TypeHumidity:    {{Key: "humidity", Min: 20, Max: 80}},
	TypeLight:       {{Key: "light", Min: 100, Max: 1000}},
	TypePH:          {{Key: "ph", Min: 5.5, Max: 7.5}},
	TypeEnv: {
		{Key: "luminosity", Min: 200, Max: 1000},
		{Key: "uv", Min: 0.5, Max: 5.0},
		{Key: "pressure", Min: 72000, Max: 73000},
	},
	TypeSoil: {
		{Key: "soil_humidity", Min: 30, Max: 70},
		{Key: "air_temp", Min: 15, Max: 35},
		{Key: "air_humidity", Min: 40, Max: 80},
	},
	TypeRelay: {{Key: "rssi", Min: -90, Max: -30}},
}

// Profile returns a copy of the reading specs owned by the data type.
func (t DataType) Profile() []ReadingSpec {
	specs, ok := profiles[t]
	if !ok {
		return nil
	}
	out := make([]ReadingSpec, len(specs))
	copy(out, specs)
	return out
}

// Valid reports whether the data type is known.
func (t DataType) Valid() bool {
	_, ok := profiles[t]
	return ok
}

// ReadingRow represents one successful transmission for downstream writers.
type ReadingRow struct {
	FieldID   string             `json:"field_id"` // TAG
	NodeID    int                `json:"node_id"`  // TAG
	RecordID  string             `json:"record_id"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	DataType  DataType           `json:"data_type"`
	Battery   float64            `json:"battery"`
	Active    bool               `json:"active"`
	Readings  map[string]float64 `json:"readings"`
	Timestamp time.Time          `json:"ts"` // TIME INDEX
}

// ReadingTableName holds the table name used when writing to GreptimeDB.
// It defaults to "field_readings" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var ReadingTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "field_readings"
}()

func (ReadingRow) TableName() string {
	return ReadingTableName
}

// EventType classifies scheduler status events.
type EventType string

// Scheduler event types. None of them is fatal; transmit failures are
// display-only notices and never retried.
const (
	EventTransmitFailed EventType = "transmit_failed"
	EventNodeDepleted   EventType = "node_depleted"
	EventCompleted      EventType = "completed"
	EventDepleted       EventType = "depleted"
)

// EventRow is a status notice emitted by a scheduler.
type EventRow struct {
	FieldID   string    `json:"field_id"`
	NodeID    int       `json:"node_id"` // -1 for field-wide events
	Type      EventType `json:"type"`
	Cycle     int       `json:"cycle"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"ts"`
}
