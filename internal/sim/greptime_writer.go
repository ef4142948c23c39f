// GreptimeDB sink for readings and scheduler events
package sim

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"fieldsim/internal/field"
)

// ingesterClient abstracts the GreptimeDB client for testing.
type ingesterClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes readings to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client       ingesterClient
	readingTable string
	eventTable   string
}

// NewGreptimeDBWriter connects to a GreptimeDB endpoint. eventTable may
// be empty to skip event ingestion.
func NewGreptimeDBWriter(endpoint, database, readingTable, eventTable string) (*GreptimeDBWriter, error) {
	host, port := endpoint, ""
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		host, port = h, p
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithPort(p)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if readingTable == "" {
		readingTable = field.ReadingTableName
	}
	return &GreptimeDBWriter{
		client:       client,
		readingTable: readingTable,
		eventTable:   eventTable,
	}, nil
}

// Write inserts a single reading row.
func (w *GreptimeDBWriter) Write(row field.ReadingRow) error {
	return w.WriteBatch([]field.ReadingRow{row})
}

// WriteBatch inserts multiple reading rows.
func (w *GreptimeDBWriter) WriteBatch(rows []field.ReadingRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.readingTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("field_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("node_id", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("record_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("x", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("y", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("data_type", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("battery", types.FLOAT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("active", types.BOOLEAN); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("readings", types.JSON); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		readings, err := json.Marshal(r.Readings)
		if err != nil {
			return err
		}
		if err := tbl.AddRow(
			r.FieldID, int64(r.NodeID),
			r.RecordID, r.X, r.Y, string(r.DataType), r.Battery, r.Active, string(readings),
			r.Timestamp,
		); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		slog.Error("greptime write failed", "table", w.readingTable, "err", err)
		return err
	}
	return nil
}

// WriteEvent inserts a single scheduler event.
func (w *GreptimeDBWriter) WriteEvent(e field.EventRow) error {
	return w.WriteEvents([]field.EventRow{e})
}

// WriteEvents inserts multiple scheduler events, if an event table is set.
func (w *GreptimeDBWriter) WriteEvents(events []field.EventRow) error {
	if w.eventTable == "" || len(events) == 0 {
		return nil
	}

	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("field_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("type", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("node_id", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("cycle", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("message", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, e := range events {
		if err := tbl.AddRow(e.FieldID, string(e.Type), int64(e.NodeID), int64(e.Cycle), e.Message, e.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		slog.Error("greptime write failed", "table", w.eventTable, "err", err)
		return err
	}
	return nil
}
