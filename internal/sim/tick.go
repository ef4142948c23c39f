package sim

import (
	"context"
	"log/slog"
	"time"

	"fieldsim/internal/field"
	"fieldsim/internal/logging"
)

// Run drives cycles from a ticker until the scheduler reaches a terminal
// status or the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting cycle scheduler", "tick_interval", s.tickInterval, "max_cycles", s.maxCycles)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			switch st := s.RunCycle(); st {
			case StatusRunning:
				log.Debug("cycle finished", "cycle", s.Cycle())
			default:
				log.Info("scheduler finished", "status", st, "cycles", s.Cycle())
				return
			}
		case <-ctx.Done():
			log.Info("stopping cycle scheduler")
			return
		}
	}
}

// writeBatch fans readings out to the writer, using batch mode when the
// writer supports it. Write failures are dropped; the simulation never
// stops because a sink misbehaves.
func (s *Simulator) writeBatch(batch []field.ReadingRow) {
	if s.writer == nil || len(batch) == 0 {
		return
	}
	if bw, ok := s.writer.(batchReadingWriter); ok {
		if err := bw.WriteBatch(batch); err != nil {
			slog.Error("batch write failed", "err", err)
		}
		return
	}
	for _, row := range batch {
		if err := s.writer.Write(row); err != nil {
			slog.Error("write failed", "node_id", row.NodeID, "err", err)
		}
	}
}

// writeEvents fans status events out to the event writer.
func (s *Simulator) writeEvents(events []field.EventRow) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if bw, ok := s.events.(batchEventWriter); ok {
		if err := bw.WriteEvents(events); err != nil {
			slog.Error("event batch write failed", "err", err)
		}
		return
	}
	for _, e := range events {
		if err := s.events.WriteEvent(e); err != nil {
			slog.Error("event write failed", "err", err)
		}
	}
}
