package main

import (
	"os"

	"fieldsim/internal/config"
	"fieldsim/internal/field"
	"fieldsim/internal/sim"
)

// writerOptions selects the output sinks for a simulation run.
type writerOptions struct {
	printOnly bool
	color     bool
	tui       bool
	logFile   string
	csvFile   string
}

// newWriters assembles the reading and event sinks from flags and env
// vars. The returned cleanup closes file-backed sinks and the TUI.
func newWriters(cfg *config.SimulationConfig, opts writerOptions) (sim.ReadingWriter, sim.EventWriter, func(), error) {
	var (
		readingWriters []sim.ReadingWriter
		eventWriters   []sim.EventWriter
		closers        []func()
	)

	switch {
	case opts.tui:
		tw := sim.NewTUIWriter(cfg)
		readingWriters = append(readingWriters, tw)
		eventWriters = append(eventWriters, tw)
		closers = append(closers, tw.Close)
	case opts.color:
		cw := sim.NewColorStdoutWriter(cfg)
		readingWriters = append(readingWriters, cw)
		eventWriters = append(eventWriters, cw)
	default:
		sw := sim.NewStdoutWriter()
		readingWriters = append(readingWriters, sw)
		eventWriters = append(eventWriters, sw)
	}

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !opts.printOnly {
		gw, err := sim.NewGreptimeDBWriter(endpoint, "public", field.ReadingTableName, os.Getenv("FIELD_EVENT_TABLE"))
		if err != nil {
			return nil, nil, nil, err
		}
		readingWriters = append(readingWriters, gw)
		eventWriters = append(eventWriters, gw)
	}

	if opts.logFile != "" {
		fw, err := sim.NewFileWriter(opts.logFile, opts.logFile+".events")
		if err != nil {
			return nil, nil, nil, err
		}
		readingWriters = append(readingWriters, fw)
		eventWriters = append(eventWriters, fw)
		closers = append(closers, func() { fw.Close() })
	}

	if opts.csvFile != "" {
		cw, err := sim.NewCSVWriter(opts.csvFile)
		if err != nil {
			return nil, nil, nil, err
		}
		readingWriters = append(readingWriters, cw)
		closers = append(closers, func() { cw.Close() })
	}

	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(readingWriters) == 1 && len(eventWriters) == 1 {
		return readingWriters[0], eventWriters[0], cleanup, nil
	}
	mw := sim.NewMultiWriter(readingWriters, eventWriters)
	return mw, mw, cleanup, nil
}

// newReadingWriter creates a reading-only sink for replay.
func newReadingWriter(printOnly bool) (sim.ReadingWriter, func(), error) {
	w, _, cleanup, err := newWriters(nil, writerOptions{printOnly: printOnly})
	return w, cleanup, err
}
