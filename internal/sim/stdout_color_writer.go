// ColorStdoutWriter prints human-friendly, colorized readings to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"fieldsim/internal/config"
	"fieldsim/internal/field"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var typePalette = []string{colorBlue, colorYellow, colorGreen, colorMagenta, colorCyan, colorRed}

// ColorStdoutWriter prints reading rows using ANSI colors, with a one-time
// configuration overview before the first row.
type ColorStdoutWriter struct {
	cfg        *config.SimulationConfig
	out        io.Writer
	once       sync.Once
	typeColors map[field.DataType]string
	colorIdx   int
	mu         sync.Mutex
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:        cfg,
		out:        os.Stdout,
		typeColors: make(map[field.DataType]string),
	}
}

func (w *ColorStdoutWriter) getTypeColor(t field.DataType) string {
	if c, ok := w.typeColors[t]; ok {
		return c
	}
	c := typePalette[w.colorIdx%len(typePalette)]
	w.typeColors[t] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Field:\t%s (%.0fx%.0f)\n", w.cfg.Field.Name, w.cfg.Field.Width, w.cfg.Field.Height)
	fmt.Fprintf(tw, "Base Station:\t(%.1f, %.1f)\n", w.cfg.BaseStation.X, w.cfg.BaseStation.Y)
	fmt.Fprintf(tw, "Comm Range:\t%.1f\n", w.cfg.Defaults.CommRange)
	fmt.Fprintf(tw, "Energy/Sense:\t%.3f\n", w.cfg.Defaults.EnergyPerSense)
	fmt.Fprintf(tw, "Energy/Transmit:\t%.3f\n", w.cfg.Defaults.EnergyPerTransmit)
	fmt.Fprintf(tw, "Max Cycles:\t%d\n", w.cfg.MaxCycles)
	tw.Flush()

	fmt.Fprintln(w.out, "\nNodes:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tType\tPosition\n")
	for _, n := range w.cfg.Nodes {
		col := w.getTypeColor(field.DataType(n.Type))
		fmt.Fprintf(tw, "%d\t%s%s%s\t(%.1f, %.1f)\n", n.ID, col, n.Type, colorReset, n.X, n.Y)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func batteryColor(battery float64) string {
	switch {
	case battery > 50:
		return colorGreen
	case battery > 20:
		return colorYellow
	default:
		return colorRed
	}
}

func formatReadings(readings map[string]float64) string {
	keys := make([]string, 0, len(readings))
	for k := range readings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.1f", k, readings[k]))
	}
	return strings.Join(parts, " ")
}

// Write outputs a single reading row in colorized format.
func (w *ColorStdoutWriter) Write(row field.ReadingRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	tColor := w.getTypeColor(row.DataType)
	fmt.Fprintf(w.out, "%s[%s]%s %sfield=%s%s %snode=%d%s %stype=%s%s %spos=(%.1f,%.1f)%s %sbatt=%.2f%s %s\n",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, row.FieldID, colorReset,
		colorCyan, row.NodeID, colorReset,
		tColor, row.DataType, colorReset,
		colorGray, row.X, row.Y, colorReset,
		batteryColor(row.Battery), row.Battery, colorReset,
		formatReadings(row.Readings),
	)
	return nil
}

// WriteEvent outputs a scheduler event, highlighted by severity.
func (w *ColorStdoutWriter) WriteEvent(e field.EventRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	col := colorYellow
	switch e.Type {
	case field.EventCompleted:
		col = colorGreen
	case field.EventDepleted, field.EventNodeDepleted:
		col = colorRed
	}
	fmt.Fprintf(w.out, "%s[%s]%s %s%s%s cycle=%d %s\n",
		colorGray, e.Timestamp.Format(time.RFC3339), colorReset,
		col, strings.ToUpper(string(e.Type)), colorReset,
		e.Cycle, e.Message,
	)
	return nil
}
