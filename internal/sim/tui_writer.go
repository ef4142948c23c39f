// Live terminal dashboard rendering readings with bubbletea
package sim

import (
	"fmt"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"fieldsim/internal/config"
	"fieldsim/internal/field"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// readingMsg carries one reading row into the model.
type readingMsg struct{ field.ReadingRow }

// eventMsg carries a scheduler event line.
type eventMsg struct{ field.EventRow }

const (
	tuiLogLines    = 200
	defaultTermCol = 100
	defaultTermRow = 30
)

var (
	tuiTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	tuiBorderStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	tuiHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tuiEventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	tuiBattLow     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tuiBattOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// TUIWriter renders readings in a live terminal dashboard.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		// Quitting the TUI also stops the simulation.
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements ReadingWriter.
func (w *TUIWriter) Write(row field.ReadingRow) error {
	w.program.Send(readingMsg{row})
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e field.EventRow) error {
	w.program.Send(eventMsg{e})
	return nil
}

// Close shuts the TUI down without signalling the process.
func (w *TUIWriter) Close() {
	w.sendSignal.Store(false)
	if p, ok := w.program.(*tea.Program); ok {
		p.Quit()
		<-w.done
	}
}

type tuiModel struct {
	fieldName string
	nodes     table.Model
	log       viewport.Model
	lines     []string
	latest    map[int]field.ReadingRow
	width     int
	height    int
}

func newTUIModel(cfg *config.SimulationConfig) *tuiModel {
	width, height := defaultTermCol, defaultTermRow
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	columns := []table.Column{
		{Title: "Node", Width: 6},
		{Title: "Type", Width: 12},
		{Title: "Pos", Width: 16},
		{Title: "Battery", Width: 8},
		{Title: "Readings", Width: width - 50},
	}
	t := table.New(table.WithColumns(columns), table.WithHeight(10))
	vp := viewport.New(width-2, height-16)
	name := ""
	if cfg != nil {
		name = cfg.Field.Name
	}
	return &tuiModel{
		fieldName: name,
		nodes:     t,
		log:       vp,
		latest:    make(map[int]field.ReadingRow),
		width:     width,
		height:    height,
	}
}

func (m *tuiModel) Init() tea.Cmd { return nil }

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.log.Width = msg.Width - 2
		if h := msg.Height - 16; h > 3 {
			m.log.Height = h
		}
	case readingMsg:
		m.latest[msg.NodeID] = msg.ReadingRow
		m.refreshTable()
	case eventMsg:
		line := fmt.Sprintf("[%s] %s cycle=%d %s",
			msg.Timestamp.Format(time.TimeOnly), msg.Type, msg.Cycle, msg.Message)
		m.appendLine(tuiEventStyle.Render(line))
	}

	var cmd tea.Cmd
	m.log, cmd = m.log.Update(msg)
	return m, cmd
}

func (m *tuiModel) refreshTable() {
	ids := make([]int, 0, len(m.latest))
	for id := range m.latest {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	rows := make([]table.Row, 0, len(ids))
	for _, id := range ids {
		r := m.latest[id]
		batt := tuiBattOK.Render(fmt.Sprintf("%.2f", r.Battery))
		if r.Battery <= 20 || !r.Active {
			batt = tuiBattLow.Render(fmt.Sprintf("%.2f", r.Battery))
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", id),
			string(r.DataType),
			fmt.Sprintf("(%.1f,%.1f)", r.X, r.Y),
			batt,
			formatReadings(r.Readings),
		})
	}
	m.nodes.SetRows(rows)
}

func (m *tuiModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > tuiLogLines {
		m.lines = m.lines[len(m.lines)-tuiLogLines:]
	}
	m.log.SetContent(wordwrap.String(joinLines(m.lines), m.log.Width))
	m.log.GotoBottom()
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

func (m *tuiModel) View() string {
	title := tuiTitleStyle.Render("fieldsim: " + m.fieldName)
	help := tuiHelpStyle.Render(wordwrap.String("q: quit", m.width))
	return title + "\n" +
		tuiBorderStyle.Render(m.nodes.View()) + "\n" +
		tuiBorderStyle.Render(m.log.View()) + "\n" +
		help
}
