// Package tui is the bubbletea live view of a running simulation.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/thermo/internal/thermo"
	"github.com/san-kum/thermo/internal/viz"
)

const (
	historyCapacity = 600
	maxDiagnostics  = 4
	sparkWidth      = 24
)

type RowMsg struct {
	Columns []string
	Row     thermo.Row
}

type StepMsg struct {
	Step, Last int64
}

// DoneMsg ends the run; Err is nil on success.
type DoneMsg struct {
	Err error
}

// Model shows the latest thermo row, per-column sparklines and a chart of
// the selected column.
type Model struct {
	title    string
	cancel   context.CancelFunc
	columns  []string
	latest   []string
	history  map[string][]float64
	selected int
	step     int64
	last     int64
	start    int64
	rows     int
	diags    []string
	done     bool
	err      error
	showHelp bool
}

// NewModel builds a model; cancel stops the simulation when the user quits.
func NewModel(title string, cancel context.CancelFunc) Model {
	return Model{
		title:   title,
		cancel:  cancel,
		history: make(map[string][]float64),
		start:   -1,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "tab", "right", "l":
			if len(m.columns) > 0 {
				m.selected = (m.selected + 1) % len(m.columns)
			}
		case "shift+tab", "left", "h":
			if len(m.columns) > 0 {
				m.selected = (m.selected + len(m.columns) - 1) % len(m.columns)
			}
		case "t":
			viz.NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case RowMsg:
		m.addRow(msg)
	case StepMsg:
		if msg.Last != m.last {
			m.start = msg.Step - 1
		}
		m.step, m.last = msg.Step, msg.Last
	case DoneMsg:
		m.done, m.err = true, msg.Err
	}
	return m, nil
}

func (m *Model) addRow(msg RowMsg) {
	if !equalColumns(m.columns, msg.Columns) {
		m.columns = append([]string(nil), msg.Columns...)
		if m.selected >= len(m.columns) {
			m.selected = 0
		}
	}
	m.latest = make([]string, len(msg.Row.Values))
	for i, v := range msg.Row.Values {
		m.latest[i] = v.String()
		if i >= len(m.columns) {
			continue
		}
		h := append(m.history[m.columns[i]], v.Float64())
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[m.columns[i]] = h
	}
	m.step = msg.Row.Step
	m.rows++
	m.diags = append(m.diags, msg.Row.Diagnostics...)
	if len(m.diags) > maxDiagnostics {
		m.diags = m.diags[len(m.diags)-maxDiagnostics:]
	}
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Selected returns the column shown in the chart.
func (m Model) Selected() string {
	if len(m.columns) == 0 {
		return ""
	}
	return m.columns[m.selected]
}

func (m Model) status() string {
	switch {
	case m.done && m.err != nil:
		return viz.ErrorStyle.Render("FAILED: " + m.err.Error())
	case m.done:
		return viz.StatusOK.Render("DONE")
	}
	return viz.StatusOK.Render("RUNNING")
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(viz.HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(fmt.Sprintf("%s  step %d  rows %d\n", m.status(), m.step, m.rows))
	if span := m.last - m.start; m.start >= 0 && span > 0 {
		s.WriteString(viz.ProgressBar(float64(m.step-m.start)/float64(span), 40) + "\n")
	}
	s.WriteString("\n")

	var table strings.Builder
	for i, c := range m.columns {
		label := viz.MetricLabel.Render(c)
		if i == m.selected {
			label = viz.Title.Width(12).Render(c)
		}
		value := ""
		if i < len(m.latest) {
			value = m.latest[i]
		}
		table.WriteString(fmt.Sprintf("%s %s  %s\n", label, viz.MetricValue.Width(14).Render(value), viz.Sparkline(m.history[c], sparkWidth)))
	}
	if len(m.columns) == 0 {
		table.WriteString(viz.Subtle.Render("waiting for first row") + "\n")
	}

	chart := ""
	if c := m.Selected(); c != "" {
		chart = viz.Chart(c, m.history[c], 40, 8)
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, viz.Panel.Render(strings.TrimSuffix(table.String(), "\n")), "  ", chart))
	s.WriteString("\n")

	for _, d := range m.diags {
		s.WriteString(viz.WarnStyle.Render("WARNING: "+d) + "\n")
	}
	if m.showHelp {
		s.WriteString(viz.KeyHint.Render("\ntab/shift+tab  select chart column\nt              cycle theme\nq              stop and quit\n"))
	} else {
		s.WriteString(viz.KeyHint.Render("\ntab:column t:theme q:quit ?:help"))
	}
	return s.String()
}

// Sender is the part of *tea.Program a Feed needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Feed forwards rows and throttled step updates to a running program. It
// implements thermo.Observer and sim.Observer.
type Feed struct {
	p        Sender
	interval time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

func NewFeed(p Sender, frameRate int) *Feed {
	if frameRate < 1 {
		frameRate = 30
	}
	return &Feed{p: p, interval: time.Second / time.Duration(frameRate)}
}

func (f *Feed) OnRow(columns []string, row thermo.Row) {
	f.p.Send(RowMsg{Columns: append([]string(nil), columns...), Row: row})
}

func (f *Feed) OnStep(step, last int64) {
	f.mu.Lock()
	now := time.Now()
	if step != last && now.Sub(f.lastSent) < f.interval {
		f.mu.Unlock()
		return
	}
	f.lastSent = now
	f.mu.Unlock()
	f.p.Send(StepMsg{Step: step, Last: last})
}

func (f *Feed) Done(err error) { f.p.Send(DoneMsg{Err: err}) }
