// Package tui renders batch status on a terminal: an animated progress
// program for interactive sessions and plain styled lines otherwise.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"imagemin/internal/report"
)

type Model struct {
	events   <-chan report.Event
	styles   styles
	spinner  spinner.Model
	started  time.Time
	width    int
	total    int
	done     int
	failed   int
	saved    int64
	summary  *report.Summary
	quitting bool
}

type doneMsg struct{}

type eventMsg report.Event

func NewModel(events <-chan report.Event, total int, renderer *lipgloss.Renderer) Model {
	st := newStyles(renderer)
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = st.info
	return Model{
		events:  events,
		styles:  st,
		spinner: s,
		started: time.Now(),
		total:   total,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listenForEvents(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := report.Event(msg)
		listen := listenForEvents(m.events)
		switch ev.Kind {
		case report.ItemSucceeded:
			m.done = ev.Done
			m.saved += ev.Saved()
		case report.ItemFailed:
			m.done = ev.Done
			m.failed++
		case report.RunFinished:
			summary := ev.Summary
			m.summary = &summary
			return m, listen
		}
		// The next event (possibly the end of the stream) is only read once
		// the line is printed, so quitting never drops it.
		return m, tea.Sequence(tea.Println(m.styles.line(ev)), listen)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	elapsed := time.Since(m.started).Round(time.Millisecond)
	lines := []string{
		m.spinner.View() + " " + m.styles.title.Render("Minifying images"),
		m.styles.label.Render(fmt.Sprintf("Images: %d/%d", m.done, m.total)) + m.styles.dim.Render(fmt.Sprintf("  errors:%d", m.failed)),
		m.styles.label.Render("Saved: " + report.FormatBytes(m.saved)),
		m.styles.dim.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		m.styles.info.Render(renderBar(barWidth, ratio)),
	}

	return strings.Join(lines, "\n")
}

// Summary returns the totals carried by the final event, if it arrived.
func (m Model) Summary() (report.Summary, bool) {
	if m.summary == nil {
		return report.Summary{}, false
	}
	return *m.summary, true
}

func listenForEvents(events <-chan report.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}
