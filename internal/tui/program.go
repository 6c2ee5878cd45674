package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"imagemin/internal/report"
)

// Program is a report.Sink backed by a running bubbletea program. Item lines
// scroll above a live spinner; the summary table is printed after Close.
type Program struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	events   chan report.Event
	program  *tea.Program
	done     chan struct{}
	final    tea.Model
	err      error
}

// Start launches the progress program on w for a batch of total items. The
// program never reads input, since stdin may carry image data.
func Start(w io.Writer, total int) *Program {
	renderer := lipgloss.NewRenderer(w)
	p := &Program{
		w:        w,
		renderer: renderer,
		events:   make(chan report.Event, 64),
		done:     make(chan struct{}),
	}
	p.program = tea.NewProgram(
		NewModel(p.events, total, renderer),
		tea.WithOutput(w),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	go func() {
		defer close(p.done)
		p.final, p.err = p.program.Run()
	}()
	return p
}

func (p *Program) Emit(ev report.Event) {
	select {
	case p.events <- ev:
	case <-p.done:
	}
}

// Close drains the program and prints the summary table when the batch
// reported one.
func (p *Program) Close() error {
	close(p.events)
	<-p.done
	if p.err != nil {
		return p.err
	}

	if m, ok := p.final.(Model); ok {
		if summary, ok := m.Summary(); ok {
			fmt.Fprintln(p.w, newStyles(p.renderer).renderSummary(SummaryRows(summary)))
		}
	}
	return nil
}
