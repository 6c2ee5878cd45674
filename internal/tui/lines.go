package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"imagemin/internal/report"
)

const (
	symbolSuccess = "✔"
	symbolFailure = "✖"
	symbolInfo    = "ℹ"
)

// LineSink writes one styled line per event. It is used whenever the
// animated progress display is unavailable: quiet mode, or stderr not being
// a terminal.
type LineSink struct {
	mu     sync.Mutex
	w      io.Writer
	styles styles
}

func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w, styles: newStyles(lipgloss.NewRenderer(w))}
}

func (s *LineSink) Emit(ev report.Event) {
	line := s.styles.line(ev)
	if line == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

func (st styles) line(ev report.Event) string {
	text := report.Describe(ev)
	if text == "" {
		return ""
	}
	switch ev.Kind {
	case report.ItemSucceeded:
		return st.success.Render(symbolSuccess) + " " + text
	case report.ItemFailed:
		return st.failure.Render(symbolFailure) + " " + st.failure.Render(text)
	case report.RunFinished:
		return st.info.Render(symbolInfo) + " " + text
	default:
		return text
	}
}
