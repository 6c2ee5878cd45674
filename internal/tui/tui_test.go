package tui

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"imagemin/internal/report"
)

func TestLineSinkWritesPlainLinesWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLineSink(&buf)

	sink.Emit(report.Event{Kind: report.ItemSucceeded, Path: "a.png", OriginalSize: 1000, OptimizedSize: 400, Done: 1, Total: 2})
	sink.Emit(report.Event{Kind: report.ItemFailed, Path: "b.png", Err: errors.New("corrupt"), Done: 2, Total: 2})
	sink.Emit(report.Event{Kind: report.RunFinished, Summary: report.Summary{Succeeded: 1, Failed: 1, OriginalBytes: 1000, SavedBytes: 600}})

	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		`✔ Minifying image "a.png" (1 of 2) - saved 600 B - 60%`,
		`✖ Minifying image "b.png" (2 of 2)... Error: corrupt`,
		"ℹ Successfully compressed images: 1. Unsuccessfully compressed images: 1. " +
			"Total images: 2. Total images size: 1 kB. Total saved size: 600 B - 60%.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestModelTracksEvents(t *testing.T) {
	events := make(chan report.Event)
	var m tea.Model = NewModel(events, 3, lipgloss.NewRenderer(&bytes.Buffer{}))

	m, cmd := m.Update(eventMsg{Kind: report.ItemSucceeded, Path: "a.png", OriginalSize: 100, OptimizedSize: 40, Done: 1, Total: 3})
	if cmd == nil {
		t.Fatal("item event should print a line and keep listening")
	}
	m, _ = m.Update(eventMsg{Kind: report.ItemFailed, Path: "b.png", Err: errors.New("boom"), Done: 2, Total: 3})
	m, _ = m.Update(eventMsg{Kind: report.RunFinished, Summary: report.Summary{Succeeded: 1, Failed: 1, OriginalBytes: 100, SavedBytes: 60}})

	model := m.(Model)
	if model.done != 2 || model.failed != 1 || model.saved != 60 {
		t.Fatalf("unexpected counters done=%d failed=%d saved=%d", model.done, model.failed, model.saved)
	}
	if !strings.Contains(model.View(), "Images: 2/3") {
		t.Fatalf("view misses progress:\n%s", model.View())
	}
	summary, ok := model.Summary()
	if !ok || summary.SavedBytes != 60 {
		t.Fatalf("summary not captured: %+v %v", summary, ok)
	}

	m, cmd = m.Update(doneMsg{})
	if cmd == nil {
		t.Fatal("closing the event stream should quit")
	}
	if m.View() != "" {
		t.Fatal("a quitting model renders nothing")
	}
}

func TestRenderSummary(t *testing.T) {
	st := newStyles(lipgloss.NewRenderer(&bytes.Buffer{}))
	out := st.renderSummary(SummaryRows(report.Summary{Succeeded: 2, OriginalBytes: 2500, SavedBytes: 500}))

	for _, want := range []string{"Compressed   | 2", "Total size   | 2.5 kB", "Saved        | 500 B - 20%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary misses %q:\n%s", want, out)
		}
	}
}

func TestRenderBarClamps(t *testing.T) {
	if got := renderBar(4, 2); got != "[====]" {
		t.Fatalf("renderBar overflow = %q", got)
	}
	if got := renderBar(4, -1); got != "[    ]" {
		t.Fatalf("renderBar underflow = %q", got)
	}
}

func TestModelPrintsBeforeReadingNextEvent(t *testing.T) {
	events := make(chan report.Event)
	close(events)
	m := NewModel(events, 1, lipgloss.NewRenderer(&bytes.Buffer{}))

	_, cmd := m.Update(eventMsg{Kind: report.ItemSucceeded, Path: "a.png", OriginalSize: 10, OptimizedSize: 5, Done: 1, Total: 1})
	if cmd == nil {
		t.Fatal("expected a command")
	}

	seq := reflect.ValueOf(cmd())
	if seq.Kind() != reflect.Slice || seq.Len() != 2 {
		t.Fatalf("expected an ordered pair of commands, got %T", cmd())
	}
	first := seq.Index(0).Interface().(tea.Cmd)()
	if _, done := first.(doneMsg); done {
		t.Fatal("the line must be printed before the stream is read")
	}
	last := seq.Index(1).Interface().(tea.Cmd)()
	if _, done := last.(doneMsg); !done {
		t.Fatalf("second command should read the closed stream, got %T", last)
	}
}
