package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorInk       = lipgloss.Color("#E5E9F0")
	ColorDim       = lipgloss.Color("#7A8291")
	ColorAccent    = lipgloss.Color("#88C0D0")
	ColorAccentAlt = lipgloss.Color("#81A1C1")
	ColorSuccess   = lipgloss.Color("#A3BE8C")
	ColorWarn      = lipgloss.Color("#EBCB8B")
	ColorError     = lipgloss.Color("#BF616A")
)

// styles is the set of styles bound to one renderer, so color detection
// follows the writer the text ends up on.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(ColorAccent),
		label:   r.NewStyle().Foreground(ColorInk),
		value:   r.NewStyle().Foreground(ColorInk).Bold(true),
		dim:     r.NewStyle().Foreground(ColorDim),
		success: r.NewStyle().Foreground(ColorSuccess),
		failure: r.NewStyle().Foreground(ColorError),
		info:    r.NewStyle().Foreground(ColorAccentAlt),
	}
}
