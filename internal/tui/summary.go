package tui

import (
	"fmt"
	"strings"

	"imagemin/internal/report"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lays out the totals of a finished batch.
func SummaryRows(s report.Summary) []SummaryRow {
	return []SummaryRow{
		{Label: "Compressed", Value: fmt.Sprintf("%d", s.Succeeded)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
		{Label: "Total images", Value: fmt.Sprintf("%d", s.Total())},
		{Label: "Total size", Value: report.FormatBytes(s.OriginalBytes)},
		{Label: "Saved", Value: fmt.Sprintf("%s - %s%%", report.FormatBytes(s.SavedBytes), report.FormatPercent(s.Percent()))},
	}
}

func (st styles) renderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
		if len(row.Value) > valueWidth {
			valueWidth = len(row.Value)
		}
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{st.dim.Render(hline)}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", st.label.Render(label), st.value.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, st.dim.Render(hline))
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
