package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"imagemin/internal/history"
	"imagemin/internal/report"
	"imagemin/internal/tui"
)

type historyFlags struct {
	db    string
	limit int
	run   int64
}

func newHistoryCmd() *cobra.Command {
	flags := &historyFlags{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded with --history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.limit < 1 {
				return fmt.Errorf("--limit must be a positive integer, got %d", flags.limit)
			}

			store, err := history.Open(flags.db)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			styles := newHistoryStyles(out)
			if flags.run > 0 {
				items, err := store.Items(cmd.Context(), flags.run)
				if err != nil {
					return err
				}
				styles.writeItems(out, items)
				return nil
			}

			runs, err := store.Recent(cmd.Context(), flags.limit)
			if err != nil {
				return err
			}
			styles.writeRuns(out, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.db, "db", "", "SQLite journal written by --history")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 10, "number of runs to list")
	cmd.Flags().Int64Var(&flags.run, "run", 0, "list the images of one run")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}

type historyStyles struct {
	run    lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	dim    lipgloss.Style
	bullet lipgloss.Style
	failed lipgloss.Style
}

func newHistoryStyles(w io.Writer) historyStyles {
	r := lipgloss.NewRenderer(w)
	return historyStyles{
		run:    r.NewStyle().Bold(true).Foreground(tui.ColorAccent),
		label:  r.NewStyle().Foreground(tui.ColorAccentAlt),
		value:  r.NewStyle().Foreground(tui.ColorInk),
		dim:    r.NewStyle().Foreground(tui.ColorDim),
		bullet: r.NewStyle().Foreground(tui.ColorDim),
		failed: r.NewStyle().Foreground(tui.ColorError),
	}
}

func (s historyStyles) writeRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, s.dim.Render("no runs recorded"))
		return
	}
	for i, run := range runs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n",
			s.run.Render(fmt.Sprintf("#%d", run.ID)),
			s.dim.Render(run.StartedAt.Format(time.DateTime)),
		)
		fmt.Fprintf(w, "  %s %s\n", s.label.Render("chain:"), s.value.Render(run.Chain))
		fmt.Fprintf(w, "  %s %s\n", s.label.Render("cwd:"), s.value.Render(run.Cwd))
		fmt.Fprintf(w, "  %s %s\n", s.label.Render("images:"),
			s.value.Render(fmt.Sprintf("%d ok, %d failed", run.Succeeded, run.Failed)))
		fmt.Fprintf(w, "  %s %s\n", s.label.Render("saved:"),
			s.value.Render(fmt.Sprintf("%s of %s - %s%%",
				report.FormatBytes(run.SavedBytes),
				report.FormatBytes(run.OriginalBytes),
				report.FormatPercent(report.PercentSaved(run.OriginalBytes, run.OriginalBytes-run.SavedBytes)),
			)))
	}
}

func (s historyStyles) writeItems(w io.Writer, items []history.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, s.dim.Render("no images recorded"))
		return
	}
	for _, item := range items {
		if item.Error != "" {
			fmt.Fprintf(w, "%s %s %s\n", s.bullet.Render("-"), s.value.Render(item.Path), s.failed.Render(item.Error))
			continue
		}
		saved := item.OriginalSize - item.OptimizedSize
		fmt.Fprintf(w, "%s %s %s\n",
			s.bullet.Render("-"),
			s.value.Render(item.Path),
			s.dim.Render(fmt.Sprintf("saved %s - %s%% -> %s",
				report.FormatBytes(saved),
				report.FormatPercent(report.PercentSaved(item.OriginalSize, item.OptimizedSize)),
				destinationLabel(item.Destination),
			)),
		)
	}
}

func destinationLabel(dest string) string {
	if dest == "" {
		return "stdout"
	}
	return dest
}
