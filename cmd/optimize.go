package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"imagemin/internal/config"
	"imagemin/internal/ctxlog"
	"imagemin/internal/history"
	"imagemin/internal/plugin"
	"imagemin/internal/processor"
	"imagemin/internal/report"
	"imagemin/internal/tui"
)

type optimizeFlags struct {
	config         string
	cwd            string
	plugins        []string
	outDir         string
	parents        bool
	inPlace        bool
	maxConcurrency int
	ignoreErrors   bool
	verbose        bool
	quiet          bool
	silent         bool
	history        string
	logLevel       string
}

func (f *optimizeFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "HCL file declaring the plugin chain")
	fs.StringVarP(&f.cwd, "cwd", "d", "", "directory relative paths and globs are resolved against")
	fs.StringSliceVarP(&f.plugins, "plugin", "p", nil, "plugin to use, repeatable (default gif,jpeg,png,svg)")
	fs.StringVarP(&f.outDir, "out-dir", "o", "", "output directory")
	fs.BoolVarP(&f.parents, "parents", "a", false, "preserve the directory tree below --cwd in --out-dir")
	fs.BoolVar(&f.inPlace, "in-place", false, "overwrite the source images")
	fs.IntVarP(&f.maxConcurrency, "max-concurrency", "j", 0, "images optimized at once (default CPU count)")
	fs.BoolVarP(&f.ignoreErrors, "ignore-errors", "i", false, "count failed images without failing the run")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "report every image and a summary")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "report failures only")
	fs.BoolVarP(&f.silent, "silent", "s", false, "report nothing (default)")
	fs.StringVar(&f.history, "history", "", "record the run in this SQLite journal")
	fs.StringVar(&f.logLevel, "log-level", "warn", "diagnostic log level: debug, info, warn or error")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet", "silent")
	cmd.MarkFlagsMutuallyExclusive("in-place", "out-dir")
}

func (f *optimizeFlags) level() report.Level {
	switch {
	case f.verbose:
		return report.Verbose
	case f.quiet:
		return report.Quiet
	default:
		return report.Silent
	}
}

func (f *optimizeFlags) validate(cmd *cobra.Command, args []string) error {
	if !ctxlog.ValidLevel(f.logLevel) {
		return fmt.Errorf("invalid --log-level %q", f.logLevel)
	}
	if cmd.Flags().Changed("max-concurrency") && f.maxConcurrency < 1 {
		return fmt.Errorf("--max-concurrency must be a positive integer, got %d", f.maxConcurrency)
	}
	if f.parents && f.outDir == "" {
		return errors.New("--parents requires --out-dir")
	}
	if f.inPlace && len(args) == 0 {
		return errors.New("--in-place needs at least one filename, stdin has no file to replace")
	}
	return nil
}

func runOptimize(cmd *cobra.Command, flags *optimizeFlags, args []string) error {
	if err := flags.validate(cmd, args); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	logger := ctxlog.New(flags.logLevel, stderr)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	chain, fileConcurrency, err := resolveChain(flags)
	if err != nil {
		return err
	}

	opts := processor.Options{
		Cwd:            flags.cwd,
		OutDir:         flags.outDir,
		PreserveTree:   flags.parents,
		InPlace:        flags.inPlace,
		MaxConcurrency: flags.maxConcurrency,
		IgnoreErrors:   flags.ignoreErrors,
	}
	if !cmd.Flags().Changed("max-concurrency") && fileConcurrency > 0 {
		opts.MaxConcurrency = fileConcurrency
	}
	if opts.Cwd, err = filepath.Abs(opts.Cwd); err != nil {
		return err
	}

	items, err := collectItems(cmd, opts.Cwd, args)
	if err != nil {
		return err
	}
	logger.Info("starting run", "chain", chain.String(), "items", len(items), "cwd", opts.Cwd)

	sink, closeSink := openSink(flags.level(), stderr, len(items))
	agg := report.NewAggregator(flags.level(), sink, len(items))

	started := time.Now()
	res, runErr := processor.Run(ctx, items, chain, opts, agg)
	if err := closeSink(); err != nil {
		logger.Warn("progress display failed", "error", err)
	}

	var multi *processor.MultipleOutputsError
	if errors.As(runErr, &multi) {
		return runErr
	}

	routeErr := processor.Route(cmd.OutOrStdout(), res.Outcomes, opts)

	if flags.history != "" {
		if err := recordRun(context.WithoutCancel(ctx), flags.history, journalEntry(started, opts, chain, res)); err != nil {
			logger.Warn("could not record run", "history", flags.history, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	return routeErr
}

// resolveChain builds the plugin chain. A config file takes precedence over
// --plugin names and may also set the concurrency.
func resolveChain(flags *optimizeFlags) (plugin.Chain, int, error) {
	reg := plugin.NewRegistry()
	if flags.config == "" {
		chain, err := reg.Resolve(flags.plugins)
		return chain, 0, err
	}

	file, err := config.Load(flags.config)
	if err != nil {
		return nil, 0, err
	}
	chain, err := file.Chain(reg)
	if err != nil {
		return nil, 0, err
	}
	return chain, file.MaxConcurrency, nil
}

// collectItems discovers the inputs named by args, or reads the single
// stdin image when no args are given and stdin is not a terminal.
func collectItems(cmd *cobra.Command, cwd string, args []string) ([]processor.SourceItem, error) {
	if len(args) > 0 {
		return processor.Discover(cwd, args)
	}

	stdin := cmd.InOrStdin()
	if isTerminal(stdin) {
		return nil, errors.New("specify at least one filename")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return processor.FromBytes(data), nil
}

// openSink picks where status events go. The animated display is only used
// for verbose runs on a terminal.
func openSink(level report.Level, w io.Writer, total int) (report.Sink, func() error) {
	switch {
	case level == report.Silent:
		return report.Discard, func() error { return nil }
	case level == report.Verbose && isTerminal(w):
		program := tui.Start(w, total)
		return program, program.Close
	default:
		return tui.NewLineSink(w), func() error { return nil }
	}
}

func journalEntry(started time.Time, opts processor.Options, chain plugin.Chain, res processor.Result) history.Run {
	run := history.Run{
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Cwd:           opts.Cwd,
		Chain:         chain.String(),
		Succeeded:     res.Summary.Succeeded,
		Failed:        res.Summary.Failed,
		OriginalBytes: res.Summary.OriginalBytes,
		SavedBytes:    res.Summary.SavedBytes,
		Items:         make([]history.Item, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		item := history.Item{
			Path:          o.RelPath,
			Destination:   o.Destination,
			OriginalSize:  o.OriginalSize,
			OptimizedSize: o.OptimizedSize,
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		run.Items = append(run.Items, item)
	}
	return run
}

func recordRun(ctx context.Context, path string, run history.Run) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Record(ctx, run)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("recorded run", "id", id, "history", path)
	return nil
}
