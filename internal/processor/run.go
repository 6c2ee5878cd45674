// Package processor discovers source images, optimizes them concurrently
// through a plugin chain and routes the results to files or a single output.
package processor

import (
	"context"
	"path/filepath"
	"runtime"

	"imagemin/internal/ctxlog"
	"imagemin/internal/plugin"
	"imagemin/internal/report"
)

// Result is everything a finished run produced.
type Result struct {
	Summary  report.Summary
	Outcomes []Outcome
}

// Run optimizes items with chain and feeds every outcome to agg. Routing
// conflicts are reported before any item is read. Item failures never stop
// the batch; unless opts.IgnoreErrors is set, a batch with failures returns
// a *RunError after all items settled. When two items resolve to the same
// destination only the first is written; the other fails with op
// "destination" and its source is left alone.
func Run(ctx context.Context, items []SourceItem, chain plugin.Chain, opts Options, agg *report.Aggregator) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	opts, err := normalize(opts)
	if err != nil {
		return Result{}, err
	}
	if opts.virtual() && len(items) > 1 {
		return Result{}, &MultipleOutputsError{Count: len(items)}
	}
	if opts.InPlace {
		for _, item := range items {
			if item.InMemory() {
				return Result{}, ErrInPlaceStdin
			}
		}
	}
	if agg == nil {
		agg = report.NewAggregator(report.Silent, nil, len(items))
	}

	logger.Debug("dispatching batch", "items", len(items), "workers", opts.MaxConcurrency, "chain", chain.String())

	proc := NewProcessor(chain, opts)
	if opts.InPlace {
		proc.reserveSources(items)
	}
	var firstErr error
	outcomes := RunAll(ctx, items, opts.MaxConcurrency, proc.Process, func(o Outcome) {
		if o.Err != nil && firstErr == nil {
			firstErr = o.Err
		}
		agg.Observe(report.Item{
			Path:          o.RelPath,
			OriginalSize:  o.OriginalSize,
			OptimizedSize: o.OptimizedSize,
			Err:           o.Err,
		})
	})

	res := Result{Summary: agg.Finish(), Outcomes: outcomes}
	logger.Debug("batch settled", "succeeded", res.Summary.Succeeded, "failed", res.Summary.Failed)

	if firstErr != nil && !opts.IgnoreErrors {
		return res, &RunError{Failed: res.Summary.Failed, First: firstErr}
	}
	return res, nil
}

func normalize(opts Options) (Options, error) {
	if opts.Cwd == "" {
		opts.Cwd = "."
	}
	abs, err := filepath.Abs(opts.Cwd)
	if err != nil {
		return opts, err
	}
	opts.Cwd = abs
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = runtime.NumCPU()
	}
	return opts, nil
}
