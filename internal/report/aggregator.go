package report

// Aggregator owns the counters of one run. It is not safe for concurrent use:
// the scheduler feeds it from a single collector goroutine.
type Aggregator struct {
	level   Level
	sink    Sink
	total   int
	summary Summary
}

// NewAggregator returns an aggregator expecting total items. A nil sink
// discards events.
func NewAggregator(level Level, sink Sink, total int) *Aggregator {
	if sink == nil {
		sink = Discard
	}
	return &Aggregator{level: level, sink: sink, total: total}
}

// Observe records one settled item and emits its event when the level asks
// for it.
func (a *Aggregator) Observe(item Item) {
	if item.Err != nil {
		a.summary.Failed++
		if a.level == Verbose || a.level == Quiet {
			a.sink.Emit(Event{
				Kind:  ItemFailed,
				Path:  item.Path,
				Err:   item.Err,
				Done:  a.summary.Total(),
				Total: a.total,
			})
		}
		return
	}

	a.summary.Succeeded++
	a.summary.OriginalBytes += item.OriginalSize
	a.summary.SavedBytes += item.OriginalSize - item.OptimizedSize
	if a.level == Verbose {
		a.sink.Emit(Event{
			Kind:          ItemSucceeded,
			Path:          item.Path,
			OriginalSize:  item.OriginalSize,
			OptimizedSize: item.OptimizedSize,
			Done:          a.summary.Total(),
			Total:         a.total,
		})
	}
}

// Summary returns the totals observed so far.
func (a *Aggregator) Summary() Summary {
	return a.summary
}

// Finish closes the run. Only verbose reporting gets the summary event.
func (a *Aggregator) Finish() Summary {
	if a.level == Verbose {
		a.sink.Emit(Event{
			Kind:    RunFinished,
			Done:    a.summary.Total(),
			Total:   a.total,
			Summary: a.summary,
		})
	}
	return a.summary
}
