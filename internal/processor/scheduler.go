package processor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ProcessFunc turns one item into its outcome. It must not panic and must
// return an outcome for every item.
type ProcessFunc func(ctx context.Context, item SourceItem) Outcome

// RunAll processes items on a pool of workers goroutines, at most workers at
// a time. Each outcome is handed to observe from a single collector
// goroutine, in completion order, and the full list is returned once every
// item settled. A failing item never stops the others. After ctx is
// cancelled the remaining queued items settle as failures without being
// processed.
func RunAll(ctx context.Context, items []SourceItem, workers int, process ProcessFunc, observe func(Outcome)) []Outcome {
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}

	jobs := make(chan SourceItem)
	results := make(chan Outcome)
	outcomes := make([]Outcome, 0, len(items))

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			if observe != nil {
				observe(res)
			}
			outcomes = append(outcomes, res)
		}
	}()

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			worker(ctx, jobs, results, process)
			return nil
		})
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	_ = g.Wait()
	close(results)
	<-collectorDone

	return outcomes
}

func worker(ctx context.Context, jobs <-chan SourceItem, results chan<- Outcome, process ProcessFunc) {
	for item := range jobs {
		if err := ctx.Err(); err != nil {
			results <- Outcome{
				RelPath: item.RelPath,
				Err:     &ItemError{Path: item.RelPath, Op: "dispatch", Err: err},
			}
			continue
		}
		results <- process(ctx, item)
	}
}
