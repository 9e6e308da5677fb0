// Package worker runs producers and feeds their batches into the weekly
// store. One scheduled invocation runs each requested source once; sources
// are independent and run concurrently.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"weekly-chronicle/internal/scraper"
	"weekly-chronicle/internal/store"
)

// Result is the outcome of one source's run.
type Result struct {
	SourceID string
	Week     time.Time
	Records  int // records in the bucket after the merge
	Err      error
}

// Runner executes producers against the store. Each producer owns its source
// id exclusively, so runs never contend on a bucket; the store's per-key lock
// still guards against overlapping invocations from outside.
type Runner struct {
	Store *store.Store
	Now   func() time.Time // defaults to time.Now
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run scrapes every producer concurrently and merges each batch into the
// bucket for the current week. A failed source is reported in its result and
// never aborts the others.
func (r *Runner) Run(ctx context.Context, producers []scraper.Producer) []Result {
	results := make([]Result, len(producers))
	var wg sync.WaitGroup
	for i, p := range producers {
		wg.Add(1)
		go func(i int, p scraper.Producer) {
			defer wg.Done()
			results[i] = r.RunOne(ctx, p)
		}(i, p)
	}
	wg.Wait()
	return results
}

// RunOne executes a single producer's scrape-and-merge cycle.
func (r *Runner) RunOne(ctx context.Context, p scraper.Producer) Result {
	res := Result{SourceID: p.SourceID()}

	batch, err := p.Scrape(ctx)
	if err != nil {
		// Fetch failures leave existing buckets untouched.
		res.Err = fmt.Errorf("scrape %s: %w", p.SourceID(), err)
		return res
	}

	wk := r.Store.Weeks().Start(r.now())
	res.Week = wk
	merged, err := r.Store.Merge(p.SourceID(), wk, *batch)
	if err != nil {
		res.Err = fmt.Errorf("merge %s/%s: %w", p.SourceID(), wk.Format("2006-01-02"), err)
		return res
	}
	res.Records = len(merged.Data)
	slog.Info("runner: merged batch",
		"source", p.SourceID(),
		"week", wk.Format("2006-01-02"),
		"batch", len(batch.Data),
		"bucket", res.Records)
	return res
}
