// Package eval replays labeled transactions through a scoring function
// and reduces the outcomes into classification, latency, and cost
// statistics. Everything here is read-only: no persistence, no alerts.
package eval

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// ScoreFunc scores one transaction. The harness treats it as opaque;
// in practice it wraps a Scorer-less inference+extraction path or a
// full pipeline pointed at a throwaway store.
type ScoreFunc func(ctx context.Context, tx domain.Transaction) (score float64, latency time.Duration, err error)

// Outcome is one sample's result, paired with its label.
type Outcome struct {
	Sample  domain.EvaluationSample
	Score   float64
	Latency time.Duration
	Err     error
}

// Harness runs samples through a scoring function with bounded
// concurrency. The cap keeps batch replays inside the inference
// endpoint's rate limit.
type Harness struct {
	score   ScoreFunc
	workers int
	logger  *slog.Logger
}

// NewHarness creates a harness. Workers below 1 default to 4.
func NewHarness(score ScoreFunc, workers int) *Harness {
	if workers < 1 {
		workers = 4
	}
	return &Harness{
		score:   score,
		workers: workers,
		logger:  slog.With("component", "eval"),
	}
}

// Run scores all samples and returns the per-sample outcomes in input
// order. Individual scoring errors are recorded in the outcome, not
// returned; a cancelled context stops dispatching new samples, and
// only dispatched samples appear in the result so never-scored
// samples cannot distort the downstream reductions.
func (h *Harness) Run(ctx context.Context, samples []domain.EvaluationSample) []Outcome {
	outcomes := make([]Outcome, len(samples))

	type job struct {
		idx    int
		sample domain.EvaluationSample
	}

	jobs := make(chan job)
	var wg sync.WaitGroup

	for i := 0; i < h.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				score, latency, err := h.score(ctx, j.sample.Transaction)
				outcomes[j.idx] = Outcome{
					Sample:  j.sample,
					Score:   score,
					Latency: latency,
					Err:     err,
				}
				if err != nil {
					h.logger.Warn("sample scoring failed",
						"transaction_id", j.sample.TransactionID,
						"error", err,
					)
				}
			}
		}()
	}

	dispatched := len(samples)
dispatch:
	for i, s := range samples {
		select {
		case jobs <- job{idx: i, sample: s}:
		case <-ctx.Done():
			dispatched = i
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if dispatched < len(samples) {
		h.logger.Warn("run cancelled before all samples dispatched",
			"dispatched", dispatched,
			"total", len(samples),
		)
	}
	return outcomes[:dispatched]
}

// Evaluate runs the samples and reduces the outcomes into a report.
func (h *Harness) Evaluate(ctx context.Context, samples []domain.EvaluationSample) *domain.EvaluationReport {
	return BuildReport(h.Run(ctx, samples))
}
