package teardown

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchResult summarizes a multi-item run.
type BatchResult struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Results    []*ItemResult `json:"results"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
}

// Run executes every item with bounded parallelism. Item failures are
// recorded in the per-item results and never stop the batch; only
// context cancellation ends the run early, and even then the partial
// results are returned.
func (e *Engine) Run(ctx context.Context, items []Item) BatchResult {
	batch := BatchResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Results:   make([]*ItemResult, len(items)),
	}
	e.log.Infow("batch started", "run", batch.RunID,
		"items", len(items), "parallelism", e.cfg.Batch.Parallelism)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Batch.Parallelism)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				batch.Results[i] = &ItemResult{ItemID: item.ID, Error: err.Error()}
				return nil
			}
			result, _ := e.RunItem(gctx, item)
			batch.Results[i] = result
			return nil
		})
	}
	g.Wait()

	for _, result := range batch.Results {
		if result.Failed() {
			batch.Failed++
		} else {
			batch.Succeeded++
		}
	}
	batch.FinishedAt = time.Now()
	e.log.Infow("batch finished", "run", batch.RunID,
		"succeeded", batch.Succeeded, "failed", batch.Failed,
		"elapsed", batch.FinishedAt.Sub(batch.StartedAt))
	return batch
}
