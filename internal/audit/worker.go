package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	defaultDrainInterval = 2 * time.Second
	defaultBatchSize     = 100
)

// Worker drains unpublished events from the store to the sink. Publish
// failures leave events unmarked, so the next tick retries them; the sink may
// therefore see a batch more than once.
type Worker struct {
	store    Store
	sink     Sink
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

func NewWorker(store Store, sink Sink, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		store:    store,
		sink:     sink,
		interval: defaultDrainInterval,
		batch:    defaultBatchSize,
		logger:   logger,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "audit drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	events, err := w.store.NextBatch(ctx, w.batch)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	if err := w.sink.Publish(ctx, events); err != nil {
		return err
	}

	ids := make([]uuid.UUID, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	return w.store.MarkPublished(ctx, ids)
}
