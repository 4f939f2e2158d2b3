package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

const (
	defaultMaxRetries = 10
	purgeEvery        = time.Hour
)

// OutboxWorker relays unpublished outbox rows to the publisher. Rows that
// failed maxRetries times stay in the table for inspection and are skipped.
// Published rows older than the retention window are purged hourly.
type OutboxWorker struct {
	logger     *slog.Logger
	outbox     ports.OutboxRepository
	publisher  ports.EventPublisher
	interval   time.Duration
	batchSize  int
	maxRetries int
	retention  time.Duration
	lastPurge  time.Time
	nowFn      func() time.Time
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, interval time.Duration, batchSize int) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxWorker{
		logger:     logger,
		outbox:     outbox,
		publisher:  publisher,
		interval:   interval,
		batchSize:  batchSize,
		maxRetries: defaultMaxRetries,
		nowFn:      func() time.Time { return time.Now().UTC() },
	}
}

// WithRetention enables purging of published rows older than d. Zero keeps
// rows forever.
func (w *OutboxWorker) WithRetention(d time.Duration) *OutboxWorker {
	w.retention = d
	return w
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logFailure(ctx, "process_once", err)
		}
		if err := w.purgeIfDue(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logFailure(ctx, "purge_published", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *OutboxWorker) processOnce(ctx context.Context) error {
	records, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}
	outboxPending.Set(float64(len(records)))
	now := w.nowFn()
	for _, rec := range records {
		if rec.RetryCount >= w.maxRetries {
			continue
		}
		if err := w.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.PartitionKey); err != nil {
			w.logger.WarnContext(ctx, "outbox publish failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "publish",
				"outcome", "failure",
				"outbox_id", rec.OutboxID.String(),
				"event_type", rec.EventType,
				"retry_count", rec.RetryCount+1,
				"error", err,
			)
			if markErr := w.outbox.MarkFailed(ctx, rec.OutboxID, err.Error(), now); markErr != nil {
				return markErr
			}
			continue
		}
		if err := w.outbox.MarkPublished(ctx, rec.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}

func (w *OutboxWorker) purgeIfDue(ctx context.Context) error {
	if w.retention <= 0 {
		return nil
	}
	now := w.nowFn()
	if !w.lastPurge.IsZero() && now.Sub(w.lastPurge) < purgeEvery {
		return nil
	}
	w.lastPurge = now
	n, err := w.outbox.PurgePublished(ctx, now.Add(-w.retention))
	if err != nil {
		return err
	}
	if n > 0 {
		outboxPurgedTotal.Add(float64(n))
		w.logger.InfoContext(ctx, "outbox rows purged",
			"module", "events.outbox_worker",
			"layer", "adapter",
			"operation", "purge_published",
			"outcome", "success",
			"rows", n,
		)
	}
	return nil
}

func (w *OutboxWorker) logFailure(ctx context.Context, operation string, err error) {
	w.logger.ErrorContext(ctx, "outbox iteration failed",
		"module", "events.outbox_worker",
		"layer", "adapter",
		"operation", operation,
		"outcome", "failure",
		"error", err,
	)
}
