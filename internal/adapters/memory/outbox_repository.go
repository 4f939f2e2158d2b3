package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

type OutboxRepo struct {
	mu   sync.Mutex
	rows []ports.OutboxRecord
}

func (r *OutboxRepo) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.OutboxID == event.EventID {
			return nil
		}
	}
	r.rows = append(r.rows, ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      append([]byte(nil), event.Payload...),
		FirstSeenAt:  event.OccurredAt,
	})
	return nil
}

func (r *OutboxRepo) FetchUnpublished(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.OutboxRecord, 0)
	for _, row := range r.rows {
		if row.PublishedAt != nil {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *OutboxRepo) MarkPublished(_ context.Context, outboxID uuid.UUID, at time.Time) error {
	return r.mutate(outboxID, func(row *ports.OutboxRecord) {
		t := at.UTC()
		row.PublishedAt = &t
	})
}

func (r *OutboxRepo) MarkFailed(_ context.Context, outboxID uuid.UUID, errMsg string, at time.Time) error {
	return r.mutate(outboxID, func(row *ports.OutboxRecord) {
		t := at.UTC()
		row.RetryCount++
		row.LastError = &errMsg
		row.LastErrorAt = &t
	})
}

func (r *OutboxRepo) PurgePublished(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	var n int64
	for _, row := range r.rows {
		if row.PublishedAt != nil && row.PublishedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, row)
	}
	r.rows = kept
	return n, nil
}

// Events returns every enqueued record in insertion order.
func (r *OutboxRepo) Events() []ports.OutboxRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.OutboxRecord(nil), r.rows...)
}

func (r *OutboxRepo) mutate(outboxID uuid.UUID, fn func(*ports.OutboxRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].OutboxID == outboxID {
			fn(&r.rows[i])
			return nil
		}
	}
	return domain.ErrNotFound
}

type EventDedupRepo struct {
	mu   sync.Mutex
	rows map[string]time.Time
}

func (r *EventDedupRepo) IsDuplicate(_ context.Context, eventID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiresAt, ok := r.rows[eventID]
	if !ok {
		return false, nil
	}
	if now.After(expiresAt) {
		delete(r.rows, eventID)
		return false, nil
	}
	return true, nil
}

func (r *EventDedupRepo) MarkProcessed(_ context.Context, eventID, _ string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[eventID] = expiresAt
	return nil
}

type IdempotencyRepo struct {
	mu   sync.Mutex
	rows map[string]ports.IdempotencyRecord
}

func (r *IdempotencyRepo) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key]
	if !ok {
		return nil, nil
	}
	cpy := row
	return &cpy, nil
}

func (r *IdempotencyRepo) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[key]; ok && time.Now().Before(row.ExpiresAt) {
		if row.RequestHash != requestHash {
			return domain.ErrIdempotencyConflict
		}
		return nil
	}
	r.rows[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, Status: "pending", ExpiresAt: expiresAt}
	return nil
}

func (r *IdempotencyRepo) Complete(_ context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[key]
	if !ok {
		return domain.ErrNotFound
	}
	row.Status = "completed"
	row.ResponseCode = responseCode
	row.ResponseBody = append([]byte(nil), responseBody...)
	r.rows[key] = row
	return nil
}
