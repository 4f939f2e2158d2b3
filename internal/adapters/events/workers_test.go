package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/adapters/memory"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	fail   map[string]bool
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ []byte, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail[eventType] {
		return errors.New("broker unavailable")
	}
	p.events = append(p.events, eventType)
	return nil
}

type stubConsumer struct {
	batches [][]ports.InboundEvent
}

func (c *stubConsumer) Poll(_ context.Context, _ int) ([]ports.InboundEvent, error) {
	if len(c.batches) == 0 {
		return nil, nil
	}
	next := c.batches[0]
	c.batches = c.batches[1:]
	return next, nil
}

type handledEvent struct {
	eventType string
	payload   string
}

type recordingHandler struct {
	handled []handledEvent
	err     error
}

func (h *recordingHandler) HandleEvent(_ context.Context, eventType string, payload []byte) error {
	h.handled = append(h.handled, handledEvent{eventType: eventType, payload: string(payload)})
	return h.err
}

func enqueue(t *testing.T, outbox *memory.OutboxRepo, eventType string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	if err := outbox.Enqueue(context.Background(), ports.OutboxEvent{
		EventID:      id,
		EventType:    eventType,
		PartitionKey: "user-1",
		Payload:      []byte(`{"event_type":"` + eventType + `"}`),
		OccurredAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return id
}

func TestOutboxWorkerPublishesAndMarksRows(t *testing.T) {
	repos := memory.NewRepositories()
	enqueue(t, repos.Outbox, "school.profile_updated")
	enqueue(t, repos.Outbox, "school.connection_updated")
	publisher := &recordingPublisher{}

	worker := NewOutboxWorker(discardLogger(), repos.Outbox, publisher, time.Second, 10)
	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %v", publisher.events)
	}
	pending, _ := repos.Outbox.FetchUnpublished(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected no unpublished rows, got %d", len(pending))
	}
}

func TestOutboxWorkerRecordsFailuresAndStopsAfterMaxRetries(t *testing.T) {
	repos := memory.NewRepositories()
	id := enqueue(t, repos.Outbox, "school.profile_updated")
	publisher := &recordingPublisher{fail: map[string]bool{"school.profile_updated": true}}

	worker := NewOutboxWorker(discardLogger(), repos.Outbox, publisher, time.Second, 10)
	worker.maxRetries = 2
	for i := 0; i < 4; i++ {
		if err := worker.processOnce(context.Background()); err != nil {
			t.Fatalf("process once: %v", err)
		}
	}
	for _, rec := range repos.Outbox.Events() {
		if rec.OutboxID != id {
			continue
		}
		if rec.RetryCount != 2 {
			t.Fatalf("expected retries to stop at 2, got %d", rec.RetryCount)
		}
		if rec.LastError == nil || *rec.LastError != "broker unavailable" {
			t.Fatalf("expected last error to be recorded, got %v", rec.LastError)
		}
		if rec.PublishedAt != nil {
			t.Fatalf("failed row must not be marked published")
		}
		return
	}
	t.Fatalf("outbox row %s not found", id)
}

func TestConsumerWorkerMapsTopicsToEventTypes(t *testing.T) {
	consumer := &stubConsumer{batches: [][]ports.InboundEvent{{
		{Topic: "prod.user.registered", Payload: []byte("a")},
		{Topic: "school.activity_recorded", Payload: []byte("b")},
	}}}
	handler := &recordingHandler{err: errors.New("ignored")}

	worker := NewConsumerWorker(discardLogger(), consumer, handler, map[string]string{
		"prod.user.registered": "user.registered",
	}, time.Second)
	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}
	want := []handledEvent{
		{eventType: "user.registered", payload: "a"},
		{eventType: "school.activity_recorded", payload: "b"},
	}
	if len(handler.handled) != len(want) {
		t.Fatalf("expected %d handled events, got %v", len(want), handler.handled)
	}
	for i := range want {
		if handler.handled[i] != want[i] {
			t.Fatalf("event %d: expected %+v, got %+v", i, want[i], handler.handled[i])
		}
	}
}

func TestConsumerWorkerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	worker := NewConsumerWorker(discardLogger(), NewNoopConsumer(), &recordingHandler{}, nil, 10*time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestOutboxWorkerPurgesPublishedRowsPastRetention(t *testing.T) {
	repos := memory.NewRepositories()
	ctx := context.Background()
	oldID := enqueue(t, repos.Outbox, "school.profile_updated")
	freshID := enqueue(t, repos.Outbox, "school.connection_updated")
	pendingID := enqueue(t, repos.Outbox, "school.profile_updated")

	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	if err := repos.Outbox.MarkPublished(ctx, oldID, now.Add(-48*time.Hour)); err != nil {
		t.Fatalf("mark old: %v", err)
	}
	if err := repos.Outbox.MarkPublished(ctx, freshID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("mark fresh: %v", err)
	}

	worker := NewOutboxWorker(discardLogger(), repos.Outbox, &recordingPublisher{}, time.Second, 10).
		WithRetention(24 * time.Hour)
	worker.nowFn = func() time.Time { return now }
	if err := worker.purgeIfDue(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}

	left := map[uuid.UUID]bool{}
	for _, rec := range repos.Outbox.Events() {
		left[rec.OutboxID] = true
	}
	if left[oldID] || !left[freshID] || !left[pendingID] {
		t.Fatalf("unexpected rows after purge: %v", left)
	}

	// a second pass inside the purge interval does nothing
	if err := repos.Outbox.MarkPublished(ctx, pendingID, now.Add(-72*time.Hour)); err != nil {
		t.Fatalf("mark pending: %v", err)
	}
	if err := worker.purgeIfDue(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if len(repos.Outbox.Events()) != 2 {
		t.Fatalf("expected purge to wait for the next interval, got %d rows", len(repos.Outbox.Events()))
	}
}

func TestConsumerWorkerPrefersHeaderEventType(t *testing.T) {
	consumer := &stubConsumer{batches: [][]ports.InboundEvent{{
		{Topic: "school.events", EventType: "user.deleted", Payload: []byte("a")},
		{Topic: "school.events", Payload: []byte("b")},
	}}}
	handler := &recordingHandler{}

	worker := NewConsumerWorker(discardLogger(), consumer, handler, map[string]string{
		"school.events": "school.activity_recorded",
	}, time.Second)
	if err := worker.processOnce(context.Background()); err != nil {
		t.Fatalf("process once: %v", err)
	}
	if len(handler.handled) != 2 {
		t.Fatalf("expected 2 handled events, got %v", handler.handled)
	}
	if handler.handled[0].eventType != "user.deleted" {
		t.Fatalf("expected header event type, got %q", handler.handled[0].eventType)
	}
	if handler.handled[1].eventType != "school.activity_recorded" {
		t.Fatalf("expected mapped topic event type, got %q", handler.handled[1].eventType)
	}
}

func TestLoggingPublisherAcceptsAnyPayload(t *testing.T) {
	p := NewLoggingPublisher(discardLogger())
	for _, payload := range [][]byte{[]byte(`{"event_id":"e-1","schema_version":"1.0"}`), []byte("not json"), nil} {
		if err := p.Publish(context.Background(), "user.profile_updated", payload, "user-1"); err != nil {
			t.Fatalf("publish %q: %v", payload, err)
		}
	}
}
