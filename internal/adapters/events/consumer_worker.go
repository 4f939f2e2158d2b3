package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

// EventHandler applies one inbound event. The application service
// satisfies it.
type EventHandler interface {
	HandleEvent(ctx context.Context, eventType string, payload []byte) error
}

type ConsumerWorker struct {
	logger      *slog.Logger
	consumer    ports.EventConsumer
	handler     EventHandler
	topicEvents map[string]string
	interval    time.Duration
	batchSize   int
}

// NewConsumerWorker polls consumer and hands each message to handler.
// topicEvents maps broker topics to event types for messages that carry no
// event type header; a topic missing from the map is its own event type.
func NewConsumerWorker(logger *slog.Logger, consumer ports.EventConsumer, handler EventHandler, topicEvents map[string]string, interval time.Duration) *ConsumerWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &ConsumerWorker{
		logger: logger, consumer: consumer, handler: handler, topicEvents: topicEvents,
		interval: interval, batchSize: 50,
	}
}

func (w *ConsumerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "consumer iteration failed",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *ConsumerWorker) processOnce(ctx context.Context) error {
	msgs, err := w.consumer.Poll(ctx, w.batchSize)
	if err != nil {
		return err
	}
	for _, msg := range msgs {
		eventType := w.eventTypeOf(msg)
		err := w.handler.HandleEvent(ctx, eventType, msg.Payload)
		eventsConsumedTotal.WithLabelValues(eventType, outcome(err)).Inc()
		if err != nil {
			w.logger.WarnContext(ctx, "failed to handle event",
				"module", "events.consumer_worker",
				"layer", "adapter",
				"operation", "handle_event",
				"outcome", "failure",
				"topic", msg.Topic,
				"event_type", eventType,
				"error", err,
			)
		}
	}
	return nil
}

func (w *ConsumerWorker) eventTypeOf(msg ports.InboundEvent) string {
	if msg.EventType != "" {
		return msg.EventType
	}
	if mapped, ok := w.topicEvents[msg.Topic]; ok && mapped != "" {
		return mapped
	}
	return msg.Topic
}
