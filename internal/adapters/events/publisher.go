package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LoggingPublisher stands in for the broker when none is configured. Each
// event is written to the log with its envelope id so it can be traced back
// to the outbox row.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	var envelope struct {
		EventID       string `json:"event_id"`
		SchemaVersion string `json:"schema_version"`
	}
	_ = json.Unmarshal(payload, &envelope)

	p.logger.InfoContext(ctx, "event published",
		"module", "events.publisher",
		"layer", "adapter",
		"operation", "publish",
		"outcome", "success",
		"sink", "log",
		"event_type", eventType,
		"event_id", envelope.EventID,
		"schema_version", envelope.SchemaVersion,
		"partition_key", partitionKey,
		"payload_bytes", len(payload),
	)
	eventsPublishedTotal.WithLabelValues(eventType, "log", "success").Inc()
	return nil
}
