package ports

import "context"

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
}

// InboundEvent is one message read from the broker. EventType is taken from
// the message headers and is empty when the producer did not set it.
type InboundEvent struct {
	Topic     string
	EventType string
	Key       string
	Payload   []byte
}

type EventConsumer interface {
	Poll(ctx context.Context, max int) ([]InboundEvent, error)
}
