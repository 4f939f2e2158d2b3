package events

import (
	"context"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

// NoopConsumer stands in when no broker is configured.
type NoopConsumer struct{}

func NewNoopConsumer() *NoopConsumer {
	return &NoopConsumer{}
}

func (n *NoopConsumer) Poll(_ context.Context, _ int) ([]ports.InboundEvent, error) {
	return nil, nil
}
