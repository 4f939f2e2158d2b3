package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/ports"
)

type KafkaConsumer struct {
	reader   *kafka.Reader
	pollWait time.Duration
}

func NewKafkaConsumer(brokers []string, groupID string, topics []string) (*KafkaConsumer, error) {
	switch {
	case len(brokers) == 0:
		return nil, errors.New("kafka consumer requires at least one broker")
	case groupID == "":
		return nil, errors.New("kafka consumer requires group id")
	case len(topics) == 0:
		return nil, errors.New("kafka consumer requires at least one topic")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.FirstOffset,
	})
	return &KafkaConsumer{reader: reader, pollWait: 250 * time.Millisecond}, nil
}

// Poll fetches up to max messages and commits them as one batch. It returns
// early once the broker has nothing ready within the poll wait.
func (c *KafkaConsumer) Poll(ctx context.Context, max int) ([]ports.InboundEvent, error) {
	if max <= 0 {
		max = 1
	}
	out := make([]ports.InboundEvent, 0, max)
	fetched := make([]kafka.Message, 0, max)
	var fetchErr error
	for len(fetched) < max {
		fetchCtx, cancel := context.WithTimeout(ctx, c.pollWait)
		msg, err := c.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				fetchErr = err
			}
			break
		}
		fetched = append(fetched, msg)
		out = append(out, ports.InboundEvent{
			Topic:     msg.Topic,
			EventType: headerValue(msg.Headers, headerEventType),
			Key:       string(msg.Key),
			Payload:   msg.Value,
		})
	}
	if len(fetched) > 0 {
		if err := c.reader.CommitMessages(context.WithoutCancel(ctx), fetched...); err != nil {
			return out, fmt.Errorf("commit %d messages: %w", len(fetched), err)
		}
	}
	if errors.Is(fetchErr, context.Canceled) {
		return out, ctx.Err()
	}
	return out, fetchErr
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

var _ ports.EventConsumer = (*KafkaConsumer)(nil)
