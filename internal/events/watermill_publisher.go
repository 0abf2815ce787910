package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
)

// WatermillEventPublisher publishes JSON envelopes to a watermill publisher.
// With the in-process backend it can also subscribe, which is how local
// listeners receive events when no broker is configured.
type WatermillEventPublisher struct {
	publisher   message.Publisher
	subscriber  message.Subscriber
	topicPrefix string
	logger      *slog.Logger
}

// NewEventPublisher picks Kafka when brokers are configured and an in-process
// channel otherwise.
func NewEventPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*WatermillEventPublisher, error) {
	if len(cfg.Brokers) > 0 {
		return NewKafkaEventPublisher(cfg, logger)
	}
	return NewInProcessEventPublisher(cfg.TopicPrefix, logger), nil
}

func NewKafkaEventPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*WatermillEventPublisher, error) {
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	logger.Info("Kafka event publisher ready", "brokers", cfg.Brokers)
	return &WatermillEventPublisher{
		publisher:   pub,
		topicPrefix: cfg.TopicPrefix,
		logger:      logger,
	}, nil
}

func NewInProcessEventPublisher(topicPrefix string, logger *slog.Logger) *WatermillEventPublisher {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &WatermillEventPublisher{
		publisher:   ch,
		subscriber:  ch,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

func (p *WatermillEventPublisher) Topic(eventType EventType) string {
	if p.topicPrefix == "" {
		return string(eventType)
	}
	return p.topicPrefix + "." + string(eventType)
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.Topic(event.Type), msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "type", event.Type)
	return nil
}

// Listen delivers events of the given type to handler until ctx ends. It only
// works with the in-process backend; brokers have their own consumers.
func (p *WatermillEventPublisher) Listen(ctx context.Context, eventType EventType, handler func(context.Context, Event) error) error {
	if p.subscriber == nil {
		return fmt.Errorf("event backend does not support local listeners")
	}

	messages, err := p.subscriber.Subscribe(ctx, p.Topic(eventType))
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
	}

	go func() {
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				p.logger.Warn("Dropping malformed event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), event); err != nil {
				p.logger.Warn("Event handler failed", "event_id", event.ID, "type", event.Type, "error", err)
			}
			msg.Ack()
		}
	}()
	return nil
}

func (p *WatermillEventPublisher) Close() error {
	if err := p.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close event publisher: %w", err)
	}
	return nil
}
