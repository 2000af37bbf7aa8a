package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/vendorgate/vendorgate/internal/config"
	"github.com/vendorgate/vendorgate/internal/domain/procurement"
	ierr "github.com/vendorgate/vendorgate/internal/errors"
	vendorkafka "github.com/vendorgate/vendorgate/internal/kafka"
	"github.com/vendorgate/vendorgate/internal/logger"
)

// ChangePublisher publishes normalized entitlement lifecycle change events
// to per-product topics for downstream provisioning systems.
type ChangePublisher interface {
	PublishChange(ctx context.Context, topic string, event *procurement.ChangeEvent) error
	Close() error
}

type kafkaPublisher struct {
	publisher message.Publisher
	logger    *logger.Logger
}

// NewKafkaPublisher creates a change publisher backed by Kafka. When no
// brokers are configured it returns a publisher that drops events with a
// warning, so products without an event topic cost nothing.
func NewKafkaPublisher(cfg *config.Configuration, log *logger.Logger) (ChangePublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warnw("no kafka brokers configured, change events will be dropped")
		return NewNoopPublisher(log), nil
	}

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               cfg.Kafka.Brokers,
			Marshaler:             kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: vendorkafka.GetSaramaConfig(cfg),
		},
		watermill.NopLogger{},
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create kafka publisher").
			Mark(ierr.ErrSystem)
	}

	return &kafkaPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

func (p *kafkaPublisher) PublishChange(ctx context.Context, topic string, event *procurement.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal change event").
			Mark(ierr.ErrInternal)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish change event").
			WithReportableDetails(map[string]interface{}{
				"topic": topic,
				"event": event.Event,
			}).
			Mark(ierr.ErrSystem)
	}

	p.logger.Infow("published change event",
		"topic", topic,
		"event", event.Event,
		"entitlement_id", event.Entitlement.ID,
	)

	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.publisher.Close()
}

type noopPublisher struct {
	logger *logger.Logger
}

// NewNoopPublisher returns a publisher that drops all events with a warning.
func NewNoopPublisher(log *logger.Logger) ChangePublisher {
	return &noopPublisher{logger: log}
}

func (p *noopPublisher) PublishChange(ctx context.Context, topic string, event *procurement.ChangeEvent) error {
	p.logger.Warnw("change event dropped, no publisher configured",
		"topic", topic,
		"event", event.Event,
	)

	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
