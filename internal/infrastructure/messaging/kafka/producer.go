// Package kafka publishes the engine's domain events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/config"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
	"github.com/tendergate/tendergate/pkg/errors"
	"github.com/tendergate/tendergate/pkg/types/common"
)

// Topic names owned by this service.
const (
	TopicConditionClassified = "tendergate.condition.classified"
	TopicBatchCompleted      = "tendergate.batch.completed"
)

// Metrics counts producer activity.
type Metrics struct {
	Published int64
	Failed    int64
}

// Producer publishes messages to Kafka.
type Producer interface {
	Publish(ctx context.Context, msg common.ProducerMessage) error
	Metrics() Metrics
	Close() error
}

type kafkaProducer struct {
	writer    *kafkago.Writer
	logger    logging.Logger
	published atomic.Int64
	failed    atomic.Int64
}

// NewProducer builds a kafka-go backed producer from configuration.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Balancer:     &kafkago.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		BatchTimeout: 10 * time.Millisecond,
	}
	return &kafkaProducer{writer: writer, logger: logger.Named("kafka")}
}

func (p *kafkaProducer) Publish(ctx context.Context, msg common.ProducerMessage) error {
	if msg.Topic == "" {
		return errors.NewValidation("message topic required")
	}

	headers := make([]kafkago.Header, 0, len(msg.Headers))
	for k, v := range msg.Headers {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(v)})
	}

	err := p.writer.WriteMessages(ctx, kafkago.Message{
		Topic:   msg.Topic,
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    msg.Timestamp,
	})
	if err != nil {
		p.failed.Add(1)
		p.logger.Error("publishing message",
			logging.String("topic", msg.Topic),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "publishing kafka message")
	}
	p.published.Add(1)
	return nil
}

func (p *kafkaProducer) Metrics() Metrics {
	return Metrics{Published: p.published.Load(), Failed: p.failed.Load()}
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

type nopProducer struct{}

func (nopProducer) Publish(context.Context, common.ProducerMessage) error { return nil }
func (nopProducer) Metrics() Metrics                                      { return Metrics{} }
func (nopProducer) Close() error                                          { return nil }

// NewNopProducer returns a producer that discards everything, used when
// event publishing is disabled.
func NewNopProducer() Producer { return nopProducer{} }

// EventPublisher adapts a Producer to the application-level event contracts.
type EventPublisher struct {
	producer Producer
	now      func() time.Time
}

// NewEventPublisher wraps producer.
func NewEventPublisher(producer Producer) *EventPublisher {
	return &EventPublisher{producer: producer, now: time.Now}
}

// PublishConditionClassified emits a classification outcome, keyed by
// condition so per-condition ordering is preserved.
func (e *EventPublisher) PublishConditionClassified(ctx context.Context, event classification.ConditionClassifiedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding classification event")
	}
	return e.producer.Publish(ctx, common.ProducerMessage{
		Topic:     TopicConditionClassified,
		Key:       []byte(event.ConditionID),
		Value:     value,
		Timestamp: e.now(),
	})
}

// BatchCompletedEvent summarizes a finished batch run.
type BatchCompletedEvent struct {
	TenderID    string    `json:"tender_id"`
	Total       int       `json:"total"`
	Failures    int       `json:"failures"`
	CompletedAt time.Time `json:"completed_at"`
}

// PublishBatchCompleted emits a batch completion summary.
func (e *EventPublisher) PublishBatchCompleted(ctx context.Context, event BatchCompletedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding batch event")
	}
	return e.producer.Publish(ctx, common.ProducerMessage{
		Topic:     TopicBatchCompleted,
		Key:       []byte(event.TenderID),
		Value:     value,
		Timestamp: e.now(),
	})
}
