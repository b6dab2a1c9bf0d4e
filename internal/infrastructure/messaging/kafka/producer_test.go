package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendergate/tendergate/internal/application/classification"
	"github.com/tendergate/tendergate/internal/domain/condition"
	"github.com/tendergate/tendergate/pkg/types/common"
)

type captureProducer struct {
	messages []common.ProducerMessage
	err      error
}

func (c *captureProducer) Publish(_ context.Context, msg common.ProducerMessage) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, msg)
	return nil
}
func (c *captureProducer) Metrics() Metrics { return Metrics{} }
func (c *captureProducer) Close() error     { return nil }

func TestEventPublisherConditionClassified(t *testing.T) {
	capture := &captureProducer{}
	pub := NewEventPublisher(capture)
	ts := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return ts }

	event := classification.ConditionClassifiedEvent{
		ConditionID:  "c-1",
		TenderID:     "t-1",
		Status:       condition.StatusMeets,
		ClassifiedAt: ts,
	}
	require.NoError(t, pub.PublishConditionClassified(context.Background(), event))

	require.Len(t, capture.messages, 1)
	msg := capture.messages[0]
	assert.Equal(t, TopicConditionClassified, msg.Topic)
	assert.Equal(t, []byte("c-1"), msg.Key)
	assert.Equal(t, ts, msg.Timestamp)

	var decoded classification.ConditionClassifiedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestEventPublisherBatchCompleted(t *testing.T) {
	capture := &captureProducer{}
	pub := NewEventPublisher(capture)

	event := BatchCompletedEvent{TenderID: "t-9", Total: 12, Failures: 2}
	require.NoError(t, pub.PublishBatchCompleted(context.Background(), event))

	require.Len(t, capture.messages, 1)
	assert.Equal(t, TopicBatchCompleted, capture.messages[0].Topic)
	assert.Equal(t, []byte("t-9"), capture.messages[0].Key)
}

func TestEventPublisherProducerFailure(t *testing.T) {
	pub := NewEventPublisher(&captureProducer{err: assert.AnError})

	err := pub.PublishConditionClassified(context.Background(),
		classification.ConditionClassifiedEvent{ConditionID: "c-1"})
	assert.Error(t, err)
}

func TestPublishRequiresTopic(t *testing.T) {
	p := &kafkaProducer{}
	err := p.Publish(context.Background(), common.ProducerMessage{})
	assert.Error(t, err)
}

func TestNopProducer(t *testing.T) {
	p := NewNopProducer()
	assert.NoError(t, p.Publish(context.Background(), common.ProducerMessage{Topic: "x"}))
	assert.Zero(t, p.Metrics().Published)
	assert.NoError(t, p.Close())
}
