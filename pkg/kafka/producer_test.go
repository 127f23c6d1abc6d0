package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mineralmarket-backend/pkg/config"
)

type recordingWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishKeysAndHeaders(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "mm.order-events")

	require.NoError(t, p.Publish(context.Background(), "order-1", []byte(`{"a":1}`), map[string]string{"event_type": "order_shipped"}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order-1", string(w.msgs[0].Key))
	assert.Equal(t, `{"a":1}`, string(w.msgs[0].Value))
	require.Len(t, w.msgs[0].Headers, 1)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, "mm.order-events", p.Topic())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducerValidation(t *testing.T) {
	_, err := NewProducer(config.KafkaConfig{OrdersTopic: "t"})
	require.Error(t, err)
	_, err = NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	require.Error(t, err)

	p, err := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}, OrdersTopic: "t"})
	require.NoError(t, err)
	assert.Equal(t, "t", p.Topic())
	require.NoError(t, p.Close())
}
