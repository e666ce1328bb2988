package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_SendOrderCreated(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "order-created", zap.NewNop())

	event := models.OrderCreatedEvent{
		EventType:   "order.created",
		OrderID:     "0b7f6f0e-5a44-4b6b-9d7f-0c1a2b3c4d5e",
		OrderNumber: "#ORD-1234567",
		UserID:      "u1",
		Total:       96800,
	}
	require.NoError(t, p.SendOrderCreated(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, event.OrderID, string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))

	var decoded models.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestProducer_SendOrderCreated_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := NewProducerWithWriter(w, "order-created", zap.NewNop())

	err := p.SendOrderCreated(context.Background(), models.OrderCreatedEvent{OrderID: "x"})

	assert.EqualError(t, err, "broker unavailable")
}

func TestProducer_Close(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "order-created", zap.NewNop())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
