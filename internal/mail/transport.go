package mail

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaTransport publishes rendered messages for an external mail relay.
type KafkaTransport struct {
	w *kafka.Writer
}

func NewKafkaTransport(brokers []string, topic string) *KafkaTransport {
	return &KafkaTransport{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

func (t *KafkaTransport) Deliver(ctx context.Context, m Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return t.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(m.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "template", Value: []byte(m.Template)},
		},
	})
}

func (t *KafkaTransport) Close() error { return t.w.Close() }

// LogTransport only logs; used when no broker is configured.
type LogTransport struct {
	Log *zap.Logger
}

func (t LogTransport) Deliver(_ context.Context, m Message) error {
	t.Log.Info("email (not sent, no broker configured)",
		zap.String("message_id", m.ID),
		zap.String("to", m.To),
		zap.String("subject", m.Subject))
	return nil
}
