package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier публикует события в топик Kafka; ключ сообщения - адресат.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier создаёт продюсер для списка брокеров и топика.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Notify реализует Notifier.
func (p *KafkaNotifier) Notify(ctx context.Context, to Recipient, eventType string, payload map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(Event{Type: eventType, Recipient: to, Payload: payload})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(to.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	})
}

// Close закрывает продюсер.
func (p *KafkaNotifier) Close() error {
	return p.writer.Close()
}
