package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"sweetshop-backend/internal/domain"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink forwards catalog events to a topic so other storefront nodes can
// relay them to their own clients.
type KafkaSink struct {
	producer Producer
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		Async:                  true,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaSink(p Producer) *KafkaSink {
	return &KafkaSink{producer: p}
}

func (k *KafkaSink) Publish(ctx context.Context, ev domain.CatalogEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return k.producer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(ev.Name),
		Value:   payload,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(ev.Name)}},
	})
}

func (k *KafkaSink) Close() error {
	return k.producer.Close()
}
