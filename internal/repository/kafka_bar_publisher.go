package repository

import (
	"context"

	"TrendPull/internal/domain/models"
	domrepo "TrendPull/internal/domain/repository"
	pkgkafka "TrendPull/pkg/kafka"
)

// KafkaBarPublisher pushes persisted bars to a Kafka topic for downstream
// consumers. Messages are keyed by symbol so one symbol's bars stay ordered
// within a partition.
type KafkaBarPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaBarPublisher creates a publisher.
func NewKafkaBarPublisher(producer *pkgkafka.Producer, topic string) *KafkaBarPublisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

func (p *KafkaBarPublisher) Publish(ctx context.Context, ev models.BarEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

func (p *KafkaBarPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.BarPublisher = (*KafkaBarPublisher)(nil)
