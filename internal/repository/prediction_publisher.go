package repository

import (
	"context"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	pkgkafka "HoopLine/pkg/kafka"
)

type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaPredictionPublisher writes predictions to Kafka keyed by game id, so
// rescoring a game lands on the same partition.
type KafkaPredictionPublisher struct {
	producer producer
	topic    string
}

func NewKafkaPredictionPublisher(p *pkgkafka.Producer, topic string) *KafkaPredictionPublisher {
	return &KafkaPredictionPublisher{producer: p, topic: topic}
}

func (p *KafkaPredictionPublisher) Publish(ctx context.Context, r *models.PredictionResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.GameID), r)
}

func (p *KafkaPredictionPublisher) PublishBatch(ctx context.Context, rs []models.PredictionResult) error {
	if len(rs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(rs))
	for i := range rs {
		msgs[i] = pkgkafka.Message{Key: []byte(rs[i].GameID), Value: rs[i]}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPredictionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.PredictionPublisher = (*KafkaPredictionPublisher)(nil)
