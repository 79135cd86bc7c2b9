package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	pkgkafka "HoopLine/pkg/kafka"
)

// KafkaMatchupsHandler scores matchups arriving on the matchups topic. Results
// reach storage and the predictions topic through the scoring use case.
type KafkaMatchupsHandler struct {
	topic   string
	scoring *ScoringUseCase
	metrics domrepo.Metrics
}

func NewKafkaMatchupsHandler(topic string, scoring *ScoringUseCase, metrics domrepo.Metrics) *KafkaMatchupsHandler {
	return &KafkaMatchupsHandler{topic: topic, scoring: scoring, metrics: metrics}
}

func (h *KafkaMatchupsHandler) Topic() string { return h.topic }

// Handle accepts one MatchupRecord per message. Malformed and unscorable
// records are permanent failures and go straight to the DLQ.
func (h *KafkaMatchupsHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.MatchupRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(err)
	}
	_, err := h.scoring.Score(ctx, rec)
	if errors.Is(err, models.ErrIncompleteRecord) || errors.Is(err, models.ErrInvalidRecord) {
		return pkgkafka.Permanent(err)
	}
	return err
}

var _ pkgkafka.MessageHandler = (*KafkaMatchupsHandler)(nil)
