package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	pkgkafka "HoopLine/pkg/kafka"
)

// KafkaGamesHandler feeds finished games into the team histories. A message is
// either one TeamGame row or a two-team box score.
type KafkaGamesHandler struct {
	topic     string
	baselines *BaselineUseCase
	metrics   domrepo.Metrics
}

func NewKafkaGamesHandler(topic string, baselines *BaselineUseCase, metrics domrepo.Metrics) *KafkaGamesHandler {
	return &KafkaGamesHandler{topic: topic, baselines: baselines, metrics: metrics}
}

func (h *KafkaGamesHandler) Topic() string { return h.topic }

func (h *KafkaGamesHandler) Handle(ctx context.Context, b []byte) error {
	var probe struct {
		Home json.RawMessage `json:"home"`
	}
	if err := json.Unmarshal(b, &probe); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(err)
	}

	if len(probe.Home) > 0 {
		var bs models.BoxScore
		if err := json.Unmarshal(b, &bs); err != nil {
			h.metrics.RecordError("consumer_unmarshal")
			return pkgkafka.Permanent(err)
		}
		_, err := h.baselines.IngestBoxScores(ctx, []models.BoxScore{bs})
		return h.classify(err)
	}

	var g models.TeamGame
	if err := json.Unmarshal(b, &g); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(err)
	}
	_, err := h.baselines.Ingest(ctx, []models.TeamGame{g})
	return h.classify(err)
}

// classify marks rejected rows as permanent; storage failures stay retryable.
func (h *KafkaGamesHandler) classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrInvalidGame) {
		return pkgkafka.Permanent(err)
	}
	return err
}

var _ pkgkafka.MessageHandler = (*KafkaGamesHandler)(nil)
