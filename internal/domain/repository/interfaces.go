package repository

import (
	"context"
	"errors"

	"HoopLine/internal/domain/models"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// PredictionPublisher fans scored results out to downstream consumers.
type PredictionPublisher interface {
	Publish(ctx context.Context, r *models.PredictionResult) error
	PublishBatch(ctx context.Context, rs []models.PredictionResult) error
	Close() error
}

// PredictionStore persists predictions and their post-game evaluations.
type PredictionStore interface {
	Init(ctx context.Context) error // ensure tables
	StorePredictions(ctx context.Context, rs []models.PredictionResult) error
	GetPrediction(ctx context.Context, gameID string) (*models.PredictionResult, error)
	StoreEvaluation(ctx context.Context, e models.Evaluation) error
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordPrediction(state models.OverrideState)
	RecordFailure(stage string)
	RecordDegradation(kind string)
	RecordPenalty(penalty float64)
	RecordEvaluation(e models.Evaluation)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
