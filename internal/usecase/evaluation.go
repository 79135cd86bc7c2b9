package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	"HoopLine/internal/services/scoring"
	"HoopLine/pkg/logger"
)

// ErrPredictionUnknown is returned when no prediction exists to grade.
var ErrPredictionUnknown = errors.New("prediction unknown")

// EvaluationUseCase grades stored predictions against final margins.
type EvaluationUseCase struct {
	store   domrepo.PredictionStore
	metrics domrepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewEvaluationUseCase(store domrepo.PredictionStore, metrics domrepo.Metrics, log *logger.Logger) *EvaluationUseCase {
	return &EvaluationUseCase{store: store, metrics: metrics, log: log, now: time.Now}
}

// EvaluateParams identifies the game and its outcome. Prediction, when set,
// is graded directly instead of being looked up.
type EvaluateParams struct {
	GameID       string
	ActualMargin float64
	Prediction   *models.PredictionResult
}

func (uc *EvaluationUseCase) Evaluate(ctx context.Context, p EvaluateParams) (*models.Evaluation, error) {
	pred := p.Prediction
	if pred == nil {
		if uc.store == nil {
			return nil, fmt.Errorf("evaluate %s: %w", p.GameID, ErrPredictionUnknown)
		}
		var err error
		pred, err = uc.store.GetPrediction(ctx, p.GameID)
		if errors.Is(err, domrepo.ErrNotFound) {
			return nil, fmt.Errorf("evaluate %s: %w", p.GameID, ErrPredictionUnknown)
		}
		if err != nil {
			uc.metrics.RecordError("prediction_lookup")
			return nil, fmt.Errorf("evaluate %s: %w", p.GameID, err)
		}
	}

	e := scoring.Evaluate(*pred, p.ActualMargin, uc.now().UTC())
	uc.metrics.RecordEvaluation(e)

	if uc.store != nil {
		if err := uc.store.StoreEvaluation(ctx, e); err != nil {
			uc.metrics.RecordError("evaluation_store")
			uc.log.Error("store evaluation failed", logger.String("game_id", e.GameID), logger.Error(err))
		}
	}
	if e.ORARegret || e.ORAMiss {
		uc.log.Info("override audit outcome",
			logger.String("game_id", e.GameID),
			logger.Bool("regret", e.ORARegret),
			logger.Bool("miss", e.ORAMiss),
			logger.Float64("gap", e.VolatilityGap))
	}
	return &e, nil
}
