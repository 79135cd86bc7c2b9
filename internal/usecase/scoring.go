package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	domsvc "HoopLine/internal/domain/service"
	"HoopLine/internal/services/confidence"
	"HoopLine/internal/services/scoring"
	"HoopLine/pkg/logger"
	"HoopLine/pkg/util"
)

// Failure stages reported in metrics.
const (
	stageValidate = "validate"
	stageScore    = "score"
)

// ScoringUseCase resolves everything a matchup needs, scores it and hands the
// result to storage and the predictions topic.
type ScoringUseCase struct {
	scorer    *scoring.Scorer
	baselines *BaselineUseCase
	advisor   domsvc.OverrideAdvisor
	store     domrepo.PredictionStore
	publisher domrepo.PredictionPublisher
	metrics   domrepo.Metrics
	log       *logger.Logger
	validate  *validator.Validate
	workers   int
}

// ScoringDeps groups the optional collaborators; nil members are skipped.
type ScoringDeps struct {
	Advisor   domsvc.OverrideAdvisor
	Store     domrepo.PredictionStore
	Publisher domrepo.PredictionPublisher
}

func NewScoringUseCase(scorer *scoring.Scorer, baselines *BaselineUseCase, deps ScoringDeps, metrics domrepo.Metrics, log *logger.Logger, workers int) *ScoringUseCase {
	if workers < 1 {
		workers = 1
	}
	return &ScoringUseCase{
		scorer:    scorer,
		baselines: baselines,
		advisor:   deps.Advisor,
		store:     deps.Store,
		publisher: deps.Publisher,
		metrics:   metrics,
		log:       log,
		validate:  validator.New(),
		workers:   workers,
	}
}

// Score scores one matchup and persists it.
func (uc *ScoringUseCase) Score(ctx context.Context, rec models.MatchupRecord) (*models.PredictionResult, error) {
	res, err := uc.score(ctx, &rec)
	if err != nil {
		return nil, err
	}
	uc.emit(ctx, []models.PredictionResult{res})
	return &res, nil
}

// ScoreBatch scores records on a bounded worker pool. Results keep input order;
// records that fail are listed in Failures and never abort the rest.
func (uc *ScoringUseCase) ScoreBatch(ctx context.Context, recs []models.MatchupRecord) models.BatchResult {
	start := time.Now()
	results := make([]*models.PredictionResult, len(recs))
	errs := make([]error, len(recs))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.workers)
	for i := range recs {
		i := i
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			rec := recs[i]
			res, err := uc.score(gctx, &rec)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	_ = eg.Wait()

	out := models.BatchResult{Results: make([]models.PredictionResult, 0, len(recs))}
	for i := range recs {
		if errs[i] != nil {
			out.Failures = append(out.Failures, models.Failure{Index: i, GameID: recs[i].GameID, Reason: errs[i].Error()})
			continue
		}
		out.Results = append(out.Results, *results[i])
	}
	uc.emit(ctx, out.Results)
	uc.metrics.RecordLatency("score_batch_seconds", time.Since(start).Seconds())
	if len(out.Failures) > 0 {
		uc.log.Warn("batch scored with failures",
			logger.Int("scored", len(out.Results)),
			logger.Int("failed", len(out.Failures)))
	}
	return out
}

func (uc *ScoringUseCase) score(ctx context.Context, rec *models.MatchupRecord) (models.PredictionResult, error) {
	if err := uc.prepare(rec); err != nil {
		uc.metrics.RecordFailure(stageValidate)
		return models.PredictionResult{}, err
	}

	// Baselines are taken as of the day before the game.
	asOf := rec.Date.AddDays(-1)
	home, err := uc.baselines.AsOf(ctx, rec.HomeTeam, asOf)
	if err != nil {
		uc.metrics.RecordFailure(stageScore)
		return models.PredictionResult{}, err
	}
	away, err := uc.baselines.AsOf(ctx, rec.AwayTeam, asOf)
	if err != nil {
		uc.metrics.RecordFailure(stageScore)
		return models.PredictionResult{}, err
	}

	var notes []models.Degradation
	for _, b := range []models.TeamBaseline{home, away} {
		if b.Count == 0 {
			notes = append(notes, models.Degradation{
				Kind:   models.DegradeBaseline,
				Detail: fmt.Sprintf("no history for %s before %s, fallback spreads used", b.Team, rec.Date),
			})
		}
	}

	conf, estimated := confidence.Resolve(rec)
	if estimated {
		notes = append(notes, models.Degradation{
			Kind:   models.DegradeConfidence,
			Detail: fmt.Sprintf("confidence estimated as %.2f from data quality", conf),
		})
	}

	sig := rec.Override
	if sig == nil && uc.advisor != nil {
		sig, err = uc.advisor.Advise(ctx, rec)
		if err != nil {
			sig = nil
			notes = append(notes, models.Degradation{Kind: models.DegradeAdvisor, Detail: err.Error()})
		}
	}

	start := time.Now()
	res, err := uc.scorer.Score(scoring.ScoreInput{
		Record:     rec,
		Home:       home,
		Away:       away,
		Confidence: conf,
		Override:   sig,
	})
	uc.metrics.RecordLatency("score_seconds", time.Since(start).Seconds())
	if err != nil {
		uc.metrics.RecordFailure(stageScore)
		return models.PredictionResult{}, err
	}
	res.Degradations = append(notes, res.Degradations...)

	for _, d := range res.Degradations {
		uc.metrics.RecordDegradation(d.Kind)
		uc.log.Warn("scoring degraded",
			logger.String("game_id", res.GameID),
			logger.String("kind", d.Kind),
			logger.String("detail", d.Detail))
	}
	uc.metrics.RecordPrediction(res.OverrideState)
	uc.metrics.RecordPenalty(res.Penalty)
	return res, nil
}

// prepare normalises team codes, applies defaults and rejects incomplete or
// out-of-range records. rec must be the caller's private copy.
func (uc *ScoringUseCase) prepare(rec *models.MatchupRecord) error {
	if err := rec.Check(); err != nil {
		return err
	}
	rec.HomeTeam = util.TeamKey(rec.HomeTeam)
	rec.AwayTeam = util.TeamKey(rec.AwayTeam)
	if err := defaults.Set(rec); err != nil {
		return fmt.Errorf("%w %s: %v", models.ErrInvalidRecord, rec.GameID, err)
	}
	if err := uc.validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w %s: %s failed on %s", models.ErrInvalidRecord, rec.GameID, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w %s: %v", models.ErrInvalidRecord, rec.GameID, err)
	}
	return nil
}

// emit stores and publishes results. Sink failures are logged, not returned:
// the caller already has its predictions.
func (uc *ScoringUseCase) emit(ctx context.Context, rs []models.PredictionResult) {
	if len(rs) == 0 {
		return
	}
	if uc.store != nil {
		if err := uc.store.StorePredictions(ctx, rs); err != nil {
			uc.metrics.RecordError("prediction_store")
			uc.log.Error("store predictions failed", logger.Int("count", len(rs)), logger.Error(err))
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.PublishBatch(ctx, rs); err != nil {
			uc.metrics.RecordError("prediction_publish")
			uc.log.Error("publish predictions failed", logger.Int("count", len(rs)), logger.Error(err))
		}
	}
}
