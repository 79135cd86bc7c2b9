package scoring

import (
	"fmt"
	"time"

	"HoopLine/internal/domain/models"
)

// ScoreInput is everything one scoring call needs. The use case resolves
// baselines, confidence and the override bundle before calling Score.
type ScoreInput struct {
	Record     *models.MatchupRecord
	Home       models.TeamBaseline
	Away       models.TeamBaseline
	Confidence float64
	Override   *models.OverrideSignal
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithStrategy replaces the default override strategy.
func WithStrategy(s OverrideStrategy) Option {
	return func(sc *Scorer) {
		sc.strategy = s
	}
}

// WithClock sets the time source used for ScoredAt.
func WithClock(now func() time.Time) Option {
	return func(sc *Scorer) {
		if now != nil {
			sc.now = now
		}
	}
}

// Scorer runs anchor, pillars, volatility, integrity and override in sequence.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	params     Params
	baseline   BaselinePredictor
	pillars    PillarAggregator
	volatility VolatilityEngine
	integrity  IntegrityCorrector
	auditor    OverrideAuditor
	strategy   OverrideStrategy
	now        func() time.Time
}

// NewScorer validates p and builds every component from it.
func NewScorer(p Params, opts ...Option) (*Scorer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &Scorer{params: p, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.pillars = NewPillarAggregator(p)
	s.integrity = NewIntegrityCorrector(p.Gamma)
	s.auditor = NewOverrideAuditor(p, s.strategy)
	return s, nil
}

// Params returns the hyperparameters the scorer was built with.
func (s *Scorer) Params() Params { return s.params }

// Score produces the prediction for one matchup. Only structural defects of the
// record are returned as errors; numeric fallbacks are listed in Degradations.
func (s *Scorer) Score(in ScoreInput) (models.PredictionResult, error) {
	rec := in.Record
	if rec == nil {
		return models.PredictionResult{}, fmt.Errorf("score: %w", &models.IncompleteRecordError{Field: "record"})
	}
	if err := rec.Check(); err != nil {
		return models.PredictionResult{}, fmt.Errorf("score: %w", err)
	}

	var notes []models.Degradation
	anchor := s.baseline.Anchor(*rec.Home.NetRating, *rec.Away.NetRating)

	signals, sn := s.pillars.Signals(rec, in.Home, in.Away)
	notes = append(notes, sn...)
	win := s.pillars.Combine(signals, DecayRaw(rec))

	vol, vn := s.volatility.Offsets(rec, anchor)
	notes = append(notes, vn...)

	ic := s.integrity.Correct(anchor, win.Points, vol.Sum)

	conf := in.Confidence
	if !finite(conf) || conf < 0 || conf > 1 {
		notes = append(notes, models.Degradation{
			Kind:   models.DegradeConfidence,
			Detail: fmt.Sprintf("confidence %v outside [0, 1], clamped", conf),
		})
		if !finite(conf) {
			conf = 1
		}
		conf = clamp(conf, 0, 1)
	}
	ov := s.auditor.Audit(ic.Final, conf, in.Override)

	return models.PredictionResult{
		GameID:            rec.GameID,
		Date:              rec.Date,
		HomeTeam:          rec.HomeTeam,
		AwayTeam:          rec.AwayTeam,
		Anchor:            anchor,
		Signals:           signals,
		WinSignal:         win.Raw,
		WinSignalAdjusted: win.Adjusted,
		SignalPoints:      win.Points,
		Volatility:        vol,
		Total:             ic.Total,
		Deviation:         ic.Volatility,
		Penalty:           ic.Penalty,
		Final:             ic.Final,
		Confidence:        conf,
		OverrideState:     ov.State,
		OverrideEngaged:   ov.State == models.OverrideEngaged,
		OverrideSide:      ov.Side,
		OverrideNudge:     ov.Nudge,
		OverrideReason:    ov.Reason,
		PostOverride:      ov.Post,
		Degradations:      notes,
		ScoredAt:          s.now().UTC(),
	}, nil
}
