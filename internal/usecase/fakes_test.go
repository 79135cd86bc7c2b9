package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	"HoopLine/internal/service/cache"
	"HoopLine/internal/services/baseline"
	"HoopLine/internal/services/scoring"
	"HoopLine/pkg/logger"
)

type fakeMetrics struct {
	mu           sync.Mutex
	predictions  map[models.OverrideState]int
	failures     map[string]int
	degradations map[string]int
	errors       map[string]int
	evaluations  int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		predictions:  map[models.OverrideState]int{},
		failures:     map[string]int{},
		degradations: map[string]int{},
		errors:       map[string]int{},
	}
}

func (m *fakeMetrics) RecordPrediction(s models.OverrideState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[s]++
}

func (m *fakeMetrics) RecordFailure(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[stage]++
}

func (m *fakeMetrics) RecordDegradation(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degradations[kind]++
}

func (m *fakeMetrics) RecordPenalty(float64) {}

func (m *fakeMetrics) RecordEvaluation(models.Evaluation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

type fakeHistory struct {
	mu     sync.Mutex
	games  []models.TeamGame
	calls  int
	delay  time.Duration
	stored []models.TeamGame
}

func (h *fakeHistory) StoreGames(_ context.Context, games []models.TeamGame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stored = append(h.stored, games...)
	return nil
}

func (h *fakeHistory) TeamGames(_ context.Context, team string, through models.GameDate, limit int) ([]models.TeamGame, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()
	time.Sleep(h.delay)
	var out []models.TeamGame
	for _, g := range h.games {
		if g.Team == team && !g.Date.After(through.Time) {
			out = append(out, g)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakePredictions struct {
	mu          sync.Mutex
	predictions map[string]models.PredictionResult
	evaluations []models.Evaluation
	fail        error
}

func newFakePredictions() *fakePredictions {
	return &fakePredictions{predictions: map[string]models.PredictionResult{}}
}

func (s *fakePredictions) Init(context.Context) error { return nil }

func (s *fakePredictions) StorePredictions(_ context.Context, rs []models.PredictionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	for _, r := range rs {
		s.predictions[r.GameID] = r
	}
	return nil
}

func (s *fakePredictions) GetPrediction(_ context.Context, gameID string) (*models.PredictionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.predictions[gameID]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	return &r, nil
}

func (s *fakePredictions) StoreEvaluation(_ context.Context, e models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations = append(s.evaluations, e)
	return nil
}

func (s *fakePredictions) Health(context.Context) error { return nil }
func (s *fakePredictions) Close() error                 { return nil }

type fakePublisher struct {
	mu        sync.Mutex
	published []models.PredictionResult
}

func (p *fakePublisher) Publish(_ context.Context, r *models.PredictionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, *r)
	return nil
}

func (p *fakePublisher) PublishBatch(_ context.Context, rs []models.PredictionResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, rs...)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type failingAdvisor struct{}

func (failingAdvisor) Advise(context.Context, *models.MatchupRecord) (*models.OverrideSignal, error) {
	return nil, errors.New("advisor down")
}

type fixedAdvisor struct{ sig models.OverrideSignal }

func (a fixedAdvisor) Advise(context.Context, *models.MatchupRecord) (*models.OverrideSignal, error) {
	s := a.sig
	return &s, nil
}

type harness struct {
	metrics   *fakeMetrics
	history   *fakeHistory
	store     *fakePredictions
	publisher *fakePublisher
	cache     *cache.TTLCache
	baselines *BaselineUseCase
	scoring   *ScoringUseCase
}

func newHarness(deps ScoringDeps) *harness {
	p := scoring.DefaultParams()
	h := &harness{
		metrics:   newFakeMetrics(),
		history:   &fakeHistory{},
		store:     newFakePredictions(),
		publisher: &fakePublisher{},
		cache:     cache.NewTTLCache(),
	}
	h.baselines = NewBaselineUseCase(baseline.NewBook(baseline.ConfigFrom(p)), h.history, h.cache, time.Hour, h.metrics, logger.Nop())
	scorer, err := scoring.NewScorer(p)
	if err != nil {
		panic(err)
	}
	deps.Store = h.store
	deps.Publisher = h.publisher
	h.scoring = NewScoringUseCase(scorer, h.baselines, deps, h.metrics, logger.Nop(), 4)
	return h
}

func day(n int) models.GameDate {
	return models.NewGameDate(2024, 1, 1).AddDays(n)
}

func matchup(id string, homeNet, awayNet float64) models.MatchupRecord {
	return models.MatchupRecord{
		GameID:   id,
		Date:     day(10),
		HomeTeam: "GSW",
		AwayTeam: "PHX",
		Venue:    models.VenueNeutral,
		Home:     models.TeamSide{NetRating: models.Float(homeNet)},
		Away:     models.TeamSide{NetRating: models.Float(awayNet)},
	}
}
