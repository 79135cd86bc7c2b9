package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	"HoopLine/internal/service/cache"
	"HoopLine/internal/services/baseline"
	"HoopLine/internal/services/features"
	"HoopLine/pkg/logger"
	"HoopLine/pkg/util"
)

// BaselineUseCase serves team baselines from the in-memory book, hydrating
// teams from the history store on first use. Snapshots are cached under the
// team's game-set version, so any ingested game retires the cached entries.
type BaselineUseCase struct {
	book    *baseline.Book
	store   domrepo.HistoryStore
	cache   cache.BytesCache
	ttl     time.Duration
	metrics domrepo.Metrics
	log     *logger.Logger

	sf       singleflight.Group
	mu       sync.Mutex
	hydrated map[string]struct{}
}

// NewBaselineUseCase wires the book to its optional store and cache; both may be nil.
func NewBaselineUseCase(book *baseline.Book, store domrepo.HistoryStore, c cache.BytesCache, ttl time.Duration, metrics domrepo.Metrics, log *logger.Logger) *BaselineUseCase {
	return &BaselineUseCase{
		book:     book,
		store:    store,
		cache:    c,
		ttl:      ttl,
		metrics:  metrics,
		log:      log,
		hydrated: make(map[string]struct{}),
	}
}

// Ingest persists games and appends them to the book. Returns how many were new.
func (uc *BaselineUseCase) Ingest(ctx context.Context, games []models.TeamGame) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}
	games = teamKeys(games)
	start := time.Now()
	added, err := uc.book.Ingest(ctx, games)
	uc.metrics.RecordLatency("baseline_ingest_seconds", time.Since(start).Seconds())
	if err != nil {
		uc.metrics.RecordError("baseline_ingest")
		return 0, fmt.Errorf("ingest games: %w", err)
	}
	if uc.store != nil && added > 0 {
		if err := uc.store.StoreGames(ctx, games); err != nil {
			uc.metrics.RecordError("history_store")
			return added, fmt.Errorf("store games: %w", err)
		}
	}
	return added, nil
}

// IngestBoxScores derives two history rows per box score and ingests them.
func (uc *BaselineUseCase) IngestBoxScores(ctx context.Context, scores []models.BoxScore) (int, error) {
	games := make([]models.TeamGame, 0, 2*len(scores))
	for _, bs := range scores {
		rows, err := features.TeamGames(bs)
		if err != nil {
			return 0, err
		}
		games = append(games, rows...)
	}
	return uc.Ingest(ctx, games)
}

// AsOf returns team's baseline from games played on or before date.
func (uc *BaselineUseCase) AsOf(ctx context.Context, team string, date models.GameDate) (models.TeamBaseline, error) {
	team = util.TeamKey(team)
	key := CacheKey(team, date, uc.Version(ctx, team, date))
	if b, ok := uc.cached(key); ok {
		return b, nil
	}
	b := uc.book.AsOf(team, date)
	uc.remember(key, b)
	return b, nil
}

// Version hydrates (team, date) and returns the team's current game-set
// version. Callers caching anything derived from AsOf key it by this value.
func (uc *BaselineUseCase) Version(ctx context.Context, team string, date models.GameDate) string {
	team = util.TeamKey(team)
	if err := uc.hydrate(ctx, team, date); err != nil {
		// Serve whatever history is already in memory.
		uc.log.Warn("baseline hydration failed", logger.String("team", team), logger.Error(err))
		uc.metrics.RecordError("baseline_hydrate")
	}
	return uc.book.Version(team)
}

// CacheKey names a baseline snapshot: baseline:<team>:<date>:v<version>.
func CacheKey(team string, date models.GameDate, version string) string {
	return fmt.Sprintf("baseline:%s:%s:v%s", team, date, version)
}

// Teams lists the teams with recorded history.
func (uc *BaselineUseCase) Teams() []string { return uc.book.Teams() }

// hydrate loads the trailing window for (team, date) from the store once.
// Concurrent callers for the same pair share a single query.
func (uc *BaselineUseCase) hydrate(ctx context.Context, team string, date models.GameDate) error {
	if uc.store == nil {
		return nil
	}
	key := team + "|" + date.String()
	uc.mu.Lock()
	_, done := uc.hydrated[key]
	uc.mu.Unlock()
	if done {
		return nil
	}

	_, err, _ := uc.sf.Do(key, func() (interface{}, error) {
		uc.mu.Lock()
		_, done := uc.hydrated[key]
		uc.mu.Unlock()
		if done {
			return nil, nil
		}
		start := time.Now()
		games, err := uc.store.TeamGames(ctx, team, date, uc.book.Config().Window)
		uc.metrics.RecordLatency("baseline_hydrate_seconds", time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		if _, err := uc.book.Ingest(ctx, games); err != nil {
			return nil, err
		}
		uc.mu.Lock()
		uc.hydrated[key] = struct{}{}
		uc.mu.Unlock()
		return nil, nil
	})
	return err
}

func teamKeys(games []models.TeamGame) []models.TeamGame {
	out := make([]models.TeamGame, len(games))
	for i, g := range games {
		g.Team = util.TeamKey(g.Team)
		out[i] = g
	}
	return out
}

func (uc *BaselineUseCase) cached(key string) (models.TeamBaseline, bool) {
	if uc.cache == nil {
		return models.TeamBaseline{}, false
	}
	raw, ok, err := uc.cache.GetBytes(key)
	if err != nil || !ok {
		return models.TeamBaseline{}, false
	}
	var b models.TeamBaseline
	if err := json.Unmarshal(raw, &b); err != nil {
		return models.TeamBaseline{}, false
	}
	return b, true
}

func (uc *BaselineUseCase) remember(key string, b models.TeamBaseline) {
	if uc.cache == nil {
		return
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return
	}
	if err := uc.cache.SetBytes(key, raw, uc.ttl); err != nil {
		uc.log.Debug("baseline cache write failed", logger.String("key", key), logger.Error(err))
	}
}
