package baseline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"HoopLine/internal/domain/models"
	"HoopLine/pkg/util"
)

// Book holds one Series per team. Series are locked independently, so
// ingesting one team never blocks reads of another.
type Book struct {
	cfg Config

	mu     sync.RWMutex
	series map[string]*Series
}

// NewBook creates an empty book.
func NewBook(cfg Config) *Book {
	return &Book{cfg: cfg, series: make(map[string]*Series)}
}

// Config returns the window settings the book was built with.
func (b *Book) Config() Config { return b.cfg }

func (b *Book) get(team string) (*Series, bool) {
	team = util.TeamKey(team)
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.series[team]
	return s, ok
}

func (b *Book) getOrCreate(team string) *Series {
	team = util.TeamKey(team)
	if s, ok := b.get(team); ok {
		return s
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.series[team]; ok {
		return s
	}
	s := NewSeries(team, b.cfg)
	b.series[team] = s
	return s
}

// Has reports whether any game has been recorded for team.
func (b *Book) Has(team string) bool {
	s, ok := b.get(team)
	return ok && s.Len() > 0
}

// Teams lists the teams with a series, sorted.
func (b *Book) Teams() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.series))
	for t := range b.series {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Ingest appends games to their teams' series, one goroutine per team, and
// returns how many were new. Team codes are normalised with util.TeamKey.
// Games are validated up front; nothing is recorded when any game is malformed.
func (b *Book) Ingest(ctx context.Context, games []models.TeamGame) (int, error) {
	byTeam := make(map[string][]models.TeamGame)
	for i, g := range games {
		g.Team = util.TeamKey(g.Team)
		if g.Team == "" || g.GameID == "" || g.Date.IsZero() || g.NetRating == nil {
			return 0, fmt.Errorf("ingest: %w: row %d (%q) is missing team, id, date or net rating", models.ErrInvalidGame, i, g.GameID)
		}
		byTeam[g.Team] = append(byTeam[g.Team], g)
	}

	var added atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	for team, tg := range byTeam {
		tg := tg
		s := b.getOrCreate(team)
		eg.Go(func() error {
			sort.SliceStable(tg, func(i, j int) bool { return tg[i].Date.Before(tg[j].Date.Time) })
			for _, g := range tg {
				if err := ctx.Err(); err != nil {
					return err
				}
				ok, err := s.Append(g)
				if err != nil {
					return err
				}
				if ok {
					added.Add(1)
				}
			}
			return nil
		})
	}
	err := eg.Wait()
	return int(added.Load()), err
}

// AsOf returns team's baseline from games on or before date. A team with no
// history gets the fallback baseline.
func (b *Book) AsOf(team string, date models.GameDate) models.TeamBaseline {
	team = util.TeamKey(team)
	s, ok := b.get(team)
	if !ok || s.Len() == 0 {
		return b.cfg.Empty(team, date)
	}
	bl := s.AsOf(date)
	if bl.Count == 0 {
		return b.cfg.Empty(team, date)
	}
	return bl
}

// Latest returns team's baseline over its most recent games.
func (b *Book) Latest(team string) models.TeamBaseline {
	s, ok := b.get(team)
	if !ok {
		return b.cfg.Empty(util.TeamKey(team), models.GameDate{})
	}
	return s.Latest()
}

// Version fingerprints team's recorded games; see Series.Version.
func (b *Book) Version(team string) string {
	s, ok := b.get(team)
	if !ok {
		return "0-0000000000000000"
	}
	return s.Version()
}
