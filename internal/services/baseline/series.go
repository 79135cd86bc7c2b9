package baseline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"

	"HoopLine/internal/domain/models"
)

// window holds the running sums over the trailing games of a series.
type window struct {
	net, efg, tov, deterrence moments
}

func (w *window) add(g models.TeamGame) {
	w.net.add(*g.NetRating)
	addOpt(&w.efg, g.EffectiveFG)
	addOpt(&w.tov, g.TurnoverRate)
	addOpt(&w.deterrence, g.RimDeterrence)
}

func (w *window) remove(g models.TeamGame) {
	w.net.remove(*g.NetRating)
	removeOpt(&w.efg, g.EffectiveFG)
	removeOpt(&w.tov, g.TurnoverRate)
	removeOpt(&w.deterrence, g.RimDeterrence)
}

func addOpt(m *moments, v *float64) {
	if v != nil {
		m.add(*v)
	}
}

func removeOpt(m *moments, v *float64) {
	if v != nil {
		m.remove(*v)
	}
}

// Series is one team's append-only history ordered by game date. Appending in
// date order updates the trailing-window sums in O(1); an out-of-order game is
// inserted in place and the sums are rebuilt.
type Series struct {
	team string
	cfg  Config

	mu     sync.RWMutex
	games  []models.TeamGame
	ids    map[string]struct{}
	tail   window
	digest uint64
}

// NewSeries creates an empty history for team.
func NewSeries(team string, cfg Config) *Series {
	return &Series{team: team, cfg: cfg, ids: make(map[string]struct{})}
}

// Team returns the team code.
func (s *Series) Team() string { return s.team }

// Len returns the number of games recorded.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Append records g. A game already present (same game id) is ignored and
// reported as false.
func (s *Series) Append(g models.TeamGame) (bool, error) {
	if g.Team != s.team {
		return false, fmt.Errorf("append: %w: game %s belongs to %s, not %s", models.ErrInvalidGame, g.GameID, g.Team, s.team)
	}
	if g.Date.IsZero() {
		return false, fmt.Errorf("append: %w: game %s has no date", models.ErrInvalidGame, g.GameID)
	}
	if g.NetRating == nil {
		return false, fmt.Errorf("append: %w: game %s has no net rating", models.ErrInvalidGame, g.GameID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[g.GameID]; dup {
		return false, nil
	}
	s.ids[g.GameID] = struct{}{}
	s.digest += xxhash.Sum64String(g.GameID)

	n := len(s.games)
	if n == 0 || !g.Date.Before(s.games[n-1].Date.Time) {
		s.games = append(s.games, g)
		s.tail.add(g)
		if len(s.games) > s.cfg.Window {
			s.tail.remove(s.games[len(s.games)-s.cfg.Window-1])
		}
		return true, nil
	}

	i := sort.Search(n, func(i int) bool { return s.games[i].Date.After(g.Date.Time) })
	s.games = append(s.games, models.TeamGame{})
	copy(s.games[i+1:], s.games[i:])
	s.games[i] = g
	s.rebuild()
	return true, nil
}

func (s *Series) rebuild() {
	s.tail = window{}
	start := len(s.games) - s.cfg.Window
	if start < 0 {
		start = 0
	}
	for _, g := range s.games[start:] {
		s.tail.add(g)
	}
}

// Latest summarizes the trailing window ending at the most recent game.
func (s *Series) Latest() models.TeamBaseline {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.games)
	if n == 0 {
		return s.cfg.Empty(s.team, models.GameDate{})
	}
	games := s.games[max(0, n-s.cfg.Window):]
	return s.cfg.summarize(s.team, s.games[n-1].Date, s.tail, games)
}

// AsOf summarizes the trailing window of games played on or before date.
// Later games are never looked at.
func (s *Series) AsOf(date models.GameDate) models.TeamBaseline {
	s.mu.RLock()
	defer s.mu.RUnlock()

	end := sort.Search(len(s.games), func(i int) bool { return s.games[i].Date.After(date.Time) })
	if end == len(s.games) && end > 0 {
		games := s.games[max(0, end-s.cfg.Window):]
		return s.cfg.summarize(s.team, date, s.tail, games)
	}
	games := s.games[max(0, end-s.cfg.Window):end]
	var w window
	for _, g := range games {
		w.add(g)
	}
	return s.cfg.summarize(s.team, date, w, games)
}

// Version fingerprints the recorded game set. It changes whenever a game is
// appended, in or out of order, and two series holding the same games report
// the same version regardless of arrival order.
func (s *Series) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("%d-%016x", len(s.games), s.digest)
}

// Games returns a copy of the recorded history.
func (s *Series) Games() []models.TeamGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TeamGame(nil), s.games...)
}
