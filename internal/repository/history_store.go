package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	applogger "HoopLine/pkg/logger"
)

const insertChunk = 2000

// CHHistoryStore implements HistoryStore backed by ClickHouse.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHHistoryStore stores team games in <database>.team_games.
func NewCHHistoryStore(db *sql.DB, database string, l *applogger.Logger) *CHHistoryStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHHistoryStore{db: db, table: database + ".team_games", l: l}
}

func (s *CHHistoryStore) Init(ctx context.Context) error {
	for _, stmt := range historySchema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init %s: %w", s.table, err)
		}
	}
	return nil
}

// StoreGames inserts rows in multi-row VALUES chunks. Re-sent games collapse on merge.
func (s *CHHistoryStore) StoreGames(ctx context.Context, games []models.TeamGame) error {
	for start := 0; start < len(games); start += insertChunk {
		end := start + insertChunk
		if end > len(games) {
			end = len(games)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, g := range games[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				g.Team,
				g.GameID,
				g.Date.Time,
				nullable(g.NetRating),
				nullable(g.EffectiveFG),
				nullable(g.TurnoverRate),
				nullable(g.RimDeterrence),
				nullable(g.Positional),
				nullable(g.DecayRatio),
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (team, game_id, date, net_rating, efg, tov_rate, rim_deterrence, positional, decay_ratio) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_games error",
				applogger.String("table", s.table),
				applogger.Int("rows", len(values)),
				applogger.Error(err),
			)
			return fmt.Errorf("store games: %w", err)
		}
	}
	return nil
}

// TeamGames returns up to limit games of team played on or before through, oldest first.
func (s *CHHistoryStore) TeamGames(ctx context.Context, team string, through models.GameDate, limit int) ([]models.TeamGame, error) {
	start := time.Now()
	const qtpl = `
        SELECT team, game_id, date, net_rating, efg, tov_rate, rim_deterrence, positional, decay_ratio
        FROM %s FINAL
        WHERE team = ? AND date <= ?
        ORDER BY date DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), team, through.Time, limit)
	if err != nil {
		s.l.Error("clickhouse team_games query error",
			applogger.String("team", team),
			applogger.Int("limit", limit),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("team games: %w", err)
	}
	defer rows.Close()

	out := make([]models.TeamGame, 0, limit)
	for rows.Next() {
		var (
			g                         models.TeamGame
			date                      time.Time
			net                       float64
			efg, tov, rim, pos, decay sql.NullFloat64
		)
		if err := rows.Scan(&g.Team, &g.GameID, &date, &net, &efg, &tov, &rim, &pos, &decay); err != nil {
			return nil, fmt.Errorf("scan team game: %w", err)
		}
		g.Date = models.DateOf(date)
		g.NetRating = &net
		g.EffectiveFG = pointer(efg)
		g.TurnoverRate = pointer(tov)
		g.RimDeterrence = pointer(rim)
		g.Positional = pointer(pos)
		g.DecayRatio = pointer(decay)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.l.Debug("clickhouse team_games ok",
		applogger.String("team", team),
		applogger.String("through", through.String()),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func pointer(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)
