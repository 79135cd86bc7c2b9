package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"HoopLine/internal/domain/models"
	domrepo "HoopLine/internal/domain/repository"
	applogger "HoopLine/pkg/logger"
)

// CHPredictionStore implements PredictionStore backed by ClickHouse. The full
// result is kept as JSON next to the columns used for ad-hoc analysis.
type CHPredictionStore struct {
	db          *sql.DB
	predictions string
	evaluations string
	l           *applogger.Logger
}

func NewCHPredictionStore(db *sql.DB, database string, l *applogger.Logger) *CHPredictionStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPredictionStore{
		db:          db,
		predictions: database + ".predictions",
		evaluations: database + ".evaluations",
		l:           l,
	}
}

func (s *CHPredictionStore) Init(ctx context.Context) error {
	for _, stmt := range predictionSchema(s.predictions, s.evaluations) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init predictions: %w", err)
		}
	}
	return nil
}

func (s *CHPredictionStore) StorePredictions(ctx context.Context, rs []models.PredictionResult) error {
	for start := 0; start < len(rs); start += insertChunk {
		end := start + insertChunk
		if end > len(rs) {
			end = len(rs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*19)
		for _, r := range rs[start:end] {
			payload, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode prediction %s: %w", r.GameID, err)
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.GameID,
				r.Date.Time,
				r.HomeTeam,
				r.AwayTeam,
				r.Anchor,
				r.WinSignal,
				r.SignalPoints,
				r.Total,
				r.Deviation,
				r.Penalty,
				r.Final,
				r.Confidence,
				string(r.OverrideState),
				int8(r.OverrideSide),
				r.OverrideNudge,
				r.OverrideReason,
				r.PostOverride,
				string(payload),
				r.ScoredAt,
			)
		}
		q := fmt.Sprintf(`INSERT INTO %s (game_id, date, home_team, away_team, anchor, win_signal, signal_points, total,
            volatility, penalty, final, confidence, override_state, override_side, override_nudge, override_reason,
            post_override, payload, scored_at) VALUES %s`, s.predictions, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse store_predictions error",
				applogger.Int("rows", len(values)),
				applogger.Error(err),
			)
			return fmt.Errorf("store predictions: %w", err)
		}
	}
	return nil
}

// GetPrediction returns the latest prediction stored for gameID.
func (s *CHPredictionStore) GetPrediction(ctx context.Context, gameID string) (*models.PredictionResult, error) {
	q := fmt.Sprintf("SELECT payload FROM %s WHERE game_id = ? ORDER BY scored_at DESC LIMIT 1", s.predictions)
	var payload string
	err := s.db.QueryRowContext(ctx, q, gameID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prediction %s: %w", gameID, err)
	}
	var r models.PredictionResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode prediction %s: %w", gameID, err)
	}
	return &r, nil
}

func (s *CHPredictionStore) StoreEvaluation(ctx context.Context, e models.Evaluation) error {
	q := fmt.Sprintf(`INSERT INTO %s (game_id, predicted, actual_margin, volatility_gap, correct, ora_regret, ora_miss,
            trust_delta, note, hooks, evaluated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.evaluations)
	_, err := s.db.ExecContext(ctx, q,
		e.GameID,
		e.Predicted,
		e.ActualMargin,
		e.VolatilityGap,
		flag(e.Correct),
		flag(e.ORARegret),
		flag(e.ORAMiss),
		e.TrustDelta,
		e.Note,
		strings.Join(e.Hooks, "|"),
		e.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("store evaluation %s: %w", e.GameID, err)
	}
	return nil
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to the ClickHouse client.
func (s *CHPredictionStore) Close() error { return nil }

func flag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

var _ domrepo.PredictionStore = (*CHPredictionStore)(nil)
