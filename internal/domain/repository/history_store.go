package repository

import (
	"context"

	"HoopLine/internal/domain/models"
)

// HistoryStore is the durable log of per-team games the baselines are rebuilt from.
type HistoryStore interface {
	StoreGames(ctx context.Context, games []models.TeamGame) error
	// TeamGames returns at most limit of team's most recent games on or before
	// through, oldest first.
	TeamGames(ctx context.Context, team string, through models.GameDate, limit int) ([]models.TeamGame, error)
}
