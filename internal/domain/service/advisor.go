package service

import (
	"context"

	"HoopLine/internal/domain/models"
)

// OverrideAdvisor supplies the override reasoning bundle for a matchup that
// arrived without one. A nil signal with a nil error means no opinion.
type OverrideAdvisor interface {
	Advise(ctx context.Context, rec *models.MatchupRecord) (*models.OverrideSignal, error)
}
