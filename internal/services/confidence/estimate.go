// Package confidence derives a data-quality confidence for matchups whose
// provider did not supply one.
package confidence

import "HoopLine/internal/domain/models"

// Per-defect penalties.
const (
	ImputedPenalty    = 0.05
	MissingEPMPenalty = 0.10
)

// Estimate returns 1 minus the penalties for imputed fields and missing
// player-impact ratings, clamped to [0, 1].
func Estimate(imputed, missingEPM int) float64 {
	c := 1 - ImputedPenalty*float64(imputed) - MissingEPMPenalty*float64(missingEPM)
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// Resolve returns the record's own confidence when present, otherwise the estimate.
// The second return reports whether the value was estimated.
func Resolve(rec *models.MatchupRecord) (float64, bool) {
	if rec.Confidence != nil {
		return *rec.Confidence, false
	}
	return Estimate(rec.ImputedCount, rec.MissingEPM), true
}
