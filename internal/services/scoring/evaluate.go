package scoring

import (
	"time"

	"HoopLine/internal/domain/models"
)

// Post-game thresholds, in points.
const (
	ORAMissGap        = 10.0
	HighVolatilityGap = 12.0
	SharpGap          = 3.0
)

// FalseConfidenceDelta is the trust delta above which a pick is called
// overconfident.
const FalseConfidenceDelta = 0.4

// Commentary hooks, in the order they are attached.
const (
	HookChaos           = "CHAOS_DETECTED"
	HookSharp           = "SNIPER_ACCURACY"
	HookRegret          = "REGRET_PROTOCOL"
	HookFalseConfidence = "FALSE_CONFIDENCE"
)

// Notes attached to evaluations.
const (
	NoteHighVolatility = "High volatility"
	NoteNormal         = "Normal"
)

// Evaluate compares a prediction against the observed home margin and derives the
// post-game meta-signals: how far off it was, whether an override flipped a correct
// pick (regret), and whether a large miss went by without one.
func Evaluate(p models.PredictionResult, actualMargin float64, at time.Time) models.Evaluation {
	homeWon := actualMargin > 0
	gap := abs(p.PostOverride - actualMargin)
	correct := (p.PostOverride > 0) == homeWon

	ev := models.Evaluation{
		GameID:        p.GameID,
		Predicted:     p.PostOverride,
		ActualMargin:  actualMargin,
		VolatilityGap: gap,
		Correct:       correct,
		Note:          NoteNormal,
		EvaluatedAt:   at.UTC(),
	}
	if p.OverrideEngaged {
		ev.ORARegret = (p.Final > 0) == homeWon && !correct
	} else {
		ev.ORAMiss = gap > ORAMissGap
	}
	hit := 0.0
	if correct {
		hit = 1
	}
	ev.TrustDelta = abs(p.Confidence - hit)
	if gap > HighVolatilityGap {
		ev.Note = NoteHighVolatility
	}
	ev.Hooks = hooks(ev)
	return ev
}

func hooks(ev models.Evaluation) []string {
	var out []string
	switch {
	case ev.VolatilityGap > HighVolatilityGap:
		out = append(out, HookChaos)
	case ev.VolatilityGap < SharpGap:
		out = append(out, HookSharp)
	}
	if ev.ORARegret {
		out = append(out, HookRegret)
	}
	if ev.TrustDelta > FalseConfidenceDelta {
		out = append(out, HookFalseConfidence)
	}
	return out
}
