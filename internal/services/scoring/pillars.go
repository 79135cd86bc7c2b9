package scoring

import (
	"fmt"

	"HoopLine/internal/domain/models"
)

// Physics mixes shooting efficiency with ball security, plus the net-rating
// edge once both teams have games on record.
const (
	physicsShootingShare = 0.6
	physicsTurnoverShare = 0.4
	physicsNetShare      = 0.4
)

// WinSignal is the weighted pillar composite and its point conversion.
type WinSignal struct {
	Raw      float64
	Adjusted float64
	Points   float64
	Dampened bool
}

// PillarAggregator builds and combines the physics, deterrence, positional and decay pillars.
type PillarAggregator struct {
	norm          Normalizer
	weights       Weights
	alpha         float64
	dampThreshold float64
	dampFactor    float64
}

// NewPillarAggregator builds an aggregator from validated params.
func NewPillarAggregator(p Params) PillarAggregator {
	return PillarAggregator{
		norm:          NewNormalizer(p.ClipZ),
		weights:       p.Weights,
		alpha:         p.Alpha,
		dampThreshold: p.DecayDampThreshold,
		dampFactor:    p.DecayDampFactor,
	}
}

// Combine weights the pillars, applies the fatigue discount when decayRaw is below the
// threshold, and converts the result to points.
func (a PillarAggregator) Combine(b models.SignalBundle, decayRaw *float64) WinSignal {
	w := a.weights
	raw := w.Physics*b.Physics + w.Deterrence*b.Deterrence + w.Positional*b.Positional + w.Decay*b.Decay

	out := WinSignal{Raw: raw, Adjusted: raw}
	if decayRaw != nil && finite(*decayRaw) && *decayRaw < a.dampThreshold {
		out.Adjusted = raw * a.dampFactor
		out.Dampened = true
	}
	out.Points = a.alpha * out.Adjusted
	return out
}

// Signals normalizes the home-minus-away pillar inputs of rec against both teams' baselines.
// A pillar input missing on either side contributes nothing. The net-rating term needs a
// baseline with at least one game for each team; its spread is the pooled NetStd, which is
// the rating fallback for a team with a single game.
func (a PillarAggregator) Signals(rec *models.MatchupRecord, home, away models.TeamBaseline) (models.SignalBundle, []models.Degradation) {
	var (
		b     models.SignalBundle
		notes []models.Degradation
	)
	std := func(name string, d, mean, spread float64) float64 {
		z, ok := a.norm.Standardize(d, mean, spread)
		if !ok {
			notes = append(notes, degenerate(name, spread))
		}
		return z
	}
	robust := func(name string, d, median, iqr float64) float64 {
		z, ok := a.norm.RobustStandardize(d, median, iqr)
		if !ok {
			notes = append(notes, degenerate(name, iqr))
		}
		return z
	}

	var physics float64
	if d, ok := delta(rec.Home.NetRating, rec.Away.NetRating); ok && home.Count > 0 && away.Count > 0 {
		physics += physicsNetShare * std("net_rating", d, 0, pooled(home.NetStd, away.NetStd))
	}
	if d, ok := delta(rec.Home.EffectiveFG, rec.Away.EffectiveFG); ok {
		physics += physicsShootingShare * std("efg", d, 0, pooled(home.EFGStd, away.EFGStd))
	}
	if d, ok := delta(rec.Home.TurnoverRate, rec.Away.TurnoverRate); ok {
		physics -= physicsTurnoverShare * std("tov_rate", d, 0, pooled(home.TOVStd, away.TOVStd))
	}
	b.Physics = a.norm.bound(physics)

	if d, ok := delta(rec.Home.RimDeterrence, rec.Away.RimDeterrence); ok {
		b.Deterrence = std("rim_deterrence", d, 0, pooled(home.DeterrenceStd, away.DeterrenceStd))
	}
	if d, ok := delta(rec.Home.Positional, rec.Away.Positional); ok {
		b.Positional = robust("positional", d, center(home, away, models.StatPositionalMedian,
			home.PositionalMedian, away.PositionalMedian), pooled(home.PositionalIQR, away.PositionalIQR))
	}
	if d, ok := delta(rec.Home.DecayRatio, rec.Away.DecayRatio); ok {
		b.Decay = robust("decay_ratio", d, center(home, away, models.StatDecayMedian,
			home.DecayMedian, away.DecayMedian), pooled(home.DecayIQR, away.DecayIQR))
	}
	return b, notes
}

// DecayRaw returns the lower of the two sides' raw decay ratios, or nil when neither is known.
func DecayRaw(rec *models.MatchupRecord) *float64 {
	h, a := rec.Home.DecayRatio, rec.Away.DecayRatio
	switch {
	case h == nil:
		return a
	case a == nil:
		return h
	case *a < *h:
		return a
	default:
		return h
	}
}

func delta(h, a *float64) (float64, bool) {
	if h == nil || a == nil {
		return 0, false
	}
	return *h - *a, true
}

// center is the expected home-minus-away difference, or 0 when either median is unknown.
func center(home, away models.TeamBaseline, stat string, h, a float64) float64 {
	if home.FellBack(stat) || away.FellBack(stat) {
		return 0
	}
	return h - a
}

func pooled(h, a float64) float64 {
	return (h + a) / 2
}

func degenerate(name string, spread float64) models.Degradation {
	return models.Degradation{
		Kind:   models.DegradeStatistic,
		Detail: fmt.Sprintf("%s spread %v unusable, pillar term neutralized", name, spread),
	}
}
