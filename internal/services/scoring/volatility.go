package scoring

import (
	"fmt"

	"HoopLine/internal/domain/models"
)

// Situational offsets, in points from the home team's perspective.
const (
	GravityThreshold = 2.0
	GravityRho       = 1.3

	ReplacementBonus = 1.0

	HomeCourt        = 2.5
	PseudoHomeFloor  = 0.5
	PseudoHomeSpread = 1.0

	BackToBackFirstPenalty  = -0.5
	BackToBackSecondPenalty = -1.5
	TravelMilesLimit        = 1500.0
	TravelPenalty           = -1.5

	MediaBiasDivisor = 4.0
	MediaBiasLimit   = 1.0
)

var stakeOffsets = map[string]float64{
	models.StakePlayoffUrgency: 1.5,
	models.StakeCheckedOut:     -2.0,
	models.StakeRevenge:        0.5,
}

// VolatilityEngine computes the independent situational adjustments of a matchup.
type VolatilityEngine struct{}

// Offsets returns each component and their plain, unclipped sum.
func (e VolatilityEngine) Offsets(rec *models.MatchupRecord, anchor float64) (models.VolatilityBundle, []models.Degradation) {
	var notes []models.Degradation

	v := models.VolatilityBundle{
		Gravity:    e.Gravity(rec.Home.TopImpact, rec.Away.TopImpact),
		TalentLoss: e.TalentLoss(rec.Home, rec.Away),
		Venue:      e.Venue(rec.Venue, rec.CrowdSupport),
		Load:       e.Load(rec.Home) - e.Load(rec.Away),
		MediaBias:  e.MediaBias(rec.MarketSpread, anchor),
	}

	home, unknownHome := e.Stakes(rec.Home.Stakes)
	away, unknownAway := e.Stakes(rec.Away.Stakes)
	v.Other = home - away
	for _, tag := range append(unknownHome, unknownAway...) {
		notes = append(notes, models.Degradation{
			Kind:   models.DegradeUnknownStake,
			Detail: fmt.Sprintf("stake tag %q ignored", tag),
		})
	}

	v.Sum = v.Gravity + v.TalentLoss + v.Venue + v.Load + v.MediaBias + v.Other
	return v, notes
}

// Gravity rewards a star-power imbalance once it exceeds the threshold.
func (VolatilityEngine) Gravity(homeTop, awayTop float64) float64 {
	d := homeTop - awayTop
	if d > GravityThreshold || d < -GravityThreshold {
		return d * GravityRho
	}
	return 0
}

// TalentLoss is the away-minus-home missing impact, softened when a side has a
// high-quality replacement for a real loss.
func (VolatilityEngine) TalentLoss(home, away models.TeamSide) float64 {
	v := away.MissingImpact - home.MissingImpact
	if home.ReplacementAvailable && home.MissingImpact > 0 {
		v += ReplacementBonus
	}
	if away.ReplacementAvailable && away.MissingImpact > 0 {
		v -= ReplacementBonus
	}
	return v
}

// Venue maps the playing site to a home-court edge.
func (VolatilityEngine) Venue(venue models.Venue, crowdSupport float64) float64 {
	switch venue {
	case models.VenueNeutral:
		return 0
	case models.VenuePseudoHome:
		if !finite(crowdSupport) {
			crowdSupport = 0
		}
		return PseudoHomeFloor + PseudoHomeSpread*clamp(crowdSupport, 0, 1)
	default:
		return HomeCourt
	}
}

// Load is one side's schedule fatigue, always <= 0.
func (VolatilityEngine) Load(side models.TeamSide) float64 {
	var v float64
	switch side.BackToBack {
	case models.BackToBackFirst:
		v += BackToBackFirstPenalty
	case models.BackToBackSecond:
		v += BackToBackSecondPenalty
	}
	if side.TravelMiles72h > TravelMilesLimit {
		v += TravelPenalty
	}
	return v
}

// MediaBias measures the market's disagreement with the anchor, bounded to [-1, 1].
func (VolatilityEngine) MediaBias(marketSpread *float64, anchor float64) float64 {
	if marketSpread == nil || !finite(*marketSpread) {
		return 0
	}
	return clamp((*marketSpread+anchor)/MediaBiasDivisor, -MediaBiasLimit, MediaBiasLimit)
}

// Stakes sums the known motivational tags and returns the unknown ones.
func (VolatilityEngine) Stakes(tags []string) (float64, []string) {
	var (
		v       float64
		unknown []string
	)
	for _, t := range tags {
		off, ok := stakeOffsets[t]
		if !ok {
			unknown = append(unknown, t)
			continue
		}
		v += off
	}
	return v, unknown
}
