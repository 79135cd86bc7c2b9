package analytics

import (
    "context"

    "HoopLine/internal/domain/models"
    domsvc "HoopLine/internal/domain/service"
    "HoopLine/internal/services/scoring"
)

// Reason tags produced by TagAdvisor.
const (
    ReasonMotivation = "Motivation"
    ReasonB2B        = "B2B"
    ReasonTravel     = "Travel"
    ReasonScratches  = "Scratches"
)

// burdenScale is the burden gap that maps to full advisor confidence.
const burdenScale = 4.0

// TagAdvisor derives the override bundle from the situational fields already
// on the record. It leans toward the less burdened side.
type TagAdvisor struct{}

func NewTagAdvisor() TagAdvisor { return TagAdvisor{} }

func (TagAdvisor) Advise(_ context.Context, rec *models.MatchupRecord) (*models.OverrideSignal, error) {
    var reasons []string
    add := func(ok bool, r string) {
        if ok {
            reasons = append(reasons, r)
        }
    }
    h, a := rec.Home, rec.Away
    add(len(h.Stakes) > 0 || len(a.Stakes) > 0, ReasonMotivation)
    add(h.BackToBack != models.RestNormal || a.BackToBack != models.RestNormal, ReasonB2B)
    add(h.TravelMiles72h > scoring.TravelMilesLimit || a.TravelMiles72h > scoring.TravelMilesLimit, ReasonTravel)
    add(h.MissingImpact > 0 || a.MissingImpact > 0, ReasonScratches)
    if len(reasons) == 0 {
        return nil, nil
    }

    gap := burden(a) - burden(h)
    side := 0
    switch {
    case gap > 0:
        side = 1
    case gap < 0:
        side = -1
        gap = -gap
    }
    conf := gap / burdenScale
    if conf > 1 {
        conf = 1
    }
    return &models.OverrideSignal{Side: side, Confidence: conf, Reasons: reasons}, nil
}

// burden scores how much a side is working against itself tonight.
func burden(s models.TeamSide) float64 {
    var b float64
    if s.BackToBack == models.BackToBackSecond {
        b++
    }
    if s.TravelMiles72h > scoring.TravelMilesLimit {
        b++
    }
    if s.MissingImpact > 0 && !s.ReplacementAvailable {
        b++
    }
    for _, tag := range s.Stakes {
        switch tag {
        case models.StakeCheckedOut:
            b++
        case models.StakePlayoffUrgency, models.StakeRevenge:
            b--
        }
    }
    return b
}

var _ domsvc.OverrideAdvisor = TagAdvisor{}
