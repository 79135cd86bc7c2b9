package features

import (
    "fmt"

    "HoopLine/internal/domain/models"
)

// Pace estimates possessions per team for a game: (FGA + TOV) of both sides, halved.
func Pace(home, away models.BoxScoreLine) float64 {
    return (home.FGA + home.TOV + away.FGA + away.TOV) / 2.0
}

// NetRating converts a plus-minus into points per 100 possessions.
// Returns 0 when the pace is not positive.
func NetRating(plusMinus, pace float64) float64 {
    if pace <= 0 {
        return 0
    }
    return plusMinus / pace * 100
}

// EffectiveFG weights made threes by 1.5: (FGM + 0.5*FG3M) / FGA.
// The second return is false when the team took no shots.
func EffectiveFG(l models.BoxScoreLine) (float64, bool) {
    if l.FGA <= 0 {
        return 0, false
    }
    return (l.FGM + 0.5*l.FG3M) / l.FGA, true
}

// TurnoverRate is the share of shot-or-turnover possessions that ended in a turnover.
func TurnoverRate(l models.BoxScoreLine) (float64, bool) {
    den := l.FGA + l.TOV
    if den <= 0 {
        return 0, false
    }
    return l.TOV / den, true
}

// TeamGames derives one history row per side from a box score.
func TeamGames(bs models.BoxScore) ([]models.TeamGame, error) {
    if bs.GameID == "" || bs.Date.IsZero() {
        return nil, fmt.Errorf("%w: box score missing game id or date", models.ErrInvalidGame)
    }
    if bs.Home.Team == "" || bs.Away.Team == "" || bs.Home.Team == bs.Away.Team {
        return nil, fmt.Errorf("%w: box score %s has teams %q vs %q", models.ErrInvalidGame, bs.GameID, bs.Home.Team, bs.Away.Team)
    }
    pace := Pace(bs.Home, bs.Away)
    return []models.TeamGame{
        teamGame(bs, bs.Home, pace),
        teamGame(bs, bs.Away, pace),
    }, nil
}

func teamGame(bs models.BoxScore, l models.BoxScoreLine, pace float64) models.TeamGame {
    g := models.TeamGame{
        Team:          l.Team,
        GameID:        bs.GameID,
        Date:          bs.Date,
        NetRating:     models.Float(NetRating(l.PlusMinus, pace)),
        RimDeterrence: l.RimDeterrence,
        Positional:    l.Positional,
        DecayRatio:    l.DecayRatio,
    }
    if v, ok := EffectiveFG(l); ok {
        g.EffectiveFG = &v
    }
    if v, ok := TurnoverRate(l); ok {
        g.TurnoverRate = &v
    }
    return g
}
