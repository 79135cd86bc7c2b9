package models

// Request bodies of the HTTP API.

type BatchRequest struct {
	Matchups []MatchupRecord `json:"matchups"`
}

// GamesRequest carries finished games either as history rows or as box scores.
type GamesRequest struct {
	Games     []TeamGame `json:"games,omitempty"`
	BoxScores []BoxScore `json:"box_scores,omitempty"`
}

type BaselineRequest struct {
	Team string `param:"team" validate:"required,alphanum,min=2,max=4"`
	Date string `query:"date"`
}

type EvaluationRequest struct {
	GameID       string            `json:"game_id" validate:"required"`
	ActualMargin *float64          `json:"actual_margin" validate:"required"`
	Prediction   *PredictionResult `json:"prediction,omitempty"`
}
