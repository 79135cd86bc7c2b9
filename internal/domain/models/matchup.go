package models

// Venue describes where a matchup is played from the home team's point of view.
type Venue string

const (
	VenueHome       Venue = "home"
	VenueNeutral    Venue = "neutral"
	VenuePseudoHome Venue = "pseudo_home"
)

// Stakes tags supplied by the data collaborator.
const (
	StakePlayoffUrgency = "playoff_urgency"
	StakeCheckedOut     = "checked_out"
	StakeRevenge        = "revenge"
)

// Back-to-back legs.
const (
	RestNormal       = 0
	BackToBackFirst  = 1
	BackToBackSecond = 2
)

// TeamSide carries one team's efficiency metrics and situational context for a matchup.
// Optional metrics are pointers: nil means the provider had no value.
type TeamSide struct {
	NetRating     *float64 `json:"net_rating" validate:"required"`
	EffectiveFG   *float64 `json:"efg,omitempty"`
	TurnoverRate  *float64 `json:"tov_rate,omitempty"`
	Pace          *float64 `json:"pace,omitempty"`
	RimDeterrence *float64 `json:"rim_deterrence,omitempty"`
	Positional    *float64 `json:"positional,omitempty"`
	DecayRatio    *float64 `json:"decay_ratio,omitempty"`

	BackToBack           int      `json:"back_to_back" validate:"gte=0,lte=2"`
	TravelMiles72h       float64  `json:"travel_miles_72h" validate:"gte=0"`
	TopImpact            float64  `json:"top_impact"`
	MissingImpact        float64  `json:"missing_impact" validate:"gte=0"`
	ReplacementAvailable bool     `json:"replacement_available"`
	Stakes               []string `json:"stakes,omitempty"`
}

// OverrideSignal is the reasoning bundle consumed by the override auditor.
type OverrideSignal struct {
	Side       int      `json:"side" validate:"gte=-1,lte=1"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
}

// MatchupRecord is the immutable per-game input to the scoring pipeline.
type MatchupRecord struct {
	GameID   string   `json:"game_id" validate:"required"`
	Date     GameDate `json:"date"`
	HomeTeam string   `json:"home_team" validate:"required"`
	AwayTeam string   `json:"away_team" validate:"required,nefield=HomeTeam"`

	Home TeamSide `json:"home"`
	Away TeamSide `json:"away"`

	Venue        Venue    `json:"venue" default:"home" validate:"oneof=home neutral pseudo_home"`
	CrowdSupport float64  `json:"crowd_support" validate:"gte=0,lte=1"`
	MarketSpread *float64 `json:"market_spread,omitempty"`

	Confidence *float64        `json:"confidence,omitempty"`
	Override   *OverrideSignal `json:"override,omitempty"`

	ImputedCount int `json:"imputed_count" validate:"gte=0"`
	MissingEPM   int `json:"missing_epm" validate:"gte=0,lte=2"`
}

// Check reports the first structural defect that makes the record unscorable.
func (r *MatchupRecord) Check() error {
	switch {
	case r.GameID == "":
		return &IncompleteRecordError{GameID: r.GameID, Field: "game_id"}
	case r.HomeTeam == "":
		return &IncompleteRecordError{GameID: r.GameID, Field: "home_team"}
	case r.AwayTeam == "":
		return &IncompleteRecordError{GameID: r.GameID, Field: "away_team"}
	case r.Date.IsZero():
		return &IncompleteRecordError{GameID: r.GameID, Field: "date"}
	case r.Home.NetRating == nil:
		return &IncompleteRecordError{GameID: r.GameID, Field: "home.net_rating"}
	case r.Away.NetRating == nil:
		return &IncompleteRecordError{GameID: r.GameID, Field: "away.net_rating"}
	}
	return nil
}

// Float returns a pointer to v, for building records in code.
func Float(v float64) *float64 { return &v }
