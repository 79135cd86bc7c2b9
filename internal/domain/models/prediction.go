package models

import "time"

// SignalBundle holds the four normalized pillar scores of a matchup.
type SignalBundle struct {
	Physics    float64 `json:"physics"`
	Deterrence float64 `json:"deterrence"`
	Positional float64 `json:"positional"`
	Decay      float64 `json:"decay"`
}

// VolatilityBundle holds the situational offsets and their unclipped sum.
type VolatilityBundle struct {
	Gravity    float64 `json:"gravity"`
	TalentLoss float64 `json:"talent_loss"`
	Venue      float64 `json:"venue"`
	Load       float64 `json:"load"`
	MediaBias  float64 `json:"media_bias"`
	Other      float64 `json:"other"`
	Sum        float64 `json:"sum"`
}

// OverrideState is the auditor's state for one scoring call.
type OverrideState string

const (
	OverrideStandby OverrideState = "STANDBY"
	OverrideEngaged OverrideState = "ENGAGED"
)

// Degradation records a locally absorbed fallback taken while scoring.
type Degradation struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Degradation kinds.
const (
	DegradeStatistic    = "degenerate_statistic"
	DegradeBaseline     = "missing_baseline"
	DegradeUnknownStake = "unknown_stake"
	DegradeConfidence   = "estimated_confidence"
	DegradeAdvisor      = "advisor_unavailable"
)

// PredictionResult is the fully populated output of one scoring call.
type PredictionResult struct {
	GameID   string   `json:"game_id"`
	Date     GameDate `json:"date"`
	HomeTeam string   `json:"home_team"`
	AwayTeam string   `json:"away_team"`

	Anchor            float64          `json:"anchor"`
	Signals           SignalBundle     `json:"signals"`
	WinSignal         float64          `json:"win_signal"`
	WinSignalAdjusted float64          `json:"win_signal_adjusted"`
	SignalPoints      float64          `json:"signal_points"`
	Volatility        VolatilityBundle `json:"volatility_bundle"`

	Total     float64 `json:"total"`
	Deviation float64 `json:"volatility"`
	Penalty   float64 `json:"penalty"`
	Final     float64 `json:"final"`

	Confidence      float64       `json:"confidence"`
	OverrideState   OverrideState `json:"override_state"`
	OverrideEngaged bool          `json:"override_engaged"`
	OverrideSide    int           `json:"override_side"`
	OverrideNudge   float64       `json:"override_nudge"`
	OverrideReason  string        `json:"override_reason"`
	PostOverride    float64       `json:"post_override"`

	Degradations []Degradation `json:"degradations,omitempty"`
	ScoredAt     time.Time     `json:"scored_at"`
}

// Failure describes one matchup of a batch that could not be scored.
type Failure struct {
	Index  int    `json:"index"`
	GameID string `json:"game_id,omitempty"`
	Reason string `json:"reason"`
}

// BatchResult is the partial-success outcome of scoring many matchups.
type BatchResult struct {
	Results  []PredictionResult `json:"results"`
	Failures []Failure          `json:"failures,omitempty"`
}

// Evaluation compares a stored prediction with the observed home margin.
type Evaluation struct {
	GameID        string    `json:"game_id"`
	Predicted     float64   `json:"predicted"`
	ActualMargin  float64   `json:"actual_margin"`
	VolatilityGap float64   `json:"volatility_gap"`
	Correct       bool      `json:"correct"`
	ORARegret     bool      `json:"ora_regret"`
	ORAMiss       bool      `json:"ora_miss"`
	TrustDelta    float64   `json:"trust_delta"`
	Note          string    `json:"note,omitempty"`
	// Hooks are commentary cues read off the signals above, e.g. CHAOS_DETECTED.
	Hooks         []string  `json:"hooks,omitempty"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}
