package models

// TeamGame is one game in a team's history, the unit the rolling baselines are built from.
type TeamGame struct {
	Team          string   `json:"team" validate:"required"`
	GameID        string   `json:"game_id" validate:"required"`
	Date          GameDate `json:"date"`
	NetRating     *float64 `json:"net_rating"`
	EffectiveFG   *float64 `json:"efg,omitempty"`
	TurnoverRate  *float64 `json:"tov_rate,omitempty"`
	RimDeterrence *float64 `json:"rim_deterrence,omitempty"`
	Positional    *float64 `json:"positional,omitempty"`
	DecayRatio    *float64 `json:"decay_ratio,omitempty"`
}

// TeamBaseline is the trailing-window summary of a team's history as of a date.
type TeamBaseline struct {
	Team  string   `json:"team"`
	AsOf  GameDate `json:"as_of"`
	Count int      `json:"count"`

	NetMean        float64 `json:"net_mean"`
	NetStd         float64 `json:"net_std"`
	EFGMean        float64 `json:"efg_mean"`
	EFGStd         float64 `json:"efg_std"`
	TOVMean        float64 `json:"tov_mean"`
	TOVStd         float64 `json:"tov_std"`
	DeterrenceMean float64 `json:"deterrence_mean"`
	DeterrenceStd  float64 `json:"deterrence_std"`

	PositionalMedian float64 `json:"positional_median"`
	PositionalIQR    float64 `json:"positional_iqr"`
	DecayMedian      float64 `json:"decay_median"`
	DecayIQR         float64 `json:"decay_iqr"`

	// Fallbacks lists the statistics that were replaced by configured constants.
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// BoxScoreLine is one team's traditional box-score totals for a game.
type BoxScoreLine struct {
	Team      string  `json:"team" validate:"required"`
	FGA       float64 `json:"fga" validate:"gte=0"`
	FGM       float64 `json:"fgm" validate:"gte=0"`
	FG3M      float64 `json:"fg3m" validate:"gte=0"`
	TOV       float64 `json:"tov" validate:"gte=0"`
	PlusMinus float64 `json:"plus_minus"`

	RimDeterrence *float64 `json:"rim_deterrence,omitempty"`
	Positional    *float64 `json:"positional,omitempty"`
	DecayRatio    *float64 `json:"decay_ratio,omitempty"`
}

// BoxScore pairs both teams' lines for one game.
type BoxScore struct {
	GameID string       `json:"game_id" validate:"required"`
	Date   GameDate     `json:"date"`
	Home   BoxScoreLine `json:"home"`
	Away   BoxScoreLine `json:"away"`
}

// Statistic names reported in TeamBaseline.Fallbacks.
const (
	StatHistory          = "history"
	StatNetStd           = "net_std"
	StatEFGStd           = "efg_std"
	StatTOVStd           = "tov_std"
	StatDeterrenceStd    = "deterrence_std"
	StatPositionalMedian = "positional_median"
	StatPositionalIQR    = "positional_iqr"
	StatDecayMedian      = "decay_median"
	StatDecayIQR         = "decay_iqr"
)

// FellBack reports whether stat was replaced by a configured constant.
func (b TeamBaseline) FellBack(stat string) bool {
	for _, s := range b.Fallbacks {
		if s == stat {
			return true
		}
	}
	return false
}
