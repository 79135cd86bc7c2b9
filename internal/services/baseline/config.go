package baseline

import (
	"HoopLine/internal/domain/models"
	"HoopLine/internal/services/scoring"
)

// Config controls the trailing window and the constants substituted for
// undefined or zero spreads.
type Config struct {
	Window     int
	MinPeriods int

	StdRating     float64
	StdShooting   float64
	StdTurnover   float64
	StdDeterrence float64
	IQR           float64
}

// ConfigFrom extracts the baseline settings from the scoring hyperparameters.
func ConfigFrom(p scoring.Params) Config {
	return Config{
		Window:        p.RollingWindow,
		MinPeriods:    p.MinPeriods,
		StdRating:     p.StdFallbackRating,
		StdShooting:   p.StdFallbackShooting,
		StdTurnover:   p.StdFallbackTurnover,
		StdDeterrence: p.StdFallbackDeterrence,
		IQR:           p.IQRFallback,
	}
}

// Empty is the baseline of a team with no recorded history.
func (c Config) Empty(team string, asOf models.GameDate) models.TeamBaseline {
	b := c.summarize(team, asOf, window{}, nil)
	b.Fallbacks = append([]string{models.StatHistory}, b.Fallbacks...)
	return b
}

func (c Config) summarize(team string, asOf models.GameDate, w window, games []models.TeamGame) models.TeamBaseline {
	b := models.TeamBaseline{Team: team, AsOf: asOf, Count: len(games)}
	fell := func(stat string) { b.Fallbacks = append(b.Fallbacks, stat) }

	b.NetMean, b.NetStd = c.meanStd(w.net, c.StdRating, models.StatNetStd, fell)
	b.EFGMean, b.EFGStd = c.meanStd(w.efg, c.StdShooting, models.StatEFGStd, fell)
	b.TOVMean, b.TOVStd = c.meanStd(w.tov, c.StdTurnover, models.StatTOVStd, fell)
	b.DeterrenceMean, b.DeterrenceStd = c.meanStd(w.deterrence, c.StdDeterrence, models.StatDeterrenceStd, fell)

	var positional, decay []float64
	for _, g := range games {
		if g.Positional != nil {
			positional = append(positional, *g.Positional)
		}
		if g.DecayRatio != nil {
			decay = append(decay, *g.DecayRatio)
		}
	}
	b.PositionalMedian, b.PositionalIQR = c.medianIQR(positional, models.StatPositionalMedian, models.StatPositionalIQR, fell)
	b.DecayMedian, b.DecayIQR = c.medianIQR(decay, models.StatDecayMedian, models.StatDecayIQR, fell)
	return b
}

func (c Config) meanStd(m moments, fallback float64, stat string, fell func(string)) (float64, float64) {
	if m.n < c.MinPeriods {
		fell(stat)
		return 0, fallback
	}
	mean, _ := m.mean()
	std, ok := m.std()
	if !ok {
		fell(stat)
		return mean, fallback
	}
	return mean, std
}

func (c Config) medianIQR(values []float64, medianStat, iqrStat string, fell func(string)) (float64, float64) {
	if len(values) < c.MinPeriods {
		fell(medianStat)
		fell(iqrStat)
		return 0, c.IQR
	}
	median, iqr, ok := spread(values)
	if !ok {
		fell(medianStat)
		fell(iqrStat)
		return 0, c.IQR
	}
	if iqr <= 0 {
		fell(iqrStat)
		return median, c.IQR
	}
	return median, iqr
}
