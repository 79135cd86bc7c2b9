package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid scoring configuration")

// ConfigError rejects a hyperparameter set before any scoring happens.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// WeightTolerance bounds how far the pillar weights may drift from a total of 1.
const WeightTolerance = 1e-9

// Weights partitions the win signal across the four pillars.
type Weights struct {
	Physics    float64
	Deterrence float64
	Positional float64
	Decay      float64
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Physics + w.Deterrence + w.Positional + w.Decay
}

// Params is the immutable hyperparameter set shared by every scoring component.
type Params struct {
	Alpha             float64
	Gamma             float64
	TauORA            float64
	ConfidenceCeiling float64
	Weights           Weights

	ClipZ         float64
	RollingWindow int
	MinPeriods    int

	StdFallbackRating     float64
	StdFallbackShooting   float64
	StdFallbackTurnover   float64
	StdFallbackDeterrence float64
	IQRFallback           float64

	DecayDampThreshold float64
	DecayDampFactor    float64

	NudgeMin float64
	NudgeMax float64
}

// DefaultParams returns the documented production hyperparameters.
func DefaultParams() Params {
	return Params{
		Alpha:             3.0,
		Gamma:             0.05,
		TauORA:            2.0,
		ConfidenceCeiling: 0.85,
		Weights: Weights{
			Physics:    0.30,
			Deterrence: 0.30,
			Positional: 0.25,
			Decay:      0.15,
		},
		ClipZ:                 3.0,
		RollingWindow:         90,
		MinPeriods:            1,
		StdFallbackRating:     5.0,
		StdFallbackShooting:   0.05,
		StdFallbackTurnover:   0.02,
		StdFallbackDeterrence: 0.05,
		IQRFallback:           0.1,
		DecayDampThreshold:    0.85,
		DecayDampFactor:       0.9,
		NudgeMin:              1.5,
		NudgeMax:              3.0,
	}
}

// Validate rejects weight sets that do not sum to 1 and negative or inconsistent constants.
func (p Params) Validate() error {
	w := p.Weights
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"pillar_weights.physics", w.Physics},
		{"pillar_weights.deterrence", w.Deterrence},
		{"pillar_weights.positional", w.Positional},
		{"pillar_weights.decay", w.Decay},
	} {
		if c.v < 0 || !finite(c.v) {
			return &ConfigError{Field: c.name, Reason: fmt.Sprintf("must be a non-negative number, got %v", c.v)}
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > WeightTolerance {
		return &ConfigError{Field: "pillar_weights", Reason: fmt.Sprintf("must sum to 1, got %.12f", sum)}
	}

	for _, c := range []struct {
		name string
		v    float64
	}{
		{"alpha", p.Alpha},
		{"gamma", p.Gamma},
		{"tau_ora", p.TauORA},
	} {
		if c.v < 0 || !finite(c.v) {
			return &ConfigError{Field: c.name, Reason: fmt.Sprintf("must be non-negative, got %v", c.v)}
		}
	}

	if p.ConfidenceCeiling < 0 || p.ConfidenceCeiling > 1 {
		return &ConfigError{Field: "confidence_ceiling", Reason: "must be within [0, 1]"}
	}
	if p.ClipZ <= 0 || !finite(p.ClipZ) {
		return &ConfigError{Field: "clip_z", Reason: "must be positive"}
	}
	if p.RollingWindow < 1 {
		return &ConfigError{Field: "rolling_window", Reason: "must be at least 1"}
	}
	if p.MinPeriods < 1 || p.MinPeriods > p.RollingWindow {
		return &ConfigError{Field: "min_periods", Reason: "must be within [1, rolling_window]"}
	}

	for _, c := range []struct {
		name string
		v    float64
	}{
		{"std_fallback_rating", p.StdFallbackRating},
		{"std_fallback_shooting", p.StdFallbackShooting},
		{"std_fallback_turnover", p.StdFallbackTurnover},
		{"std_fallback_deterrence", p.StdFallbackDeterrence},
		{"iqr_fallback", p.IQRFallback},
	} {
		if c.v <= 0 || !finite(c.v) {
			return &ConfigError{Field: c.name, Reason: "must be positive"}
		}
	}

	if p.DecayDampFactor < 0 || p.DecayDampFactor > 1 {
		return &ConfigError{Field: "decay_damp_factor", Reason: "must be within [0, 1]"}
	}
	if p.NudgeMin < 0 || p.NudgeMax < p.NudgeMin {
		return &ConfigError{Field: "nudge_min", Reason: "must satisfy 0 <= nudge_min <= nudge_max"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
