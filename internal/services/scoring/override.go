package scoring

import (
	"strings"

	"HoopLine/internal/domain/models"
)

// Reason texts.
const (
	ReasonNone        = "None"
	ReasonUnspecified = "Unspecified"
	reasonSeparator   = "/"
)

// OverrideStrategy maps an override-reasoning bundle to a side in {-1, 0, +1}
// and a nudge magnitude.
type OverrideStrategy interface {
	Decide(sig models.OverrideSignal) (side int, nudge float64)
}

// DirectionalStrategy follows the suggested side and scales the nudge linearly
// between Min and Max with the signal's confidence.
type DirectionalStrategy struct {
	Min float64
	Max float64
}

func (s DirectionalStrategy) Decide(sig models.OverrideSignal) (int, float64) {
	side := int(sign(float64(sig.Side)))
	if side == 0 {
		return 0, 0
	}
	conf := sig.Confidence
	if !finite(conf) {
		conf = 0
	}
	return side, s.Min + (s.Max-s.Min)*clamp(conf, 0, 1)
}

// Override is the auditor's decision for one scoring call.
type Override struct {
	State  models.OverrideState
	Side   int
	Nudge  float64
	Reason string
	Post   float64
}

// OverrideAuditor engages on low-margin, low-confidence predictions.
type OverrideAuditor struct {
	tau      float64
	ceiling  float64
	nudgeMin float64
	nudgeMax float64
	strategy OverrideStrategy
}

// NewOverrideAuditor builds an auditor; a nil strategy means DirectionalStrategy.
func NewOverrideAuditor(p Params, strategy OverrideStrategy) OverrideAuditor {
	if strategy == nil {
		strategy = DirectionalStrategy{Min: p.NudgeMin, Max: p.NudgeMax}
	}
	return OverrideAuditor{
		tau:      p.TauORA,
		ceiling:  p.ConfidenceCeiling,
		nudgeMin: p.NudgeMin,
		nudgeMax: p.NudgeMax,
		strategy: strategy,
	}
}

// Engages reports whether both the margin and the confidence condition hold.
func (a OverrideAuditor) Engages(final, confidence float64) bool {
	return abs(final) < a.tau && confidence <= a.ceiling
}

// Audit decides the override for a corrected prediction. sig may be nil.
func (a OverrideAuditor) Audit(final, confidence float64, sig *models.OverrideSignal) Override {
	if !a.Engages(final, confidence) {
		return Override{State: models.OverrideStandby, Reason: ReasonNone, Post: final}
	}

	out := Override{State: models.OverrideEngaged, Reason: ReasonUnspecified, Post: final}
	if sig == nil {
		return out
	}
	if r := JoinReasons(sig.Reasons); r != "" {
		out.Reason = r
	}

	side, nudge := a.strategy.Decide(*sig)
	side = int(sign(float64(side)))
	if side == 0 {
		return out
	}
	if !finite(nudge) {
		nudge = a.nudgeMin
	}
	out.Side = side
	out.Nudge = clamp(nudge, a.nudgeMin, a.nudgeMax)
	out.Post = final + float64(side)*out.Nudge
	return out
}

// JoinReasons concatenates distinct non-blank reason tags in order.
func JoinReasons(reasons []string) string {
	seen := make(map[string]struct{}, len(reasons))
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return strings.Join(out, reasonSeparator)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
