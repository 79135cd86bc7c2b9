package scoring

// Integrity is the outcome of the quadratic pull toward the anchor.
type Integrity struct {
	Total      float64
	Volatility float64
	Penalty    float64
	Final      float64
}

// IntegrityCorrector penalizes deviation from the anchor by gamma * v^2 * sign(v).
// Once gamma*|v| exceeds 1 the penalty is larger than the deviation and the final
// prediction crosses to the other side of the anchor; that overshoot is intended.
type IntegrityCorrector struct {
	gamma float64
}

// NewIntegrityCorrector builds a corrector with the given penalty constant.
func NewIntegrityCorrector(gamma float64) IntegrityCorrector {
	return IntegrityCorrector{gamma: gamma}
}

// Correct merges the anchor, signal points and situational offset and applies the penalty.
func (c IntegrityCorrector) Correct(anchor, signalPoints, omega float64) Integrity {
	total := anchor + omega + signalPoints
	vol := total - anchor
	penalty := c.gamma * vol * vol * sign(vol)
	return Integrity{
		Total:      total,
		Volatility: vol,
		Penalty:    penalty,
		Final:      total - penalty,
	}
}
