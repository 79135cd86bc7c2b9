package scoring

import "math"

// IQRToSigma converts an interquartile range into a normal-equivalent standard deviation.
const IQRToSigma = 1.349

// Normalizer turns raw statistics into bounded deviation scores.
type Normalizer struct {
	clip float64
}

// NewNormalizer clips every score to [-clip, clip].
func NewNormalizer(clip float64) Normalizer {
	return Normalizer{clip: clip}
}

// ZScore returns (value-mean)/std clipped, or 0 when std is zero or undefined.
func (n Normalizer) ZScore(value, mean, std float64) float64 {
	z, _ := n.Standardize(value, mean, std)
	return z
}

// RobustZ returns (value-median)/(iqr/1.349) clipped, or 0 when iqr is zero or undefined.
func (n Normalizer) RobustZ(value, median, iqr float64) float64 {
	z, _ := n.RobustStandardize(value, median, iqr)
	return z
}

// Standardize is ZScore that also reports whether a real score could be computed.
func (n Normalizer) Standardize(value, mean, std float64) (float64, bool) {
	// guard before dividing
	if std == 0 || !finite(std) || !finite(value) || !finite(mean) {
		return 0, false
	}
	return n.bound((value - mean) / std), true
}

// RobustStandardize is RobustZ that also reports whether a real score could be computed.
func (n Normalizer) RobustStandardize(value, median, iqr float64) (float64, bool) {
	if iqr == 0 || !finite(iqr) || !finite(value) || !finite(median) {
		return 0, false
	}
	return n.bound((value - median) / (iqr / IQRToSigma)), true
}

func (n Normalizer) bound(z float64) float64 {
	if math.IsNaN(z) {
		return 0
	}
	return clamp(z, -n.clip, n.clip)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
