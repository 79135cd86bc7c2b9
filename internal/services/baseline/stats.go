package baseline

import (
	"math"
	"sort"
)

// varianceEpsilon absorbs the rounding left behind by incremental add/remove.
const varianceEpsilon = 1e-12

// moments keeps running sums for a mean and sample standard deviation.
type moments struct {
	n     int
	sum   float64
	sumsq float64
}

func (m *moments) add(v float64) {
	m.n++
	m.sum += v
	m.sumsq += v * v
}

func (m *moments) remove(v float64) {
	m.n--
	m.sum -= v
	m.sumsq -= v * v
	if m.n == 0 {
		m.sum, m.sumsq = 0, 0
	}
}

func (m moments) mean() (float64, bool) {
	if m.n == 0 {
		return 0, false
	}
	return m.sum / float64(m.n), true
}

// std returns the sample (n-1) standard deviation; ok is false when it is
// undefined (fewer than two values) or zero.
func (m moments) std() (float64, bool) {
	if m.n < 2 {
		return 0, false
	}
	mean := m.sum / float64(m.n)
	variance := (m.sumsq - float64(m.n)*mean*mean) / float64(m.n-1)
	if variance <= varianceEpsilon*(mean*mean+1) {
		return 0, false
	}
	return math.Sqrt(variance), true
}

// quantile interpolates linearly between the closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// spread returns the median and interquartile range of values; ok is false
// when there are no values.
func spread(values []float64) (median, iqr float64, ok bool) {
	if len(values) == 0 {
		return 0, 0, false
	}
	s := append([]float64(nil), values...)
	sort.Float64s(s)
	return quantile(s, 0.5), quantile(s, 0.75) - quantile(s, 0.25), true
}
