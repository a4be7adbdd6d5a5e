// Package stats holds the numeric helpers shared by the tool handlers:
// streaming moments, quantiles, histogram binning and Pearson correlation.
package stats

import (
	"math"
	"sort"
)

// Accumulator tracks count, min, max, mean and variance with Welford's
// online update so a column can be summarized in one pass.
type Accumulator struct {
	N    int
	Min  float64
	Max  float64
	mean float64
	m2   float64
	sum  float64
}

// Add feeds one observation. NaN values are ignored.
func (a *Accumulator) Add(x float64) {
	if math.IsNaN(x) {
		return
	}
	if a.N == 0 {
		a.Min, a.Max = x, x
	}
	a.N++
	if x < a.Min {
		a.Min = x
	}
	if x > a.Max {
		a.Max = x
	}
	a.sum += x
	delta := x - a.mean
	a.mean += delta / float64(a.N)
	a.m2 += delta * (x - a.mean)
}

// Mean returns the running mean, or NaN when nothing was added.
func (a *Accumulator) Mean() float64 {
	if a.N == 0 {
		return math.NaN()
	}
	return a.mean
}

// Sum returns the running total.
func (a *Accumulator) Sum() float64 { return a.sum }

// Std returns the sample standard deviation (n-1 denominator), or NaN for
// fewer than two observations.
func (a *Accumulator) Std() float64 {
	if a.N < 2 {
		return math.NaN()
	}
	return math.Sqrt(a.m2 / float64(a.N-1))
}

// Sorted returns an ascending copy of vals with NaNs removed.
func Sorted(vals []float64) []float64 {
	cp := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			cp = append(cp, v)
		}
	}
	sort.Float64s(cp)
	return cp
}

// Quantile interpolates linearly between closest ranks of an ascending slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// IQR is the distance between the 75th and 25th percentiles.
func IQR(vals []float64) float64 {
	s := Sorted(vals)
	if len(s) == 0 {
		return 0
	}
	return Quantile(s, 0.75) - Quantile(s, 0.25)
}

// Median returns the 50th percentile of vals.
func Median(vals []float64) float64 {
	return Quantile(Sorted(vals), 0.5)
}

// MedianMAD computes the median and the median absolute deviation.
func MedianMAD(vals []float64) (median, mad float64) {
	s := Sorted(vals)
	if len(s) == 0 {
		return 0, 0
	}
	median = Quantile(s, 0.5)
	dev := make([]float64, len(s))
	for i, v := range s {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = Quantile(dev, 0.5)
	return median, mad
}

// RobustOutliers counts values whose MAD-based z-score exceeds threshold.
func RobustOutliers(vals []float64, threshold float64) int {
	if len(vals) < 8 {
		return 0
	}
	if threshold <= 0 {
		threshold = 3.5
	}
	median, mad := MedianMAD(vals)
	if mad == 0 {
		return 0
	}
	var n int
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if math.Abs(0.6745*(v-median)/mad) > threshold {
			n++
		}
	}
	return n
}

// centralSums returns n, mean and the 2nd..4th central moment sums.
func centralSums(vals []float64) (n int, mean, s2, s3, s4 float64) {
	var acc Accumulator
	for _, v := range vals {
		acc.Add(v)
	}
	if acc.N == 0 {
		return 0, math.NaN(), 0, 0, 0
	}
	mean = acc.Mean()
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		d2 := d * d
		s2 += d2
		s3 += d2 * d
		s4 += d2 * d2
	}
	return acc.N, mean, s2, s3, s4
}

// Skew is the adjusted Fisher-Pearson sample skewness. It needs at least
// three observations and is zero for a constant sample.
func Skew(vals []float64) float64 {
	n, _, s2, s3, _ := centralSums(vals)
	if n < 3 {
		return math.NaN()
	}
	fn := float64(n)
	m2 := s2 / fn
	m3 := s3 / fn
	if m2 == 0 {
		return 0
	}
	return math.Sqrt(fn*(fn-1)) / (fn - 2) * (m3 / math.Pow(m2, 1.5))
}

// Kurtosis is the bias-corrected excess kurtosis (normal == 0). It needs
// at least four observations and is zero for a constant sample.
func Kurtosis(vals []float64) float64 {
	n, _, s2, _, s4 := centralSums(vals)
	if n < 4 {
		return math.NaN()
	}
	fn := float64(n)
	if s2 == 0 {
		return 0
	}
	adj := 3 * (fn - 1) * (fn - 1) / ((fn - 2) * (fn - 3))
	numer := fn * (fn + 1) * (fn - 1) * s4
	denom := (fn - 2) * (fn - 3) * s2 * s2
	return numer/denom - adj
}

// Pearson computes the correlation of x and y over the positions where both
// are present. It returns NaN when fewer than two pairs remain or either
// side is constant.
func Pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var cnt, sx, sy, sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		a, b := x[i], y[i]
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		cnt++
		sx += a
		sy += b
		sxx += a * a
		syy += b * b
		sxy += a * b
	}
	if cnt < 2 {
		return math.NaN()
	}
	denom := math.Sqrt((cnt*sxx - sx*sx) * (cnt*syy - sy*sy))
	if denom == 0 || math.IsNaN(denom) {
		return math.NaN()
	}
	r := (cnt*sxy - sx*sy) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// Description mirrors a describe() row for one numeric column.
type Description struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Describe summarizes vals, skipping NaNs.
func Describe(vals []float64) Description {
	var acc Accumulator
	for _, v := range vals {
		acc.Add(v)
	}
	s := Sorted(vals)
	d := Description{
		Count: acc.N,
		Mean:  acc.Mean(),
		Std:   acc.Std(),
		Min:   math.NaN(),
		Max:   math.NaN(),
		Q25:   Quantile(s, 0.25),
		Q50:   Quantile(s, 0.5),
		Q75:   Quantile(s, 0.75),
	}
	if acc.N > 0 {
		d.Min, d.Max = acc.Min, acc.Max
	}
	return d
}
