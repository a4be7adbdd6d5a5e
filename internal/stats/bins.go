package stats

import "math"

// DefaultBins is used when a sample is too small to estimate a width.
const DefaultBins = 10

// BinCount picks a histogram bin count for vals. Samples under two values
// get DefaultBins; a zero IQR falls back to Sturges' rule; otherwise the
// Freedman-Diaconis width 2*IQR/n^(1/3) is used. The result is always >= 1.
func BinCount(vals []float64) int {
	s := Sorted(vals)
	n := len(s)
	if n < 2 {
		return DefaultBins
	}
	iqr := Quantile(s, 0.75) - Quantile(s, 0.25)
	if iqr == 0 {
		return atLeastOne(int(math.Ceil(math.Log2(float64(n)) + 1)))
	}
	h := 2 * iqr / math.Cbrt(float64(n))
	if h <= 0 || math.IsNaN(h) {
		return DefaultBins
	}
	bins := math.Ceil((s[n-1] - s[0]) / h)
	if bins > math.MaxInt32 {
		return math.MaxInt32
	}
	return atLeastOne(int(bins))
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Histogram splits vals into bins equal-width buckets between their minimum
// and maximum. The last bucket is closed on the right. A constant sample is
// centered in a unit-wide range. Edges has len(Counts)+1 entries.
func Histogram(vals []float64, bins int) (edges []float64, counts []int) {
	s := Sorted(vals)
	if len(s) == 0 {
		return nil, nil
	}
	if bins < 1 {
		bins = 1
	}
	lo, hi := s[0], s[len(s)-1]
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)
	edges = make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi
	counts = make([]int, bins)
	for _, v := range s {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}
	return edges, counts
}
