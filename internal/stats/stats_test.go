package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator(t *testing.T) {
	var a Accumulator
	for _, v := range []float64{2, 4, math.NaN(), 4, 4, 5, 5, 7, 9} {
		a.Add(v)
	}
	assert.Equal(t, 8, a.N)
	assert.Equal(t, 2.0, a.Min)
	assert.Equal(t, 9.0, a.Max)
	assert.InDelta(t, 5.0, a.Mean(), 1e-12)
	assert.InDelta(t, 40.0, a.Sum(), 1e-12)
	assert.InDelta(t, 2.138089935, a.Std(), 1e-6)

	var empty Accumulator
	assert.True(t, math.IsNaN(empty.Mean()))
	assert.True(t, math.IsNaN(empty.Std()))
}

func TestQuantileAndIQR(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Quantile(s, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(s, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(s, 0.75), 1e-12)
	assert.InDelta(t, 1.5, IQR([]float64{4, 3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, 0.0, IQR(nil))
}

func TestMedianMADAndOutliers(t *testing.T) {
	vals := []float64{10, 11, 9.5, 10.5, 9.8, 10.2, 8.8, 9.7, 50}
	median, mad := MedianMAD(vals)
	assert.InDelta(t, 10.0, median, 1e-12)
	assert.InDelta(t, 0.5, mad, 1e-12)
	assert.Equal(t, 1, RobustOutliers(vals, 3.5))
	assert.Equal(t, 0, RobustOutliers([]float64{1, 2, 3}, 3.5))
}

func TestSkewKurtosis(t *testing.T) {
	sym := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 0.0, Skew(sym), 1e-12)
	assert.InDelta(t, -1.2, Kurtosis(sym), 1e-12)

	right := []float64{1, 1, 1, 2, 2, 3, 10}
	assert.Greater(t, Skew(right), 0.5)

	assert.True(t, math.IsNaN(Skew([]float64{1, 2})))
	assert.True(t, math.IsNaN(Kurtosis([]float64{1, 2, 3})))
	assert.Equal(t, 0.0, Skew([]float64{3, 3, 3}))
}

func TestPearson(t *testing.T) {
	x := []float64{1, 2, 3, 4, math.NaN()}
	y := []float64{2, 4, 6, 8, 100}
	assert.InDelta(t, 1.0, Pearson(x, y), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.True(t, math.IsNaN(Pearson([]float64{1, 1, 1}, []float64{1, 2, 3})))
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{1})))
}

func TestDescribe(t *testing.T) {
	d := Describe([]float64{1, 2, 3, 4, math.NaN()})
	assert.Equal(t, 4, d.Count)
	assert.InDelta(t, 2.5, d.Mean, 1e-12)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 4.0, d.Max)
	assert.InDelta(t, 2.5, d.Q50, 1e-12)

	empty := Describe(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(empty.Min))
}

func TestBinCount(t *testing.T) {
	assert.Equal(t, DefaultBins, BinCount(nil))
	assert.Equal(t, DefaultBins, BinCount([]float64{42}))
	// constant sample: IQR 0 -> Sturges ceil(log2(8)+1) = 4
	assert.Equal(t, 4, BinCount([]float64{5, 5, 5, 5, 5, 5, 5, 5}))
	// 1..8: IQR 3.5, h = 7/2 = 3.5, range 7 -> 2
	assert.Equal(t, 2, BinCount([]float64{1, 2, 3, 4, 5, 6, 7, 8}))

	samples := [][]float64{
		{0, 0, 0, 1},
		{1, 1000000},
		{-3, -2, -1, 0, 1, 2, 3},
		{1.5, 1.5, 2.5},
	}
	for _, s := range samples {
		assert.GreaterOrEqual(t, BinCount(s), 1, "sample %v", s)
	}
}

func TestHistogram(t *testing.T) {
	edges, counts := Histogram([]float64{1, 2, 2, 3, 4}, 3)
	require.Len(t, edges, 4)
	require.Len(t, counts, 3)
	assert.Equal(t, 1.0, edges[0])
	assert.Equal(t, 4.0, edges[3])
	assert.Equal(t, []int{1, 2, 2}, counts)

	edges, counts = Histogram([]float64{7, 7}, 2)
	assert.Equal(t, []float64{6.5, 7, 7.5}, edges)
	assert.Equal(t, 2, counts[0]+counts[1])

	edges, counts = Histogram(nil, 5)
	assert.Nil(t, edges)
	assert.Nil(t, counts)
}
