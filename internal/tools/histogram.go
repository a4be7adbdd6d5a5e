package tools

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
	"github.com/KaramelBytes/csvask-cli/internal/stats"
)

// shapeThreshold separates "about normal" from skewed or peaked shapes.
const shapeThreshold = 0.5

const outlierZ = 3.5

func runHistogram(r *Runner, req Request, q extract.Query, res *Result) error {
	d := req.Dataset
	res.Title = "Histogram Analysis"
	if len(d.OfKind(dataset.KindNumeric)) == 0 {
		res.block(LevelError, "No numeric columns found in the dataset.")
		return nil
	}
	col, ok, err := resolve(req, res, RoleValue, dataset.KindNumeric, "Select a numeric column to analyze:",
		func() (*dataset.Column, bool) { return extract.Histogram.Best(q, d) })
	if err != nil || !ok {
		return err
	}
	data := col.Present()
	if len(data) == 0 {
		res.block(LevelError, fmt.Sprintf("No valid data points found in column '%s'.", col.Name))
		return nil
	}

	bins := stats.BinCount(data)
	if limit := r.opts.HistogramMaxBins; bins > limit {
		res.notify(LevelWarning, fmt.Sprintf("The suggested bin count (%d) is too large to draw. Showing %d bins.", bins, limit))
		bins = limit
	}
	edges, counts := stats.Histogram(data, bins)
	values := make([]float64, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
		labels[i] = fmt.Sprintf("%.4g-%.4g", edges[i], edges[i+1])
	}
	res.Chart = &Chart{
		Kind:     ChartHistogram,
		Title:    "Distribution of " + col.Name,
		XLabel:   col.Name,
		YLabel:   "Frequency",
		Labels:   labels,
		Values:   toFloats(values),
		BinEdges: edges,
	}

	desc := describe(data)
	skew := stats.Skew(data)
	kurt := stats.Kurtosis(data)
	res.stat("Mean", float64(desc.Mean))
	res.stat("Median", float64(desc.Q50))
	res.stat("Standard Deviation", float64(desc.Std))
	res.stat("Skewness", skew)
	res.stat("Kurtosis", kurt)
	res.stat("Minimum", float64(desc.Min))
	res.stat("Maximum", float64(desc.Max))
	res.stat("Bins", float64(bins))
	res.Lines = append(res.Lines, shapeLines(skew, kurt)...)
	if n := stats.RobustOutliers(data, outlierZ); n > 0 {
		res.Lines = append(res.Lines, fmt.Sprintf("%d value(s) lie far from the median (robust z > %.1f).", n, outlierZ))
	}
	return nil
}

// shapeLines interprets skewness and excess kurtosis. NaN (too few values)
// yields no line for that measure.
func shapeLines(skew, kurt float64) []string {
	var out []string
	switch {
	case math.IsNaN(skew):
	case math.Abs(skew) < shapeThreshold:
		out = append(out, "The distribution is approximately symmetric.")
	case skew > 0:
		out = append(out, "The distribution is right-skewed (longer tail on the right).")
	default:
		out = append(out, "The distribution is left-skewed (longer tail on the left).")
	}
	switch {
	case math.IsNaN(kurt):
	case math.Abs(kurt) < shapeThreshold:
		out = append(out, "The distribution has a normal-like peak.")
	case kurt > 0:
		out = append(out, "The distribution has a sharper peak than normal (leptokurtic).")
	default:
		out = append(out, "The distribution has a flatter peak than normal (platykurtic).")
	}
	return out
}
