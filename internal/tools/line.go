package tools

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
)

// runLine buckets a numeric column by a time column and plots the mean of
// each populated bucket. Rows whose time does not parse or whose value is
// missing are dropped.
func runLine(r *Runner, req Request, q extract.Query, res *Result) error {
	d := req.Dataset
	res.Title = "Trend Over Time"
	if len(d.OfKind(dataset.KindNumeric)) == 0 {
		res.block(LevelError, "No numeric columns found in the dataset.")
		return nil
	}
	y, okY, err := resolve(req, res, RoleY, dataset.KindNumeric, "Select a numeric column",
		func() (*dataset.Column, bool) { return extract.Mentioned.Best(q, d) })
	if err != nil {
		return err
	}
	if !okY {
		res.notify(LevelWarning, "Couldn't automatically detect a numeric column to plot.")
	}
	tc, okT, err := resolve(req, res, RoleTime, "", "Select a time column",
		func() (*dataset.Column, bool) { return extract.Time(d) })
	if err != nil {
		return err
	}
	if !okT {
		res.notify(LevelWarning, "Couldn't automatically detect a date/time column.")
	}
	if !okY || !okT {
		return nil
	}
	res.notify(LevelSuccess, fmt.Sprintf("Using `%s` as the time axis", tc.Name))

	if f, ok := extract.Subgroup(q, d, r.opts.SubgroupMaxUnique); ok {
		d = f.Apply(d)
		y, _ = d.Column(y.Name)
		tc, _ = d.Column(tc.Name)
		res.Resolved[RoleCategory] = f.Column
		res.notify(LevelSuccess, fmt.Sprintf("Filtered data for `%s` = `%s`", f.Column, f.Value))
	}

	gran := extract.InferGranularity(q.Raw)
	type bucket struct {
		sum float64
		n   int
	}
	buckets := map[time.Time]*bucket{}
	var dropped int
	for i := 0; i < d.NumRows(); i++ {
		ts, ok := tc.Time(i)
		v := y.Float(i)
		if !ok || math.IsNaN(v) {
			dropped++
			continue
		}
		key := gran.Bucket(ts)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.sum += v
		b.n++
	}
	if dropped > 0 {
		res.notify(LevelInfo, fmt.Sprintf("Dropped %d rows with a missing value or unparseable time.", dropped))
	}
	if len(buckets) == 0 {
		res.block(LevelWarning, fmt.Sprintf("No rows have both a valid `%s` and a `%s` value.", tc.Name, y.Name))
		return nil
	}

	keys := make([]time.Time, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	means := make([]float64, len(keys))
	labels := make([]string, len(keys))
	for i, k := range keys {
		b := buckets[k]
		means[i] = b.sum / float64(b.n)
		labels[i] = k.Format(gran.Layout())
	}

	res.Chart = &Chart{
		Kind:   ChartLine,
		Title:  fmt.Sprintf("%s over time (%s)", y.Name, gran.Title()),
		XLabel: "Time",
		YLabel: y.Name,
		Labels: labels,
		Times:  keys,
		Values: toFloats(means),
	}
	sum := describe(means)
	res.stat("Periods", float64(len(keys)))
	res.stat("Average per period", float64(sum.Mean))
	res.stat("Minimum", float64(sum.Min))
	res.stat("Maximum", float64(sum.Max))
	if len(means) >= 2 {
		res.stat("Change first to last", means[len(means)-1]-means[0])
	}
	return nil
}
