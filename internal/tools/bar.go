package tools

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
)

// runBar groups a numeric column by a categorical one, aggregates each
// group and sorts the groups by value, largest first.
func runBar(_ *Runner, req Request, q extract.Query, res *Result) error {
	d := req.Dataset
	res.Title = "Bar Chart"
	if len(d.OfKind(dataset.KindNumeric)) == 0 {
		res.block(LevelError, "No numeric columns found in the dataset.")
		return nil
	}
	if len(d.OfKind(dataset.KindCategorical)) == 0 {
		res.block(LevelError, "No categorical columns found for grouping.")
		return nil
	}
	value, okV, err := resolve(req, res, RoleValue, dataset.KindNumeric, "Select a numeric column to plot:",
		func() (*dataset.Column, bool) { return extract.Numeric.Best(q, d) })
	if err != nil {
		return err
	}
	group, okG, err := resolve(req, res, RoleGroup, dataset.KindCategorical, "Select a column to group by:",
		func() (*dataset.Column, bool) { return extract.Categorical.Best(q, d) })
	if err != nil {
		return err
	}
	if !okV || !okG {
		return nil
	}

	agg := extract.InferAggregation(q.Raw)
	labels, vals := groupAggregate(group, value, agg)

	res.Chart = &Chart{
		Kind:   ChartBar,
		Title:  fmt.Sprintf("%s by %s (%s)", value.Name, group.Name, agg),
		XLabel: group.Name,
		YLabel: fmt.Sprintf("%s of %s", agg.Title(), value.Name),
		Labels: labels,
		Values: toFloats(vals),
	}
	var present []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	summary := describe(present)
	res.stat("Average "+value.Name, float64(summary.Mean))
	res.stat("Minimum", float64(summary.Min))
	res.stat("Maximum", float64(summary.Max))
	res.stat("Number of groups", float64(len(labels)))
	return nil
}

// groupAggregate reduces value per distinct non-missing group label. Output
// is sorted by aggregated value descending with NaN last; equal values keep
// first-seen group order.
func groupAggregate(group, value *dataset.Column, agg extract.Aggregation) ([]string, []float64) {
	index := map[string]int{}
	var labels []string
	var members [][]float64
	for i := 0; i < group.Len(); i++ {
		if group.IsMissing(i) {
			continue
		}
		key := group.Raw(i)
		j, ok := index[key]
		if !ok {
			j = len(labels)
			index[key] = j
			labels = append(labels, key)
			members = append(members, nil)
		}
		members[j] = append(members[j], value.Float(i))
	}
	vals := make([]float64, len(labels))
	for j := range labels {
		vals[j] = agg.Apply(members[j])
	}
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := vals[order[a]], vals[order[b]]
		if math.IsNaN(vb) {
			return !math.IsNaN(va)
		}
		if math.IsNaN(va) {
			return false
		}
		return va > vb
	})
	outL := make([]string, len(order))
	outV := make([]float64, len(order))
	for k, j := range order {
		outL[k], outV[k] = labels[j], vals[j]
	}
	return outL, outV
}
