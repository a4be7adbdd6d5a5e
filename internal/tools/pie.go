package tools

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
)

// runPie counts values. With "record"/"percentage" in the question it counts
// rows per category; otherwise it counts the values of a numeric column,
// naming 0/1 columns with binary labels.
func runPie(r *Runner, req Request, q extract.Query, res *Result) error {
	d := req.Dataset
	res.Title = "Pie Chart"

	filter, filtered := extract.ValueFilter(q, d)
	if filtered {
		d = filter.Apply(d)
		res.notify(LevelSuccess, fmt.Sprintf("Filtered data for `%s` = `%s`", filter.Column, filter.Value))
	}
	sub := req
	sub.Dataset = d

	var (
		labels []string
		counts []int
		title  string
	)
	if extract.WantsRecordCounts(q.Raw) {
		if len(d.OfKind(dataset.KindCategorical)) == 0 {
			return blockNil(res, LevelError, "No categorical columns found to count records.")
		}
		res.notify(LevelInfo, "Query indicates percentage of records. Showing distribution by category.")
		col, ok, err := resolve(sub, res, RoleCategory, dataset.KindCategorical, "Select a categorical column to count records",
			func() (*dataset.Column, bool) { return extract.CategoricalMention(q, d) })
		if err != nil || !ok {
			return err
		}
		labels, counts = valueCounts(col, func(i int) string { return col.Raw(i) })
		title = fmt.Sprintf("Distribution of records by `%s`", col.Name)
	} else {
		if len(d.OfKind(dataset.KindNumeric)) == 0 {
			return blockNil(res, LevelError, "No numeric columns found in the dataset.")
		}
		col, ok, err := resolve(sub, res, RoleValue, dataset.KindNumeric, "Select a numeric column to plot",
			func() (*dataset.Column, bool) { return extract.Mentioned.Best(q, d) })
		if !ok && err == nil {
			res.notify(LevelWarning, "Could not identify a numeric column to plot from the query.")
		}
		if err != nil || !ok {
			return err
		}
		label := formatValue
		if binaryValues(col) {
			zero, one := extract.BinaryLabels(col.Name)
			label = func(v float64) string {
				if v == 0 {
					return zero
				}
				return one
			}
		}
		labels, counts = valueCounts(col, func(i int) string { return label(col.Float(i)) })
		title = fmt.Sprintf("Pie chart of `%s`", col.Name)
		if filtered {
			title += fmt.Sprintf(" in `%s`", filter.Value)
		}
	}

	if len(labels) > r.opts.PieMaxSlices {
		res.notify(LevelWarning, fmt.Sprintf("Too many unique values to show in pie chart. Showing top %d by frequency.", r.opts.PieMaxSlices))
		labels, counts = labels[:r.opts.PieMaxSlices], counts[:r.opts.PieMaxSlices]
	}
	if len(labels) == 0 {
		return blockNil(res, LevelWarning, "No values to show after filtering.")
	}

	var total int
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
		total += c
	}
	res.Chart = &Chart{Kind: ChartPie, Title: title, Labels: labels, Values: toFloats(values)}
	for i, l := range labels {
		res.Lines = append(res.Lines, fmt.Sprintf("%s: %d (%.1f%%)", l, counts[i], 100*float64(counts[i])/float64(total)))
	}
	res.stat("Records", float64(total))
	return nil
}

// valueCounts counts non-missing rows per label, most frequent first, ties
// in first-seen order.
func valueCounts(col *dataset.Column, label func(i int) string) ([]string, []int) {
	index := map[string]int{}
	var labels []string
	var counts []int
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			continue
		}
		l := label(i)
		j, ok := index[l]
		if !ok {
			j = len(labels)
			index[l] = j
			labels = append(labels, l)
			counts = append(counts, 0)
		}
		counts[j]++
	}
	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })
	outL := make([]string, len(order))
	outC := make([]int, len(order))
	for k, j := range order {
		outL[k], outC[k] = labels[j], counts[j]
	}
	return outL, outC
}

// binaryValues reports whether every present value is 0 or 1.
func binaryValues(col *dataset.Column) bool {
	var seen bool
	for _, v := range col.Present() {
		if v != 0 && v != 1 {
			return false
		}
		seen = true
	}
	return seen
}

func formatValue(v float64) string {
	if math.Trunc(v) == v && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
