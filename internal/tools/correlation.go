package tools

import (
	"math"
	"sort"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
	"github.com/KaramelBytes/csvask-cli/internal/stats"
)

// strongestPairs is how many off-diagonal pairs are reported.
const strongestPairs = 5

func runCorrelation(_ *Runner, req Request, _ extract.Query, res *Result) error {
	res.Title = "Correlation Matrix"
	cols := req.Dataset.OfKind(dataset.KindNumeric)
	switch {
	case len(cols) == 0:
		return blockNil(res, LevelWarning, "No numeric columns found in the dataset.")
	case len(cols) < 2:
		return blockNil(res, LevelWarning, "Need at least 2 numeric columns to create a correlation matrix.")
	}

	n := len(cols)
	series := make([][]float64, n)
	for i, c := range cols {
		series[i] = c.Floats()
	}
	matrix := make([][]Float, n)
	var pairs []CorrPair
	for i := range matrix {
		matrix[i] = make([]Float, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := stats.Pearson(series[i], series[j])
			matrix[i][j], matrix[j][i] = Float(r), Float(r)
			if !math.IsNaN(r) {
				pairs = append(pairs, CorrPair{A: cols[i].Name, B: cols[j].Name, R: r})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return math.Abs(pairs[a].R) > math.Abs(pairs[b].R) })
	if len(pairs) > strongestPairs {
		pairs = pairs[:strongestPairs]
	}

	res.Chart = &Chart{
		Kind:    ChartHeatmap,
		Title:   "Correlation Matrix of Numeric Variables",
		Columns: names(cols),
		Matrix:  matrix,
	}
	res.Pairs = pairs
	res.Lines = []string{
		"Values close to 1 indicate strong positive correlation",
		"Values close to -1 indicate strong negative correlation",
		"Values close to 0 indicate little to no correlation",
	}
	return nil
}

func blockNil(res *Result, level Level, msg string) error {
	res.block(level, msg)
	return nil
}
