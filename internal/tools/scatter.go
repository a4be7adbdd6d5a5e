package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
	"github.com/KaramelBytes/csvask-cli/internal/stats"
)

func runScatter(_ *Runner, req Request, q extract.Query, res *Result) error {
	d := req.Dataset
	res.Title = "Scatter Plot"
	numeric := d.OfKind(dataset.KindNumeric)
	if len(numeric) < 2 {
		res.block(LevelWarning, "You need at least two numeric columns to generate a scatter plot.")
		return nil
	}

	var auto extract.Pair
	var found bool
	if _, manual := req.Selections[RoleX]; !manual {
		auto, found = extract.NumericPair(q, d)
		if found {
			res.notify(LevelSuccess, fmt.Sprintf("Identified columns from query: `%s` vs `%s`", auto.X.Name, auto.Y.Name))
		} else if q.Raw != "" {
			res.notify(LevelWarning, fmt.Sprintf("Could not identify both columns from query: '%s'", q.Raw))
			res.notify(LevelInfo, "Available numeric columns: "+strings.Join(names(numeric), ", "))
		}
	}
	x, okX, err := resolve(req, res, RoleX, dataset.KindNumeric, "Select X-axis",
		func() (*dataset.Column, bool) { return auto.X, found })
	if err != nil {
		return err
	}
	y, okY, err := resolve(req, res, RoleY, dataset.KindNumeric, "Select Y-axis",
		func() (*dataset.Column, bool) {
			if found && (x == nil || auto.Y.Name != x.Name) {
				return auto.Y, true
			}
			return nil, false
		})
	if err != nil {
		return err
	}
	if okX && okY && x.Name == y.Name {
		return fmt.Errorf("%w: x and y are both %q", ErrWrongKind, x.Name)
	}
	if !okX || !okY {
		return nil
	}

	var xs, ys []float64
	for i := 0; i < d.NumRows(); i++ {
		a, b := x.Float(i), y.Float(i)
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		xs = append(xs, a)
		ys = append(ys, b)
	}
	res.Chart = &Chart{
		Kind:   ChartScatter,
		Title:  fmt.Sprintf("%s vs %s", y.Name, x.Name),
		XLabel: x.Name,
		YLabel: y.Name,
		X:      xs,
		Y:      ys,
	}
	res.stat("Points", float64(len(xs)))
	res.stat("Pearson r", stats.Pearson(xs, ys))
	return nil
}
