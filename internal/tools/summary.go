package tools

import (
	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
)

// runSummary reports shape, column kinds, describe rows for numeric columns
// and missing counts. It never blocks.
func runSummary(_ *Runner, req Request, _ extract.Query, res *Result) error {
	d := req.Dataset
	res.Title = "Dataset Summary"
	ov := &Overview{Rows: d.NumRows(), Cols: d.NumCols()}
	var missing int
	for _, c := range d.Columns() {
		info := ColumnInfo{Name: c.Name, Kind: c.Kind, Unit: c.Unit, Missing: c.MissingCount()}
		if c.Kind == dataset.KindNumeric {
			info.Describe = describe(c.Present())
		}
		missing += info.Missing
		ov.Columns = append(ov.Columns, info)
	}
	res.Overview = ov
	res.stat("Rows", float64(ov.Rows))
	res.stat("Columns", float64(ov.Cols))
	res.stat("Missing cells", float64(missing))
	if ov.Rows == 0 {
		res.notify(LevelWarning, "The dataset has no rows.")
	}
	return nil
}
