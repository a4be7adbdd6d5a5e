// Package dataset holds the in-memory table a session explores: named
// columns in file order, each with an inferred kind. A Dataset is read-only
// once built; filters return new datasets.
package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind is the inferred semantic type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDatetime    Kind = "datetime"
)

// Column is one named column. Raw cell text is kept for every kind; parsed
// numbers and times are cached for numeric and datetime columns.
type Column struct {
	Name string
	Kind Kind
	// Unit is a best-effort unit hint pulled from the header, e.g. "mg/L".
	Unit string

	raw    []string
	miss   []bool
	nums   []float64
	times  []time.Time
	binary bool
}

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.raw) }

// Raw returns the trimmed cell text at row i.
func (c *Column) Raw(i int) string { return c.raw[i] }

// IsMissing reports whether row i holds a missing marker.
func (c *Column) IsMissing(i int) bool { return c.miss[i] }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	var n int
	for _, m := range c.miss {
		if m {
			n++
		}
	}
	return n
}

// Float returns the parsed value at row i, or NaN when the column is not
// numeric or the cell is missing.
func (c *Column) Float(i int) float64 {
	if c.Kind != KindNumeric {
		return math.NaN()
	}
	return c.nums[i]
}

// Floats returns a copy of the numeric values with NaN for missing cells.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.raw))
	for i := range out {
		out[i] = c.Float(i)
	}
	return out
}

// Present returns the non-missing numeric values in row order.
func (c *Column) Present() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for _, v := range c.nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// IsBinary reports whether a numeric column only holds 0 and 1.
func (c *Column) IsBinary() bool { return c.binary }

// Unique returns the distinct non-missing raw values in first-seen order.
func (c *Column) Unique() []string {
	seen := make(map[string]struct{})
	var out []string
	for i, v := range c.raw {
		if c.miss[i] {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Time coerces row i to a timestamp. Datetime columns use the cached parse;
// any other kind is parsed on demand. ok is false for missing or
// unparseable cells.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.miss[i] {
		return time.Time{}, false
	}
	if c.Kind == KindDatetime {
		return c.times[i], true
	}
	return parseTime(c.raw[i])
}

// Dataset is an ordered set of equally long columns.
type Dataset struct {
	Name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a Dataset from a header and string rows, inferring a kind for
// every column. Short rows are padded with missing cells.
func New(name string, header []string, rows [][]string, opt Options) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset %q has no columns", name)
	}
	names := dedupeHeader(header)
	d := &Dataset{Name: name, index: make(map[string]int, len(names)), rows: len(rows)}
	for j, n := range names {
		_, unit := splitUnits(n)
		c := &Column{
			Name: n,
			Unit: unit,
			raw:  make([]string, len(rows)),
			miss: make([]bool, len(rows)),
		}
		for i, rec := range rows {
			v := ""
			if j < len(rec) {
				v = strings.TrimSpace(rec[j])
			}
			c.raw[i] = v
			c.miss[i] = isMissingToken(v)
		}
		inferKind(c, opt)
		d.index[n] = j
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// NumRows returns the row count.
func (d *Dataset) NumRows() int { return d.rows }

// NumCols returns the column count.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the columns in file order.
func (d *Dataset) Columns() []*Column {
	out := make([]*Column, len(d.cols))
	copy(out, d.cols)
	return out
}

// Names returns column names in file order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by exact name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// OfKind returns the columns of kind k in file order.
func (d *Dataset) OfKind(k Kind) []*Column {
	var out []*Column
	for _, c := range d.cols {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Filter returns a new Dataset holding the rows for which keep is true.
// Column kinds are carried over rather than re-inferred.
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	var idx []int
	for i := 0; i < d.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	out := &Dataset{Name: d.Name, index: make(map[string]int, len(d.cols)), rows: len(idx)}
	for j, c := range d.cols {
		nc := &Column{
			Name:   c.Name,
			Kind:   c.Kind,
			Unit:   c.Unit,
			raw:    make([]string, len(idx)),
			miss:   make([]bool, len(idx)),
			binary: c.binary,
		}
		if c.nums != nil {
			nc.nums = make([]float64, len(idx))
		}
		if c.times != nil {
			nc.times = make([]time.Time, len(idx))
		}
		for k, i := range idx {
			nc.raw[k] = c.raw[i]
			nc.miss[k] = c.miss[i]
			if nc.nums != nil {
				nc.nums[k] = c.nums[i]
			}
			if nc.times != nil {
				nc.times[k] = c.times[i]
			}
		}
		out.index[c.Name] = j
		out.cols = append(out.cols, nc)
	}
	return out
}

// Equals returns a predicate matching rows whose raw value in col is value.
func (d *Dataset) Equals(col, value string) func(int) bool {
	c, ok := d.Column(col)
	if !ok {
		return func(int) bool { return false }
	}
	return func(i int) bool { return !c.miss[i] && c.raw[i] == value }
}

// inferKind follows read_csv semantics: numeric when every present cell
// parses as a number, datetime when every present cell parses as a
// timestamp, categorical otherwise. An all-missing column is numeric.
func inferKind(c *Column, opt Options) {
	nums := make([]float64, len(c.raw))
	numeric := true
	for i, v := range c.raw {
		if c.miss[i] {
			nums[i] = math.NaN()
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			numeric = false
			break
		}
		nums[i] = x
	}
	if numeric {
		c.Kind = KindNumeric
		c.nums = nums
		c.binary = isBinary(nums)
		if c.Unit == "" && hasPercent(c) {
			c.Unit = "%"
		}
		return
	}

	times := make([]time.Time, len(c.raw))
	var present int
	for i, v := range c.raw {
		if c.miss[i] {
			continue
		}
		t, ok := parseTime(v)
		if !ok {
			c.Kind = KindCategorical
			return
		}
		times[i] = t
		present++
	}
	if present == 0 {
		c.Kind = KindCategorical
		return
	}
	c.Kind = KindDatetime
	c.times = times
}

func isBinary(nums []float64) bool {
	var seen bool
	for _, v := range nums {
		if math.IsNaN(v) {
			continue
		}
		if v != 0 && v != 1 {
			return false
		}
		seen = true
	}
	return seen
}

func hasPercent(c *Column) bool {
	for i, v := range c.raw {
		if !c.miss[i] && strings.Contains(v, "%") {
			return true
		}
	}
	return false
}

// dedupeHeader fills blank names and suffixes repeats ("a", "a.1", ...).
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		base := n
		k := suffix[base]
		for used[n] {
			k++
			n = fmt.Sprintf("%s.%d", base, k)
		}
		suffix[base] = k
		used[n] = true
		out[i] = n
	}
	return out
}
