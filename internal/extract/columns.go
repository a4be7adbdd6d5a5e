package extract

import (
	"strings"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/textnorm"
)

// Time returns the first column whose name contains "date", else the first
// column inferred as datetime. It does not look at the query.
func Time(d *dataset.Dataset) (*dataset.Column, bool) {
	for _, c := range d.Columns() {
		if strings.Contains(strings.ToLower(c.Name), "date") {
			return c, true
		}
	}
	dt := d.OfKind(dataset.KindDatetime)
	if len(dt) == 0 {
		return nil, false
	}
	return dt[0], true
}

// Filter is an equality predicate on one column.
type Filter struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Apply returns the rows of d matching f.
func (f Filter) Apply(d *dataset.Dataset) *dataset.Dataset {
	return d.Filter(d.Equals(f.Column, f.Value))
}

// ValueFilter scans categorical columns in order and returns the first
// column/value pair whose normalized value occurs in the normalized query.
func ValueFilter(q Query, d *dataset.Dataset) (Filter, bool) {
	return valueFilter(q, d, 0)
}

// Subgroup is ValueFilter restricted to categorical columns with at most
// maxUnique distinct values. maxUnique <= 0 means no limit.
func Subgroup(q Query, d *dataset.Dataset, maxUnique int) (Filter, bool) {
	return valueFilter(q, d, maxUnique)
}

func valueFilter(q Query, d *dataset.Dataset, maxUnique int) (Filter, bool) {
	for _, c := range d.OfKind(dataset.KindCategorical) {
		vals := c.Unique()
		if maxUnique > 0 && len(vals) > maxUnique {
			continue
		}
		for _, v := range vals {
			if q.mentions(v) {
				return Filter{Column: c.Name, Value: v}, true
			}
		}
	}
	return Filter{}, false
}

// CategoricalMention returns the first categorical column named in the query.
func CategoricalMention(q Query, d *dataset.Dataset) (*dataset.Column, bool) {
	for _, c := range d.OfKind(dataset.KindCategorical) {
		if q.mentions(c.Name) {
			return c, true
		}
	}
	return nil, false
}

// Pair is the two axes of a relationship plot.
type Pair struct {
	X, Y *dataset.Column
}

// NumericPair resolves two numeric columns. When exactly two column names
// occur in the normalized query they are used in dataset order; otherwise
// the first two columns equal to some whole query token are used.
func NumericPair(q Query, d *dataset.Dataset) (Pair, bool) {
	cols := d.OfKind(dataset.KindNumeric)
	var hits []*dataset.Column
	for _, c := range cols {
		if q.mentions(c.Name) {
			hits = append(hits, c)
		}
	}
	if len(hits) == 2 {
		return Pair{X: hits[0], Y: hits[1]}, true
	}
	hits = hits[:0]
	for _, c := range cols {
		if n := textnorm.Normalize(c.Name); n != "" && q.hasToken(n) {
			hits = append(hits, c)
			if len(hits) == 2 {
				return Pair{X: hits[0], Y: hits[1]}, true
			}
		}
	}
	return Pair{}, false
}
