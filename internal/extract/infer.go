package extract

import (
	"math"
	"strings"
	"time"

	"github.com/KaramelBytes/csvask-cli/internal/stats"
)

// Aggregation is the reduction applied to each group.
type Aggregation string

const (
	AggMean   Aggregation = "mean"
	AggSum    Aggregation = "sum"
	AggCount  Aggregation = "count"
	AggMax    Aggregation = "max"
	AggMin    Aggregation = "min"
	AggMedian Aggregation = "median"
	AggStd    Aggregation = "std"
)

// Aggregations lists every method in tie-break order.
var Aggregations = []Aggregation{AggMean, AggSum, AggCount, AggMax, AggMin, AggMedian, AggStd}

var aggregationKeywords = map[Aggregation][]string{
	AggMean:   {"average", "mean", "avg", "typical", "expected"},
	AggSum:    {"total", "sum", "overall", "combined", "aggregate"},
	AggCount:  {"count", "number of", "frequency", "occurrences", "instances"},
	AggMax:    {"maximum", "max", "highest", "peak", "greatest", "top"},
	AggMin:    {"minimum", "min", "lowest", "bottom", "least"},
	AggMedian: {"median", "middle", "mid", "50th percentile"},
	AggStd:    {"standard deviation", "std", "variation", "spread", "dispersion"},
}

// InferAggregation votes over keyword phrases: +1 for each phrase found as a
// substring, +1 more when it is also space-delimited. The earliest method in
// Aggregations wins ties; no votes means mean.
func InferAggregation(query string) Aggregation {
	lower := strings.ToLower(query)
	padded := " " + lower + " "
	best, bestScore := AggMean, 0
	for _, agg := range Aggregations {
		var score int
		for _, kw := range aggregationKeywords[agg] {
			if strings.Contains(lower, kw) {
				score++
				if strings.Contains(padded, " "+kw+" ") {
					score++
				}
			}
		}
		if score > bestScore {
			best, bestScore = agg, score
		}
	}
	return best
}

// Title is the capitalized method name used in axis labels.
func (a Aggregation) Title() string {
	if a == "" {
		return ""
	}
	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// Apply reduces vals, ignoring NaN. Empty input yields NaN except for count.
func (a Aggregation) Apply(vals []float64) float64 {
	present := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if a == AggCount {
		return float64(len(present))
	}
	if len(present) == 0 {
		return math.NaN()
	}
	var acc stats.Accumulator
	for _, v := range present {
		acc.Add(v)
	}
	switch a {
	case AggSum:
		return acc.Sum()
	case AggMax:
		return acc.Max
	case AggMin:
		return acc.Min
	case AggMedian:
		return stats.Median(present)
	case AggStd:
		return acc.Std()
	}
	return acc.Mean()
}

// Granularity is the bucket size of a time series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// InferGranularity checks month words before year words; daily otherwise.
func InferGranularity(query string) Granularity {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "monthly") || strings.Contains(lower, "month"):
		return Monthly
	case strings.Contains(lower, "yearly") || strings.Contains(lower, "annual") || strings.Contains(lower, "year"):
		return Yearly
	}
	return Daily
}

// Bucket truncates t to the start of its UTC period.
func (g Granularity) Bucket(t time.Time) time.Time {
	t = t.UTC()
	switch g {
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Layout is a time format for bucket labels.
func (g Granularity) Layout() string {
	switch g {
	case Monthly:
		return "2006-01"
	case Yearly:
		return "2006"
	}
	return "2006-01-02"
}

// Title is the capitalized granularity used in chart titles.
func (g Granularity) Title() string {
	switch g {
	case Monthly:
		return "Monthly"
	case Yearly:
		return "Yearly"
	}
	return "Daily"
}

// WantsRecordCounts reports whether a pie question asks for record shares
// rather than the values of a numeric column.
func WantsRecordCounts(query string) bool {
	lower := strings.ToLower(query)
	return strings.Contains(lower, "record") || strings.Contains(lower, "percentage")
}

// BinaryLabels maps 0/1 to display labels: Male/Female when the column name
// hints at sex or gender, No/Yes otherwise.
func BinaryLabels(column string) (zero, one string) {
	lower := strings.ToLower(column)
	if strings.Contains(lower, "sex") || strings.Contains(lower, "gender") {
		return "Male", "Female"
	}
	return "No", "Yes"
}
