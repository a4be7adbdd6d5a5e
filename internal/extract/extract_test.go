package extract

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
)

func load(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	d, err := dataset.ReadCSV(strings.NewReader(csv), "test.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	return d
}

const salesCSV = `date,region,sales
2024-01-05,North,10
2024-01-20,South,20
2024-02-03,North,30
`

func TestMonthlySalesTrendResolvesLineInputs(t *testing.T) {
	d := load(t, salesCSV)
	q := Parse("monthly sales trend")

	tc, ok := Time(d)
	require.True(t, ok)
	assert.Equal(t, "date", tc.Name)

	y, ok := Mentioned.Best(q, d)
	require.True(t, ok)
	assert.Equal(t, "sales", y.Name)

	y, ok = Numeric.Best(q, d)
	require.True(t, ok)
	assert.Equal(t, "sales", y.Name)

	assert.Equal(t, Monthly, InferGranularity(q.Raw))
}

func TestAverageRevenueByCategory(t *testing.T) {
	d := load(t, "category,revenue\nA,1\nB,2\n")
	q := Parse("average revenue by category")

	assert.Equal(t, AggMean, InferAggregation(q.Raw))

	g, ok := Categorical.Best(q, d)
	require.True(t, ok)
	assert.Equal(t, "category", g.Name)

	v, ok := Numeric.Best(q, d)
	require.True(t, ok)
	assert.Equal(t, "revenue", v.Name)
}

func TestNumericNeverReturnsCategorical(t *testing.T) {
	d := load(t, "name,score\nann,1\nbob,2\n")
	for _, q := range []string{"name", "show name", "name score", "", "zzz"} {
		c, ok := Numeric.Best(Parse(q), d)
		if ok {
			assert.Equal(t, dataset.KindNumeric, c.Kind, q)
		}
		c, ok = Histogram.Best(Parse(q), d)
		if ok {
			assert.Equal(t, dataset.KindNumeric, c.Kind, q)
		}
	}
}

func TestNotFoundWhenNothingScores(t *testing.T) {
	d := load(t, "alpha,beta\n1,2\n")
	_, ok := Numeric.Best(Parse("tell me something"), d)
	assert.False(t, ok)

	onlyText := load(t, "city\nOslo\n")
	_, ok = Numeric.Best(Parse("city"), onlyText)
	assert.False(t, ok, "empty candidate set")
}

func TestTiesKeepFirstColumn(t *testing.T) {
	d := load(t, "price_a,price_b\n1,2\n")
	c, ok := Numeric.Best(Parse("price"), d)
	require.True(t, ok)
	assert.Equal(t, "price_a", c.Name)

	ranked := Numeric.Rank(Parse("price"), d)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
}

func TestNumericTokenScoring(t *testing.T) {
	d := load(t, "temp,temperature\n1,2\n")
	q := Parse("temp readings")
	// temp: exact +3, "temp" in "temp" +2. temperature: "temp" in name +2.
	assert.Equal(t, 5, Numeric.Score(q, mustCol(t, d, "temp")))
	assert.Equal(t, 2, Numeric.Score(q, mustCol(t, d, "temperature")))
}

func TestCategoricalGroupingPhraseAndIndicators(t *testing.T) {
	d := load(t, "customer_name,product_type,region,amount\na,x,n,1\nb,y,s,2\n")

	c, ok := Categorical.Best(Parse("total amount grouped by region"), d)
	require.True(t, ok)
	assert.Equal(t, "region", c.Name)

	// Indicator words alone make a column win when nothing is mentioned.
	c, ok = Categorical.Best(Parse("show amount"), d)
	require.True(t, ok)
	assert.Equal(t, "customer_name", c.Name)
	assert.Equal(t, 2, Categorical.Score(Parse("show amount"), mustCol(t, d, "product_type")))
}

func TestHistogramIgnoresChartWords(t *testing.T) {
	d := load(t, "spread,price\n1,2\n")
	c, ok := Histogram.Best(Parse("distribution of price"), d)
	require.True(t, ok)
	assert.Equal(t, "price", c.Name)

	// "spread" is a chart word: only the normalized mention counts.
	assert.Equal(t, 3, Histogram.Score(Parse("spread of values"), mustCol(t, d, "spread")))
}

func TestSubscriptColumnNames(t *testing.T) {
	d := load(t, "PM₂.₅,NO₂\n1,2\n")
	c, ok := Mentioned.Best(Parse("pm25 levels over time"), d)
	require.True(t, ok)
	assert.Equal(t, "PM₂.₅", c.Name)
}

func TestTimePrefersDateName(t *testing.T) {
	d := load(t, "when,update_date,v\n2024-01-01,x,1\n")
	c, ok := Time(d)
	require.True(t, ok)
	assert.Equal(t, "update_date", c.Name)

	d = load(t, "when,v\n2024-01-01,1\n")
	c, ok = Time(d)
	require.True(t, ok)
	assert.Equal(t, "when", c.Name)

	_, ok = Time(load(t, "a,b\nx,1\n"))
	assert.False(t, ok)
}

func TestValueFilterAndSubgroup(t *testing.T) {
	d := load(t, "region,product,sales\nNorth,Widget,1\nSouth,Gadget,2\nNorth,Gadget,3\n")

	f, ok := ValueFilter(Parse("share of sales in the north"), d)
	require.True(t, ok)
	assert.Equal(t, Filter{Column: "region", Value: "North"}, f)
	assert.Equal(t, 2, f.Apply(d).NumRows())

	f, ok = ValueFilter(Parse("gadget sales"), d)
	require.True(t, ok)
	assert.Equal(t, Filter{Column: "product", Value: "Gadget"}, f)

	_, ok = ValueFilter(Parse("sales"), d)
	assert.False(t, ok)

	_, ok = Subgroup(Parse("north sales trend"), d, 1)
	assert.False(t, ok, "region has two values, above the limit")
	_, ok = Subgroup(Parse("north sales trend"), d, 20)
	assert.True(t, ok)
}

func TestNumericPair(t *testing.T) {
	d := load(t, "height,weight,age\n1,2,3\n")

	p, ok := NumericPair(Parse("relationship between weight and height"), d)
	require.True(t, ok)
	assert.Equal(t, "height", p.X.Name)
	assert.Equal(t, "weight", p.Y.Name)

	p, ok = NumericPair(Parse("age vs weight vs height"), d)
	require.True(t, ok)
	assert.Equal(t, "height", p.X.Name)
	assert.Equal(t, "weight", p.Y.Name)

	_, ok = NumericPair(Parse("age trend"), d)
	assert.False(t, ok)
}

func TestInferAggregation(t *testing.T) {
	cases := map[string]Aggregation{
		"show me the data":                 AggMean,
		"":                                 AggMean,
		"total sales by region":            AggSum,
		"number of orders per store":       AggCount,
		"highest price per brand":          AggMax,
		"lowest score":                     AggMin,
		"median income":                    AggMedian,
		"standard deviation of wait times": AggStd,
		"average total":                    AggMean,
		"AVERAGE revenue":                  AggMean,
	}
	for q, want := range cases {
		assert.Equal(t, want, InferAggregation(q), q)
	}
}

func TestInferGranularity(t *testing.T) {
	assert.Equal(t, Monthly, InferGranularity("monthly sales"))
	assert.Equal(t, Monthly, InferGranularity("sales by month and year"))
	assert.Equal(t, Yearly, InferGranularity("annual revenue"))
	assert.Equal(t, Yearly, InferGranularity("Revenue per YEAR"))
	assert.Equal(t, Daily, InferGranularity("sales trend"))
}

func TestGranularityBucket(t *testing.T) {
	ts := time.Date(2024, 3, 17, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), Daily.Bucket(ts))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Monthly.Bucket(ts))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Yearly.Bucket(ts))
	assert.Equal(t, "2024-03", Monthly.Bucket(ts).Format(Monthly.Layout()))

	plus5 := time.Date(2024, 3, 17, 12, 0, 0, 0, time.FixedZone("", 5*3600))
	assert.True(t, Monthly.Bucket(plus5) == Monthly.Bucket(ts))
	assert.True(t, Daily.Bucket(plus5) == Daily.Bucket(ts))
	// 02:00 at +05:00 is still the previous day in UTC.
	early := time.Date(2024, 3, 1, 2, 0, 0, 0, time.FixedZone("", 5*3600))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Monthly.Bucket(early))
}

func TestAggregationApply(t *testing.T) {
	vals := []float64{1, 2, math.NaN(), 6}
	assert.Equal(t, 3.0, AggMean.Apply(vals))
	assert.Equal(t, 9.0, AggSum.Apply(vals))
	assert.Equal(t, 3.0, AggCount.Apply(vals))
	assert.Equal(t, 6.0, AggMax.Apply(vals))
	assert.Equal(t, 1.0, AggMin.Apply(vals))
	assert.Equal(t, 2.0, AggMedian.Apply(vals))
	assert.InDelta(t, 2.6458, AggStd.Apply(vals), 1e-4)
	assert.True(t, math.IsNaN(AggMean.Apply(nil)))
	assert.Equal(t, 0.0, AggCount.Apply(nil))
	assert.Equal(t, "Mean", AggMean.Title())
}

func TestPieParameters(t *testing.T) {
	assert.True(t, WantsRecordCounts("percentage of records by region"))
	assert.False(t, WantsRecordCounts("pie of sales"))

	zero, one := BinaryLabels("Sex")
	assert.Equal(t, []string{"Male", "Female"}, []string{zero, one})
	zero, one = BinaryLabels("smoker")
	assert.Equal(t, []string{"No", "Yes"}, []string{zero, one})
}

func mustCol(t *testing.T, d *dataset.Dataset, name string) *dataset.Column {
	t.Helper()
	c, ok := d.Column(name)
	require.True(t, ok, name)
	return c
}
