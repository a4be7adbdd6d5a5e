package render

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/router"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func fl(vs ...float64) []tools.Float {
	out := make([]tools.Float, len(vs))
	for i, v := range vs {
		out[i] = tools.Float(v)
	}
	return out
}

func TestPNGKinds(t *testing.T) {
	charts := map[string]*tools.Chart{
		"bar":           {Kind: tools.ChartBar, Title: "b", YLabel: "Mean of v", Labels: []string{"a", "b", "c"}, Values: fl(3, 1, math.NaN())},
		"bar flat":      {Kind: tools.ChartBar, Labels: []string{"a", "b"}, Values: fl(2, 2)},
		"bar negative":  {Kind: tools.ChartBar, Labels: []string{"a", "b"}, Values: fl(-2, -5)},
		"histogram":     {Kind: tools.ChartHistogram, Labels: []string{"0-1", "1-2"}, Values: fl(4, 2), BinEdges: []float64{0, 1, 2}},
		"line":          {Kind: tools.ChartLine, Labels: []string{"2024-01", "2024-02", "2024-03"}, Values: fl(1, 5, 2)},
		"line single":   {Kind: tools.ChartLine, Labels: []string{"2024-01"}, Values: fl(7)},
		"scatter":       {Kind: tools.ChartScatter, X: []float64{1, 2, 3}, Y: []float64{3, 1, 2}},
		"scatter const": {Kind: tools.ChartScatter, X: []float64{1, 1}, Y: []float64{2, 2}},
		"pie":           {Kind: tools.ChartPie, Labels: []string{"Yes", "No"}, Values: fl(2, 1)},
	}
	for name, c := range charts {
		t.Run(name, func(t *testing.T) {
			assert.True(t, HasImage(c))
			b, err := PNGBytes(c)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(b, pngMagic))
		})
	}
}

func TestPNGBarWidthIsBounded(t *testing.T) {
	groups := &tools.Chart{Kind: tools.ChartBar, Title: "v by id (mean)"}
	for i := 0; i < 50000; i++ {
		groups.Labels = append(groups.Labels, fmt.Sprintf("id-%05d", i))
		groups.Values = append(groups.Values, tools.Float(50000-i))
	}
	bins := &tools.Chart{Kind: tools.ChartHistogram, Title: "Distribution of v"}
	for i := 0; i < 1000; i++ {
		bins.Labels = append(bins.Labels, fmt.Sprintf("%d-%d", i, i+1))
		bins.Values = append(bins.Values, tools.Float(i%7))
	}

	for name, c := range map[string]*tools.Chart{"bar": groups, "histogram": bins} {
		b, err := PNGBytes(c)
		require.NoError(t, err, name)
		cfg, err := png.DecodeConfig(bytes.NewReader(b))
		require.NoError(t, err, name)
		assert.LessOrEqual(t, cfg.Width, maxWidth, name)
	}
}

func TestFiniteBarsKeepsLabelsAligned(t *testing.T) {
	values, labels := finiteBars(&tools.Chart{Labels: []string{"a", "b", "c"}, Values: fl(1, math.NaN(), 3)})
	assert.Equal(t, []float64{1, 3}, values)
	assert.Equal(t, []string{"a", "c"}, labels)
	assert.Equal(t, []string{"a", "", "c", "", "e"}, sparseLabels([]string{"a", "b", "c", "d", "e"}, 3))
}

func TestPNGRejects(t *testing.T) {
	heat := &tools.Chart{Kind: tools.ChartHeatmap}
	assert.False(t, HasImage(heat))
	assert.False(t, HasImage(nil))
	_, err := PNGBytes(heat)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = PNGBytes(&tools.Chart{Kind: tools.ChartPie, Labels: []string{"a"}, Values: fl(0)})
	assert.Error(t, err)
	_, err = PNGBytes(&tools.Chart{Kind: tools.ChartScatter})
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	p, err := WriteFile(dir, "abc", &tools.Chart{Kind: tools.ChartPie, Labels: []string{"x", "y"}, Values: fl(1, 3)})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc.png"), p)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic))
}

func TestNumber(t *testing.T) {
	cases := map[float64]string{
		3:          "3",
		-12:        "-12",
		2.5:        "2.5",
		50.0 / 3:   "16.6667",
		0.00001:    "0",
		math.NaN(): "n/a",
	}
	for in, want := range cases {
		assert.Equal(t, want, Number(in), "%v", in)
	}
	assert.Equal(t, "+Inf", Number(math.Inf(1)))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	_, err = ParseFormat("html")
	assert.Error(t, err)
}

func runTool(t *testing.T, tool router.Tool, csv, query string) *tools.Result {
	t.Helper()
	d, err := dataset.ReadCSV(strings.NewReader(csv), "t.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	res, err := tools.NewRunner(tools.Options{}, nil).Run(tool, tools.Request{Dataset: d, Query: query})
	require.NoError(t, err)
	return res
}

func TestReportBar(t *testing.T) {
	res := runTool(t, router.Bar, "category,revenue\nA,10\nB,30\nA,20\n", "average revenue by category")
	out := Report(res, FormatText)
	assert.True(t, strings.HasPrefix(out, "[BAR CHART]\n"))
	assert.Contains(t, out, "Average revenue")
	assert.Contains(t, out, "Number of groups")
	assert.Contains(t, out, "Mean of revenue")

	md := Report(res, FormatMarkdown)
	assert.Contains(t, md, "| Statistic | Value |")
}

func TestReportCorrelationAndNotices(t *testing.T) {
	res := runTool(t, router.Correlation, "a,b,c\n1,2,5\n2,4,3\n3,7,1\n", "")
	out := Report(res, FormatText)
	assert.Contains(t, out, "Correlation Matrix of Numeric Variables")
	assert.Contains(t, out, "[STRONGEST CORRELATIONS]")
	assert.Contains(t, out, "1.00")

	res = runTool(t, router.Correlation, "a\n1\n", "")
	out = Report(res, FormatText)
	assert.Contains(t, out, "⚠ Need at least 2 numeric columns to create a correlation matrix.")
}

func TestReportPendingAndSummary(t *testing.T) {
	res := runTool(t, router.Scatter, "alpha,beta,gamma\n1,2,3\n2,3,1\n", "plot something")
	out := Report(res, FormatText)
	assert.Contains(t, out, "[SELECTION NEEDED]")
	assert.Contains(t, out, "Select X-axis (x): alpha, beta, gamma")

	res = runTool(t, router.Summary, "city,temp\nOslo,5\nRome,\n", "")
	out = Report(res, FormatText)
	assert.Contains(t, out, "Rows: 2")
	assert.Contains(t, out, "city")
	assert.Contains(t, out, "numeric")
}

func TestSchema(t *testing.T) {
	d, err := dataset.ReadCSV(strings.NewReader("smoker,name\n0,a\n1,\n"), "t.csv", dataset.DefaultOptions())
	require.NoError(t, err)
	out := Schema(d, FormatText)
	assert.Contains(t, out, "numeric (binary)")
	assert.Contains(t, out, "categorical")
}
