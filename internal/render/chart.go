// Package render draws tool results: PNG charts with go-chart and text
// reports with go-pretty tables.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

// ErrUnsupported is returned for chart kinds with no PNG rendering; the
// text report covers them.
var ErrUnsupported = errors.New("chart kind has no image rendering")

const (
	defaultWidth  = 1024
	defaultHeight = 640
	barWidth      = 40
	barSpacing    = 20
	// maxBars bounds the groups drawn on a bar chart; histograms keep every
	// bin and narrow the bars instead.
	maxBars = 100
	// maxWidth bounds any bar image; bars narrow to fit, down to maxSlots.
	maxWidth = 8192
	maxSlots = (maxWidth - 200) / 2
)

var (
	seriesColor = drawing.ColorFromHex("4c78a8")
	background  = chart.Style{
		Padding:     chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		FillColor:   drawing.ColorWhite,
		StrokeColor: drawing.ColorFromHex("efefef"),
		StrokeWidth: 1,
	}
)

// HasImage reports whether PNG can draw c.
func HasImage(c *tools.Chart) bool {
	if c == nil {
		return false
	}
	switch c.Kind {
	case tools.ChartBar, tools.ChartHistogram, tools.ChartLine, tools.ChartScatter, tools.ChartPie:
		return true
	}
	return false
}

// PNG writes c as a PNG image to w.
func PNG(w io.Writer, c *tools.Chart) error {
	if c == nil {
		return errors.New("no chart to render")
	}
	var err error
	switch c.Kind {
	case tools.ChartBar, tools.ChartHistogram:
		err = drawBars(w, c)
	case tools.ChartLine:
		err = drawLine(w, c)
	case tools.ChartScatter:
		err = drawScatter(w, c)
	case tools.ChartPie:
		err = drawPie(w, c)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, c.Kind)
	}
	if err != nil {
		return fmt.Errorf("error rendering %s chart: %w", c.Kind, err)
	}
	return nil
}

// PNGBytes renders c into memory.
func PNGBytes(c *tools.Chart) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := PNG(buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders c to dir/<id>.png and returns the path.
func WriteFile(dir, id string, c *tools.Chart) (string, error) {
	b, err := PNGBytes(c)
	if err != nil {
		return "", err
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create chart dir: %w", err)
		}
	}
	p := filepath.Join(dir, id+".png")
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}
	return p, nil
}

func drawBars(w io.Writer, c *tools.Chart) error {
	values, labels := finiteBars(c)
	title := c.Title
	if c.Kind == tools.ChartBar && len(values) > maxBars {
		// Bar series arrive sorted, so the head holds the largest groups.
		values, labels = values[:maxBars], labels[:maxBars]
		title = fmt.Sprintf("%s (top %d)", title, maxBars)
	}
	if len(values) == 0 {
		return errors.New("no bars")
	}
	if len(values) > maxSlots {
		values, labels = values[:maxSlots], labels[:maxSlots]
	}
	bw, spacing := barWidth, barSpacing
	if slot := (maxWidth - 200) / len(values); slot < barWidth+barSpacing {
		bw, spacing = max(1, slot*2/3), max(1, slot-slot*2/3)
	}
	if len(labels) > maxBars {
		labels = sparseLabels(labels, maxBars/2)
	}

	bars := make([]chart.Value, len(values))
	for i, v := range values {
		bars[i] = chart.Value{
			Value: v,
			Label: labels[i],
			Style: chart.Style{FillColor: seriesColor.WithAlpha(200), StrokeColor: seriesColor},
		}
	}
	lo, hi := bounds(values)
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if lo == hi {
		hi = lo + 1
	}
	width := max(len(bars)*(bw+spacing)+200, defaultWidth)
	bc := chart.BarChart{
		Title:      title,
		Background: background,
		Width:      width,
		Height:     defaultHeight,
		BarWidth:   bw,
		BarSpacing: spacing,
		Bars:       bars,
		XAxis:      chart.Style{TextRotationDegrees: labelRotation(labels)},
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
	}
	bc.Background.Padding.Bottom = bottomPadding(labels)
	return bc.Render(chart.PNG, w)
}

// finiteBars pairs each finite value with its label.
func finiteBars(c *tools.Chart) ([]float64, []string) {
	var values []float64
	var labels []string
	for i, v := range tools.Floats(c.Values) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		l := ""
		if i < len(c.Labels) {
			l = c.Labels[i]
		}
		values = append(values, v)
		labels = append(labels, l)
	}
	return values, labels
}

// sparseLabels keeps about n evenly spaced labels and blanks the rest.
func sparseLabels(labels []string, n int) []string {
	step := (len(labels) + n - 1) / n
	out := make([]string, len(labels))
	for i := 0; i < len(labels); i += step {
		out[i] = labels[i]
	}
	return out
}

func drawLine(w io.Writer, c *tools.Chart) error {
	ys := finite(tools.Floats(c.Values))
	if len(ys) == 0 {
		return errors.New("no points")
	}
	xs := make([]float64, len(ys))
	ticks := make([]chart.Tick, len(ys))
	for i := range ys {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: c.Labels[i]}
	}
	if len(ticks) > 24 {
		ticks = thin(ticks, 24)
	}
	graph := chart.Chart{
		Title:      c.Title,
		Background: background,
		Width:      defaultWidth,
		Height:     defaultHeight,
		XAxis: chart.XAxis{
			Name:  c.XLabel,
			Range: paddedRange(xs, 0.5),
			Ticks: ticks,
			Style: chart.Style{TextRotationDegrees: labelRotation(c.Labels)},
		},
		YAxis: chart.YAxis{Name: c.YLabel, Range: paddedRange(ys, 0.05)},
		Series: []chart.Series{&chart.ContinuousSeries{
			Name:    c.YLabel,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: seriesColor, StrokeWidth: 2, DotWidth: 3, DotColor: seriesColor},
		}},
	}
	graph.Background.Padding.Bottom = bottomPadding(c.Labels)
	return graph.Render(chart.PNG, w)
}

func drawScatter(w io.Writer, c *tools.Chart) error {
	if len(c.X) == 0 {
		return errors.New("no points")
	}
	graph := chart.Chart{
		Title:      c.Title,
		Background: background,
		Width:      defaultWidth,
		Height:     defaultHeight,
		XAxis:      chart.XAxis{Name: c.XLabel, Range: paddedRange(c.X, 0.05)},
		YAxis:      chart.YAxis{Name: c.YLabel, Range: paddedRange(c.Y, 0.05)},
		Series: []chart.Series{&chart.ContinuousSeries{
			XValues: c.X,
			YValues: c.Y,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    4,
				DotColor:    seriesColor.WithAlpha(160),
			},
		}},
	}
	return graph.Render(chart.PNG, w)
}

func drawPie(w io.Writer, c *tools.Chart) error {
	vals := tools.Floats(c.Values)
	values := make([]chart.Value, 0, len(vals))
	for i, v := range vals {
		if v > 0 && !math.IsInf(v, 0) {
			values = append(values, chart.Value{Value: v, Label: c.Labels[i]})
		}
	}
	if len(values) == 0 {
		return errors.New("no slices")
	}
	pie := chart.PieChart{
		Title:      c.Title,
		Background: background,
		Width:      defaultHeight,
		Height:     defaultHeight,
		Values:     values,
	}
	return pie.Render(chart.PNG, w)
}

// finite replaces NaN and infinities with zero.
func finite(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

func bounds(vs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// paddedRange widens [min,max] by frac of its span, or by one unit when the
// span is zero, so go-chart never sees an empty range.
func paddedRange(vs []float64, frac float64) *chart.ContinuousRange {
	lo, hi := bounds(vs)
	span := hi - lo
	if span == 0 {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &chart.ContinuousRange{Min: lo - span*frac, Max: hi + span*frac}
}

func labelRotation(labels []string) float64 {
	if longest(labels) > 6 || len(labels) > 12 {
		return 45
	}
	return 0
}

func bottomPadding(labels []string) int {
	if labelRotation(labels) == 0 {
		return 20
	}
	return 20 + longest(labels)*6
}

func longest(labels []string) int {
	var n int
	for _, l := range labels {
		if len(l) > n {
			n = len(l)
		}
	}
	return n
}

// thin keeps about max evenly spaced ticks, always including the last.
func thin(ticks []chart.Tick, max int) []chart.Tick {
	step := (len(ticks) + max - 1) / max
	var out []chart.Tick
	for i := 0; i < len(ticks); i += step {
		out = append(out, ticks[i])
	}
	if last := ticks[len(ticks)-1]; out[len(out)-1].Value != last.Value {
		out = append(out, last)
	}
	return out
}
