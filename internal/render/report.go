package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

// Format selects how tables are drawn.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts "text" and "markdown" (or "md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want text or markdown)", s)
}

// Marker is the prefix printed before a notice.
func Marker(l tools.Level) string {
	switch l {
	case tools.LevelSuccess:
		return "✓"
	case tools.LevelWarning:
		return "⚠"
	case tools.LevelError:
		return "✗"
	}
	return "•"
}

// Report renders everything in res except the chart image.
func Report(res *tools.Result, f Format) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", strings.ToUpper(res.Title))
	for _, n := range res.Notices {
		fmt.Fprintf(&b, "%s %s\n", Marker(n.Level), n.Message)
	}
	if len(res.Pending) > 0 {
		b.WriteString("\n[SELECTION NEEDED]\n")
		for _, p := range res.Pending {
			fmt.Fprintf(&b, "- %s (%s): %s\n", p.Prompt, p.Role, strings.Join(p.Candidates, ", "))
		}
	}
	if res.Overview != nil {
		fmt.Fprintf(&b, "\nRows: %d\nColumns: %d\n\n", res.Overview.Rows, res.Overview.Cols)
		b.WriteString(draw(overviewTable(res.Overview), f))
		b.WriteString("\n")
	}
	if c := res.Chart; c != nil && c.Kind == tools.ChartHeatmap {
		b.WriteString("\n")
		b.WriteString(draw(matrixTable(c), f))
		b.WriteString("\n")
	}
	if len(res.Pairs) > 0 {
		b.WriteString("\n[STRONGEST CORRELATIONS]\n")
		for _, p := range res.Pairs {
			fmt.Fprintf(&b, "- %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
		}
	}
	if c := res.Chart; c != nil && (c.Kind == tools.ChartBar || c.Kind == tools.ChartLine) {
		b.WriteString("\n")
		b.WriteString(draw(seriesTable(c), f))
		b.WriteString("\n")
	}
	if len(res.Stats) > 0 {
		b.WriteString("\n")
		b.WriteString(draw(statsTable(res.Stats), f))
		b.WriteString("\n")
	}
	if len(res.Lines) > 0 {
		b.WriteString("\n")
		for _, l := range res.Lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	return b.String()
}

// Schema renders the inferred column kinds of d.
func Schema(d *dataset.Dataset, f Format) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Kind", "Unit", "Missing", "Unique"})
	for _, c := range d.Columns() {
		kind := string(c.Kind)
		if c.IsBinary() {
			kind += " (binary)"
		}
		t.AppendRow(table.Row{c.Name, kind, c.Unit, c.MissingCount(), len(c.Unique())})
	}
	t.SetStyle(table.StyleLight)
	return draw(t, f)
}

func draw(t table.Writer, f Format) string {
	if f == FormatMarkdown {
		return t.RenderMarkdown() + "\n"
	}
	return t.Render() + "\n"
}

func statsTable(stats []tools.Stat) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Statistic", "Value"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.Name, Number(float64(s.Value))})
	}
	t.SetStyle(table.StyleLight)
	return t
}

func overviewTable(ov *tools.Overview) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Kind", "Missing", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"})
	for _, c := range ov.Columns {
		name := c.Name
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		row := table.Row{name, string(c.Kind), c.Missing}
		if d := c.Describe; d != nil {
			row = append(row, d.Count, num(d.Mean), num(d.Std), num(d.Min), num(d.Q25), num(d.Q50), num(d.Q75), num(d.Max))
		} else {
			row = append(row, "", "", "", "", "", "", "", "")
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleLight)
	return t
}

func matrixTable(c *tools.Chart) table.Writer {
	t := table.NewWriter()
	header := table.Row{""}
	for _, name := range c.Columns {
		header = append(header, name)
	}
	t.AppendHeader(header)
	for i, name := range c.Columns {
		row := table.Row{name}
		for _, v := range c.Matrix[i] {
			row = append(row, corr(float64(v)))
		}
		t.AppendRow(row)
	}
	t.SetTitle("%s", c.Title)
	t.SetStyle(table.StyleLight)
	return t
}

func seriesTable(c *tools.Chart) table.Writer {
	t := table.NewWriter()
	x := c.XLabel
	if x == "" {
		x = "Label"
	}
	t.AppendHeader(table.Row{x, c.YLabel})
	for i, l := range c.Labels {
		t.AppendRow(table.Row{l, num(c.Values[i])})
	}
	t.SetTitle("%s", c.Title)
	t.SetStyle(table.StyleLight)
	return t
}

func num(f tools.Float) string { return Number(float64(f)) }

// Number formats v for reports: integers without decimals, other values
// with up to four, NaN as "n/a".
func Number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 0):
		return strconv.FormatFloat(v, 'f', -1, 64)
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func corr(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
