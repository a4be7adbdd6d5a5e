// Package tools runs one analysis against a dataset and returns a prepared
// Result: the data a renderer needs, narrative statistics, and notices. When
// a required column cannot be resolved the Result carries a Pending
// selection request instead of a chart.
package tools

import (
	"math"
	"strconv"
	"time"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/router"
	"github.com/KaramelBytes/csvask-cli/internal/stats"
)

// Level grades a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing message produced while running a tool.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// ChartKind tells a renderer how to draw a Chart.
type ChartKind string

const (
	ChartBar       ChartKind = "bar"
	ChartLine      ChartKind = "line"
	ChartScatter   ChartKind = "scatter"
	ChartHistogram ChartKind = "histogram"
	ChartPie       ChartKind = "pie"
	ChartHeatmap   ChartKind = "heatmap"
)

// Chart is the prepared data for one plot. Which fields are set depends on
// Kind: Labels/Values for bar and pie, Times/Values for line, X/Y for
// scatter, BinEdges/Values for histogram, Columns/Matrix for heatmap.
type Chart struct {
	Kind     ChartKind   `json:"kind"`
	Title    string      `json:"title"`
	XLabel   string      `json:"x_label,omitempty"`
	YLabel   string      `json:"y_label,omitempty"`
	Labels   []string    `json:"labels,omitempty"`
	Values   []Float     `json:"values,omitempty"`
	Times    []time.Time `json:"times,omitempty"`
	X        []float64   `json:"x,omitempty"`
	Y        []float64   `json:"y,omitempty"`
	BinEdges []float64   `json:"bin_edges,omitempty"`
	Columns  []string    `json:"columns,omitempty"`
	Matrix   [][]Float   `json:"matrix,omitempty"`
}

// Stat is one named narrative statistic.
type Stat struct {
	Name  string `json:"name"`
	Value Float  `json:"value"`
}

// CorrPair is one off-diagonal entry of a correlation matrix.
type CorrPair struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// ColumnInfo describes one column in a summary.
type ColumnInfo struct {
	Name     string       `json:"name"`
	Kind     dataset.Kind `json:"kind"`
	Unit     string       `json:"unit,omitempty"`
	Missing  int          `json:"missing"`
	Describe *Description `json:"describe,omitempty"`
}

// Description is a describe() row for one numeric column.
type Description struct {
	Count int   `json:"count"`
	Mean  Float `json:"mean"`
	Std   Float `json:"std"`
	Min   Float `json:"min"`
	Q25   Float `json:"q25"`
	Q50   Float `json:"q50"`
	Q75   Float `json:"q75"`
	Max   Float `json:"max"`
}

func describe(vals []float64) *Description {
	d := stats.Describe(vals)
	return &Description{
		Count: d.Count,
		Mean:  Float(d.Mean),
		Std:   Float(d.Std),
		Min:   Float(d.Min),
		Q25:   Float(d.Q25),
		Q50:   Float(d.Q50),
		Q75:   Float(d.Q75),
		Max:   Float(d.Max),
	}
}

// Overview is the summary tool's payload.
type Overview struct {
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	Columns []ColumnInfo `json:"columns"`
}

// Role names a column slot a tool needs filled.
type Role string

const (
	RoleValue    Role = "value"
	RoleGroup    Role = "group"
	RoleTime     Role = "time"
	RoleX        Role = "x"
	RoleY        Role = "y"
	RoleCategory Role = "category"
)

// SelectionRequest asks the caller to choose a column for Role from
// Candidates. Kind is empty when any column is acceptable.
type SelectionRequest struct {
	Role       Role         `json:"role"`
	Kind       dataset.Kind `json:"kind,omitempty"`
	Prompt     string       `json:"prompt"`
	Candidates []string     `json:"candidates"`
}

// Selections are caller-chosen columns by role, used on a re-run.
type Selections map[Role]string

// Result is everything a tool produced for one question.
type Result struct {
	ID       string             `json:"id"`
	Tool     router.Tool        `json:"tool"`
	Title    string             `json:"title"`
	Chart    *Chart             `json:"chart,omitempty"`
	Stats    []Stat             `json:"stats,omitempty"`
	Lines    []string           `json:"lines,omitempty"`
	Pairs    []CorrPair         `json:"pairs,omitempty"`
	Overview *Overview          `json:"overview,omitempty"`
	Notices  []Notice           `json:"notices,omitempty"`
	Blocked  bool               `json:"blocked,omitempty"`
	Pending  []SelectionRequest `json:"pending,omitempty"`
	// Resolved records the column chosen for each role.
	Resolved Selections `json:"resolved,omitempty"`
}

func (r *Result) notify(level Level, msg string) {
	r.Notices = append(r.Notices, Notice{Level: level, Message: msg})
}

// block marks the result as unable to proceed.
func (r *Result) block(level Level, msg string) *Result {
	r.notify(level, msg)
	r.Blocked = true
	return r
}

func (r *Result) stat(name string, v float64) {
	r.Stats = append(r.Stats, Stat{Name: name, Value: Float(v)})
}

// NeedsSelection reports whether the caller must choose columns and re-run.
func (r *Result) NeedsSelection() bool { return len(r.Pending) > 0 }

// Float is a float64 that encodes NaN and infinities as JSON null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// Floats converts to plain float64 values.
func Floats(fs []Float) []float64 {
	out := make([]float64, len(fs))
	for i, f := range fs {
		out[i] = float64(f)
	}
	return out
}

func toFloats(vs []float64) []Float {
	out := make([]Float, len(vs))
	for i, v := range vs {
		out[i] = Float(v)
	}
	return out
}
