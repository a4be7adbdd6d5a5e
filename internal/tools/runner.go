package tools

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/extract"
	"github.com/KaramelBytes/csvask-cli/internal/router"
)

var (
	// ErrUnknownColumn: a selection names a column the dataset lacks.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrWrongKind: a selection names a column of the wrong kind.
	ErrWrongKind = errors.New("column has the wrong kind")
	// ErrUnknownTool: Run was asked for a tool with no handler.
	ErrUnknownTool = errors.New("unknown tool")
)

// Defaults for Options.
const (
	DefaultPieMaxSlices      = 10
	DefaultSubgroupMaxUnique = 20
	DefaultHistogramMaxBins  = 1000
)

// Options tune the handlers.
type Options struct {
	// PieMaxSlices caps the slices shown; the tail is dropped, not merged.
	PieMaxSlices int
	// SubgroupMaxUnique bounds the categorical columns searched for a line
	// chart subgroup filter.
	SubgroupMaxUnique int
	// HistogramMaxBins caps the bins drawn; a far outlier can make the
	// Freedman-Diaconis count arbitrarily large.
	HistogramMaxBins int
}

// Request is one question against one dataset.
type Request struct {
	Dataset    *dataset.Dataset
	Query      string
	Selections Selections
}

// handler fills res or returns a selection error.
type handler func(r *Runner, req Request, q extract.Query, res *Result) error

var handlers = map[router.Tool]handler{
	router.Summary:     runSummary,
	router.Scatter:     runScatter,
	router.Line:        runLine,
	router.Bar:         runBar,
	router.Histogram:   runHistogram,
	router.Correlation: runCorrelation,
	router.Pie:         runPie,
}

// Runner executes tool handlers.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// NewRunner fills zero options with defaults. A nil logger discards.
func NewRunner(opts Options, logger *slog.Logger) *Runner {
	if opts.PieMaxSlices <= 0 {
		opts.PieMaxSlices = DefaultPieMaxSlices
	}
	if opts.SubgroupMaxUnique <= 0 {
		opts.SubgroupMaxUnique = DefaultSubgroupMaxUnique
	}
	if opts.HistogramMaxBins <= 0 {
		opts.HistogramMaxBins = DefaultHistogramMaxBins
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{opts: opts, logger: logger}
}

// Run executes tool. The returned error is non-nil only for an unknown tool
// or an invalid manual selection; every other condition is reported on the
// Result through Notices, Blocked and Pending.
func (r *Runner) Run(tool router.Tool, req Request) (*Result, error) {
	h, ok := handlers[tool]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, tool)
	}
	if req.Dataset == nil {
		return nil, errors.New("dataset is required")
	}
	res := &Result{ID: uuid.NewString(), Tool: tool, Resolved: Selections{}}
	if tool != router.Summary && req.Dataset.NumRows() == 0 {
		return res.block(LevelWarning, "No data available for plotting."), nil
	}
	if err := h(r, req, extract.Parse(req.Query), res); err != nil {
		return nil, err
	}
	r.logger.Debug("tool finished",
		slog.String("tool", string(tool)),
		slog.String("result_id", res.ID),
		slog.Bool("blocked", res.Blocked),
		slog.Int("pending", len(res.Pending)))
	return res, nil
}

// resolve fills role from a manual selection, else from auto. ok is false
// when the column is still unknown; a SelectionRequest listing the columns
// of kind has then been added to res. kind "" accepts any column.
func resolve(req Request, res *Result, role Role, kind dataset.Kind, prompt string,
	auto func() (*dataset.Column, bool)) (*dataset.Column, bool, error) {
	if name, ok := req.Selections[role]; ok && name != "" {
		c, found := req.Dataset.Column(name)
		if !found {
			return nil, false, fmt.Errorf("%w: %s %q", ErrUnknownColumn, role, name)
		}
		if kind != "" && c.Kind != kind {
			return nil, false, fmt.Errorf("%w: %s %q is %s, want %s", ErrWrongKind, role, name, c.Kind, kind)
		}
		res.Resolved[role] = c.Name
		return c, true, nil
	}
	if auto != nil {
		if c, ok := auto(); ok {
			res.Resolved[role] = c.Name
			return c, true, nil
		}
	}
	var cands []string
	if kind == "" {
		cands = req.Dataset.Names()
	} else {
		for _, c := range req.Dataset.OfKind(kind) {
			cands = append(cands, c.Name)
		}
	}
	res.Pending = append(res.Pending, SelectionRequest{Role: role, Kind: kind, Prompt: prompt, Candidates: cands})
	return nil, false, nil
}

func names(cols []*dataset.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
