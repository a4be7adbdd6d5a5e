// Package assist asks a language model which columns a question refers to.
// Shells consult it only after the heuristic extractors came up empty; an
// answer is accepted only when it names one of the offered candidates.
package assist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/KaramelBytes/csvask-cli/internal/ai"
	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/textnorm"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

// Defaults for Config.
const (
	DefaultModel   = "gemma:2b"
	DefaultTimeout = 30 * time.Second
)

// relationshipWords mark a question about two columns.
var relationshipWords = []string{"relate", "relationship", "correlation", "versus", "vs", "against", "compare"}

// Config wires an Assistant.
type Config struct {
	Runtime     ai.Runtime
	Model string
	// Temperature nil leaves the backend's default.
	Temperature *float64
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Assistant proposes column selections. The zero value is not usable; build
// one with New.
type Assistant struct {
	rt          ai.Runtime
	model       string
	temperature *float64
	timeout     time.Duration
	logger      *slog.Logger
}

// New returns nil when cfg has no Runtime; a nil *Assistant suggests nothing.
func New(cfg Config) *Assistant {
	if cfg.Runtime == nil {
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Assistant{
		rt:          cfg.Runtime,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// IsRelationship reports whether query asks how two columns relate.
func IsRelationship(query string) bool {
	lower := strings.ToLower(query)
	for _, w := range relationshipWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Suggest fills the pending roles it can. Pending x and y on a relationship
// question are asked for together; each remaining role is asked for on its
// own. Roles the model cannot name are left out of the returned Selections.
func (a *Assistant) Suggest(ctx context.Context, query string, pending []tools.SelectionRequest) tools.Selections {
	out := tools.Selections{}
	if a == nil || len(pending) == 0 {
		return out
	}
	byRole := map[tools.Role]tools.SelectionRequest{}
	for _, p := range pending {
		byRole[p.Role] = p
	}

	xr, hasX := byRole[tools.RoleX]
	yr, hasY := byRole[tools.RoleY]
	if hasX && hasY && IsRelationship(query) {
		if x, y, ok := a.Pair(ctx, query, xr.Candidates, yr.Candidates); ok {
			out[tools.RoleX], out[tools.RoleY] = x, y
		}
	}
	for _, p := range pending {
		if _, done := out[p.Role]; done {
			continue
		}
		if c, ok := a.Column(ctx, query, p.Candidates); ok {
			out[p.Role] = c
		}
	}
	return out
}

// SuggestFor is Suggest against the columns of d, restricted to kind.
func (a *Assistant) SuggestFor(ctx context.Context, query string, d *dataset.Dataset, role tools.Role, kind dataset.Kind) (string, bool) {
	var cands []string
	for _, c := range d.Columns() {
		if kind == "" || c.Kind == kind {
			cands = append(cands, c.Name)
		}
	}
	sel := a.Suggest(ctx, query, []tools.SelectionRequest{{Role: role, Kind: kind, Candidates: cands}})
	name, ok := sel[role]
	return name, ok
}

// Pair asks for an x=..,y=.. answer. Both names must match their candidate
// lists and differ.
func (a *Assistant) Pair(ctx context.Context, query string, xs, ys []string) (string, string, bool) {
	if a == nil || len(xs) == 0 || len(ys) == 0 {
		return "", "", false
	}
	text, ok := a.ask(ctx, pairPrompt(query, union(xs, ys)))
	if !ok {
		return "", "", false
	}
	xa, ya, ok := parsePair(text)
	if !ok {
		a.logger.Debug("assistant pair answer not understood", slog.String("answer", text))
		return "", "", false
	}
	x, okX := match(xa, xs)
	y, okY := match(ya, ys)
	if !okX || !okY || x == y {
		a.logger.Debug("assistant pair not among candidates", slog.String("x", xa), slog.String("y", ya))
		return "", "", false
	}
	return x, y, true
}

// Column asks for a column=.. answer matching one of cands.
func (a *Assistant) Column(ctx context.Context, query string, cands []string) (string, bool) {
	if a == nil || len(cands) == 0 {
		return "", false
	}
	text, ok := a.ask(ctx, columnPrompt(query, cands))
	if !ok {
		return "", false
	}
	name, ok := match(parseColumn(text), cands)
	if !ok {
		a.logger.Debug("assistant column not among candidates", slog.String("answer", text))
	}
	return name, ok
}

func (a *Assistant) ask(ctx context.Context, prompt string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	text, err := ai.Complete(ctx, a.rt, a.model, a.temperature, prompt)
	if err != nil {
		a.logger.Warn("assistant call failed",
			slog.String("reason", ai.FailureReason(err)),
			slog.String("error", err.Error()))
		return "", false
	}
	a.logger.Debug("assistant answered", slog.String("answer", text))
	return strings.ToLower(text), true
}

func pairPrompt(query string, cols []string) string {
	return fmt.Sprintf(`
You are a data assistant. Given a user query and these dataframe columns: %s,
identify the TWO columns being compared or related.

IMPORTANT: Respond with EXACTLY:
x=<column_name>,y=<column_name>

Choose the exact column names from: %s

Query: %q
`, listing(cols), strings.Join(cols, ", "), query)
}

func columnPrompt(query string, cols []string) string {
	return fmt.Sprintf(`
You are a data assistant. Given a user query and these dataframe columns: %s,
identify the column mentioned or implied in the query.

IMPORTANT: For single column plots (pie, bar, histogram), respond with ONLY:
column=<column_name>

Choose the exact column names from: %s

Query: %q
`, listing(cols), strings.Join(cols, ", "), query)
}

func listing(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "'" + c + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// parsePair reads "x=<a>,y=<b>" anywhere in text.
func parsePair(text string) (string, string, bool) {
	xi := strings.Index(text, "x=")
	yi := strings.Index(text, "y=")
	if xi < 0 || yi < 0 {
		return "", "", false
	}
	x := text[xi+2:]
	if i := strings.IndexByte(x, ','); i >= 0 {
		x = x[:i]
	}
	y := firstLine(text[yi+2:])
	return strings.TrimSpace(x), strings.TrimSpace(y), true
}

// parseColumn reads "column=<name>", else the text after the first "=",
// else the whole answer.
func parseColumn(text string) string {
	switch {
	case strings.Contains(text, "column="):
		text = text[strings.Index(text, "column=")+len("column="):]
	case strings.Contains(text, "="):
		text = text[strings.Index(text, "=")+1:]
	}
	return strings.TrimSpace(firstLine(text))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "`'\" ")
}

// match finds the candidate whose normalized name equals the normalized
// answer.
func match(answer string, cands []string) (string, bool) {
	n := textnorm.Normalize(answer)
	if n == "" {
		return "", false
	}
	for _, c := range cands {
		if textnorm.Normalize(c) == n {
			return c, true
		}
	}
	return "", false
}

func union(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
