// Package router maps a free-text question onto exactly one analysis tool
// using a cascade: an explicit tool name, then a keyword table, then a remote
// classifier. Every path ends in a valid tool; summary is the default.
package router

import "strings"

// Tool identifies one analysis the assistant can run.
type Tool string

const (
	Summary     Tool = "summary"
	Scatter     Tool = "scatter"
	Line        Tool = "line"
	Bar         Tool = "bar"
	Histogram   Tool = "histogram"
	Correlation Tool = "correlation"
	Pie         Tool = "pie"
)

// Tools is the closed tool set in explicit-mention order.
var Tools = []Tool{Summary, Scatter, Line, Bar, Histogram, Correlation, Pie}

// Priority is the order the keyword table is consulted in.
var Priority = []Tool{Summary, Line, Bar, Scatter, Histogram, Pie, Correlation}

// Keywords maps each tool to the phrases that select it. "summary" is both a
// tool name and a bar keyword; the explicit-mention stage always sees it
// first, so the bar entry only matters for prompts.
var Keywords = map[Tool][]string{
	Line:        {"trend", "change", "pattern", "evolution", "timeline", "over time", "progression", "time series"},
	Bar:         {"comparison", "compare", "highest", "lowest", "top", "summary", "categorical"},
	Scatter:     {"relationship", "correlation", "association", "relate", "versus", "vs", "against"},
	Histogram:   {"distribution", "spread", "frequency", "range"},
	Pie:         {"composition", "parts", "proportions", "share", "percentage", "breakdown"},
	Correlation: {"correlation matrix", "correlations between", "relationships between all"},
	Summary:     {"summarize", "describe", "overview", "statistics", "stats", "information", "tell me about", "what's in"},
}

// hintOrder is the order keyword hints are listed in the classifier prompt.
var hintOrder = []Tool{Line, Bar, Scatter, Histogram, Pie, Correlation, Summary}

// Parse maps s onto a Tool after trimming and lowercasing. ok is false for
// anything outside the closed set.
func Parse(s string) (Tool, bool) {
	t := Tool(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tools {
		if t == known {
			return t, true
		}
	}
	return "", false
}

func (t Tool) String() string { return string(t) }

// explicitMention returns the first tool, in Tools order, whose name occurs
// in the lowercased query.
func explicitMention(lower string) (Tool, bool) {
	for _, t := range Tools {
		if strings.Contains(lower, string(t)) {
			return t, true
		}
	}
	return "", false
}

// keywordMatch returns the first tool, in Priority order, with any keyword
// occurring in the lowercased query.
func keywordMatch(lower string) (Tool, bool) {
	for _, t := range Priority {
		for _, kw := range Keywords[t] {
			if strings.Contains(lower, kw) {
				return t, true
			}
		}
	}
	return "", false
}
