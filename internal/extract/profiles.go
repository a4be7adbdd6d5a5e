package extract

import (
	"strings"

	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/textnorm"
)

// Numeric scores numeric columns for value axes (bar charts): +3 when the
// normalized name is one of the query tokens, then per token +2 if the
// token sits inside the name, else +1 if the name sits inside the token.
var Numeric = Scorer{
	Name:    "numeric",
	Kind:    dataset.KindNumeric,
	Signals: []Signal{exactToken(3), tokenContainment(2, 1)},
}

// Histogram scores numeric columns for distribution questions. Words that
// only describe the chart ("distribution", "spread", ...) are ignored.
var Histogram = Scorer{
	Name: "histogram",
	Kind: dataset.KindNumeric,
	Signals: []Signal{
		mentioned(3),
		wordOverlap(2, histogramStopwords),
		queryWordInName(1, histogramStopwords),
	},
}

// Categorical scores text columns for grouping.
var Categorical = Scorer{
	Name: "categorical",
	Kind: dataset.KindCategorical,
	Signals: []Signal{
		groupingPhrase,
		categoryIndicators,
		mentioned(3),
		tokenOverlap(1),
	},
}

// Mentioned picks the first numeric column whose normalized name occurs in
// the normalized query. Line and pie charts use it.
var Mentioned = Scorer{
	Name:    "mentioned",
	Kind:    dataset.KindNumeric,
	Signals: []Signal{mentioned(1)},
}

var histogramStopwords = map[string]bool{
	"distribution": true, "spread": true, "range": true, "frequency": true, "occurrence": true,
	"pattern": true, "histogram": true, "density": true, "concentration": true,
}

type weighted struct {
	phrase string
	weight int
}

// Checked in order; every phrase present contributes independently.
var groupingPatterns = []weighted{
	{"group by", 3}, {"grouped by", 3}, {"split by", 3}, {"break down by", 3},
	{"categorize by", 3}, {"categorized by", 3},
	{"per", 2}, {"for each", 2}, {"across", 2},
	{"by", 1}, {"in", 1}, {"at", 1},
}

var categoryIndicatorWeights = []weighted{
	{"type", 2}, {"category", 2}, {"class", 2}, {"group", 2}, {"name", 2},
	{"id", 1}, {"code", 1}, {"status", 2}, {"level", 1}, {"grade", 1},
}

func mentioned(w int) Signal {
	return func(q Query, col *dataset.Column) int {
		if q.mentions(col.Name) {
			return w
		}
		return 0
	}
}

func exactToken(w int) Signal {
	return func(q Query, col *dataset.Column) int {
		if q.hasToken(textnorm.Normalize(col.Name)) {
			return w
		}
		return 0
	}
}

func tokenContainment(inName, nameInToken int) Signal {
	return func(q Query, col *dataset.Column) int {
		name := textnorm.Normalize(col.Name)
		if name == "" {
			return 0
		}
		var s int
		for _, tok := range q.Tokens {
			switch {
			case strings.Contains(name, tok):
				s += inName
			case strings.Contains(tok, name):
				s += nameInToken
			}
		}
		return s
	}
}

func tokenOverlap(w int) Signal {
	return func(q Query, col *dataset.Column) int {
		return w * overlap(textnorm.Tokens(col.Name), q.Tokens, nil)
	}
}

func wordOverlap(w int, skip map[string]bool) Signal {
	return func(q Query, col *dataset.Column) int {
		return w * overlap(textnorm.Words(col.Name), q.Words, skip)
	}
}

func queryWordInName(w int, skip map[string]bool) Signal {
	return func(q Query, col *dataset.Column) int {
		name := textnorm.Normalize(col.Name)
		var s int
		for _, word := range uniq(q.Words) {
			if !skip[word] && strings.Contains(name, word) {
				s += w
			}
		}
		return s
	}
}

// groupingPhrase doubles a phrase's weight when the column is named in the
// text after the phrase's last occurrence.
func groupingPhrase(q Query, col *dataset.Column) int {
	var s int
	for _, p := range groupingPatterns {
		i := strings.LastIndex(q.Lower, p.phrase)
		if i < 0 {
			continue
		}
		after := q.Lower[i+len(p.phrase):]
		if textnorm.Contains(after, col.Name) {
			s += p.weight * 2
		}
	}
	return s
}

func categoryIndicators(_ Query, col *dataset.Column) int {
	lower := strings.ToLower(col.Name)
	var s int
	for _, ind := range categoryIndicatorWeights {
		if strings.Contains(lower, ind.phrase) {
			s += ind.weight
		}
	}
	return s
}

// overlap counts distinct words present in both lists.
func overlap(a, b []string, skip map[string]bool) int {
	set := make(map[string]bool, len(b))
	for _, w := range b {
		if !skip[w] {
			set[w] = true
		}
	}
	var n int
	for _, w := range uniq(a) {
		if set[w] {
			n++
		}
	}
	return n
}

func uniq(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
