// Package extract resolves a free-text question to dataset columns and the
// secondary parameters (aggregation, time granularity, filters) a tool needs.
// Extractors only read the dataset and report "not found" instead of
// guessing a default column.
package extract

import (
	"strings"

	"github.com/KaramelBytes/csvask-cli/internal/textnorm"
)

// Query is a question pre-split into the forms the scorers compare against.
type Query struct {
	Raw   string
	Lower string
	// Norm is the whole question normalized into one token.
	Norm string
	// Tokens are the whitespace-separated pieces, each normalized.
	Tokens []string
	// Words split on any non-alphanumeric rune, each normalized.
	Words []string
}

// Parse prepares q for scoring.
func Parse(q string) Query {
	return Query{
		Raw:    q,
		Lower:  strings.ToLower(q),
		Norm:   textnorm.Normalize(q),
		Tokens: textnorm.Tokens(q),
		Words:  textnorm.Words(q),
	}
}

// mentions reports whether the normalized name occurs in the normalized query.
func (q Query) mentions(name string) bool {
	n := textnorm.Normalize(name)
	return n != "" && strings.Contains(q.Norm, n)
}

func (q Query) hasToken(tok string) bool {
	for _, t := range q.Tokens {
		if t == tok {
			return true
		}
	}
	return false
}
