package extract

import (
	"github.com/KaramelBytes/csvask-cli/internal/dataset"
)

// Signal adds an independent, non-negative amount to a candidate's score.
type Signal func(q Query, col *dataset.Column) int

// Scorer picks the best column of one kind for a query. Scores are summed
// over Signals; the first candidate in dataset order with the strictly
// highest positive score wins.
type Scorer struct {
	Name    string
	Kind    dataset.Kind
	Signals []Signal
}

// Best returns the winning column, or false when no column of the target
// kind exists or none scored above zero.
func (s Scorer) Best(q Query, d *dataset.Dataset) (*dataset.Column, bool) {
	var (
		best      *dataset.Column
		bestScore int
	)
	for _, c := range d.OfKind(s.Kind) {
		score := s.Score(q, c)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, best != nil
}

// Score sums every signal for one column.
func (s Scorer) Score(q Query, col *dataset.Column) int {
	var total int
	for _, sig := range s.Signals {
		total += sig(q, col)
	}
	return total
}

// Candidate is one scored column, exposed for diagnostics.
type Candidate struct {
	Column string `json:"column"`
	Score  int    `json:"score"`
}

// Rank scores every column of the target kind in dataset order.
func (s Scorer) Rank(q Query, d *dataset.Dataset) []Candidate {
	cols := d.OfKind(s.Kind)
	out := make([]Candidate, 0, len(cols))
	for _, c := range cols {
		out = append(out, Candidate{Column: c.Name, Score: s.Score(q, c)})
	}
	return out
}
