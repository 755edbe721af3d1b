// Package scoring maps a pulse's peak magnitude to an integer score
// and a qualitative tier, and keeps a bounded descending leaderboard.
package scoring

import (
	"sort"

	"github.com/okian/tsuki/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultBoardDepth = 5
)

// Tier is one row of the ascending tier table: scores strictly below
// Upper map to Label.
type Tier struct {
	Upper float64
	Label string
}

// defaultTiers mirrors the stock machine's comment ladder. The last
// row is the catch-all for everything at or above the final bound.
func defaultTiers() []Tier {
	return []Tier{
		{Upper: 500, Label: "keep pushing"},
		{Upper: 1000, Label: "not bad"},
		{Upper: 2000, Label: "nice hit"},
		{Upper: 3000, Label: "strong"},
		{Upper: 0, Label: "champion"}, // catch-all
	}
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithBoardDepth sets the number of retained leaderboard entries.
func WithBoardDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.boardDepth = n
		}
	}
}

// WithTiers replaces the tier table. Rows must be ascending by Upper
// with a trailing catch-all; first match wins.
func WithTiers(tiers []Tier) Option {
	return func(e *Evaluator) {
		if len(tiers) > 0 {
			e.tiers = append([]Tier(nil), tiers...)
		}
	}
}

// Result is the evaluation of one accepted event.
type Result struct {
	Score int
	Tier  string
}

// Evaluator turns accepted events into scores and maintains the board.
// Owned by the consumer goroutine; readers get copies via Board.
type Evaluator struct {
	tiers      []Tier
	boardDepth int
	board      []int
	last       Result
}

// New creates an Evaluator with configuration options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		tiers:      defaultTiers(),
		boardDepth: defaultBoardDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score truncates the event's peak to an integer score, resolves its
// tier and inserts it into the leaderboard.
func (e *Evaluator) Score(ev model.Event) Result {
	score := int(ev.Peak)
	r := Result{Score: score, Tier: e.tierFor(float64(score))}
	e.last = r

	e.board = append(e.board, score)
	sort.Sort(sort.Reverse(sort.IntSlice(e.board)))
	if len(e.board) > e.boardDepth {
		e.board = e.board[:e.boardDepth]
	}
	return r
}

// tierFor resolves the first table row whose bound exceeds the score;
// the last row catches everything above.
func (e *Evaluator) tierFor(score float64) string {
	for i, t := range e.tiers {
		if i == len(e.tiers)-1 {
			return t.Label
		}
		if score < t.Upper {
			return t.Label
		}
	}
	return ""
}

// Last returns the most recent evaluation.
func (e *Evaluator) Last() Result { return e.last }

// Board returns the leaderboard as ranked entries, highest first.
func (e *Evaluator) Board() []model.Entry {
	out := make([]model.Entry, len(e.board))
	for i, s := range e.board {
		out[i] = model.Entry{
			Rank:  i + 1,
			Score: s,
			Tier:  e.tierFor(float64(s)),
		}
	}
	return out
}
