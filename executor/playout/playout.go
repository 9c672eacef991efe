package playout

import (
	"math/rand"

	"github.com/brensch/gouct/game"
	"github.com/brensch/gouct/rules"
)

// Scoring selects how a finished playout is counted.
type Scoring int

const (
	ScoreFirstMatch Scoring = iota
	ScoreFlood
)

func (s Scoring) String() string {
	if s == ScoreFlood {
		return "flood"
	}
	return "first-match"
}

// ParseScoring accepts "first-match" and "flood". Anything else is first-match.
func ParseScoring(s string) Scoring {
	if s == "flood" {
		return ScoreFlood
	}
	return ScoreFirstMatch
}

// Runner plays a board out to the end. The zero value uses Light moves,
// no komi and a move cap of three times the board size.
type Runner struct {
	Gen      Generator
	Komi     float64
	MaxMoves int
	Scoring  Scoring

	// Influence, when set, accumulates final ownership of every playout.
	// It is not safe for concurrent use; give each worker its own.
	Influence *Influence
}

// Outcome is the result of a single playout.
type Outcome struct {
	Winner game.Color
	Score  int
	Moves  int
}

// Run plays a copy of b to the end and returns the winner. b is not modified.
func (r Runner) Run(b *game.Board, rng *rand.Rand) game.Color {
	return r.Simulate(b, rng).Winner
}

// Simulate plays a copy of b until two consecutive passes or the move cap,
// then scores the final position.
func (r Runner) Simulate(b *game.Board, rng *rand.Rand) Outcome {
	gen := r.Gen
	if gen == nil {
		gen = Light{}
	}
	limit := r.MaxMoves
	if limit <= 0 {
		limit = 3 * b.Size()
	}

	sim := b.Clone()
	passes := 0

	moves := 0
	for ; moves < limit && passes < 2; moves++ {
		pos := gen.Next(sim, rng)
		if pos == game.Pass || !rules.IsLegal(sim, pos, sim.ToMove) {
			rules.PlayPass(sim)
			passes++
			continue
		}
		rules.Apply(sim, pos, sim.ToMove)
		passes = 0
	}

	score := r.Scoring.Count(sim)
	if r.Influence != nil {
		r.Influence.Add(sim)
	}
	return Outcome{
		Winner: rules.Winner(score, r.Komi),
		Score:  score,
		Moves:  moves,
	}
}

// Count scores b from Black's view, without komi.
func (s Scoring) Count(b *game.Board) int {
	if s == ScoreFlood {
		return rules.AreaScore(b)
	}
	return rules.Score(b)
}

// Influence tallies who owned each point at the end of many playouts.
// Sum[p] grows by one when Black owns p and shrinks by one for White.
type Influence struct {
	Sum      []int64
	Playouts int64
}

func NewInfluence(size int) *Influence {
	return &Influence{Sum: make([]int64, size)}
}

// Add records the ownership of a finished board. Stones count for their
// colour; empty points count for their first occupied neighbour.
func (in *Influence) Add(b *game.Board) {
	if len(in.Sum) != b.Size() {
		in.Sum = make([]int64, b.Size())
		in.Playouts = 0
	}
	for pos := 0; pos < b.Size(); pos++ {
		switch owner(b, pos) {
		case game.Black:
			in.Sum[pos]++
		case game.White:
			in.Sum[pos]--
		}
	}
	in.Playouts++
}

// Merge folds other into in. Tallies of mismatched sizes are ignored.
func (in *Influence) Merge(other *Influence) {
	if other == nil || other.Playouts == 0 {
		return
	}
	if in.Playouts == 0 && len(in.Sum) != len(other.Sum) {
		in.Sum = make([]int64, len(other.Sum))
	}
	if len(in.Sum) != len(other.Sum) {
		return
	}
	for i, v := range other.Sum {
		in.Sum[i] += v
	}
	in.Playouts += other.Playouts
}

// Ownership returns the average owner of each point in [-1, 1], positive
// for Black.
func (in *Influence) Ownership() []float64 {
	out := make([]float64, len(in.Sum))
	if in.Playouts == 0 {
		return out
	}
	for i, v := range in.Sum {
		out[i] = float64(v) / float64(in.Playouts)
	}
	return out
}

func owner(b *game.Board, pos int) game.Color {
	c := b.ColorAt(pos)
	if c != game.Empty {
		return c
	}
	for _, nb := range b.Neighbors(pos) {
		if c := b.ColorAt(nb); c == game.Black || c == game.White {
			return c
		}
	}
	return game.Empty
}
