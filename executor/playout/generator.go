// Package playout runs randomized games from a board position to the end and
// reports the winner. Move choice is pluggable through Generator.
package playout

import (
	"math/rand"

	"github.com/brensch/gouct/game"
	"github.com/brensch/gouct/rules"
)

const (
	DefaultHeuristicRejections = 10
	DefaultLightRejections     = 100

	// nearDistance is the Dist below which a move counts as a local reply.
	nearDistance = 5

	urgentWeight = 1.0
	nearWeight   = 0.8
	farWeight    = 0.5
)

// Generator picks the next move for the side to move on b.
type Generator interface {
	Next(b *game.Board, rng *rand.Rand) int
}

// WeightTable scales move weights by learned preferences. Values are in [0, 1].
type WeightTable interface {
	Weight(b *game.Board, pos int, player game.Color) float64
}

// IsBadMove reports whether pos is never worth playing in a playout: illegal,
// or filling one of player's own eyes.
func IsBadMove(b *game.Board, pos int, player game.Color) bool {
	return !rules.IsLegal(b, pos, player) || rules.IsEye(b, pos, player)
}

// Heuristic draws random points and accepts each with probability equal to
// its weight, falling back to an index-order scan after MaxRejections misses.
type Heuristic struct {
	Weights       WeightTable
	MaxRejections int
}

// Weight is the acceptance probability of pos for player.
func (h Heuristic) Weight(b *game.Board, pos int, player game.Color) float64 {
	if IsBadMove(b, pos, player) {
		return 0
	}

	w := farWeight
	switch {
	case rules.IsCapture(b, pos, player), rules.IsAtari(b, pos, player), rules.IsExtend(b, pos, player):
		w = urgentWeight
	case b.Dist(pos, b.Last) <= nearDistance, b.Dist(pos, b.SecondLast) <= nearDistance:
		w = nearWeight
	}

	if h.Weights != nil {
		w *= h.Weights.Weight(b, pos, player)
	}
	return w
}

func (h Heuristic) Next(b *game.Board, rng *rand.Rand) int {
	player := b.ToMove
	limit := h.MaxRejections
	if limit <= 0 {
		limit = DefaultHeuristicRejections
	}

	for i := 0; i <= limit; i++ {
		pos := rng.Intn(b.Size())
		if rng.Float64() < h.Weight(b, pos, player) {
			return pos
		}
	}

	for pos := 0; pos < b.Size(); pos++ {
		if h.Weight(b, pos, player) > 0 {
			return pos
		}
	}
	return game.Pass
}

// Light draws uniformly random points and rejects only bad moves. It trades
// playout quality for throughput.
type Light struct {
	MaxRejections int
}

func (l Light) Next(b *game.Board, rng *rand.Rand) int {
	player := b.ToMove
	limit := l.MaxRejections
	if limit <= 0 {
		limit = DefaultLightRejections
	}

	for i := 0; i <= limit; i++ {
		pos := rng.Intn(b.Size())
		if !IsBadMove(b, pos, player) {
			return pos
		}
	}
	return game.Pass
}
