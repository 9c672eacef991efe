package playout

import (
	"math"

	"github.com/brensch/gouct/game"
)

// PatternCount is the number of distinct 3x3 neighbourhood codes.
const PatternCount = 1 << 16

// HeightCount covers every Board.Height value up to game.MaxDim.
const HeightCount = game.MaxDim/2 + 2

// Neighbour codes packed two bits per point.
const (
	codeEmpty    = 0
	codeOwn      = 1
	codeOpponent = 2
	codeEdge     = 3
)

// ring lists the eight surrounding offsets counter-clockwise from the right,
// so a quarter turn is a rotation by two slots (four bits).
var ring = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// PatternAt encodes the 3x3 neighbourhood of pos from player's point of view.
// It returns false when pos is occupied or off the board.
func PatternAt(b *game.Board, pos int, player game.Color) (uint16, bool) {
	if b.ColorAt(pos) != game.Empty {
		return 0, false
	}
	x, y := b.Coords(pos)

	var code uint16
	for i, d := range ring {
		var c uint16
		switch b.ColorAt(b.Position(x+d[0], y+d[1])) {
		case game.Empty:
			c = codeEmpty
		case game.Invalid:
			c = codeEdge
		case player:
			c = codeOwn
		default:
			c = codeOpponent
		}
		code |= c << (2 * i)
	}
	return code, true
}

// Rotations returns the code and its three quarter-turn rotations.
func Rotations(code uint16) [4]uint16 {
	return [4]uint16{
		code,
		code>>4 | code<<12,
		code>>8 | code<<8,
		code>>12 | code<<4,
	}
}

// PatternWeights is a learned WeightTable keyed by neighbourhood pattern and
// distance from the edge. A zero table weighs every move 0.5.
type PatternWeights struct {
	Patterns []float64
	Heights  []float64
}

func NewPatternWeights() *PatternWeights {
	return &PatternWeights{
		Patterns: make([]float64, PatternCount),
		Heights:  make([]float64, HeightCount),
	}
}

// Raw returns the unsquashed score of pos for player.
func (w *PatternWeights) Raw(b *game.Board, pos int, player game.Color) (float64, bool) {
	code, ok := PatternAt(b, pos, player)
	if !ok {
		return 0, false
	}
	v := w.Patterns[code]
	if h := b.Height(pos); h < len(w.Heights) {
		v += w.Heights[h]
	}
	return v, true
}

// Weight squashes the raw score into [0, 1].
func (w *PatternWeights) Weight(b *game.Board, pos int, player game.Color) float64 {
	v, ok := w.Raw(b, pos, player)
	if !ok {
		return 0
	}
	return math.Atan(v)/math.Pi + 0.5
}

// Reward adds value to the pattern at pos (and its rotations) and to its height.
func (w *PatternWeights) Reward(b *game.Board, pos int, player game.Color, value float64) {
	code, ok := PatternAt(b, pos, player)
	if !ok {
		return
	}
	for _, r := range Rotations(code) {
		w.Patterns[r] += value
	}
	if h := b.Height(pos); h < len(w.Heights) {
		w.Heights[h] += value
	}
}
