package playout

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/brensch/gouct/game"
	"github.com/brensch/gouct/rules"
)

func mustParse(t *testing.T, toMove game.Color, rows ...string) *game.Board {
	t.Helper()
	b, err := rules.ParseBoard(rows, toMove)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return b
}

// twoEyes is a 3x3 board Black owns outright; neither side has a useful move.
var twoEyes = []string{
	"X . X",
	"X X X",
	"X X .",
}

func TestLight_PassesWhenOnlyEyesRemain(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, c := range []game.Color{game.Black, game.White} {
		b := mustParse(t, c, twoEyes...)
		if got := (Light{}).Next(b, rng); got != game.Pass {
			t.Fatalf("%v: Light=%s want pass", c, b.FormatCoord(got))
		}
		if got := (Heuristic{}).Next(b, rng); got != game.Pass {
			t.Fatalf("%v: Heuristic=%s want pass", c, b.FormatCoord(got))
		}
	}
}

func TestGenerators_ReturnGoodMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	gens := map[string]Generator{
		"light":     Light{},
		"heuristic": Heuristic{},
		"patterns":  Heuristic{Weights: NewPatternWeights()},
	}
	for name, gen := range gens {
		b := game.New(9)
		for turn := 0; turn < 60; turn++ {
			pos := gen.Next(b, rng)
			if pos == game.Pass {
				rules.PlayPass(b)
				continue
			}
			if IsBadMove(b, pos, b.ToMove) {
				t.Fatalf("%s: bad move %s on turn %d\n%s", name, b.FormatCoord(pos), turn, b)
			}
			rules.Apply(b, pos, b.ToMove)
		}
	}
}

func TestHeuristic_Weight(t *testing.T) {
	b := mustParse(t, game.Black,
		". . . . . . .",
		". . . . . . .",
		". . X O . . .",
		". . . . . . .",
		". . . . . . .",
		". . . . . . .",
		". . . . . . .",
	)
	h := Heuristic{}
	// The white stone has three liberties, so playing next to it is only
	// near the last move, not urgent.
	b.Last = b.Position(4, 5)
	b.SecondLast = b.Position(4, 4)

	if w := h.Weight(b, b.Position(4, 6), game.Black); w != nearWeight {
		t.Fatalf("near weight=%v want=%v", w, nearWeight)
	}
	if w := h.Weight(b, b.Position(7, 1), game.Black); w != farWeight {
		t.Fatalf("far weight=%v want=%v", w, farWeight)
	}
	if w := h.Weight(b, b.Position(3, 5), game.Black); w != 0 {
		t.Fatalf("occupied weight=%v want=0", w)
	}

	atari := mustParse(t, game.Black,
		". . .",
		"X O .",
		". X .",
	)
	// C2 leaves the white stone a single liberty.
	if w := h.Weight(atari, atari.Position(3, 2), game.Black); w != urgentWeight {
		t.Fatalf("atari weight=%v want=%v", w, urgentWeight)
	}
}

type constWeights float64

func (c constWeights) Weight(*game.Board, int, game.Color) float64 { return float64(c) }

func TestHeuristic_WeightTableScales(t *testing.T) {
	b := game.New(9)
	h := Heuristic{Weights: constWeights(0.5)}
	if w := h.Weight(b, 40, game.Black); w != nearWeight*0.5 {
		t.Fatalf("weight=%v want=%v", w, nearWeight*0.5)
	}
	zero := Heuristic{Weights: constWeights(0)}
	if got := zero.Next(b, rand.New(rand.NewSource(1))); got != game.Pass {
		t.Fatalf("all-zero table should fall back to pass, got %d", got)
	}
}

// sparseWeights gives a tiny weight to listed points and zero elsewhere, so
// random draws almost never accept and the index scan decides.
type sparseWeights map[int]float64

func (s sparseWeights) Weight(_ *game.Board, pos int, _ game.Color) float64 { return s[pos] }

func TestHeuristic_ScanFallback(t *testing.T) {
	b := game.New(9)
	h := Heuristic{Weights: sparseWeights{57: 1e-12, 23: 1e-12, 70: 1e-12}}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		if got := h.Next(b, rng); got != 23 {
			t.Fatalf("draw %d: got=%d want=23 (lowest nonzero index)", i, got)
		}
	}
}

func TestRunner_TwoPassesEndGame(t *testing.T) {
	b := mustParse(t, game.White, twoEyes...)
	out := Runner{Komi: 7.5}.Simulate(b, rand.New(rand.NewSource(1)))
	if out.Moves != 2 {
		t.Fatalf("moves=%d want=2", out.Moves)
	}
	if out.Score != 9 {
		t.Fatalf("score=%d want=9", out.Score)
	}
	if out.Winner != game.Black {
		t.Fatalf("winner=%v want=B", out.Winner)
	}
}

func TestRunner_DoesNotMutateInput(t *testing.T) {
	b := game.New(9)
	rules.Apply(b, 40, game.Black)
	snapshot := b.Clone()

	r := Runner{Gen: Heuristic{}, Komi: 7.5}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		r.Run(b, rng)
	}
	if !reflect.DeepEqual(b, snapshot) {
		t.Fatalf("playout changed its input board")
	}
}

func TestRunner_Deterministic(t *testing.T) {
	b := game.New(9)
	r := Runner{Komi: 7.5}
	a := r.Simulate(b, rand.New(rand.NewSource(42)))
	c := r.Simulate(b, rand.New(rand.NewSource(42)))
	if a != c {
		t.Fatalf("same seed gave %+v and %+v", a, c)
	}
}

func TestRunner_MoveCap(t *testing.T) {
	b := game.New(9)
	out := Runner{MaxMoves: 5}.Simulate(b, rand.New(rand.NewSource(1)))
	if out.Moves > 5 {
		t.Fatalf("moves=%d want <= 5", out.Moves)
	}
}

func TestRunner_FloodScoring(t *testing.T) {
	b := mustParse(t, game.White,
		". . X . .",
		". . X . .",
		". . X . .",
		". . X . .",
		". . X . .",
	)
	// Keep both sides passing so the position is scored as is.
	r := Runner{Gen: passer{}, Scoring: ScoreFlood}
	if out := r.Simulate(b, rand.New(rand.NewSource(1))); out.Score != 25 {
		t.Fatalf("flood score=%d want=25", out.Score)
	}
	r.Scoring = ScoreFirstMatch
	if out := r.Simulate(b, rand.New(rand.NewSource(1))); out.Score != 15 {
		t.Fatalf("first-match score=%d want=15", out.Score)
	}
	if ParseScoring("flood") != ScoreFlood || ParseScoring("nonsense") != ScoreFirstMatch {
		t.Fatalf("ParseScoring mismatch")
	}
}

type passer struct{}

func (passer) Next(*game.Board, *rand.Rand) int { return game.Pass }

func TestInfluence(t *testing.T) {
	b := mustParse(t, game.White, twoEyes...)
	in := NewInfluence(b.Size())
	r := Runner{Gen: passer{}, Influence: in}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 4; i++ {
		r.Run(b, rng)
	}
	if in.Playouts != 4 {
		t.Fatalf("playouts=%d want=4", in.Playouts)
	}
	for pos, v := range in.Ownership() {
		if v != 1 {
			t.Fatalf("ownership[%d]=%v want=1", pos, v)
		}
	}

	other := NewInfluence(b.Size())
	other.Sum[0] = -4
	other.Playouts = 4
	in.Merge(other)
	if in.Playouts != 8 || in.Ownership()[0] != 0 {
		t.Fatalf("merge: playouts=%d own[0]=%v", in.Playouts, in.Ownership()[0])
	}
}

func TestPatternAt(t *testing.T) {
	b := mustParse(t, game.Black,
		"X . .",
		". . O",
		". . .",
	)
	// Centre B2: ring starts right (C2) and turns counter-clockwise.
	code, ok := PatternAt(b, b.Position(2, 2), game.Black)
	if !ok {
		t.Fatalf("centre should be encodable")
	}
	// C2 is opponent (slot 0), A3 is own (slot 3).
	want := uint16(codeOpponent | codeOwn<<6)
	if code != want {
		t.Fatalf("code=%016b want=%016b", code, want)
	}

	// Corner A1: left and below are edge.
	corner, _ := PatternAt(b, b.Position(1, 1), game.Black)
	for _, slot := range []int{3, 4, 5, 6, 7} {
		if (corner>>(2*slot))&3 != codeEdge {
			t.Fatalf("slot %d of %016b should be edge", slot, corner)
		}
	}

	if _, ok := PatternAt(b, b.Position(1, 3), game.Black); ok {
		t.Fatalf("occupied point should not encode")
	}
}

func TestRotations(t *testing.T) {
	code := uint16(codeOwn) // own stone to the right
	r := Rotations(code)
	if r[0] != code {
		t.Fatalf("r0=%016b", r[0])
	}
	// A quarter turn moves the stone two slots around the ring.
	seen := map[uint16]bool{}
	for _, v := range r {
		seen[v] = true
	}
	if len(seen) != 4 {
		t.Fatalf("rotations of a single stone should be distinct: %v", r)
	}
	for _, v := range r {
		if bitsSet(v) != 1 {
			t.Fatalf("rotation %016b changed the stone count", v)
		}
	}
}

func bitsSet(v uint16) int {
	n := 0
	for ; v != 0; v &= v - 1 {
		n++
	}
	return n
}

func TestPatternWeights_Reward(t *testing.T) {
	b := game.New(9)
	w := NewPatternWeights()
	pos := b.Position(3, 3)
	if got := w.Weight(b, pos, game.Black); got != 0.5 {
		t.Fatalf("zero table weight=%v want=0.5", got)
	}
	w.Reward(b, pos, game.Black, 1)
	// The empty pattern is its own rotation, so it is rewarded four times.
	raw, _ := w.Raw(b, pos, game.Black)
	if raw != 5 {
		t.Fatalf("raw=%v want=5 (4 pattern + 1 height)", raw)
	}
	if got, want := w.Weight(b, pos, game.Black), math.Atan(5)/math.Pi+0.5; got != want {
		t.Fatalf("weight=%v want=%v", got, want)
	}
	// Same empty pattern on another line: only the pattern bonus applies.
	if raw, _ := w.Raw(b, b.Position(5, 5), game.Black); raw != 4 {
		t.Fatalf("raw=%v want=4", raw)
	}
}

func BenchmarkLightPlayout9x9(b *testing.B) {
	board := game.New(9)
	r := Runner{Komi: 7.5}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < b.N; i++ {
		r.Run(board, rng)
	}
}

func BenchmarkHeuristicPlayout19x19(b *testing.B) {
	board := game.New(19)
	r := Runner{Gen: Heuristic{}, Komi: 7.5}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < b.N; i++ {
		r.Run(board, rng)
	}
}
