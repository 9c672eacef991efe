// Package game defines the board state for Go (baduk) and the union-find group
// tracker that backs it.
//
// The state is designed to be cheaply clonable for MCTS tree exploration: a
// Board is a struct plus one flat slice of points, and Clone costs a single
// allocation. Off-board queries return sentinels (Invalid, Pass, -1) instead of
// errors so neighbour loops never branch on error paths.
package game

import (
	"errors"
	"fmt"
	"sync"
)

// Color is the occupant of a board position.
// Black and White are additive inverses so the opponent is a negation.
type Color int8

const (
	White   Color = -1
	Empty   Color = 0
	Black   Color = 1
	Invalid Color = 2
)

// Opponent returns the other player. Empty and Invalid map to themselves.
func (c Color) Opponent() Color {
	if c == Black || c == White {
		return -c
	}
	return c
}

func (c Color) String() string {
	switch c {
	case Black:
		return "B"
	case White:
		return "W"
	case Empty:
		return "."
	default:
		return "?"
	}
}

// Pass is both the pass move and the "no position" sentinel.
const Pass = -1

const (
	MinDim     = 2
	MaxDim     = 19
	DefaultDim = 19
)

var ErrDimension = errors.New("board dimension out of range")

// Point is a single board position.
//
// Group, Rank and Libs form the union-find structure: Group is the parent
// pointer (self when root), Rank is the union-by-rank height bound and Libs is
// only meaningful at the root. Next links all stones of a group into a
// circular ring so members can be enumerated without recursion.
type Point struct {
	Group int16
	Next  int16
	Libs  int16
	Color Color
	Rank  int8
}

// Board is a square Go board.
type Board struct {
	Dim    int
	Points []Point

	// Ko is the single point the side to move may not play, or Pass.
	Ko int
	// koStone is the stone whose capture created Ko.
	koStone int

	ToMove     Color
	Last       int
	SecondLast int

	// Captured counts stones captured by each player, indexed by captureIndex.
	Captured [2]int

	adj *adjacency
}

// New returns an empty board. It panics if dim is out of range; use
// NewChecked for dimensions that come from user input.
func New(dim int) *Board {
	b, err := NewChecked(dim)
	if err != nil {
		panic(err)
	}
	return b
}

// NewChecked returns an empty board or ErrDimension.
func NewChecked(dim int) (*Board, error) {
	if dim < MinDim || dim > MaxDim {
		return nil, fmt.Errorf("%w: %d", ErrDimension, dim)
	}
	b := &Board{
		Dim:        dim,
		Points:     make([]Point, dim*dim),
		Ko:         Pass,
		koStone:    Pass,
		ToMove:     Black,
		Last:       Pass,
		SecondLast: Pass,
		adj:        adjacencyFor(dim),
	}
	for i := range b.Points {
		b.Points[i].Group = int16(i)
		b.Points[i].Next = int16(i)
	}
	return b, nil
}

// Clone performs a deep copy of the board. The adjacency table is immutable
// and shared between clones.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := *b
	out.Points = make([]Point, len(b.Points))
	copy(out.Points, b.Points)
	return &out
}

// CopyFrom overwrites b with src without allocating when the sizes match.
func (b *Board) CopyFrom(src *Board) {
	points := b.Points
	*b = *src
	if cap(points) >= len(src.Points) {
		points = points[:len(src.Points)]
	} else {
		points = make([]Point, len(src.Points))
	}
	copy(points, src.Points)
	b.Points = points
}

// Size is the number of positions on the board.
func (b *Board) Size() int { return len(b.Points) }

// OnBoard reports whether pos is a valid index.
func (b *Board) OnBoard(pos int) bool {
	return pos >= 0 && pos < len(b.Points)
}

// Position maps 1-indexed column x and row y to an index, or Pass when out of bounds.
func (b *Board) Position(x, y int) int {
	if x < 1 || y < 1 || x > b.Dim || y > b.Dim {
		return Pass
	}
	return (y-1)*b.Dim + (x - 1)
}

// Coords is the inverse of Position. Pass and off-board indexes return (0, 0).
func (b *Board) Coords(pos int) (x, y int) {
	if !b.OnBoard(pos) {
		return 0, 0
	}
	return pos%b.Dim + 1, pos/b.Dim + 1
}

// ColorAt returns the color at pos, Invalid when pos is off the board.
func (b *Board) ColorAt(pos int) Color {
	if !b.OnBoard(pos) {
		return Invalid
	}
	return b.Points[pos].Color
}

// SetKo records the ko point created by capturing with stone.
func (b *Board) SetKo(point, stone int) {
	b.Ko = point
	b.koStone = stone
}

// ClearKo lifts the ko ban.
func (b *Board) ClearKo() {
	b.Ko = Pass
	b.koStone = Pass
}

// KoStone returns the stone whose single-stone capture set the current Ko.
func (b *Board) KoStone() int { return b.koStone }

// RecordMove shifts the move history and hands the turn to the opponent of player.
func (b *Board) RecordMove(pos int, player Color) {
	b.SecondLast = b.Last
	b.Last = pos
	b.ToMove = player.Opponent()
}

// AddCaptures credits n captured stones to player.
func (b *Board) AddCaptures(player Color, n int) {
	if i := captureIndex(player); i >= 0 {
		b.Captured[i] += n
	}
}

// CapturesBy returns the number of stones player has captured.
func (b *Board) CapturesBy(player Color) int {
	if i := captureIndex(player); i >= 0 {
		return b.Captured[i]
	}
	return 0
}

func captureIndex(c Color) int {
	switch c {
	case Black:
		return 0
	case White:
		return 1
	default:
		return -1
	}
}

// Stones counts the stones of color c.
func (b *Board) Stones(c Color) int {
	n := 0
	for i := range b.Points {
		if b.Points[i].Color == c {
			n++
		}
	}
	return n
}

// Direction indexes the four orthogonal neighbours.
const (
	Right = iota
	Up
	Left
	Down
)

type adjacency struct {
	dim       int
	neighbors [][4]int
}

var adjacencyCache sync.Map // int -> *adjacency

func adjacencyFor(dim int) *adjacency {
	if a, ok := adjacencyCache.Load(dim); ok {
		return a.(*adjacency)
	}
	a := &adjacency{dim: dim, neighbors: make([][4]int, dim*dim)}
	for pos := range a.neighbors {
		x, y := pos%dim, pos/dim
		a.neighbors[pos] = [4]int{Pass, Pass, Pass, Pass}
		if x+1 < dim {
			a.neighbors[pos][Right] = pos + 1
		}
		if y+1 < dim {
			a.neighbors[pos][Up] = pos + dim
		}
		if x > 0 {
			a.neighbors[pos][Left] = pos - 1
		}
		if y > 0 {
			a.neighbors[pos][Down] = pos - dim
		}
	}
	actual, _ := adjacencyCache.LoadOrStore(dim, a)
	return actual.(*adjacency)
}

// Adj returns the neighbour of pos in direction dir, or Pass when that is off the board.
func (b *Board) Adj(pos, dir int) int {
	if !b.OnBoard(pos) || dir < 0 || dir > 3 {
		return Pass
	}
	return b.adj.neighbors[pos][dir]
}

// Neighbors returns the four neighbours of pos in Right, Up, Left, Down order.
// Off-board neighbours are Pass.
func (b *Board) Neighbors(pos int) [4]int {
	if !b.OnBoard(pos) {
		return [4]int{Pass, Pass, Pass, Pass}
	}
	return b.adj.neighbors[pos]
}
