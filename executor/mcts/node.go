package mcts

import (
	"github.com/brensch/gouct/executor/playout"
	"github.com/brensch/gouct/game"
	"github.com/brensch/gouct/rules"
)

// Node is a position in the search tree.
//
// Wins counts playouts won by the player who moved into the node, so a
// parent compares its children by their Wins directly. Children is indexed
// by board position and allocated on first selection. A child whose move was
// illegal stays in the table with Valid false and no Board so it is never
// validated again.
type Node struct {
	Board    *game.Board
	Move     int
	Wins     int
	Plays    int
	Valid    bool
	Children []*Node
}

// NewRoot returns a root node holding a copy of b.
func NewRoot(b *game.Board) *Node {
	return &Node{
		Board: b.Clone(),
		Move:  b.Last,
		Valid: true,
	}
}

// Mover is the player whose move produced this node.
func (n *Node) Mover() game.Color {
	return n.Board.ToMove.Opponent()
}

// Child returns the child for pos, or nil if it has not been created.
func (n *Node) Child(pos int) *Node {
	if pos < 0 || pos >= len(n.Children) {
		return nil
	}
	return n.Children[pos]
}

// expand creates the child for pos. Illegal moves produce an invalid child.
func (n *Node) expand(pos int) *Node {
	player := n.Board.ToMove
	child := &Node{Move: pos}
	if rules.IsLegal(n.Board, pos, player) {
		child.Board = n.Board.Clone()
		rules.Apply(child.Board, pos, player)
		child.Valid = true
	}
	n.Children[pos] = child
	return child
}

// Selection picks which statistic decides the final move.
type Selection int

const (
	SelectLCB Selection = iota
	SelectRate
	SelectPlays
)

func (s Selection) String() string {
	switch s {
	case SelectRate:
		return "rate"
	case SelectPlays:
		return "plays"
	default:
		return "lcb"
	}
}

// ParseSelection accepts "lcb", "rate" and "plays". Anything else is lcb.
func ParseSelection(s string) Selection {
	switch s {
	case "rate":
		return SelectRate
	case "plays":
		return SelectPlays
	default:
		return SelectLCB
	}
}

// Config holds UCT configuration.
type Config struct {
	Exploration float64
	// Smoothing estimates win rates as (wins+1)/(plays+1).
	Smoothing       bool
	ResignThreshold float64
	Selection       Selection
}

func DefaultConfig() Config {
	return Config{
		Exploration:     0.5,
		ResignThreshold: 0.2,
		Selection:       SelectLCB,
	}
}

// Tree is a single-threaded UCT search tree.
type Tree struct {
	Root   *Node
	Config Config
	Runner playout.Runner

	path []*Node
}

func NewTree(b *game.Board, cfg Config, runner playout.Runner) *Tree {
	return &Tree{
		Root:   NewRoot(b),
		Config: cfg,
		Runner: runner,
	}
}
