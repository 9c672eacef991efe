package mcts

import (
	"math"
	"math/rand"

	"github.com/brensch/gouct/game"
)

// selectChild returns the child index of n with the highest UCB, allocating
// the child table on first use. The scan starts at a random offset so ties
// between unvisited children break randomly. It returns -1 when every child
// is invalid.
func (t *Tree) selectChild(n *Node, rng *rand.Rand) int {
	size := n.Board.Size()
	if n.Children == nil {
		n.Children = make([]*Node, size)
	}

	start := 0
	if rng != nil {
		start = rng.Intn(size)
	}

	best, bestBound := -1, invalidBound
	for i := 0; i < size; i++ {
		idx := (start + i) % size
		bound := t.Config.UCB(n, n.Children[idx])
		if math.IsInf(bound, 1) {
			return idx
		}
		if bound > bestBound {
			best, bestBound = idx, bound
		}
	}
	return best
}

// Step runs one search iteration: select down the tree by UCB, expand one
// new child, play it out and credit the result to every node on the path.
// It returns the playout winner.
//
// A node with no selectable child (every move illegal) is treated as a leaf
// and played out from its own position.
func (t *Tree) Step(rng *rand.Rand) game.Color {
	path := append(t.path[:0], t.Root)
	node := t.Root

	var winner game.Color
	for {
		idx := t.selectChild(node, rng)
		if idx < 0 {
			winner = t.Runner.Run(node.Board, rng)
			break
		}

		child := node.Children[idx]
		if child == nil {
			child = node.expand(idx)
			if !child.Valid {
				continue
			}
			path = append(path, child)
			winner = t.Runner.Run(child.Board, rng)
			break
		}

		path = append(path, child)
		node = child
	}

	for _, n := range path {
		n.Plays++
		if winner == n.Mover() {
			n.Wins++
		}
	}
	t.path = path
	return winner
}

// Depth returns the length of the most visited line below the root.
func (t *Tree) Depth() int {
	depth := 0
	for n := t.Root; ; depth++ {
		next := BestPlays(n)
		if next == game.Pass {
			return depth
		}
		n = n.Children[next]
	}
}
