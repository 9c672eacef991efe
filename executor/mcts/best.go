package mcts

import (
	"github.com/brensch/gouct/game"
)

// best returns the index of the valid, visited child with the highest score,
// breaking ties by lowest index, or Pass if there is none.
func best(n *Node, score func(child *Node) float64) int {
	move, top := game.Pass, 0.0
	for i, child := range n.Children {
		if child == nil || !child.Valid || child.Plays == 0 {
			continue
		}
		if s := score(child); move == game.Pass || s > top {
			move, top = i, s
		}
	}
	return move
}

// BestLCB picks the child with the highest lower confidence bound.
func (c Config) BestLCB(n *Node) int {
	return best(n, func(child *Node) float64 { return c.LCB(n, child) })
}

// BestRate picks the child with the highest win rate.
func (c Config) BestRate(n *Node) int {
	return best(n, c.Rate)
}

// BestPlays picks the most visited child.
func BestPlays(n *Node) int {
	return best(n, func(child *Node) float64 { return float64(child.Plays) })
}

// Best picks the final move according to c.Selection.
func (c Config) Best(n *Node) int {
	switch c.Selection {
	case SelectRate:
		return c.BestRate(n)
	case SelectPlays:
		return BestPlays(n)
	default:
		return c.BestLCB(n)
	}
}

// RateRecursive follows the highest win rate line while nodes have at least
// threshold plays and returns the win rate at its end, flipped back to the
// perspective of the player who moved into n. It returns -1 for an invalid
// node and 0 for an unvisited one.
func (c Config) RateRecursive(n *Node, threshold int) float64 {
	if n == nil || n.Plays == 0 {
		return 0
	}
	if !n.Valid {
		return invalidBound
	}
	if n.Plays < threshold {
		return c.Rate(n)
	}
	next := c.BestRate(n)
	if next == game.Pass {
		return c.Rate(n)
	}
	return 1 - c.RateRecursive(n.Children[next], threshold)
}

// PrincipalVariation returns up to limit moves along the most visited line.
func PrincipalVariation(n *Node, limit int) []int {
	var pv []int
	for len(pv) < limit {
		next := BestPlays(n)
		if next == game.Pass {
			break
		}
		pv = append(pv, next)
		n = n.Children[next]
	}
	return pv
}
