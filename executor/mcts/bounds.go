package mcts

import (
	"math"
)

// invalidBound ranks below every real bound.
const invalidBound = -1.0

func (c Config) mean(n *Node) float64 {
	if c.Smoothing {
		return float64(n.Wins+1) / float64(n.Plays+1)
	}
	return float64(n.Wins) / float64(n.Plays)
}

func (c Config) spread(parentPlays, plays int) float64 {
	return c.Exploration * math.Sqrt(math.Log(float64(parentPlays)+1)/float64(plays))
}

// UCB is the optimistic bound used during selection. Unvisited children
// return +Inf so every legal move is tried once before any is revisited.
func (c Config) UCB(parent, child *Node) float64 {
	if child == nil {
		return math.Inf(1)
	}
	if !child.Valid {
		return invalidBound
	}
	if child.Plays == 0 {
		return math.Inf(1)
	}
	return c.mean(child) + c.spread(parent.Plays, child.Plays)
}

// LCB is the conservative bound used to pick the final move, clamped at 0.
func (c Config) LCB(parent, child *Node) float64 {
	if child == nil || child.Plays == 0 {
		return 0
	}
	if !child.Valid {
		return invalidBound
	}
	return max(c.mean(child)-c.spread(parent.Plays, child.Plays), 0)
}

// Rate is the observed win rate of child for the player who moved into it.
func (c Config) Rate(child *Node) float64 {
	if child == nil || child.Plays == 0 {
		return 0
	}
	if !child.Valid {
		return invalidBound
	}
	return c.mean(child)
}
