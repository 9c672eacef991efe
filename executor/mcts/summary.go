package mcts

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/brensch/gouct/game"
)

// ChildStat is one row of a search summary.
type ChildStat struct {
	Move  int     `json:"move"`
	Coord string  `json:"coord"`
	Plays int     `json:"plays"`
	Wins  int     `json:"wins"`
	LCB   float64 `json:"lcb"`
	Rate  float64 `json:"rate"`
	UCB   float64 `json:"ucb"`
}

// Summary returns the k most visited valid children of n, most visited
// first. k <= 0 returns all of them.
func (c Config) Summary(n *Node, k int) []ChildStat {
	var stats []ChildStat
	for i, child := range n.Children {
		if child == nil || !child.Valid || child.Plays == 0 {
			continue
		}
		stats = append(stats, ChildStat{
			Move:  i,
			Coord: n.Board.FormatCoord(i),
			Plays: child.Plays,
			Wins:  child.Wins,
			LCB:   c.LCB(n, child),
			Rate:  c.Rate(child),
			UCB:   c.UCB(n, child),
		})
	}
	slices.SortStableFunc(stats, func(a, b ChildStat) int {
		return cmp.Compare(b.Plays, a.Plays)
	})
	if k > 0 && len(stats) > k {
		stats = stats[:k]
	}
	return stats
}

// WriteSummary prints stats as an aligned table.
func WriteSummary(w io.Writer, stats []ChildStat) {
	fmt.Fprintf(w, "%-5s %8s %8s %7s %7s %7s\n", "move", "plays", "wins", "lcb", "rate", "ucb")
	for _, s := range stats {
		fmt.Fprintf(w, "%-5s %8d %8d %7.3f %7.3f %7.3f\n", s.Coord, s.Plays, s.Wins, s.LCB, s.Rate, s.UCB)
	}
}

// Ownership maps an influence tally onto the board as rows of characters,
// top row first: B or W for points owned at least 60% of the time, b or w
// above 20%, and . otherwise.
func Ownership(b *game.Board, own []float64) []string {
	rows := make([]string, 0, b.Dim)
	for y := b.Dim; y >= 1; y-- {
		row := make([]byte, 0, b.Dim)
		for x := 1; x <= b.Dim; x++ {
			pos := b.Position(x, y)
			v := 0.0
			if pos < len(own) {
				v = own[pos]
			}
			switch {
			case v >= 0.6:
				row = append(row, 'B')
			case v > 0.2:
				row = append(row, 'b')
			case v <= -0.6:
				row = append(row, 'W')
			case v < -0.2:
				row = append(row, 'w')
			default:
				row = append(row, '.')
			}
		}
		rows = append(rows, string(row))
	}
	return rows
}
