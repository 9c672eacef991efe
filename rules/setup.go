package rules

import (
	"fmt"
	"strings"

	"github.com/brensch/gouct/game"
)

// ParseBoard builds a position from rows of X (Black), O (White) and .
// (empty), top row first. Spaces are ignored. Stones are placed with Apply so
// groups and liberties are consistent; a row set that leaves a group without
// liberties is rejected. The result has no ko, no move history and toMove to
// play.
func ParseBoard(rows []string, toMove game.Color) (*game.Board, error) {
	b, err := game.NewChecked(len(rows))
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		row = strings.ReplaceAll(row, " ", "")
		if len(row) != b.Dim {
			return nil, fmt.Errorf("row %d: got %d points, want %d", i+1, len(row), b.Dim)
		}
		y := b.Dim - i
		for x := 1; x <= b.Dim; x++ {
			var c game.Color
			switch row[x-1] {
			case 'X', 'x', 'B', 'b':
				c = game.Black
			case 'O', 'o', 'W', 'w':
				c = game.White
			case '.', '+':
				continue
			default:
				return nil, fmt.Errorf("row %d: unexpected %q", i+1, row[x-1])
			}
			pos := b.Position(x, y)
			if captured := Apply(b, pos, c); captured > 0 {
				return nil, fmt.Errorf("stone at %s captures %d stones", b.FormatCoord(pos), captured)
			}
		}
	}

	for pos := 0; pos < b.Size(); pos++ {
		if b.ColorAt(pos) != game.Empty && b.Liberties(pos) == 0 {
			return nil, fmt.Errorf("group at %s has no liberties", b.FormatCoord(pos))
		}
	}

	b.ClearKo()
	b.Captured = [2]int{}
	b.Last, b.SecondLast = game.Pass, game.Pass
	b.ToMove = toMove
	return b, nil
}

// Replay plays moves in order from an empty board, alternating colours from
// Black. Each move is a coordinate such as "D4" or "pass".
func Replay(dim int, moves []string) (*game.Board, error) {
	b, err := game.NewChecked(dim)
	if err != nil {
		return nil, err
	}
	for i, mv := range moves {
		pos, err := b.ParseCoord(mv)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		if !Play(b, pos) {
			return nil, fmt.Errorf("move %d: %s is illegal for %s", i+1, mv, b.ToMove)
		}
	}
	return b, nil
}
