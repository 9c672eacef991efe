package rules

import (
	"github.com/brensch/gouct/game"
)

// Score returns Black's area minus White's area.
//
// Each stone counts for its color. Each empty point counts for the color of
// its first occupied neighbour in Right, Up, Left, Down order; points with no
// occupied neighbour count for nobody. This undercounts large enclosed
// territories, which playouts tolerate because they fill the board first.
func Score(b *game.Board) int {
	black, white := 0, 0
	for pos := 0; pos < b.Size(); pos++ {
		switch b.ColorAt(pos) {
		case game.Black:
			black++
		case game.White:
			white++
		case game.Empty:
			for _, nb := range b.Neighbors(pos) {
				c := b.ColorAt(nb)
				if c == game.Black {
					black++
					break
				}
				if c == game.White {
					white++
					break
				}
			}
		}
	}
	return black - white
}

// AreaScore is flood-fill area scoring: stones plus every contiguous empty
// region whose border touches only one color. Neutral regions count for
// nobody. It values territory differently from Score and so changes playout
// statistics when used there.
func AreaScore(b *game.Board) int {
	black, white := 0, 0
	var seen [game.MaxDim * game.MaxDim]bool
	var buf [game.MaxDim * game.MaxDim]int
	for pos := 0; pos < b.Size(); pos++ {
		switch b.ColorAt(pos) {
		case game.Black:
			black++
			continue
		case game.White:
			white++
			continue
		}
		if seen[pos] {
			continue
		}

		stack := append(buf[:0], pos)
		seen[pos] = true
		region := 0
		touchesBlack, touchesWhite := false, false
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			region++
			for _, nb := range b.Neighbors(p) {
				switch b.ColorAt(nb) {
				case game.Empty:
					if !seen[nb] {
						seen[nb] = true
						stack = append(stack, nb)
					}
				case game.Black:
					touchesBlack = true
				case game.White:
					touchesWhite = true
				}
			}
		}
		switch {
		case touchesBlack && !touchesWhite:
			black += region
		case touchesWhite && !touchesBlack:
			white += region
		}
	}
	return black - white
}

// Winner returns Black when score beats komi, White otherwise. Ties go to White.
func Winner(score int, komi float64) game.Color {
	if float64(score)-komi > 0 {
		return game.Black
	}
	return game.White
}
