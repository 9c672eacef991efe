package rules

import (
	"github.com/brensch/gouct/game"
)

// IsLegal reports whether player may place a stone at pos.
//
// A move is illegal when the point is occupied, when it retakes a ko
// immediately, or when it would be suicide: no empty neighbour, no adjacent
// opponent group left without liberties, and no adjacent friendly group with
// a liberty to spare. Pass is always legal.
func IsLegal(b *game.Board, pos int, player game.Color) bool {
	if pos == game.Pass {
		return true
	}
	if b.ColorAt(pos) != game.Empty {
		return false
	}

	if pos == b.Ko && b.ColorAt(b.KoStone()) == player.Opponent() && b.Liberties(b.KoStone()) == 1 {
		return false
	}

	opponent := player.Opponent()
	for _, nb := range b.Neighbors(pos) {
		switch b.ColorAt(nb) {
		case game.Empty:
			return true
		case opponent:
			if b.Liberties(nb) == 1 {
				return true
			}
		case player:
			if b.Liberties(nb) > 1 {
				return true
			}
		}
	}
	return false
}

// LegalMoves returns every legal placement for player, in index order.
func LegalMoves(b *game.Board, player game.Color) []int {
	moves := make([]int, 0, b.Size())
	for pos := 0; pos < b.Size(); pos++ {
		if IsLegal(b, pos, player) {
			moves = append(moves, pos)
		}
	}
	return moves
}

// Apply places a stone for player at pos. The move is assumed legal; call
// IsLegal first. It returns the number of stones captured.
//
// Liberty counts stay exact: each touched group loses one liberty however many
// of its stones border pos, and a merged group is recounted. A per-edge
// decrement would undercount shared liberties and skew the atari and capture
// checks the playout generators rely on.
func Apply(b *game.Board, pos int, player game.Color) int {
	b.ClearKo()

	// A new stone takes one liberty from every distinct group it touches.
	roots, n := b.NeighborGroups(pos)
	for _, root := range roots[:n] {
		b.AddLiberties(root, -1)
	}

	opponent := player.Opponent()
	captured, capturedAt := 0, game.Pass
	for _, root := range roots[:n] {
		if b.ColorAt(root) != opponent || b.Liberties(root) > 0 {
			continue
		}
		removed, last := b.RemoveGroup(root)
		captured += removed
		capturedAt = last
	}

	libs := 0
	for _, nb := range b.Neighbors(pos) {
		if b.ColorAt(nb) == game.Empty {
			libs++
		}
	}
	b.Points[pos] = game.Point{
		Group: int16(pos),
		Next:  int16(pos),
		Libs:  int16(libs),
		Color: player,
	}

	merged := false
	for _, root := range roots[:n] {
		if b.ColorAt(root) == player {
			b.Union(pos, root)
			merged = true
		}
	}
	if merged {
		b.RecountLiberties(pos)
	}

	if captured == 1 && !merged && libs == 1 {
		b.SetKo(capturedAt, pos)
	}
	b.AddCaptures(player, captured)
	b.RecordMove(pos, player)
	return captured
}

// PlayPass records a pass for the side to move. A pass lifts any ko ban.
func PlayPass(b *game.Board) {
	b.ClearKo()
	b.RecordMove(game.Pass, b.ToMove)
}

// Play validates and applies a move for the side to move, passing when pos is
// Pass. It reports whether the move was legal; illegal moves leave the board
// untouched.
func Play(b *game.Board, pos int) bool {
	if pos == game.Pass {
		PlayPass(b)
		return true
	}
	if !IsLegal(b, pos, b.ToMove) {
		return false
	}
	Apply(b, pos, b.ToMove)
	return true
}
