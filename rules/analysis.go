package rules

import (
	"github.com/brensch/gouct/game"
)

// IsCapture reports whether a stone at pos would capture an adjacent opponent group.
func IsCapture(b *game.Board, pos int, player game.Color) bool {
	return touchesGroupWithLibs(b, pos, player.Opponent(), 1)
}

// IsAtari reports whether a stone at pos would put an adjacent opponent group in atari.
func IsAtari(b *game.Board, pos int, player game.Color) bool {
	return touchesGroupWithLibs(b, pos, player.Opponent(), 2)
}

// IsExtend reports whether a stone at pos extends a friendly group that is in atari.
func IsExtend(b *game.Board, pos int, player game.Color) bool {
	return touchesGroupWithLibs(b, pos, player, 1)
}

func touchesGroupWithLibs(b *game.Board, pos int, color game.Color, libs int) bool {
	for _, nb := range b.Neighbors(pos) {
		if b.ColorAt(nb) == color && b.Liberties(nb) == libs {
			return true
		}
	}
	return false
}

// IsEye reports whether pos is an empty point enclosed by player: every
// on-board neighbour belongs to player and none of those groups is in atari.
func IsEye(b *game.Board, pos int, player game.Color) bool {
	if b.ColorAt(pos) != game.Empty {
		return false
	}
	for _, nb := range b.Neighbors(pos) {
		c := b.ColorAt(nb)
		if c == game.Invalid {
			continue
		}
		if c != player || b.Liberties(nb) == 1 {
			return false
		}
	}
	return true
}
