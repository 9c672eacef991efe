package game

import (
	"fmt"
	"strings"
)

// String renders the board top row first with X for Black, O for White and
// . for empty points, followed by column letters.
func (b *Board) String() string {
	var sb strings.Builder
	for y := b.Dim; y >= 1; y-- {
		fmt.Fprintf(&sb, "%2d ", y)
		for x := 1; x <= b.Dim; x++ {
			sb.WriteByte(stoneChar(b.ColorAt(b.Position(x, y))))
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   ")
	for x := 0; x < b.Dim; x++ {
		sb.WriteByte(columnLetters[x])
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}

// LibertyString renders every stone as its group's liberty count (capped at
// 9), lower case for White, so liberty bookkeeping can be eyeballed.
func (b *Board) LibertyString() string {
	var sb strings.Builder
	for y := b.Dim; y >= 1; y-- {
		for x := 1; x <= b.Dim; x++ {
			pos := b.Position(x, y)
			switch b.ColorAt(pos) {
			case Black:
				sb.WriteByte(byte('0' + min(b.Liberties(pos), 9)))
			case White:
				sb.WriteByte(byte('a' + min(b.Liberties(pos), 9)))
			default:
				sb.WriteByte('.')
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func stoneChar(c Color) byte {
	switch c {
	case Black:
		return 'X'
	case White:
		return 'O'
	default:
		return '.'
	}
}
