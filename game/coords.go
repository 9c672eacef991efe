package game

import (
	"fmt"
	"strconv"
	"strings"
)

// columnLetters skips I, as is traditional on Go boards.
const columnLetters = "ABCDEFGHJKLMNOPQRST"

// FormatCoord renders pos as a column letter and row number ("D4"), or "pass".
func (b *Board) FormatCoord(pos int) string {
	if !b.OnBoard(pos) {
		return "pass"
	}
	x, y := b.Coords(pos)
	return string(columnLetters[x-1]) + strconv.Itoa(y)
}

// ParseCoord parses "D4"-style coordinates (case-insensitive) or "pass".
func (b *Board) ParseCoord(s string) (int, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "PASS" {
		return Pass, nil
	}
	if len(s) < 2 {
		return Pass, fmt.Errorf("invalid coordinate %q", s)
	}
	col := strings.IndexByte(columnLetters, s[0])
	if col < 0 {
		return Pass, fmt.Errorf("invalid column in %q", s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return Pass, fmt.Errorf("invalid row in %q: %w", s, err)
	}
	pos := b.Position(col+1, row)
	if pos == Pass {
		return Pass, fmt.Errorf("coordinate %q off a %dx%d board", s, b.Dim, b.Dim)
	}
	return pos, nil
}

// Dist is the move distance used by the playout heuristics: dx + dy + max(dx, dy).
// Pass on either side counts as distance 1.
func (b *Board) Dist(p1, p2 int) int {
	if !b.OnBoard(p1) || !b.OnBoard(p2) {
		return 1
	}
	x0, y0 := p1%b.Dim, p1/b.Dim
	x1, y1 := p2%b.Dim, p2/b.Dim
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	return dx + dy + max(dx, dy)
}

// Height is the 1-based line number of pos counted from the nearest edge.
func (b *Board) Height(pos int) int {
	if !b.OnBoard(pos) {
		return 0
	}
	x, y := b.Coords(pos)
	if x > b.Dim/2+1 {
		x = b.Dim - x + 1
	}
	if y > b.Dim/2+1 {
		y = b.Dim - y + 1
	}
	return min(x, y)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
