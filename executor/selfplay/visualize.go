package selfplay

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/game"
)

// PrintMove logs the board after a move together with the liberty map and
// the top root children that led to it.
func PrintMove(workerID int, b *game.Board, res mcts.Result, cfg mcts.Config) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\n=== [Worker %d] %s played %s (rate %.3f, lcb %.3f, %d plays, %v) ===\n",
		workerID, b.ToMove.Opponent(), b.FormatCoord(res.Move), res.WinRate, res.LCB, res.Plays, res.Elapsed.Round(time.Millisecond))
	sideBySide(&sb, b.String(), b.LibertyString())
	mcts.WriteSummary(&sb, cfg.Summary(res.Root, 5))
	log.Print(sb.String())
}

// sideBySide writes two multi-line blocks next to each other.
func sideBySide(sb *strings.Builder, left, right string) {
	l := strings.Split(strings.TrimRight(left, "\n"), "\n")
	r := strings.Split(strings.TrimRight(right, "\n"), "\n")
	width := 0
	for _, line := range l {
		width = max(width, len(line))
	}
	for i := 0; i < max(len(l), len(r)); i++ {
		var a, c string
		if i < len(l) {
			a = l[i]
		}
		if i < len(r) {
			c = r[i]
		}
		fmt.Fprintf(sb, "%-*s   %s\n", width, a, c)
	}
}
