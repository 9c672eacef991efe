// Command debugsearch sets up a position, searches it once and prints what the
// tree saw: the board with liberties, the top root children, the principal
// variation and optionally the ownership map.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/executor/playout"
	"github.com/brensch/gouct/game"
	"github.com/brensch/gouct/rules"
	"github.com/brensch/gouct/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("debugsearch", flag.ContinueOnError)
	dim := fs.Int("dim", 9, "Board size when replaying -moves")
	moves := fs.String("moves", "", "Comma separated moves from the empty board, e.g. D4,E5,pass")
	position := fs.String("position", "", "File with board rows, top row first (X, O and .)")
	toMove := fs.String("to-move", "B", "Side to move for -position: B or W")
	komi := fs.Float64("komi", 7.5, "Komi")
	iterations := fs.Int("iterations", 10000, "Playouts across all threads")
	duration := fs.Duration("duration", 0, "Optional time limit")
	threads := fs.Int("threads", 4, "Parallel search trees")
	seed := fs.Int64("seed", 0, "Search seed (0 = clock)")
	scoring := fs.String("scoring", playout.ScoreFirstMatch.String(), "Playout scoring: first-match or flood")
	light := fs.Bool("light", false, "Use the light playout generator")
	weights := fs.String("weights", "", "Optional pattern weight file")
	ownership := fs.Bool("ownership", false, "Print the ownership map")
	top := fs.Int("top", 10, "Root children to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := setup(*dim, *moves, *position, *toMove)
	if err != nil {
		return err
	}

	var gen playout.Generator = playout.Heuristic{}
	if *light {
		gen = playout.Light{}
	} else if *weights != "" {
		w, skipped, err := store.LoadWeights(*weights)
		if err != nil {
			return err
		}
		if skipped > 0 {
			log.Printf("weights %s: skipped %d malformed lines", *weights, skipped)
		}
		gen = playout.Heuristic{Weights: w}
	}

	m := &mcts.MCTS{
		Config:         mcts.DefaultConfig(),
		Runner:         playout.Runner{Gen: gen, Komi: *komi, Scoring: playout.ParseScoring(*scoring)},
		Threads:        *threads,
		Seed:           *seed,
		TrackInfluence: *ownership,
	}

	fmt.Fprintf(out, "%s to move, komi %.1f, captures B=%d W=%d\n\n",
		b.ToMove, *komi, b.CapturesBy(game.Black), b.CapturesBy(game.White))
	writeBoards(out, b)

	res, err := m.Search(context.Background(), b, mcts.Budget{Iterations: *iterations, Duration: *duration})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbest %s  rate %.3f  lcb %.3f  plays %d  %v\n",
		b.FormatCoord(res.Move), res.WinRate, res.LCB, res.Plays, res.Elapsed.Round(time.Millisecond))
	if res.Resign {
		fmt.Fprintln(out, "(below resign threshold)")
	}
	fmt.Fprintf(out, "recursive rate %.3f\n\n", m.Config.RateRecursive(res.Root, 100))
	mcts.WriteSummary(out, m.Config.Summary(res.Root, *top))

	var pv []string
	for _, pos := range mcts.PrincipalVariation(res.Root, 10) {
		pv = append(pv, b.FormatCoord(pos))
	}
	fmt.Fprintf(out, "\npv: %s\n", strings.Join(pv, " "))

	if res.Influence != nil {
		fmt.Fprintln(out, "\nownership:")
		for _, row := range mcts.Ownership(b, res.Influence.Ownership()) {
			fmt.Fprintln(out, row)
		}
	}
	return nil
}

func setup(dim int, moves, position, toMove string) (*game.Board, error) {
	if position == "" {
		var list []string
		for _, mv := range strings.Split(moves, ",") {
			if mv = strings.TrimSpace(mv); mv != "" {
				list = append(list, mv)
			}
		}
		return rules.Replay(dim, list)
	}

	f, err := os.Open(position)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	c := game.Black
	switch strings.ToUpper(toMove) {
	case "B":
	case "W":
		c = game.White
	default:
		return nil, fmt.Errorf("unknown side to move %q", toMove)
	}
	return rules.ParseBoard(rows, c)
}

func writeBoards(out io.Writer, b *game.Board) {
	stones := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	libs := strings.Split(strings.TrimRight(b.LibertyString(), "\n"), "\n")
	for i, line := range stones {
		if i < len(libs) {
			fmt.Fprintf(out, "%s    %s\n", line, libs[i])
		} else {
			fmt.Fprintln(out, line)
		}
	}
}
