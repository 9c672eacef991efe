package selfplay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/executor/playout"
	"github.com/brensch/gouct/game"
	"github.com/brensch/gouct/rules"
	"github.com/brensch/gouct/store"
)

// summaryChildren caps the root children stored with each move.
const summaryChildren = 8

// Options configures one engine-vs-engine game. Both sides use the same
// search settings.
type Options struct {
	Dim     int
	Komi    float64
	Budget  mcts.Budget
	Threads int
	Config  mcts.Config
	Runner  playout.Runner

	// MaxTurns ends the game and scores the board as it stands. Zero means
	// twice the board size.
	MaxTurns int
	// Seed fixes every search in the game. Zero seeds from the clock.
	Seed int64

	Verbose bool
	// OnMove is called after every move is played.
	OnMove func()
}

type GameResult struct {
	GameID   string
	Winner   game.Color
	Score    int
	Moves    int
	Resigned bool
}

// PlayGame plays one game from the empty board. Every row of the game carries
// the final result. If ctx is cancelled the partial game is dropped and
// ctx.Err() is returned.
func PlayGame(ctx context.Context, workerID int, opts Options) ([]store.GameMoveRow, GameResult, error) {
	b, err := game.NewChecked(opts.Dim)
	if err != nil {
		return nil, GameResult{}, err
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = 2 * b.Size()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano() + int64(workerID)*1000003
	}
	rng := rand.New(rand.NewSource(seed))

	runner := opts.Runner
	runner.Komi = opts.Komi

	result := GameResult{GameID: fmt.Sprintf("selfplay_%d_%d", time.Now().UnixNano(), workerID)}
	rows := make([]store.GameMoveRow, 0, maxTurns)

	passes := 0
	for turn := 0; turn < maxTurns && passes < 2; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}

		m := &mcts.MCTS{
			Config:  opts.Config,
			Runner:  runner,
			Threads: opts.Threads,
			Seed:    rng.Int63() | 1,
		}
		res, err := m.Search(ctx, b, opts.Budget)
		if err != nil {
			return nil, result, err
		}

		player := b.ToMove
		if res.Resign {
			result.Winner = player.Opponent()
			result.Resigned = true
			if opts.Verbose {
				log.Printf("[Worker %d] %s resigns at move %d (rate %.3f)", workerID, player, turn+1, res.WinRate)
			}
			break
		}

		summary, err := json.Marshal(opts.Config.Summary(res.Root, summaryChildren))
		if err != nil {
			return nil, result, fmt.Errorf("encode summary: %w", err)
		}
		rows = append(rows, store.GameMoveRow{
			GameID:      result.GameID,
			MoveNumber:  int32(turn + 1),
			Dim:         int32(b.Dim),
			Komi:        float32(opts.Komi),
			Color:       int32(player),
			Move:        int32(res.Move),
			Coord:       b.FormatCoord(res.Move),
			WinRate:     float32(res.WinRate),
			LCB:         float32(res.LCB),
			Plays:       int32(res.Plays),
			Source:      "selfplay",
			SummaryJSON: summary,
		})

		if res.Move == game.Pass {
			rules.PlayPass(b)
			passes++
		} else {
			rules.Apply(b, res.Move, player)
			passes = 0
		}

		if opts.Verbose {
			PrintMove(workerID, b, res, opts.Config)
		}
		if opts.OnMove != nil {
			opts.OnMove()
		}
	}

	result.Moves = len(rows)
	if !result.Resigned {
		result.Score = runner.Scoring.Count(b)
		result.Winner = rules.Winner(result.Score, opts.Komi)
	}
	for i := range rows {
		rows[i].Winner = int32(result.Winner)
		rows[i].Score = float32(result.Score)
		rows[i].Resigned = result.Resigned
	}
	return rows, result, nil
}
