package mcts

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brensch/gouct/executor/playout"
	"github.com/brensch/gouct/game"
)

// DefaultIterations is used when a Budget sets neither limit.
const DefaultIterations = 10000

// Budget bounds a search. Iterations is the total across all workers.
// Duration is checked between steps, never inside a playout.
type Budget struct {
	Iterations int
	Duration   time.Duration
}

// Result is the outcome of a search.
type Result struct {
	Move    int
	WinRate float64
	LCB     float64
	Plays   int
	// Resign is set when the chosen move's win rate is below the resign
	// threshold. It is advice; the search never resigns by itself.
	Resign    bool
	Root      *Node
	Influence *playout.Influence
	Elapsed   time.Duration
}

// MCTS runs independent trees in parallel and merges them when every worker
// has finished.
type MCTS struct {
	Config  Config
	Runner  playout.Runner
	Threads int
	// Seed fixes the worker rngs. Zero seeds from the clock.
	Seed           int64
	TrackInfluence bool
}

// Search grows one tree per worker from b within budget and returns the
// merged result. Cancelling ctx stops workers between steps; the partial
// result is still returned alongside the first worker error.
func (m *MCTS) Search(ctx context.Context, b *game.Board, budget Budget) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	threads := max(m.Threads, 1)
	iterations := budget.Iterations
	if iterations <= 0 && budget.Duration <= 0 {
		iterations = DefaultIterations
	}
	var deadline time.Time
	if budget.Duration > 0 {
		deadline = start.Add(budget.Duration)
	}

	seed := m.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trees := make([]*Tree, threads)
	influences := make([]*playout.Influence, threads)
	var g errgroup.Group
	for w := 0; w < threads; w++ {
		runner := m.Runner
		if m.TrackInfluence {
			influences[w] = playout.NewInfluence(b.Size())
			runner.Influence = influences[w]
		}
		tree := NewTree(b, m.Config, runner)
		trees[w] = tree

		// Without an iteration limit only the deadline ends the worker.
		unlimited := iterations <= 0
		steps := 0
		if !unlimited {
			steps = iterations / threads
			if w < iterations%threads {
				steps++
			}
		}
		rng := rand.New(rand.NewSource(seed + int64(w)*1000003))

		g.Go(func() error {
			for i := 0; unlimited || i < steps; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if !deadline.IsZero() && time.Now().After(deadline) {
					return nil
				}
				tree.Step(rng)
			}
			return nil
		})
	}
	// Trees are merged even when a worker stops early.
	err := g.Wait()

	root := trees[0].Root
	for _, t := range trees[1:] {
		root = Merge(root, t.Root)
	}

	var influence *playout.Influence
	if m.TrackInfluence {
		influence = playout.NewInfluence(b.Size())
		for _, in := range influences {
			influence.Merge(in)
		}
	}

	res := m.Config.Result(root)
	res.Influence = influence
	res.Elapsed = time.Since(start)
	return res, err
}

// Result reads the chosen move and its statistics off a finished root.
func (c Config) Result(root *Node) Result {
	res := Result{
		Move:  c.Best(root),
		Plays: root.Plays,
		Root:  root,
	}
	if child := root.Child(res.Move); child != nil {
		res.WinRate = c.Rate(child)
		res.LCB = c.LCB(root, child)
		res.Resign = res.WinRate < c.ResignThreshold
	}
	return res
}

// RunSearch is a convenience wrapper around MCTS.Search.
func RunSearch(ctx context.Context, b *game.Board, budget Budget, threads int, cfg Config, runner playout.Runner) (Result, error) {
	m := &MCTS{Config: cfg, Runner: runner, Threads: threads}
	return m.Search(ctx, b, budget)
}
