package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/executor/playout"
	"github.com/brensch/gouct/executor/selfplay"
	"github.com/brensch/gouct/store"
)

var (
	totalMoves atomic.Int64
	totalGames atomic.Int64
	blackWins  atomic.Int64
)

type GameUpdate struct {
	WorkerID int
	Result   selfplay.GameResult
}

func main() {
	outDir := flag.String("out-dir", getEnvOrDefault("GOUCT_OUT_DIR", "data/selfplay"), "Output directory for self-play parquet batches")
	workers := flag.Int("workers", getEnvIntOrDefault("GOUCT_WORKERS", max(runtime.NumCPU()/2, 1)), "Number of concurrent games")
	threads := flag.Int("threads", getEnvIntOrDefault("GOUCT_THREADS", 2), "Search trees per move")
	gamesPerFlush := flag.Int("games-per-flush", getEnvIntOrDefault("GOUCT_GAMES_PER_FLUSH", 50), "Games per parquet batch file")
	maxGames := flag.Int64("max-games", int64(getEnvIntOrDefault("GOUCT_MAX_GAMES", 0)), "If > 0, stop after this many games (across all workers)")
	writer := flag.String("writer", getEnvOrDefault("GOUCT_WRITER", "stream"), "stream: append games to an open batch file; buffer: hold games in memory and write each batch at once")

	dim := flag.Int("dim", getEnvIntOrDefault("GOUCT_DIM", 9), "Board size")
	komi := flag.Float64("komi", getEnvFloatOrDefault("GOUCT_KOMI", 7.5), "Komi")
	maxTurns := flag.Int("max-turns", getEnvIntOrDefault("GOUCT_MAX_TURNS", 0), "Stop and score after this many moves (0 = twice the board size)")
	iterations := flag.Int("iterations", getEnvIntOrDefault("GOUCT_ITERATIONS", 2000), "Playouts per move, across all threads")
	moveTime := flag.Duration("move-time", getEnvDurationOrDefault("GOUCT_MOVE_TIME", 0), "Optional time limit per move")

	cfg := mcts.DefaultConfig()
	flag.Float64Var(&cfg.Exploration, "exploration", cfg.Exploration, "UCB exploration constant")
	flag.Float64Var(&cfg.ResignThreshold, "resign", cfg.ResignThreshold, "Resign below this win rate (0 disables)")
	flag.BoolVar(&cfg.Smoothing, "smoothing", cfg.Smoothing, "Use (wins+1)/(plays+1) as the child mean")
	selection := flag.String("select", cfg.Selection.String(), "Final move selection: lcb, rate or plays")
	scoring := flag.String("scoring", playout.ScoreFirstMatch.String(), "Playout scoring: first-match or flood")
	generator := flag.String("generator", "heuristic", "Playout move generator: light or heuristic")
	weights := flag.String("weights", getEnvOrDefault("GOUCT_WEIGHTS", ""), "Optional pattern weight file for the heuristic generator")

	useTUI := flag.Bool("tui", getEnvBoolOrDefault("GOUCT_TUI", false), "Show a live progress dashboard")
	trace := flag.Bool("trace", false, "Log every move of worker 0")
	flag.Parse()

	cfg.Selection = mcts.ParseSelection(*selection)
	gen, err := newGenerator(*generator, *weights)
	if err != nil {
		log.Fatalf("generator: %v", err)
	}
	runner := playout.Runner{Gen: gen, Scoring: playout.ParseScoring(*scoring)}

	if *useTUI {
		// Keep log output from tearing the dashboard.
		f, err := os.OpenFile("executor.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	log.Printf("Starting self-play: %d workers, %dx%d, komi %.1f, %d iterations x %d threads, generator=%s scoring=%s",
		*workers, *dim, *dim, *komi, *iterations, *threads, *generator, runner.Scoring)

	updates := make(chan GameUpdate, *workers)
	games := make(chan []store.GameMoveRow, (*workers)*4)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if *writer == "buffer" {
			bufferedWriterLoop(*outDir, *gamesPerFlush, games)
		} else {
			streamingWriterLoop(*outDir, *gamesPerFlush, games)
		}
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go func(workerID int) {
			defer workerWG.Done()
			opts := selfplay.Options{
				Dim:      *dim,
				Komi:     *komi,
				Budget:   mcts.Budget{Iterations: *iterations, Duration: *moveTime},
				Threads:  *threads,
				Config:   cfg,
				Runner:   runner,
				MaxTurns: *maxTurns,
				Verbose:  *trace && workerID == 0 && !*useTUI,
				OnMove:   func() { totalMoves.Add(1) },
			}
			for ctx.Err() == nil {
				rows, result, err := selfplay.PlayGame(ctx, workerID, opts)
				if err != nil {
					if ctx.Err() == nil {
						log.Printf("Worker %d: game aborted: %v", workerID, err)
					}
					return
				}
				total := totalGames.Add(1)
				if result.Winner > 0 {
					blackWins.Add(1)
				}
				if *maxGames > 0 && total >= *maxGames {
					cancel()
				}
				games <- rows

				// Avoid blocking shutdown if the UI loop stops consuming.
				select {
				case updates <- GameUpdate{WorkerID: workerID, Result: result}:
				default:
				}
			}
		}(i)
	}

	shutdown := func() {
		log.Printf("Shutdown requested; waiting for workers to finish current games...")
		workerWG.Wait()
		close(games)
		<-writerDone
		log.Printf("Shutdown complete: final parquet flush done (games=%d)", totalGames.Load())
	}

	if *useTUI {
		p := tea.NewProgram(initialModel(updates), tea.WithAltScreen())
		go func() {
			<-ctx.Done()
			p.Quit()
		}()
		if _, err := p.Run(); err != nil {
			log.Printf("tui: %v", err)
		}
		cancel()
		shutdown()
		return
	}

	startTime := time.Now()
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			shutdown()
			return
		case update := <-updates:
			log.Printf("%s", describeGame(update))
		case <-ticker.C:
			elapsed := time.Since(startTime).Seconds()
			log.Printf("Stats: games=%d moves/s=%.2f games/min=%.2f black=%.1f%%",
				totalGames.Load(), float64(totalMoves.Load())/elapsed,
				float64(totalGames.Load())/elapsed*60, blackWinPercent())
		}
	}
}

func newGenerator(kind, weightsPath string) (playout.Generator, error) {
	switch kind {
	case "light":
		return playout.Light{}, nil
	case "heuristic":
		h := playout.Heuristic{}
		if weightsPath != "" {
			w, skipped, err := store.LoadWeights(weightsPath)
			if err != nil {
				return nil, err
			}
			if skipped > 0 {
				log.Printf("weights %s: skipped %d malformed lines", weightsPath, skipped)
			}
			h.Weights = w
		}
		return h, nil
	}
	return nil, fmt.Errorf("unknown generator %q", kind)
}

func describeGame(u GameUpdate) string {
	how := fmt.Sprintf("score %+d", u.Result.Score)
	if u.Result.Resigned {
		how = "resignation"
	}
	return fmt.Sprintf("Worker %d: %s wins by %s after %d moves", u.WorkerID, u.Result.Winner, how, u.Result.Moves)
}

func blackWinPercent() float64 {
	games := totalGames.Load()
	if games == 0 {
		return 0
	}
	return float64(blackWins.Load()) / float64(games) * 100
}

// streamingWriterLoop appends each game to an open batch file and rotates the
// file every gamesPerFlush games.
func streamingWriterLoop(outDir string, gamesPerFlush int, in <-chan []store.GameMoveRow) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	var w *store.BatchWriter
	finalize := func() {
		if w == nil {
			return
		}
		outPath, rows, games, err := w.Finalize()
		switch {
		case err != nil:
			log.Printf("Parquet flush failed (%s): %v", w.TmpPath(), err)
		case outPath != "":
			log.Printf("Parquet flush ok: %s (games=%d rows=%d)", outPath, games, rows)
		}
		w = nil
	}

	for rows := range in {
		if len(rows) == 0 {
			continue
		}
		if w == nil {
			var err error
			if w, err = store.NewBatchWriter(outDir); err != nil {
				log.Printf("Parquet open failed: %v", err)
				continue
			}
		}
		if err := w.WriteGame(rows); err != nil {
			log.Printf("Parquet write failed: %v", err)
			continue
		}
		if w.BufferedGames() >= gamesPerFlush {
			finalize()
		}
	}
	finalize()
}

func bufferedWriterLoop(outDir string, gamesPerFlush int, in <-chan []store.GameMoveRow) {
	if gamesPerFlush <= 0 {
		gamesPerFlush = 50
	}

	pendingRows := make([]store.GameMoveRow, 0, 128*gamesPerFlush)
	pendingGames := 0
	flush := func() {
		outPath, err := store.WriteBatchParquetAtomic(outDir, pendingRows)
		if err != nil {
			log.Printf("Parquet flush failed (games=%d rows=%d): %v", pendingGames, len(pendingRows), err)
		} else {
			log.Printf("Parquet flush ok: %s (games=%d rows=%d)", outPath, pendingGames, len(pendingRows))
		}
		pendingRows = pendingRows[:0]
		pendingGames = 0
	}

	for rows := range in {
		if len(rows) == 0 {
			continue
		}
		pendingRows = append(pendingRows, rows...)
		pendingGames++
		if pendingGames >= gamesPerFlush {
			flush()
		}
	}
	if pendingGames > 0 {
		flush()
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		var i int
		if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
