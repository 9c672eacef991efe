// Command server exposes the UCT engine over HTTP: move generation, liberty
// and score annotation, and a websocket that streams a growing analysis.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/executor/playout"
	"github.com/brensch/gouct/logging"
	"github.com/brensch/gouct/store"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", getEnvOrDefault("GOUCT_LISTEN", ":8080"), "HTTP listen address")
	threads := fs.Int("threads", getEnvIntOrDefault("GOUCT_THREADS", 4), "Default search trees per request")
	iterations := fs.Int("iterations", getEnvIntOrDefault("GOUCT_ITERATIONS", mcts.DefaultIterations), "Default playouts per request")
	maxIterations := fs.Int("max-iterations", getEnvIntOrDefault("GOUCT_MAX_ITERATIONS", 200000), "Upper bound on playouts a request may ask for")
	moveTimeout := fs.Duration("move-timeout", getEnvDurationOrDefault("GOUCT_MOVE_TIMEOUT", 10*time.Second), "Upper bound on search time per request")
	weights := fs.String("weights", getEnvOrDefault("GOUCT_WEIGHTS", ""), "Optional pattern weight file for playouts")
	logFormat := fs.String("log-format", getEnvOrDefault("GOUCT_LOG_FORMAT", logging.FormatText), "Log format: text, json or pretty")
	logLevel := fs.String("log-level", getEnvOrDefault("GOUCT_LOG_LEVEL", "info"), "Log level: debug, info, warn or error")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("flag parse: %v", err)
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.New(os.Stderr, *logFormat, level)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(logger)

	gen := playout.Heuristic{}
	if *weights != "" {
		w, skipped, err := store.LoadWeights(*weights)
		if err != nil {
			log.Fatalf("load weights: %v", err)
		}
		logger.Info("loaded pattern weights", "path", *weights, "skipped", skipped)
		gen.Weights = w
	}

	server := NewServer(Options{
		Config:        mcts.DefaultConfig(),
		Runner:        playout.Runner{Gen: gen},
		Threads:       *threads,
		Iterations:    *iterations,
		MaxIterations: *maxIterations,
		MoveTimeout:   *moveTimeout,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              *listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("engine server listening", "addr", *listen, "threads", *threads, "iterations", *iterations)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
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

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
