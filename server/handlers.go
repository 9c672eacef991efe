package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/executor/playout"
	"github.com/brensch/gouct/game"
	"github.com/brensch/gouct/rules"
)

const (
	defaultDim  = 9
	defaultKomi = 7.5
	summaryTop  = 10
	pvLength    = 8
)

// PositionRequest describes a position either as a move list from the empty
// board or as explicit rows (top row first, X/O/.). Rows win when both are set.
type PositionRequest struct {
	Dim    int      `json:"dim"`
	Moves  []string `json:"moves"`
	Rows   []string `json:"rows"`
	ToMove string   `json:"to_move"`
	Komi   *float64 `json:"komi"`

	Iterations int    `json:"iterations"`
	Threads    int    `json:"threads"`
	TimeoutMs  int    `json:"timeout_ms"`
	Scoring    string `json:"scoring"`
	Seed       int64  `json:"seed"`
	Ownership  bool   `json:"ownership"`

	// Interval is the playouts between websocket snapshots.
	Interval int `json:"interval"`
}

type GenMoveResponse struct {
	Move      int              `json:"move"`
	Coord     string           `json:"coord"`
	Color     string           `json:"color"`
	WinRate   float64          `json:"win_rate"`
	LCB       float64          `json:"lcb"`
	Plays     int              `json:"plays"`
	Resign    bool             `json:"resign"`
	ElapsedMs int64            `json:"elapsed_ms"`
	PV        []string         `json:"pv"`
	Summary   []mcts.ChildStat `json:"summary"`
	Ownership []string         `json:"ownership,omitempty"`
}

type PointLiberties struct {
	Coord     string `json:"coord"`
	Color     string `json:"color"`
	Liberties int    `json:"liberties"`
}

type LibertiesResponse struct {
	Board  []string         `json:"board"`
	Points []PointLiberties `json:"points"`
}

type ScoreResponse struct {
	FirstMatch int     `json:"first_match"`
	Flood      int     `json:"flood"`
	Komi       float64 `json:"komi"`
	Winner     string  `json:"winner"`
	Captures   [2]int  `json:"captures"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Options configures a Server. Per-request fields override the defaults up
// to MaxIterations and MoveTimeout.
type Options struct {
	Config        mcts.Config
	Runner        playout.Runner
	Threads       int
	Iterations    int
	MaxIterations int
	MoveTimeout   time.Duration
	Logger        *slog.Logger
}

type Server struct {
	opts   Options
	logger *slog.Logger
}

func NewServer(opts Options) *Server {
	if opts.Threads <= 0 {
		opts.Threads = 1
	}
	if opts.Iterations <= 0 {
		opts.Iterations = mcts.DefaultIterations
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = opts.Iterations
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{opts: opts, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /genmove", s.handleGenMove)
	mux.HandleFunc("POST /liberties", s.handleLiberties)
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("GET /ws/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request", "remote", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "dur", time.Since(start))
	})
}

func (s *Server) handleGenMove(w http.ResponseWriter, r *http.Request) {
	req, b, ok := s.decodePosition(w, r)
	if !ok {
		return
	}

	m := s.searcher(req)
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout(req))
	defer cancel()

	res, err := m.Search(ctx, b, mcts.Budget{Iterations: s.iterations(req)})
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		// The client went away; nobody is listening for the answer.
		s.logger.Warn("genmove aborted", "err", err, "plays", res.Plays)
		return
	}

	resp := s.genMoveResponse(b, m.Config, res)
	s.logger.Info("genmove", "move", resp.Coord, "rate", resp.WinRate, "plays", resp.Plays, "elapsed", res.Elapsed)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) genMoveResponse(b *game.Board, cfg mcts.Config, res mcts.Result) GenMoveResponse {
	resp := GenMoveResponse{
		Move:      res.Move,
		Coord:     b.FormatCoord(res.Move),
		Color:     b.ToMove.String(),
		WinRate:   res.WinRate,
		LCB:       res.LCB,
		Plays:     res.Plays,
		Resign:    res.Resign,
		ElapsedMs: res.Elapsed.Milliseconds(),
		Summary:   cfg.Summary(res.Root, summaryTop),
	}
	for _, pos := range mcts.PrincipalVariation(res.Root, pvLength) {
		resp.PV = append(resp.PV, b.FormatCoord(pos))
	}
	if res.Influence != nil {
		resp.Ownership = mcts.Ownership(b, res.Influence.Ownership())
	}
	return resp
}

func (s *Server) handleLiberties(w http.ResponseWriter, r *http.Request) {
	_, b, ok := s.decodePosition(w, r)
	if !ok {
		return
	}
	resp := LibertiesResponse{Board: strings.Split(strings.TrimRight(b.String(), "\n"), "\n")}
	for y := b.Dim; y >= 1; y-- {
		for x := 1; x <= b.Dim; x++ {
			pos := b.Position(x, y)
			c := b.ColorAt(pos)
			if c != game.Black && c != game.White {
				continue
			}
			resp.Points = append(resp.Points, PointLiberties{
				Coord:     b.FormatCoord(pos),
				Color:     c.String(),
				Liberties: b.Liberties(pos),
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	req, b, ok := s.decodePosition(w, r)
	if !ok {
		return
	}
	komi := komiOf(req)
	resp := ScoreResponse{
		FirstMatch: rules.Score(b),
		Flood:      rules.AreaScore(b),
		Komi:       komi,
		Captures:   [2]int{b.CapturesBy(game.Black), b.CapturesBy(game.White)},
	}
	score := resp.FirstMatch
	if playout.ParseScoring(req.Scoring) == playout.ScoreFlood {
		score = resp.Flood
	}
	resp.Winner = rules.Winner(score, komi).String()
	writeJSON(w, http.StatusOK, resp)
}

// decodePosition reads a PositionRequest and builds its board, answering 400
// itself when either step fails.
func (s *Server) decodePosition(w http.ResponseWriter, r *http.Request) (PositionRequest, *game.Board, bool) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %v", err)})
		return req, nil, false
	}
	b, err := boardFor(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return req, nil, false
	}
	return req, b, true
}

func boardFor(req PositionRequest) (*game.Board, error) {
	if len(req.Rows) > 0 {
		toMove, err := parseColor(req.ToMove)
		if err != nil {
			return nil, err
		}
		return rules.ParseBoard(req.Rows, toMove)
	}
	dim := req.Dim
	if dim == 0 {
		dim = defaultDim
	}
	return rules.Replay(dim, req.Moves)
}

func parseColor(s string) (game.Color, error) {
	switch strings.ToLower(s) {
	case "", "b", "black":
		return game.Black, nil
	case "w", "white":
		return game.White, nil
	}
	return game.Empty, fmt.Errorf("unknown colour %q", s)
}

func komiOf(req PositionRequest) float64 {
	if req.Komi != nil {
		return *req.Komi
	}
	return defaultKomi
}

func (s *Server) searcher(req PositionRequest) *mcts.MCTS {
	runner := s.opts.Runner
	runner.Komi = komiOf(req)
	if req.Scoring != "" {
		runner.Scoring = playout.ParseScoring(req.Scoring)
	}
	threads := s.opts.Threads
	if req.Threads > 0 {
		threads = min(req.Threads, s.opts.Threads)
	}
	return &mcts.MCTS{
		Config:         s.opts.Config,
		Runner:         runner,
		Threads:        threads,
		Seed:           req.Seed,
		TrackInfluence: req.Ownership,
	}
}

func (s *Server) iterations(req PositionRequest) int {
	if req.Iterations <= 0 {
		return s.opts.Iterations
	}
	return min(req.Iterations, s.opts.MaxIterations)
}

func (s *Server) timeout(req PositionRequest) time.Duration {
	limit := s.opts.MoveTimeout
	if limit <= 0 {
		limit = time.Minute
	}
	if req.TimeoutMs > 0 {
		return min(time.Duration(req.TimeoutMs)*time.Millisecond, limit)
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
