package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/gouct/executor/mcts"
	"github.com/brensch/gouct/executor/playout"
)

var captureRows = []string{
	"X . X . X",
	"O O . O O",
	"X X O X X",
	"X . X X X",
	"X X X X X",
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := NewServer(Options{
		Config:        mcts.DefaultConfig(),
		Runner:        playout.Runner{},
		Threads:       2,
		Iterations:    500,
		MaxIterations: 5000,
		MoveTimeout:   30 * time.Second,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func komi(v float64) *float64 { return &v }

func TestGenMove_FindsCapture(t *testing.T) {
	ts := newTestServer(t)
	var resp GenMoveResponse
	code := post(t, ts, "/genmove", PositionRequest{
		Rows:       captureRows,
		ToMove:     "B",
		Komi:       komi(0.5),
		Iterations: 4000,
		Threads:    2,
		Seed:       1,
		Ownership:  true,
	}, &resp)
	if code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if resp.Coord != "C4" || resp.Color != "B" {
		t.Fatalf("move=%s color=%s want C4 by B (%+v)", resp.Coord, resp.Color, resp.Summary)
	}
	if resp.Plays != 4000 {
		t.Fatalf("plays=%d want=4000", resp.Plays)
	}
	if len(resp.PV) == 0 || resp.PV[0] != "C4" {
		t.Fatalf("pv=%v", resp.PV)
	}
	if len(resp.Ownership) != 5 {
		t.Fatalf("ownership rows=%d want=5", len(resp.Ownership))
	}
}

func TestGenMove_BadRequests(t *testing.T) {
	ts := newTestServer(t)
	cases := map[string]any{
		"not json":     "{",
		"illegal move": PositionRequest{Dim: 9, Moves: []string{"D4", "D4"}},
		"bad coord":    PositionRequest{Dim: 9, Moves: []string{"I9"}},
		"bad dim":      PositionRequest{Dim: 25},
		"bad colour":   PositionRequest{Rows: captureRows, ToMove: "red"},
	}
	for name, body := range cases {
		if code := post(t, ts, "/genmove", body, nil); code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d want=400", name, code)
		}
	}

	resp, err := http.Get(ts.URL + "/genmove")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status=%d want=405", resp.StatusCode)
	}
}

func TestLiberties(t *testing.T) {
	ts := newTestServer(t)
	var resp LibertiesResponse
	if code := post(t, ts, "/liberties", PositionRequest{Dim: 9, Moves: []string{"D4", "D5", "A1"}}, &resp); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if len(resp.Board) != 10 {
		t.Fatalf("board lines=%d want=10", len(resp.Board))
	}
	want := map[string]PointLiberties{
		"D5": {Coord: "D5", Color: "W", Liberties: 3},
		"D4": {Coord: "D4", Color: "B", Liberties: 3},
		"A1": {Coord: "A1", Color: "B", Liberties: 2},
	}
	if len(resp.Points) != len(want) {
		t.Fatalf("points=%+v", resp.Points)
	}
	for _, p := range resp.Points {
		if want[p.Coord] != p {
			t.Fatalf("point=%+v want=%+v", p, want[p.Coord])
		}
	}
}

func TestScore(t *testing.T) {
	ts := newTestServer(t)
	rows := []string{
		". . X . .",
		". . X . .",
		". . X . .",
		". . X . .",
		". . X . .",
	}
	var resp ScoreResponse
	if code := post(t, ts, "/score", PositionRequest{Rows: rows, Komi: komi(20)}, &resp); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if resp.FirstMatch != 15 || resp.Flood != 25 {
		t.Fatalf("first-match=%d flood=%d want 15/25", resp.FirstMatch, resp.Flood)
	}
	if resp.Winner != "W" {
		t.Fatalf("winner=%s want=W (15 < 20)", resp.Winner)
	}

	if code := post(t, ts, "/score", PositionRequest{Rows: rows, Komi: komi(20), Scoring: "flood"}, &resp); code != http.StatusOK {
		t.Fatalf("status=%d", code)
	}
	if resp.Winner != "B" {
		t.Fatalf("flood winner=%s want=B", resp.Winner)
	}
}

func TestAnalyze_StreamsSnapshots(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/analyze"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := PositionRequest{Dim: 5, Moves: []string{"C3"}, Iterations: 300, Interval: 100, Seed: 3}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write: %v", err)
	}

	var snapshots []AnalysisMessage
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		var msg AnalysisMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read after %d snapshots: %v", len(snapshots), err)
		}
		if msg.Type != "snapshot" || msg.Result == nil {
			t.Fatalf("unexpected message %+v", msg)
		}
		snapshots = append(snapshots, msg)
		if msg.Done {
			break
		}
	}

	if len(snapshots) != 3 {
		t.Fatalf("snapshots=%d want=3", len(snapshots))
	}
	for i, s := range snapshots {
		if want := 100 * (i + 1); s.Result.Plays != want {
			t.Fatalf("snapshot %d plays=%d want=%d", i, s.Result.Plays, want)
		}
		if s.Result.Color != "W" {
			t.Fatalf("snapshot %d color=%s want=W", i, s.Result.Color)
		}
	}
}

func TestAnalyze_BadPosition(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/analyze"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(PositionRequest{Dim: 40}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var msg AnalysisMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" || !msg.Done || msg.Error == "" {
		t.Fatalf("unexpected message %+v", msg)
	}
}
