package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/brensch/gouct/store"
)

func fakeGames(n int) [][]store.GameMoveRow {
	var games [][]store.GameMoveRow
	for g := 0; g < n; g++ {
		id := fmt.Sprintf("g%d", g)
		games = append(games, []store.GameMoveRow{
			{GameID: id, MoveNumber: 1, Dim: 9, Color: 1, Move: 40, Coord: "E5", Winner: 1, SummaryJSON: []byte("[]")},
			{GameID: id, MoveNumber: 2, Dim: 9, Color: -1, Move: -1, Coord: "pass", Winner: 1, SummaryJSON: []byte("[]")},
		})
	}
	return games
}

func runWriter(t *testing.T, loop func(string, int, <-chan []store.GameMoveRow)) []string {
	t.Helper()
	dir := t.TempDir()
	in := make(chan []store.GameMoveRow, 8)
	for _, g := range fakeGames(5) {
		in <- g
	}
	in <- nil
	close(in)
	loop(dir, 2, in)

	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	total := 0
	for _, f := range files {
		rows, err := store.ReadMoveRows(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		total += len(rows)
	}
	if total != 10 {
		t.Fatalf("rows=%d want=10", total)
	}
	return files
}

func TestStreamingWriterLoop(t *testing.T) {
	if files := runWriter(t, streamingWriterLoop); len(files) != 3 {
		t.Fatalf("files=%d want=3", len(files))
	}
}

func TestBufferedWriterLoop(t *testing.T) {
	if files := runWriter(t, bufferedWriterLoop); len(files) != 3 {
		t.Fatalf("files=%d want=3", len(files))
	}
}

func TestNewGenerator(t *testing.T) {
	if _, err := newGenerator("light", ""); err != nil {
		t.Fatalf("light: %v", err)
	}
	if _, err := newGenerator("heuristic", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("missing weights should fail")
	}
	if _, err := newGenerator("neural", ""); err == nil {
		t.Fatalf("unknown generator should fail")
	}
}
