package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_Position(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.txt")
	rows := "# black captures at C4\nX . X . X\nO O . O O\nX X O X X\nX . X X X\nX X X X X\n"
	if err := os.WriteFile(path, []byte(rows), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	err := run([]string{
		"-position", path, "-komi", "0.5", "-light",
		"-iterations", "4000", "-threads", "2", "-seed", "1", "-ownership",
	}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	t.Log(out.String())

	for _, want := range []string{"best C4", "pv: C4", "ownership:", "B to move"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q", want)
		}
	}
}

func TestRun_Moves(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-dim", "5", "-moves", "C3, pass", "-iterations", "200", "-threads", "1", "-seed", "2"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "B to move") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	if err := run([]string{"-moves", "D4,D4"}, &out); err == nil {
		t.Fatalf("illegal replay should fail")
	}
	if err := run([]string{"-position", "missing.txt"}, &out); err == nil {
		t.Fatalf("missing position file should fail")
	}
}
