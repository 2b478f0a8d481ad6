package cli

import (
	"path/filepath"
	"testing"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistoryAppendAndRecent(t *testing.T) {
	h := openTestHistory(t)
	for _, line := range []string{"1 2 +", ": sq dup * ;", "3 sq"} {
		if err := h.Append(line); err != nil {
			t.Fatalf("appending %q: %v", line, err)
		}
	}

	lines, err := h.Recent(10)
	if err != nil {
		t.Fatalf("recalling history: %v", err)
	}
	want := []string{"1 2 +", ": sq dup * ;", "3 sq"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("lines[%d] is %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestHistoryRecentLimit(t *testing.T) {
	h := openTestHistory(t)
	for i := 0; i < 5; i++ {
		if err := h.Append(string(rune('a' + i))); err != nil {
			t.Fatal(err)
		}
	}

	lines, err := h.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	// the newest two, oldest first
	want := []string{"d", "e"}
	if len(lines) != 2 || lines[0] != want[0] || lines[1] != want[1] {
		t.Errorf("got %v, want %v", lines, want)
	}
}

func TestHistoryEmpty(t *testing.T) {
	h := openTestHistory(t)
	lines, err := h.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Errorf("fresh history returned %v", lines)
	}
}

func TestHistoryPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Append("persisted"); err != nil {
		t.Fatal(err)
	}
	h.Close()

	h, err = OpenHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	lines, err := h.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "persisted" {
		t.Errorf("got %v after reopen", lines)
	}
}
