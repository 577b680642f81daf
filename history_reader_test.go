package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "history")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing temp history: %v", err)
	}
	return path
}

func TestReadHistoryMissingFileIsEmpty(t *testing.T) {
	entries, err := ReadHistory(ShellBash, filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %v", entries)
	}
}

func TestBashHistoryTimestampMarker(t *testing.T) {
	path := writeTemp(t, "#1700000000\nls -la\npwd\n")
	entries, err := ReadHistory(ShellBash, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Command != "ls -la" || entries[0].Timestamp == nil || *entries[0].Timestamp != 1700000000 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Command != "pwd" || entries[1].Timestamp != nil {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestBashHistoryNonIntegerHashIsCommand(t *testing.T) {
	path := writeTemp(t, "# this is a comment\npwd\n")
	entries, err := ReadHistory(ShellBash, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Command != "# this is a comment" || entries[0].Timestamp != nil {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestZshExtendedLine(t *testing.T) {
	path := writeTemp(t, ": 1700000000:0;echo hi\n")
	entries, err := ReadHistory(ShellZsh, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Command != "echo hi" || entries[0].Timestamp == nil || *entries[0].Timestamp != 1700000000 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestZshExtendedLineWithEmbeddedSemicolon(t *testing.T) {
	path := writeTemp(t, ": 1700000000:0;echo a; echo b\n")
	entries, err := ReadHistory(ShellZsh, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Command != "echo a; echo b" {
		t.Fatalf("expected embedded semicolons preserved, got %q", entries[0].Command)
	}
}

func TestZshExtendedLineThirdColonInvalidates(t *testing.T) {
	// a third colon in the metadata prefix means it's not the
	// timestamp:duration shape the extended format requires.
	path := writeTemp(t, ": 1700000000:0:1;echo hi\n")
	entries, err := ReadHistory(ShellZsh, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Timestamp != nil {
		t.Fatalf("expected no timestamp, got %+v", entries[0])
	}
	if entries[0].Command != ": 1700000000:0:1;echo hi" {
		t.Fatalf("expected whole line preserved as command, got %q", entries[0].Command)
	}
}

func TestZshContinuationLines(t *testing.T) {
	path := writeTemp(t, ": 1700000000:0;echo a \\\necho b \\\necho c\n")
	entries, err := ReadHistory(ShellZsh, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 joined entry, got %d: %+v", len(entries), entries)
	}
	want := "echo a \necho b \necho c"
	if entries[0].Command != want {
		t.Fatalf("expected %q, got %q", want, entries[0].Command)
	}
}

func TestZshNonExtendedLineIsBareCommand(t *testing.T) {
	path := writeTemp(t, "echo plain\n")
	entries, err := ReadHistory(ShellZsh, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Command != "echo plain" || entries[0].Timestamp != nil {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestFishHistory(t *testing.T) {
	path := writeTemp(t, "- cmd: ls -la\n  when: 1700000000\n- cmd: pwd\n")
	entries, err := ReadHistory(ShellFish, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Command != "ls -la" || entries[0].Timestamp == nil || *entries[0].Timestamp != 1700000000 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Command != "pwd" || entries[1].Timestamp != nil {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}
