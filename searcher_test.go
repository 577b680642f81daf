package main

import (
	"path/filepath"
	"testing"
)

func newTestSearcher(t *testing.T) *HistorySearcher {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	searcher, err := NewHistorySearcher(store)
	if err != nil {
		t.Fatalf("NewHistorySearcher: %v", err)
	}
	return searcher
}

func TestSearcherRecordUsageBubblesUp(t *testing.T) {
	s := newTestSearcher(t)

	for _, cmd := range []string{"git status", "git commit", "git push"} {
		if err := s.RecordUsage(cmd); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	for i := 0; i < 5; i++ {
		if err := s.RecordUsage("git push"); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	all := s.GetAllCommands()
	if all[0] != "git push" {
		t.Fatalf("expected git push to bubble to front, got %v", all)
	}
}

func TestSearcherSearchExactSubsequence(t *testing.T) {
	s := newTestSearcher(t)
	for _, cmd := range []string{"git status", "docker ps", "go build ./..."} {
		if err := s.RecordUsage(cmd); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	results := s.Search("gst", 5)
	found := false
	for _, r := range results {
		if r.Command == "git status" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected fuzzy match for 'gst', got %v", results)
	}
}

func TestSearcherSearchEmptyQueryReturnsRanked(t *testing.T) {
	s := newTestSearcher(t)
	for _, cmd := range []string{"a", "b", "c"} {
		if err := s.RecordUsage(cmd); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}
	results := s.Search("", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestSearcherIndexCommandDoesNotDuplicate(t *testing.T) {
	s := newTestSearcher(t)
	s.IndexCommand("ls")
	s.IndexCommand("ls")
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
}

func TestFuzzyScoreNonSubsequenceFails(t *testing.T) {
	if _, ok := fuzzyScore("zzz", "git status"); ok {
		t.Fatalf("expected no match for non-subsequence query")
	}
}

func TestFuzzyScorePrefixBeatsMidString(t *testing.T) {
	prefixScore, ok := fuzzyScore("git", "git status")
	if !ok {
		t.Fatalf("expected match")
	}
	midScore, ok := fuzzyScore("git", "logit status")
	if !ok {
		t.Fatalf("expected match")
	}
	if prefixScore <= midScore {
		t.Fatalf("expected prefix match to score higher: prefix=%d mid=%d", prefixScore, midScore)
	}
}
