// Copyright 2025 Naren Yellavula
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"sort"
	"strings"
	"time"
)

// searchEntry is one command's in-memory mirror row: enough to rank and
// display it without touching the database.
type searchEntry struct {
	Command   string
	Frequency int
	LastUsed  *int64
}

// SearchResult is a ranked match returned by HistorySearcher.Search.
type SearchResult struct {
	Command string
	Score   int
}

// HistorySearcher is the in-memory mirror of the command store: a
// frequency-sorted vector rather than a tree, because the update rule it
// needs — bump one entry's weight and bubble it toward the front — is a
// single in-place swap-walk on a sorted vector, not a rebalance.
type HistorySearcher struct {
	store   *CommandStore
	entries []*searchEntry
	index   map[string]int // command -> position in entries
}

// NewHistorySearcher builds the mirror from the store's current snapshot.
func NewHistorySearcher(store *CommandStore) (*HistorySearcher, error) {
	s := &HistorySearcher{store: store, index: make(map[string]int)}
	if err := s.ReloadFromDB(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReloadFromDB replaces the in-memory mirror with a fresh load from the
// store, re-sorted by weight (frequency, at least 1).
func (s *HistorySearcher) ReloadFromDB() error {
	rows, err := s.store.LoadAll()
	if err != nil {
		return err
	}

	entries := make([]*searchEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, &searchEntry{
			Command:   r.Command,
			Frequency: r.Frequency,
			LastUsed:  r.LastUsed,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return weightOf(entries[i]) > weightOf(entries[j])
	})

	s.entries = entries
	s.index = make(map[string]int, len(entries))
	for i, e := range entries {
		s.index[e.Command] = i
	}
	return nil
}

func weightOf(e *searchEntry) int {
	if e.Frequency < 1 {
		return 1
	}
	return e.Frequency
}

// RecordUsage persists one more use of command (store-side) and updates
// the in-memory mirror in place: bump its frequency, then bubble it
// toward the front of the vector past any now-lighter neighbours, rather
// than re-sorting the whole thing.
func (s *HistorySearcher) RecordUsage(command string) error {
	now := time.Now()
	if err := s.store.RecordUsage(command, now); err != nil {
		return err
	}

	ts := now.Unix()
	if pos, ok := s.index[command]; ok {
		e := s.entries[pos]
		e.Frequency++
		e.LastUsed = &ts
		s.bubbleUp(pos)
		return nil
	}

	// Unseen command: index it fresh, then bubble it into place.
	e := &searchEntry{Command: command, Frequency: 1, LastUsed: &ts}
	s.entries = append(s.entries, e)
	pos := len(s.entries) - 1
	s.index[command] = pos
	s.bubbleUp(pos)
	return nil
}

// IndexCommand adds command to the mirror with weight 1 if it isn't
// already known, without touching the persistent store and without
// setting a last-used timestamp.
func (s *HistorySearcher) IndexCommand(command string) {
	if _, ok := s.index[command]; ok {
		return
	}
	e := &searchEntry{Command: command, Frequency: 1}
	s.entries = append(s.entries, e)
	pos := len(s.entries) - 1
	s.index[command] = pos
	s.bubbleUp(pos)
}

// bubbleUp walks entries[pos] toward the front while it outweighs its
// predecessor, swapping one step at a time and keeping the index map in
// sync — an O(k) fixup for the one entry that changed, not a full resort.
func (s *HistorySearcher) bubbleUp(pos int) {
	for pos > 0 && weightOf(s.entries[pos]) > weightOf(s.entries[pos-1]) {
		s.entries[pos], s.entries[pos-1] = s.entries[pos-1], s.entries[pos]
		s.index[s.entries[pos].Command] = pos
		s.index[s.entries[pos-1].Command] = pos - 1
		pos--
	}
}

// Flush checkpoints the backing store.
func (s *HistorySearcher) Flush() error {
	return s.store.Flush()
}

// Len returns how many distinct commands the mirror holds.
func (s *HistorySearcher) Len() int {
	return len(s.entries)
}

// GetAllCommands returns every known command string, in ranked order.
func (s *HistorySearcher) GetAllCommands() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Command
	}
	return out
}

// MostRecentCommand returns the command with the latest last-used
// timestamp, or "" if the mirror is empty or nothing carries a
// timestamp.
func (s *HistorySearcher) MostRecentCommand() string {
	var best *searchEntry
	for _, e := range s.entries {
		if e.LastUsed == nil {
			continue
		}
		if best == nil || *e.LastUsed > *best.LastUsed {
			best = e
		}
	}
	if best == nil {
		return ""
	}
	return best.Command
}

// Search ranks every command against query via a bonus-scored fuzzy
// subsequence match and returns the top limit results, highest score
// first (ties broken by the mirror's existing frequency order, since
// entries is already frequency-sorted and the sort below is stable).
func (s *HistorySearcher) Search(query string, limit int) []SearchResult {
	if query == "" {
		out := make([]SearchResult, 0, limit)
		for i, e := range s.entries {
			if i >= limit {
				break
			}
			out = append(out, SearchResult{Command: e.Command, Score: weightOf(e)})
		}
		return out
	}

	results := make([]SearchResult, 0, len(s.entries))
	for _, e := range s.entries {
		score, ok := fuzzyScore(query, e.Command)
		if !ok {
			continue
		}
		results = append(results, SearchResult{Command: e.Command, Score: score + weightOf(e)*10})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

const (
	bonusConsecutive = 15
	bonusPrefix      = 20
	bonusWordStart   = 10
	bonusCamelCase   = 10
	bonusExactCase   = 1
)

// fuzzyScore matches query as a case-insensitive subsequence of target,
// returning a score rewarding consecutive runs, a match starting at
// target's very first character, matches at word/camelCase boundaries,
// and case-exact matches. Returns ok=false if query isn't a subsequence
// of target at all.
func fuzzyScore(query, target string) (int, bool) {
	q := []rune(strings.ToLower(query))
	t := []rune(target)
	tLower := []rune(strings.ToLower(target))

	if len(q) == 0 {
		return 0, true
	}

	score := 0
	qi := 0
	prevMatched := -2
	for ti := 0; ti < len(t) && qi < len(q); ti++ {
		if tLower[ti] != q[qi] {
			continue
		}

		if ti == 0 {
			score += bonusPrefix
		}
		if ti == prevMatched+1 {
			score += bonusConsecutive
		}
		if ti > 0 && isWordBoundary(t, ti) {
			score += bonusWordStart
		}
		if ti > 0 && isCamelBoundary(t, ti) {
			score += bonusCamelCase
		}
		if t[ti] == []rune(query)[qi] {
			score += bonusExactCase
		}

		prevMatched = ti
		qi++
	}

	return score, qi == len(q)
}

func isWordBoundary(t []rune, i int) bool {
	prev := t[i-1]
	return prev == ' ' || prev == '-' || prev == '_' || prev == '/' || prev == '.'
}

func isCamelBoundary(t []rune, i int) bool {
	prev := t[i-1]
	cur := t[i]
	return prev >= 'a' && prev <= 'z' && cur >= 'A' && cur <= 'Z'
}
