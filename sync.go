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

import "fmt"

// SyncResult reports how many commands the startup sync pass ingested,
// plus any non-fatal warnings to surface in the output pane.
type SyncResult struct {
	TotalSynced int
	Warnings    []string
}

var allShells = []Shell{ShellBash, ShellZsh, ShellFish}

// SyncAllShells ingests every shell's history file into store, regardless
// of which shell mux itself is currently running under — a user may keep
// history in more than one dialect, and all of it should be searchable.
func SyncAllShells(store *CommandStore) SyncResult {
	var result SyncResult

	for _, shell := range allShells {
		n, warn := syncShell(store, shell)
		result.TotalSynced += n
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}
	}

	return result
}

// syncShell reads shell's history file, keeps only the entries not yet
// covered by the stored cursor, and persists both the new commands and
// the advanced cursor. An entry is new iff it carries a timestamp newer
// than the cursor's last-synced timestamp, or — for entries with no
// timestamp at all — its index is at or beyond the cursor's last line
// count (the only ordering a timestamp-less entry has is its position).
func syncShell(store *CommandStore, shell Shell) (int, string) {
	path := HistoryPath(shell)

	entries, err := ReadHistory(shell, path)
	if err != nil {
		return 0, fmt.Sprintf("%s: %v", shell, err)
	}
	if len(entries) == 0 {
		return 0, ""
	}

	cursor, err := store.GetSyncCursor(shell)
	if err != nil {
		return 0, fmt.Sprintf("%s: reading sync cursor: %v", shell, err)
	}

	var fresh []HistoryEntry
	maxTS := cursor.LastSyncTS
	for i, e := range entries {
		isFresh := false
		if e.Timestamp != nil {
			if cursor.LastSyncTS == nil || *e.Timestamp > *cursor.LastSyncTS {
				isFresh = true
			}
			if maxTS == nil || *e.Timestamp > *maxTS {
				maxTS = e.Timestamp
			}
		} else if i >= cursor.LastLineCount {
			isFresh = true
		}
		if isFresh {
			fresh = append(fresh, e)
		}
	}

	if len(fresh) == 0 {
		return 0, ""
	}

	newCursor := SyncCursor{LastSyncTS: maxTS, LastLineCount: len(entries)}
	count, err := store.Sync(shell, fresh, newCursor)
	if err != nil {
		return 0, fmt.Sprintf("%s: syncing: %v", shell, err)
	}
	return count, ""
}
