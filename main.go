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
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rebuild bool

func main() {
	root := &cobra.Command{
		Use:   "mux",
		Short: "Fuzzy command history search with concurrent PTY execution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(rebuild)
		},
	}
	root.Flags().BoolVar(&rebuild, "rebuild", false, "discard the existing command store and rebuild it from shell history")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires every component together and drives the TUI to completion. It
// returns a non-nil error when the existing store can't be removed for
// --rebuild, when the store can't be opened or read, when the TUI fails to
// run, or when the final flush fails; a normal quit from inside the TUI is
// not an error. A config file that fails to parse is logged and the
// defaults are used.
func run(rebuild bool) error {
	cfg, cfgErr := LoadConfig(ConfigPath())

	logger := InitLogger(cfg.Logging)
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("config parse failed, using defaults", zap.Error(cfgErr))
	}

	dbPath := DBPath()
	if rebuild {
		if _, statErr := os.Stat(dbPath); statErr == nil {
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("remove existing store: %w", err)
			}
			logger.Info("rebuilding command store", zap.String("path", dbPath))
		}
	}

	store, err := OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	syncResult := SyncAllShells(store)
	logger.Info("startup sync complete", zap.Int("synced", syncResult.TotalSynced))
	for _, warn := range syncResult.Warnings {
		logger.Warn("history sync warning", zap.String("detail", warn))
	}

	searcher, err := NewHistorySearcher(store)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("build searcher: %w", err)
	}

	commands, err := store.LoadAll()
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("load commands: %w", err)
	}
	suggester := NewSuggestionEngine(commands)

	runner := NewTaskRunner(cfg.Runner.MaxConcurrent)
	model := NewModel(searcher, suggester, runner, cfg.Output)
	for _, warn := range syncResult.Warnings {
		model.AddWarning(warn)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		_ = store.Close()
		return fmt.Errorf("run tui: %w", err)
	}

	if err := store.Close(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	return nil
}
