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
	"os"
	"path/filepath"
)

// ConfigHome returns $XDG_CONFIG_HOME, falling back to $HOME/.config.
func ConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".config")
}

// StateHome returns $XDG_STATE_HOME, falling back to $HOME/.local/state.
func StateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".local", "state")
}

// ConfigPath returns the path to the TOML config file, creating its
// parent directory if needed.
func ConfigPath() string {
	dir := filepath.Join(ConfigHome(), "mux")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, "config.toml")
}

// StateDir returns mux's state directory, creating it if needed.
func StateDir() string {
	dir := filepath.Join(StateHome(), "mux")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// DBPath returns the path to the persistent command store.
func DBPath() string {
	return filepath.Join(StateDir(), "history.db")
}

// LogDir returns mux's log directory, creating it if needed.
func LogDir() string {
	dir := filepath.Join(StateDir(), "logs")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// HistoryPath returns the conventional history file location for a shell.
func HistoryPath(shell Shell) string {
	home := homeDir()
	switch shell {
	case ShellBash:
		return filepath.Join(home, ".bash_history")
	case ShellZsh:
		return filepath.Join(home, ".zsh_history")
	case ShellFish:
		return filepath.Join(home, ".local", "share", "fish", "fish_history")
	default:
		return ""
	}
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	return "/"
}
