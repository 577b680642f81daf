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

	"github.com/BurntSushi/toml"
)

// RunnerConfig tunes the concurrent task pool.
type RunnerConfig struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// OutputConfig tunes the output pane and box framing.
type OutputConfig struct {
	MaxLines             int `toml:"max_lines"`
	BoxPaddingHorizontal int `toml:"box_padding_horizontal"`
	BoxPaddingVertical   int `toml:"box_padding_vertical"`
}

// LoggingConfig tunes the rotating log sink.
type LoggingConfig struct {
	MaxFileSizeMB int `toml:"max_file_size_mb"`
	MaxArchives   int `toml:"max_archives"`
}

// Config is mux's full, decoded configuration.
type Config struct {
	Runner  RunnerConfig  `toml:"runner"`
	Output  OutputConfig  `toml:"output"`
	Logging LoggingConfig `toml:"logging"`
}

// DefaultConfig returns the built-in defaults every field falls back to.
func DefaultConfig() Config {
	return Config{
		Runner: RunnerConfig{
			MaxConcurrent: 64,
		},
		Output: OutputConfig{
			MaxLines:             10000,
			BoxPaddingHorizontal: 1,
			BoxPaddingVertical:   0,
		},
		Logging: LoggingConfig{
			MaxFileSizeMB: 10,
			MaxArchives:   5,
		},
	}
}

// LoadConfig reads a TOML config file at path, decoding over the default
// values so that any key the file omits keeps its default. A missing file
// or a parse failure both yield the defaults; the caller decides how to
// surface that (mux logs it, never aborts on it).
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
