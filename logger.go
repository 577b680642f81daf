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
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger builds a structured logger writing to LogDir()/mux.log,
// rotating once the active file exceeds cfg.MaxFileSizeMB and keeping at
// most cfg.MaxArchives rotated files.
func InitLogger(cfg LoggingConfig) *zap.Logger {
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(LogDir(), "mux.log"),
		MaxSize:    cfg.MaxFileSizeMB,
		MaxBackups: cfg.MaxArchives,
		Compress:   true,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(sink),
		zapcore.DebugLevel,
	)

	return zap.New(core, zap.AddCaller())
}

// logRedactedCommand logs a task-related event with the command's
// sensitive arguments scrubbed first.
func logRedactedCommand(logger *zap.Logger, level zapcore.Level, msg, command string) {
	safe := RedactCommand(command)
	switch level {
	case zapcore.WarnLevel:
		logger.Warn(msg, zap.String("command", safe))
	case zapcore.ErrorLevel:
		logger.Error(msg, zap.String("command", safe))
	default:
		logger.Info(msg, zap.String("command", safe))
	}
}
