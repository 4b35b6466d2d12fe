// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/commander/internal/config"
)

// New constructs a console-encoded logger at the configured level. Output
// goes to cfg.Path when set, stderr otherwise.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.DisableCaller = true
	zc.DisableStacktrace = true
	zc.Sampling = nil
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.NameKey = "component"
	zc.EncoderConfig.CallerKey = ""
	zc.EncoderConfig.StacktraceKey = ""

	if cfg.Path != "" {
		path, err := config.ExpandHome(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zc.OutputPaths = []string{path}
		zc.ErrorOutputPaths = []string{path}
	} else {
		zc.OutputPaths = []string{"stderr"}
		zc.ErrorOutputPaths = []string{"stderr"}
	}

	return zc.Build()
}

// Quiet returns cfg unchanged when it logs to a file and a copy raised to
// error level otherwise. A full-screen UI owns stderr, so only errors may
// reach it.
func Quiet(cfg config.LogConfig) config.LogConfig {
	if cfg.Path != "" {
		return cfg
	}
	cfg.Level = zapcore.ErrorLevel.String()
	return cfg
}
