// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the console.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ConsoleConfig: Interpreter behavior (hints, strict conversion, prompt)
//   - SceneConfig: Scene file and hot reload
//   - HistoryConfig: SQLite journal and recall ring
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (COMMANDER_*)
//   - --config flag
//   - ~/.commander/config.toml
//   - ~/.commander/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	limit := cfg.Console.SuggestionLimit
package config
