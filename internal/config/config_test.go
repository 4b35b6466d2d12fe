// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Console.SuggestionLimit)
	assert.Equal(t, 3, cfg.Console.HintLimit)
	assert.Equal(t, 50, cfg.History.MaxEntries)
	assert.True(t, cfg.Console.FuzzyHints)
	assert.False(t, cfg.Console.StrictConversion)
}

func TestLoadFromPathTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[console]
hint_limit = 1
strict_conversion = true

[scene]
path = "/tmp/level.yaml"

[ui]
mode = "plain"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Console.HintLimit)
	assert.True(t, cfg.Console.StrictConversion)
	assert.Equal(t, "/tmp/level.yaml", cfg.Scene.Path)
	assert.Equal(t, "plain", cfg.UI.Mode)

	// Untouched keys keep their defaults.
	assert.Equal(t, 5, cfg.Console.SuggestionLimit)
	assert.True(t, cfg.Console.FuzzyHints)
	assert.Equal(t, "> ", cfg.Console.Prompt)
}

func TestLoadFromPathJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "debug"}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromPathInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\nmode = \"holo\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "ui.mode", verrs[0].Field)
}

func TestValidateAggregates(t *testing.T) {
	cfg := Default()
	cfg.Console.SuggestionLimit = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "console.suggestion_limit")
	assert.Contains(t, err.Error(), "log.level")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("COMMANDER_LOG_LEVEL", "info")
	t.Setenv("COMMANDER_SCENE", "arena.yaml")
	t.Setenv("COMMANDER_STRICT", "true")
	t.Setenv("COMMANDER_UI_MODE", "tui")
	t.Setenv("COMMANDER_HISTORY_DB", "/tmp/h.db")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "arena.yaml", cfg.Scene.Path)
	assert.True(t, cfg.Console.StrictConversion)
	assert.Equal(t, "tui", cfg.UI.Mode)
	assert.Equal(t, "/tmp/h.db", cfg.History.DatabasePath)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
		want  interface{}
	}{
		{"console.hint_limit", "2", 2},
		{"console.strict_conversion", "on", true},
		{"console.prompt", "$ ", "$ "},
		{"scene.watch", "false", false},
		{"ui.theme", "dark", "dark"},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			require.NoError(t, cfg.Set(tc.key, tc.value))
			got, err := cfg.Get(tc.key)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetSetErrors(t *testing.T) {
	cfg := Default()

	_, err := cfg.Get("console.nope")
	assert.Error(t, err)
	_, err = cfg.Get("console")
	assert.Error(t, err, "sections are not values")
	_, err = cfg.Get("")
	assert.Error(t, err)

	assert.Error(t, cfg.Set("console.hint_limit", "many"))
	assert.Error(t, cfg.Set("console.fuzzy_hints", "perhaps"))
	assert.Error(t, cfg.Set("console.prompt.x", "y"))
}

func TestGetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Console.HintLimit = 7
	cfg.Scene.Path = "level.yaml"

	require.NoError(t, SaveTOML(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# commander configuration file"))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Console.HintLimit)
	assert.Equal(t, "level.yaml", loaded.Scene.Path)
}

func TestHistoryPath(t *testing.T) {
	cfg := Default()
	cfg.History.DatabasePath = "/var/lib/commander/h.db"
	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/commander/h.db", path)

	cfg.History.DatabasePath = ""
	path, err = cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "history.db", filepath.Base(path))
}
