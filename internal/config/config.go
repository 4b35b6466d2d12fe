// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the console.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - --config flag
//   - ~/.commander/config.toml
//   - ~/.commander/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/commander/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete console configuration.
type Config struct {
	// Console holds interpreter behavior
	Console ConsoleConfig `toml:"console" json:"console"`

	// Scene selects the object space
	Scene SceneConfig `toml:"scene" json:"scene"`

	// History configures the result journal and recall
	History HistoryConfig `toml:"history" json:"history"`

	// Log configures diagnostics output
	Log LogConfig `toml:"log" json:"log"`

	// UI configures the front end
	UI UIConfig `toml:"ui" json:"ui"`
}

// ConsoleConfig contains interpreter settings.
type ConsoleConfig struct {
	// Prompt is printed before each input line
	Prompt string `toml:"prompt" json:"prompt"`
	// SuggestionLimit caps autocomplete results
	SuggestionLimit int `toml:"suggestion_limit" json:"suggestion_limit"`
	// HintLimit caps "did you mean" names for unknown commands
	HintLimit int `toml:"hint_limit" json:"hint_limit"`
	// StrictConversion fails a command on a malformed argument instead of
	// substituting the zero value
	StrictConversion bool `toml:"strict_conversion" json:"strict_conversion"`
	// FuzzyHints falls back to subsequence matches when no name has the prefix
	FuzzyHints bool `toml:"fuzzy_hints" json:"fuzzy_hints"`
}

// SceneConfig contains object space settings.
type SceneConfig struct {
	// Path is a YAML scene file; empty uses the built-in demo scene
	Path string `toml:"path" json:"path"`
	// Watch reloads the scene when the file changes
	Watch bool `toml:"watch" json:"watch"`
}

// HistoryConfig contains history settings.
type HistoryConfig struct {
	// Enabled turns on the SQLite journal
	Enabled bool `toml:"enabled" json:"enabled"`
	// DatabasePath is the journal location (empty = ~/.commander/history.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
	// MaxEntries caps the recall ring
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Path is a log file; empty logs to stderr
	Path string `toml:"path" json:"path"`
}

// UIConfig contains front end settings.
type UIConfig struct {
	// Mode is "auto" (TUI on a terminal), "tui" or "plain"
	Mode string `toml:"mode" json:"mode"`
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Console: ConsoleConfig{
			Prompt:          "> ",
			SuggestionLimit: 5,
			HintLimit:       3,
			FuzzyHints:      true,
		},
		Scene: SceneConfig{
			Watch: true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 50,
		},
		Log: LogConfig{
			Level: "warn",
		},
		UI: UIConfig{
			Mode:  "auto",
			Theme: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".commander"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the journal path, defaulting into the config dir.
func (c *Config) HistoryPath() (string, error) {
	if c.History.DatabasePath != "" {
		return ExpandHome(c.History.DatabasePath)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default locations.
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	fillDefaults(cfg)
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in values a file explicitly emptied.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Console.Prompt == "" {
		cfg.Console.Prompt = defaults.Console.Prompt
	}
	if cfg.Console.SuggestionLimit == 0 {
		cfg.Console.SuggestionLimit = defaults.Console.SuggestionLimit
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = defaults.History.MaxEntries
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.UI.Mode == "" {
		cfg.UI.Mode = defaults.UI.Mode
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# commander configuration file")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), util.PrivateFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validUIModes   = []string{"auto", "tui", "plain"}
	validThemes    = []string{"auto", "dark", "light"}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Console.SuggestionLimit < 1 || c.Console.SuggestionLimit > 50 {
		errs = append(errs, ValidationError{"console.suggestion_limit", "must be between 1 and 50"})
	}
	if c.Console.HintLimit < 0 || c.Console.HintLimit > 10 {
		errs = append(errs, ValidationError{"console.hint_limit", "must be between 0 and 10"})
	}
	if c.History.MaxEntries < 1 || c.History.MaxEntries > 10000 {
		errs = append(errs, ValidationError{"history.max_entries", "must be between 1 and 10000"})
	}
	if !oneOf(c.Log.Level, validLogLevels) {
		errs = append(errs, ValidationError{"log.level", "must be one of " + strings.Join(validLogLevels, ", ")})
	}
	if !oneOf(c.UI.Mode, validUIModes) {
		errs = append(errs, ValidationError{"ui.mode", "must be one of " + strings.Join(validUIModes, ", ")})
	}
	if !oneOf(c.UI.Theme, validThemes) {
		errs = append(errs, ValidationError{"ui.theme", "must be one of " + strings.Join(validThemes, ", ")})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - COMMANDER_LOG_LEVEL: overrides log.level
//   - COMMANDER_SCENE: overrides scene.path
//   - COMMANDER_STRICT: "1" or "true" enables strict conversion
//   - COMMANDER_UI_MODE: overrides ui.mode
//   - COMMANDER_HISTORY_DB: overrides history.database_path
func (c *Config) ApplyEnvOverrides() {
	if level := os.Getenv("COMMANDER_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if scene := os.Getenv("COMMANDER_SCENE"); scene != "" {
		c.Scene.Path = scene
	}
	if strict := os.Getenv("COMMANDER_STRICT"); strict != "" {
		c.Console.StrictConversion = strict == "1" || strings.ToLower(strict) == "true"
	}
	if mode := os.Getenv("COMMANDER_UI_MODE"); mode != "" {
		c.UI.Mode = mode
	}
	if db := os.Getenv("COMMANDER_HISTORY_DB"); db != "" {
		c.History.DatabasePath = db
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "console.hint_limit").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks a dotted key to a leaf field.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("field '%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			switch strings.ToLower(strVal) {
			case "1", "true", "yes", "on":
				field.SetBool(true)
			case "0", "false", "no", "off":
				field.SetBool(false)
			default:
				return fmt.Errorf("invalid boolean value: %q", strVal)
			}
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"console.prompt",
		"console.suggestion_limit",
		"console.hint_limit",
		"console.strict_conversion",
		"console.fuzzy_hints",
		"scene.path",
		"scene.watch",
		"history.enabled",
		"history.database_path",
		"history.max_entries",
		"log.level",
		"log.path",
		"ui.mode",
		"ui.theme",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("error encoding config: %v", err)
	}
	return buf.String()
}
