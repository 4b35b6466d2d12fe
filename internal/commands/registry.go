// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a console command that can be executed.
type Command struct {
	// Name is the command name (e.g., "teleport"). Lookup is case-insensitive.
	Name string

	// Description is shown in help and completion
	Description string

	// Category for grouping in help display
	Category string

	// Params defines the typed arguments, in order
	Params Signature

	// Usage overrides the generated "<name> <params>" syntax
	Usage string

	// Handler is the function that executes the command.
	// A false return or a non-nil error reports failure.
	Handler func(inv *Invocation) (bool, error)

	// CanExecute gates execution on the resolved target (nil target means
	// none was resolved). A nil CanExecute allows every target.
	CanExecute func(target Target) bool

	// Hidden commands don't appear in help
	Hidden bool

	// Untargeted commands skip target resolution, so their first argument
	// is never mistaken for an object name.
	Untargeted bool
}

// Syntax returns the usage line for help output.
func (c *Command) Syntax() string {
	if c.Usage != "" {
		return c.Usage
	}
	if len(c.Params) == 0 {
		return c.Name
	}
	return c.Name + " " + c.Params.Usage()
}

func (c *Command) allowed(target Target) bool {
	if c.CanExecute == nil {
		return true
	}
	return c.CanExecute(target)
}

// RequireTarget is a CanExecute gate that rejects a missing target.
func RequireTarget(target Target) bool {
	return target != nil
}

// Provider supplies commands to a Registry. How the commands are
// discovered is up to the provider.
type Provider interface {
	Commands() []*Command
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands keyed by lowercase name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	log      *zap.Logger
}

// NewRegistry creates an empty command registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		commands: make(map[string]*Command),
		log:      log,
	}
}

// Register adds a command to the registry. An existing command with the
// same name is overwritten and a warning is logged; registration never fails.
func (r *Registry) Register(cmd *Command) {
	if cmd == nil || strings.TrimSpace(cmd.Name) == "" {
		r.log.Error("cannot register command without a name")
		return
	}

	key := foldName(cmd.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[key]; exists {
		r.log.Warn("command already registered, overwriting", zap.String("command", key))
	}
	r.commands[key] = cmd
}

// RegisterProvider registers every command the provider yields.
func (r *Registry) RegisterProvider(p Provider) {
	for _, cmd := range p.Commands() {
		r.Register(cmd)
	}
}

// Unregister removes a command. Unknown names are ignored.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, foldName(name))
}

// Get retrieves a command by name, ignoring case. Returns nil if not found.
func (r *Registry) Get(name string) *Command {
	if name == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[foldName(name)]
}

// All returns all registered commands in no particular order.
func (r *Registry) All() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// Names returns every registered key, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// ByCategory returns visible commands grouped by category, each group
// sorted by name.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	for _, cmds := range result {
		sort.Slice(cmds, func(i, j int) bool {
			return foldName(cmds[i].Name) < foldName(cmds[j].Name)
		})
	}
	return result
}

// Suggestions returns the registered names starting with partial, in
// lexicographic order. An empty partial yields nothing.
func (r *Registry) Suggestions(partial string) []string {
	prefix := foldName(partial)
	if prefix == "" {
		return []string{}
	}
	matches := []string{}
	for _, name := range r.Names() {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Closest returns up to n names that contain the letters of partial in
// order, best match first. Used for hints when no name has the prefix.
func (r *Registry) Closest(partial string, n int) []string {
	if partial == "" || n <= 0 {
		return []string{}
	}
	ranks := fuzzy.RankFindFold(partial, r.Names())
	sort.Stable(ranks)

	out := make([]string, 0, n)
	for _, rank := range ranks {
		if len(out) == n {
			break
		}
		out = append(out, rank.Target)
	}
	return out
}

// foldName normalizes a command name for lookup.
func foldName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}
