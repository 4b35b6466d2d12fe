// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
)

// DefaultSuggestionLimit is the number of completions returned when the
// caller has no preference.
const DefaultSuggestionLimit = 5

// =============================================================================
// COMPLETER
// =============================================================================

// Completion is a single completion candidate.
type Completion struct {
	Value       string // Full line to substitute for the input
	Display     string // Text shown in the completion list
	Description string // Command description, empty for targets
}

// Completer proposes command names and "command target" pairs.
type Completer struct {
	registry *Registry
	space    ObjectSpace
}

// NewCompleter creates a completer. space may be nil, in which case only
// command names are completed.
func NewCompleter(registry *Registry, space ObjectSpace) *Completer {
	return &Completer{registry: registry, space: space}
}

// Suggestions returns up to limit completions for input.
//
// The input is split on single spaces, so "tp " is two parts and completes
// targets with an empty prefix:
//
//	""          -> nothing
//	"te"        -> command names starting with "te"
//	"tp cu"     -> "tp cube", "tp cup" for visible targets starting with "cu"
//	"tp cube 1" -> nothing
func (c *Completer) Suggestions(input string, limit int) []string {
	completions := c.Complete(input, limit)
	out := make([]string, len(completions))
	for i, comp := range completions {
		out[i] = comp.Value
	}
	return out
}

// BestSuggestion returns the first suggestion for input, or "".
func (c *Completer) BestSuggestion(input string) string {
	if s := c.Suggestions(input, 1); len(s) > 0 {
		return s[0]
	}
	return ""
}

// Complete is Suggestions with display metadata.
func (c *Completer) Complete(input string, limit int) []Completion {
	if input == "" || limit <= 0 || c.registry == nil {
		return []Completion{}
	}

	parts := strings.Split(input, " ")
	switch len(parts) {
	case 1:
		return c.completeCommands(parts[0], limit)
	case 2:
		cmd := c.registry.Get(parts[0])
		if cmd == nil {
			return []Completion{}
		}
		return c.completeTargets(parts[0], parts[1], limit)
	default:
		return []Completion{}
	}
}

func (c *Completer) completeCommands(partial string, limit int) []Completion {
	names := c.registry.Suggestions(partial)
	out := make([]Completion, 0, min(len(names), limit))
	for _, name := range names {
		if len(out) == limit {
			break
		}
		comp := Completion{Value: name, Display: name}
		if cmd := c.registry.Get(name); cmd != nil {
			comp.Display = cmd.Syntax()
			comp.Description = cmd.Description
		}
		out = append(out, comp)
	}
	return out
}

func (c *Completer) completeTargets(cmdName, partial string, limit int) (out []Completion) {
	out = []Completion{}
	if c.space == nil {
		return out
	}
	// A misbehaving object space yields no target completions.
	defer func() {
		if recover() != nil {
			out = []Completion{}
		}
	}()

	prefix := strings.ToLower(partial)
	for _, t := range c.space.Visible() {
		if len(out) == limit {
			break
		}
		if t == nil {
			continue
		}
		name := t.Name()
		if !strings.HasPrefix(strings.ToLower(name), prefix) {
			continue
		}
		out = append(out, Completion{Value: cmdName + " " + name, Display: name})
	}
	return out
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState holds the state for cycling through completions with Tab.
type CompletionState struct {
	// Original input before completion
	OriginalInput string

	// Current completions
	Completions []Completion

	// Selected index (-1 for none)
	Selected int

	// Visible indicates if completions should be shown
	Visible bool
}

// NewCompletionState creates a new completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{
		Selected: -1,
	}
}

// Update replaces the completions and selects the first one.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	cs.Visible = len(completions) > 0
}

// Next moves to the next completion, wrapping around.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion, wrapping around.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns the selected completion value, the first one if nothing is
// selected, or the original input when there are no completions.
func (cs *CompletionState) Accept() string {
	if len(cs.Completions) == 0 {
		return cs.OriginalInput
	}
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return cs.Completions[0].Value
	}
	return cs.Completions[cs.Selected].Value
}

// Clear resets the state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
	cs.Visible = false
}

// Selection returns the currently selected completion, or nil.
func (cs *CompletionState) Selection() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}
