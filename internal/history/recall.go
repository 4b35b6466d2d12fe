// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"strings"
	"sync"

	"github.com/jeranaias/commander/internal/commands"
)

// DefaultRecallSize is the number of lines Up/Down can reach.
const DefaultRecallSize = 50

// =============================================================================
// RECALL
// =============================================================================

// Recall is the Up/Down input history. Consecutive duplicates are stored
// once and the oldest line is dropped past the size limit.
type Recall struct {
	mu     sync.Mutex
	lines  []string
	max    int
	cursor int
	draft  string
}

var _ commands.Observer = (*Recall)(nil)

// NewRecall creates a ring holding up to max lines.
func NewRecall(max int) *Recall {
	if max <= 0 {
		max = DefaultRecallSize
	}
	return &Recall{max: max}
}

// OnCommandExecuted records the input of every executed line.
func (r *Recall) OnCommandExecuted(result commands.Result) {
	r.Add(result.Input)
}

// Add appends line and resets navigation.
func (r *Recall) Add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.resetLocked()

	if strings.TrimSpace(line) == "" {
		return
	}
	if n := len(r.lines); n > 0 && r.lines[n-1] == line {
		return
	}
	r.lines = append(r.lines, line)
	if len(r.lines) > r.max {
		r.lines = append([]string(nil), r.lines[len(r.lines)-r.max:]...)
	}
}

// Seed loads lines, oldest first, e.g. from the journal.
func (r *Recall) Seed(lines []string) {
	for _, line := range lines {
		r.Add(line)
	}
}

// Prev moves to the older line. current is kept as the draft restored when
// navigating past the newest line. ok is false when there is no history.
func (r *Recall) Prev(current string) (line string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return current, false
	}
	if r.cursor == len(r.lines) {
		r.draft = current
	}
	if r.cursor > 0 {
		r.cursor--
	}
	return r.lines[r.cursor], true
}

// Next moves to the newer line, returning the draft after the newest.
func (r *Recall) Next() (line string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cursor >= len(r.lines) {
		return "", false
	}
	r.cursor++
	if r.cursor == len(r.lines) {
		return r.draft, true
	}
	return r.lines[r.cursor], true
}

// Reset ends navigation.
func (r *Recall) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Recall) resetLocked() {
	r.cursor = len(r.lines)
	r.draft = ""
}

// Lines returns the stored lines, oldest first.
func (r *Recall) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Len returns the number of stored lines.
func (r *Recall) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}
