// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"sync"

	"github.com/jeranaias/commander/internal/commands"
)

// MaxLogEntries caps the scrollback.
const MaxLogEntries = 1000

// entry is one scrollback line.
type entry struct {
	line commands.Line
	echo bool
}

// Screen is the scrollback shared between the model and the commands that
// drive the console. It implements builtin.Console.
type Screen struct {
	mu      sync.Mutex
	entries []entry
	quit    bool
}

// NewScreen creates an empty scrollback.
func NewScreen() *Screen {
	return &Screen{}
}

// Clear empties the scrollback.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Quit asks the program to exit after the current command.
func (s *Screen) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quit = true
}

// QuitRequested reports whether Quit was called.
func (s *Screen) QuitRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}

// Add appends a line, dropping the oldest beyond MaxLogEntries.
func (s *Screen) Add(status commands.Status, text string) {
	s.add(entry{line: commands.Line{Status: status, Text: text}})
}

// Echo appends the input line as typed.
func (s *Screen) Echo(text string) {
	s.add(entry{line: commands.Line{Status: commands.StatusInfo, Text: text}, echo: true})
}

func (s *Screen) add(e entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if over := len(s.entries) - MaxLogEntries; over > 0 {
		s.entries = append([]entry(nil), s.entries[over:]...)
	}
}

// Len returns the number of lines.
func (s *Screen) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Screen) snapshot() []entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entry(nil), s.entries...)
}
