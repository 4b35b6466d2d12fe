// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repl provides the plain line-mode console for terminals without
// full screen support, pipes and scripted runs.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/history"
	"github.com/jeranaias/commander/internal/ui/styles"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\033[H\033[2J"

// Options configures a REPL.
type Options struct {
	Executor  *commands.Executor
	Completer *commands.Completer
	Recall    *history.Recall
	Theme     *styles.Theme

	// Prompt is shown before each line; "> " when empty
	Prompt string
	// SuggestionLimit caps Tab completions
	SuggestionLimit int
	// Out receives results; os.Stdout when nil
	Out io.Writer

	Log *zap.Logger
}

// REPL reads commands with line editing and prints their results. It
// implements builtin.Console.
type REPL struct {
	opts Options
	out  io.Writer
	log  *zap.Logger
	quit bool
}

// New creates a REPL. The terminal is only touched by Run.
func New(opts Options) *REPL {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = commands.DefaultSuggestionLimit
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &REPL{opts: opts, out: out, log: log}
}

// Clear erases the terminal.
func (r *REPL) Clear() {
	fmt.Fprint(r.out, clearScreen)
}

// Quit ends Run after the current command.
func (r *REPL) Quit() {
	r.quit = true
}

// Run reads and executes lines until quit, Ctrl+C, EOF or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(r.complete)

	if r.opts.Recall != nil {
		for _, l := range r.opts.Recall.Lines() {
			line.AppendHistory(l)
		}
	}

	fmt.Fprintln(r.out, "Commander console. Type 'help' for commands, Tab to complete, Ctrl+D to exit.")
	for !r.quit {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, err := line.Prompt(r.opts.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.Execute(input)
	}
	return nil
}

// Execute runs one line and prints its output. It reports whether the
// command succeeded.
func (r *REPL) Execute(input string) bool {
	result := r.opts.Executor.Execute(input)
	Print(r.out, r.opts.Theme, result)
	r.log.Debug("command executed",
		zap.String("command", result.Command),
		zap.Stringer("status", result.Status),
		zap.Duration("elapsed", result.ExecutionTime))
	return result.OK()
}

// QuitRequested reports whether a quit command ran.
func (r *REPL) QuitRequested() bool {
	return r.quit
}

// complete feeds liner's Tab completion.
func (r *REPL) complete(input string) []string {
	if r.opts.Completer == nil {
		return nil
	}
	return r.opts.Completer.Suggestions(input, r.opts.SuggestionLimit)
}

// Print writes a result's output lines and message, styled when theme is
// not nil.
func Print(w io.Writer, theme *styles.Theme, result commands.Result) {
	lines := result.Lines()
	if result.Message != "" {
		lines = append(lines, commands.Line{Status: result.Status, Text: result.Message})
	}
	for _, l := range lines {
		l.Text = styles.Prefix(l.Status) + l.Text
		if theme != nil {
			fmt.Fprintln(w, theme.RenderLine(l))
		} else {
			fmt.Fprintln(w, l.Text)
		}
	}
}
