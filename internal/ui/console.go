// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the full screen console: a scrollback of results, a
// suggestion popup and a single input line.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/history"
	"github.com/jeranaias/commander/internal/ui/styles"
	"github.com/jeranaias/commander/internal/util"
)

// Layout heights outside the scrollback.
const (
	inputAreaHeight = 1
	statusBarHeight = 1
	popupChrome     = 2 // header and hint lines around the suggestions
)

// Redraw intervals with and without a visible overlay readout.
const (
	frameInterval     = 50 * time.Millisecond
	idleFrameInterval = time.Second
)

// =============================================================================
// MESSAGES
// =============================================================================

// SceneReloadedMsg reports a hot reload of the scene file.
type SceneReloadedMsg struct {
	Path string
	Err  error
}

// frameTickMsg forces a redraw so the frame counter sees a steady rate.
type frameTickMsg time.Time

// FrameCounter is told about every rendered frame. While Active it is
// redrawn at a steady rate.
type FrameCounter interface {
	Frame()
	Active() bool
}

// =============================================================================
// MODEL
// =============================================================================

// Options wires the console to the interpreter.
type Options struct {
	Executor  *commands.Executor
	Completer *commands.Completer
	Recall    *history.Recall
	Theme     *styles.Theme
	Screen    *Screen

	// Prompt is shown before the input; "> " when empty
	Prompt string
	// SuggestionLimit caps the popup; commands.DefaultSuggestionLimit when 0
	SuggestionLimit int
	// Status returns the left side of the status bar, e.g. scene stats
	Status func() string
	// Frames counts rendered frames; nil disables the redraw tick
	Frames FrameCounter

	Log *zap.Logger
}

// Model is the bubbletea model of the console.
type Model struct {
	opts       Options
	keys       KeyMap
	screen     *Screen
	theme      *styles.Theme
	completion *commands.CompletionState
	log        *zap.Logger

	input    textinput.Model
	viewport viewport.Model

	width  int
	height int
}

// New creates the console model.
func New(opts Options) Model {
	if opts.Prompt == "" {
		opts.Prompt = "> "
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = commands.DefaultSuggestionLimit
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme("auto")
	}
	if opts.Screen == nil {
		opts.Screen = NewScreen()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.PromptStyle = opts.Theme.Prompt
	ti.TextStyle = opts.Theme.InputText
	ti.Placeholder = "Type a command, Tab to complete"
	ti.CharLimit = 1024
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	m := Model{
		opts:       opts,
		keys:       DefaultKeyMap(),
		screen:     opts.Screen,
		theme:      opts.Theme,
		completion: commands.NewCompletionState(),
		log:        log,
		input:      ti,
		viewport:   vp,
		width:      80,
		height:     24,
	}
	m.screen.Add(commands.StatusInfo, "Commander console ready. Type 'help' for commands, Tab for suggestions.")
	m.refresh()
	return m
}

// Screen returns the scrollback commands drive through builtin.Console.
func (m Model) Screen() *Screen {
	return m.screen
}

// Input returns the current input line.
func (m Model) Input() string {
	return m.input.Value()
}

// Completions returns the popup entries, empty when hidden.
func (m Model) Completions() []commands.Completion {
	if !m.completion.Visible {
		return nil
	}
	return m.completion.Completions
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.frameTick())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SceneReloadedMsg:
		if msg.Err != nil {
			m.screen.Add(commands.StatusError, fmt.Sprintf("Scene reload failed: %v", msg.Err))
		} else {
			m.screen.Add(commands.StatusInfo, "Scene reloaded from "+msg.Path)
		}
		m.refresh()
		return m, nil

	case frameTickMsg:
		return m, m.frameTick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) frameTick() tea.Cmd {
	if m.opts.Frames == nil {
		return nil
	}
	interval := idleFrameInterval
	if m.opts.Frames.Active() {
		interval = frameInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	const promptLen = 2
	inputWidth := m.width - promptLen - 1
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.layout()
	m.refresh()

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, vpCmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		if m.completion.Visible {
			m.applySuggestion()
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keys.Complete):
		m.cycleSuggestions(1)
		return m, nil

	case key.Matches(msg, m.keys.CompletePrev):
		m.cycleSuggestions(-1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.completion.Visible {
			m.completion.Prev()
			return m, nil
		}
		if m.opts.Recall != nil {
			if line, ok := m.opts.Recall.Prev(m.input.Value()); ok {
				m.setInput(line)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.completion.Visible {
			m.completion.Next()
			return m, nil
		}
		if m.opts.Recall != nil {
			if line, ok := m.opts.Recall.Next(); ok {
				m.setInput(line)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.completion.Visible {
			m.hideSuggestions()
		} else {
			m.input.Reset()
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.screen.Clear()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.completion.Visible {
		m.updateSuggestions()
	}
	return m, cmd
}

// submit executes the input line and appends its output and result.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if m.opts.Recall != nil {
		m.opts.Recall.Reset()
	}
	if line == "" {
		return m, nil
	}

	m.screen.Echo(m.opts.Prompt + line)
	result := m.opts.Executor.Execute(line)
	for _, l := range result.Output {
		m.screen.Add(l.Status, l.Text)
	}
	if result.Message != "" {
		m.screen.Add(result.Status, result.Message)
	}
	m.log.Debug("command executed",
		zap.String("command", result.Command),
		zap.Stringer("status", result.Status),
		zap.Duration("elapsed", result.ExecutionTime))

	m.refresh()
	if m.screen.QuitRequested() {
		return m, tea.Quit
	}
	return m, nil
}

// =============================================================================
// SUGGESTIONS
// =============================================================================

// cycleSuggestions opens the popup on the first press and moves the
// selection on later ones.
func (m *Model) cycleSuggestions(dir int) {
	if !m.completion.Visible {
		m.updateSuggestions()
		if dir < 0 {
			m.completion.Prev()
		}
		return
	}
	if dir < 0 {
		m.completion.Prev()
	} else {
		m.completion.Next()
	}
}

func (m *Model) updateSuggestions() {
	input := m.input.Value()
	if strings.TrimSpace(input) == "" {
		m.hideSuggestions()
		return
	}
	completions := m.opts.Completer.Complete(input, m.opts.SuggestionLimit)
	m.completion.Update(input, completions)
	m.layout()
}

// applySuggestion replaces the input with the selection plus a space so
// the next argument can be typed straight away.
func (m *Model) applySuggestion() {
	value := m.completion.Accept()
	m.hideSuggestions()
	m.setInput(value + " ")
}

func (m *Model) hideSuggestions() {
	m.completion.Clear()
	m.layout()
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// =============================================================================
// RENDERING
// =============================================================================

// layout sizes the scrollback around the popup, input and status bar.
func (m *Model) layout() {
	reserved := inputAreaHeight + statusBarHeight
	if n := len(m.Completions()); n > 0 {
		reserved += n + popupChrome
	}
	height := m.height - reserved
	if height < 1 {
		height = 1
	}
	width := m.width
	if width < 1 {
		width = 1
	}
	m.viewport.Width = width
	m.viewport.Height = height
}

// refresh re-renders the scrollback and scrolls to the newest line.
func (m *Model) refresh() {
	entries := m.screen.snapshot()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.echo {
			lines = append(lines, m.theme.Echo.Render(e.line.Text))
			continue
		}
		l := e.line
		l.Text = styles.Prefix(l.Status) + l.Text
		lines = append(lines, m.theme.RenderLine(l))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// View renders the console.
func (m Model) View() string {
	if m.opts.Frames != nil {
		m.opts.Frames.Frame()
	}
	parts := []string{m.viewport.View()}
	if popup := m.renderPopup(); popup != "" {
		parts = append(parts, popup)
	}
	parts = append(parts, m.input.View(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderPopup() string {
	completions := m.Completions()
	if len(completions) == 0 {
		return ""
	}
	column := 0
	for _, c := range completions {
		column = max(column, util.StringWidth(c.Display))
	}
	lines := []string{m.theme.Ghost.Render(fmt.Sprintf("Suggestions (%d found)", len(completions)))}
	for i, c := range completions {
		text := fmt.Sprintf("%d. %s", i+1, util.PadRight(c.Display, column))
		if c.Description != "" {
			text += " - " + c.Description
		}
		if m.width > 0 {
			text = util.TruncateWidth(text, m.width)
		}
		style := m.theme.Suggestion
		if i == m.completion.Selected {
			style = m.theme.SuggestionSelected
		}
		lines = append(lines, style.Render(text))
	}
	lines = append(lines, m.theme.Ghost.Render("↑↓: navigate | Enter: apply | Tab: next | Esc: close"))
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	left := ""
	if m.opts.Status != nil {
		left = m.opts.Status()
	}
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return m.theme.StatusBar.Render(left)
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}
