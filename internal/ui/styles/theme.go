// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/commander/internal/commands"
)

// hexColor matches #RRGGBB and #RRGGBBAA codes in output lines.
var hexColor = regexp.MustCompile(`#[0-9A-Fa-f]{6}(?:[0-9A-Fa-f]{2})?\b`)

// Theme holds all the styled components for the console.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// RESULT STYLES
	// ==========================================================================

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Echo    lipgloss.Style

	// ==========================================================================
	// INPUT STYLES
	// ==========================================================================

	Prompt             lipgloss.Style
	InputText          lipgloss.Style
	Ghost              lipgloss.Style
	Suggestion         lipgloss.Style
	SuggestionSelected lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Success = lipgloss.NewStyle().Foreground(Emerald)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Warning = lipgloss.NewStyle().Foreground(Amber)
	t.Info = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Echo = lipgloss.NewStyle().Foreground(TextSecondary)

	t.Prompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.InputText = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Ghost = lipgloss.NewStyle().Foreground(TextMuted)
	t.Suggestion = lipgloss.NewStyle().Foreground(TextSecondary).Padding(0, 1)
	t.SuggestionSelected = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		Underline(true).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ForStatus returns the style for a result or output line status.
func (t *Theme) ForStatus(status commands.Status) lipgloss.Style {
	switch status {
	case commands.StatusSuccess:
		return t.Success
	case commands.StatusError:
		return t.Error
	case commands.StatusWarning:
		return t.Warning
	default:
		return t.Info
	}
}

// RenderLine styles one output line, putting a color swatch in front of
// every hex color code it mentions.
func (t *Theme) RenderLine(line commands.Line) string {
	style := t.ForStatus(line.Status)
	codes := hexColor.FindAllString(line.Text, -1)
	if len(codes) == 0 {
		return style.Render(line.Text)
	}
	// Swatches carry their own background; style the text around them.
	parts := hexColor.Split(line.Text, -1)
	out := style.Render(parts[0])
	for i, code := range codes {
		out += Swatch(code) + style.Render(" "+code+parts[i+1])
	}
	return out
}

// Swatch renders two cells filled with the given #RRGGBB[AA] color. The
// alpha byte is ignored.
func Swatch(hex string) string {
	if len(hex) > 7 {
		hex = hex[:7]
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
}

// Prefix marks a line so its status survives a monochrome terminal.
func Prefix(status commands.Status) string {
	switch status {
	case commands.StatusSuccess:
		return "[✓] "
	case commands.StatusError:
		return "[✗] "
	case commands.StatusWarning:
		return "[!] "
	case commands.StatusInfo:
		return "[i] "
	default:
		return "[?] "
	}
}
