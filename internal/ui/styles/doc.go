// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the console TUI.
//
// # Key Types
//
//   - Theme: Lip Gloss styles for each result status and UI element
//
// # Usage
//
//	theme := styles.NewTheme("auto")
//	line := theme.ForStatus(commands.StatusError).Render("boom")
package styles
