// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "fmt"

// =============================================================================
// INVOCATION
// =============================================================================

// Invocation is what a Handler receives: the resolved target, the converted
// arguments and a buffer for output lines.
type Invocation struct {
	Command *Command
	Target  Target
	Args    Args
	Input   string

	output  []Line
	missing map[int]bool
}

// Provided reports whether slot i was given on the command line. Slots
// left out receive their zero value, so optional arguments check this.
func (inv *Invocation) Provided(i int) bool {
	if i < 0 || i >= len(inv.Args) {
		return false
	}
	return !inv.missing[i]
}

// Printf appends an output line with the given status.
func (inv *Invocation) Printf(status Status, format string, a ...any) {
	inv.output = append(inv.output, Line{Status: status, Text: fmt.Sprintf(format, a...)})
}

// Infof appends an informational line.
func (inv *Invocation) Infof(format string, a ...any) {
	inv.Printf(StatusInfo, format, a...)
}

// Successf appends a success line.
func (inv *Invocation) Successf(format string, a ...any) {
	inv.Printf(StatusSuccess, format, a...)
}

// Warnf appends a warning line.
func (inv *Invocation) Warnf(format string, a ...any) {
	inv.Printf(StatusWarning, format, a...)
}

// Errorf appends an error line.
func (inv *Invocation) Errorf(format string, a ...any) {
	inv.Printf(StatusError, format, a...)
}

// =============================================================================
// ARGS
// =============================================================================

// Args holds converted argument values, one per signature slot. The typed
// accessors return the zero value when the slot is absent or of another type.
type Args []any

func (a Args) at(i int) any {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Text returns slot i as a string.
func (a Args) Text(i int) string {
	s, _ := a.at(i).(string)
	return s
}

// Int returns slot i as an int.
func (a Args) Int(i int) int {
	n, _ := a.at(i).(int)
	return n
}

// Decimal returns slot i as a float64.
func (a Args) Decimal(i int) float64 {
	f, _ := a.at(i).(float64)
	return f
}

// Bool returns slot i as a bool.
func (a Args) Bool(i int) bool {
	b, _ := a.at(i).(bool)
	return b
}

// Vector2 returns slot i as a Vector2.
func (a Args) Vector2(i int) Vector2 {
	v, _ := a.at(i).(Vector2)
	return v
}

// Vector3 returns slot i as a Vector3.
func (a Args) Vector3(i int) Vector3 {
	v, _ := a.at(i).(Vector3)
	return v
}

// Color returns slot i as a Color, white when absent.
func (a Args) Color(i int) Color {
	if c, ok := a.at(i).(Color); ok {
		return c
	}
	return ColorWhite
}

// List returns slot i as a slice (arrays and lists).
func (a Args) List(i int) []any {
	l, _ := a.at(i).([]any)
	return l
}

// Map returns slot i as a map.
func (a Args) Map(i int) map[any]any {
	m, _ := a.at(i).(map[any]any)
	return m
}
