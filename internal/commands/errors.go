// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds carried by Result.Cause. Match them with errors.Is.
var (
	ErrEmptyInput     = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrCannotExecute  = errors.New("cannot execute with current target")
	ErrInvocation     = errors.New("command failed")
	ErrConversion     = errors.New("parameter conversion failed")

	// ErrMissingArgument marks a slot that had no token left to consume.
	ErrMissingArgument = errors.New("missing value")
)

// UnknownCommandError is returned when no command matches the first token.
type UnknownCommandError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownCommandError) Error() string {
	msg := "unknown command: '" + e.Name + "'"
	if len(e.Suggestions) > 0 {
		msg += ". Did you mean: " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return msg
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// InvocationError wraps a failure raised by a command body: either a
// returned error or a recovered panic.
type InvocationError struct {
	Command string
	Err     error
}

func (e *InvocationError) Error() string {
	return "command '" + e.Command + "': " + e.Err.Error()
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

func (e *InvocationError) Is(target error) bool {
	return target == ErrInvocation
}

// ConversionError describes one argument slot that could not be converted.
type ConversionError struct {
	Slot  int
	Kind  ParameterKind
	Token string
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parameter %d (%s): %v", e.Slot+1, e.Kind, e.Err)
	}
	return fmt.Sprintf("parameter %d (%s): cannot convert %q: %v", e.Slot+1, e.Kind, e.Token, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// panicError turns a recovered panic value into an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
