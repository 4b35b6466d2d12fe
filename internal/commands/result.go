// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STATUS
// =============================================================================

// Status classifies a Result or an output line.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusWarning
	StatusInfo
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusWarning:
		return "warning"
	case StatusInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Line is one line of command output.
type Line struct {
	Status Status
	Text   string
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of one Executor.Execute call. It is built once and
// never modified afterwards; treat it as a value.
type Result struct {
	ID            uuid.UUID
	Status        Status
	Message       string
	Cause         error
	Command       string
	Input         string
	Output        []Line
	ExecutionTime time.Duration
	At            time.Time
}

// OK reports whether the result is not an error.
func (r Result) OK() bool {
	return r.Status != StatusError
}

// Lines returns a copy of the command output.
func (r Result) Lines() []Line {
	return append([]Line(nil), r.Output...)
}

// =============================================================================
// OBSERVER
// =============================================================================

// Observer is notified after every command execution.
type Observer interface {
	OnCommandExecuted(result Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(result Result)

// OnCommandExecuted calls f(result).
func (f ObserverFunc) OnCommandExecuted(result Result) {
	f(result)
}
