// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"go.uber.org/zap"
)

// =============================================================================
// TARGETS
// =============================================================================

// Target is an object a command can act upon. Targets are owned by the
// ObjectSpace; the interpreter only holds them for one invocation.
type Target interface {
	Name() string
}

// ObjectSpace is the live set of objects commands can target.
//
// Enumeration order of FindContaining and Visible is defined by the
// implementation. Which objects count as visible is entirely up to it.
type ObjectSpace interface {
	// FindExact returns the object whose name equals name exactly.
	FindExact(name string) (Target, bool)
	// FindContaining returns objects whose name contains fragment, ignoring case.
	FindContaining(fragment string) []Target
	// Visible returns objects eligible as completion candidates.
	Visible() []Target
}

// TargetResolver maps the first argument token to a Target.
type TargetResolver struct {
	space ObjectSpace
	log   *zap.Logger
}

// NewTargetResolver creates a resolver over space. A nil space never
// resolves anything.
func NewTargetResolver(space ObjectSpace, log *zap.Logger) *TargetResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &TargetResolver{space: space, log: log}
}

// Resolve treats tokens[0] as a target name: an exact match wins, otherwise
// the first case-insensitive substring match. No match returns nil; whether
// that is fatal is decided by the command's CanExecute.
func (tr *TargetResolver) Resolve(cmd *Command, tokens []string) (target Target) {
	if tr == nil || tr.space == nil || len(tokens) == 0 {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			tr.log.Error("object space panicked during target resolution",
				zap.String("token", tokens[0]), zap.Any("panic", r))
			target = nil
		}
	}()

	name := tokens[0]
	if t, ok := tr.space.FindExact(name); ok && t != nil {
		return t
	}
	for _, t := range tr.space.FindContaining(name) {
		if t != nil {
			return t
		}
	}
	return nil
}
