// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRegistry(names ...string) *Registry {
	r := NewRegistry(nil)
	for _, name := range names {
		r.Register(&Command{
			Name:    name,
			Handler: func(*Invocation) (bool, error) { return true, nil },
		})
	}
	return r
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	r := newTestRegistry("Teleport")

	for _, name := range []string{"teleport", "TELEPORT", "TelePort", " teleport "} {
		cmd := r.Get(name)
		require.NotNil(t, cmd, name)
		assert.Equal(t, "Teleport", cmd.Name)
	}
	assert.Nil(t, r.Get(""))
	assert.Nil(t, r.Get("tele"))
	assert.Equal(t, []string{"teleport"}, r.Names())
}

func TestRegistryOverwriteWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRegistry(zap.New(core))

	first := &Command{Name: "echo", Description: "first"}
	second := &Command{Name: "ECHO", Description: "second"}
	r.Register(first)
	r.Register(second)

	assert.Equal(t, 1, r.Len())
	assert.Same(t, second, r.Get("echo"))

	entries := logs.FilterMessage("command already registered, overwriting").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "echo", entries[0].ContextMap()["command"])
}

func TestRegistryRejectsNamelessCommand(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := NewRegistry(zap.New(core))

	r.Register(nil)
	r.Register(&Command{Name: "  "})

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 2, logs.Len())
}

func TestRegistryUnregister(t *testing.T) {
	r := newTestRegistry("help", "quit")

	r.Unregister("HELP")
	assert.Nil(t, r.Get("help"))
	assert.Equal(t, 1, r.Len())

	// Absent names are a no-op.
	r.Unregister("help")
	r.Unregister("missing")
	assert.Equal(t, 1, r.Len())
}

func TestRegistrySuggestions(t *testing.T) {
	r := newTestRegistry("teleport", "test", "team", "help", "history", "time")

	tests := []struct {
		partial string
		want    []string
	}{
		{"te", []string{"team", "teleport", "test"}},
		{"TE", []string{"team", "teleport", "test"}},
		{"h", []string{"help", "history"}},
		{"time", []string{"time"}},
		{"x", []string{}},
		{"", []string{}},
		{"   ", []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.partial, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Suggestions(tc.partial))
		})
	}
}

func TestRegistryClosest(t *testing.T) {
	r := newTestRegistry("help", "teleport", "quit")

	assert.Equal(t, []string{"help"}, r.Closest("hlp", 3))
	assert.Equal(t, []string{}, r.Closest("zzz", 3))
	assert.Equal(t, []string{}, r.Closest("", 3))
	assert.Equal(t, []string{}, r.Closest("hlp", 0))
}

func TestRegistryByCategory(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&Command{Name: "quit", Category: "System"})
	r.Register(&Command{Name: "clear", Category: "System"})
	r.Register(&Command{Name: "echo"})
	r.Register(&Command{Name: "secret", Hidden: true})

	groups := r.ByCategory()
	require.Len(t, groups, 2)
	require.Len(t, groups["System"], 2)
	assert.Equal(t, "clear", groups["System"][0].Name)
	assert.Equal(t, "quit", groups["System"][1].Name)
	assert.Equal(t, "echo", groups["General"][0].Name)
}

type staticProvider []*Command

func (p staticProvider) Commands() []*Command { return p }

func TestRegistryRegisterProvider(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterProvider(staticProvider{{Name: "a"}, {Name: "b"}})
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestCommandSyntax(t *testing.T) {
	cmd := &Command{Name: "teleport", Params: Signature{Vector3Param}}
	assert.Equal(t, "teleport <x,y,z>", cmd.Syntax())

	cmd = &Command{Name: "quit"}
	assert.Equal(t, "quit", cmd.Syntax())

	cmd = &Command{Name: "help", Usage: "help [command]"}
	assert.Equal(t, "help [command]", cmd.Syntax())
}
