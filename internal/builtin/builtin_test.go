// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/config"
	"github.com/jeranaias/commander/internal/history"
	"github.com/jeranaias/commander/internal/scene"
)

// fakeConsole records front end calls.
type fakeConsole struct {
	cleared int
	quit    bool
}

func (c *fakeConsole) Clear() { c.cleared++ }
func (c *fakeConsole) Quit()  { c.quit = true }

type fixture struct {
	exec     *commands.Executor
	scene    *scene.Scene
	console  *fakeConsole
	provider *Provider
}

func newFixture(t *testing.T, d Deps) *fixture {
	t.Helper()
	s := scene.Demo(nil)
	d.Scene = s
	exec := commands.NewExecutor(commands.NewRegistry(nil), commands.WithObjectSpace(s))
	p := Install(exec, d)
	console := &fakeConsole{}
	p.SetConsole(console)
	return &fixture{exec: exec, scene: s, console: console, provider: p}
}

func (f *fixture) run(t *testing.T, line string) commands.Result {
	t.Helper()
	return f.exec.Execute(line)
}

func outputText(r commands.Result) string {
	lines := make([]string, 0, len(r.Output))
	for _, l := range r.Output {
		lines = append(lines, l.Text)
	}
	return strings.Join(lines, "\n")
}

func (f *fixture) object(t *testing.T, name string) scene.Object {
	t.Helper()
	o, ok := f.scene.Get(name)
	require.True(t, ok, "object %q missing", name)
	return o
}

// =============================================================================
// INSTALL
// =============================================================================

func TestInstallRegistersEverything(t *testing.T) {
	f := newFixture(t, Deps{})

	names := []string{
		"help", "clear", "echo", "quit", "history", "config",
		"list", "find", "time", "pause",
		"teleport", "paint", "spawn", "destroy", "toggle", "tag",
		"props", "layer", "scale", "inspect", "save", "load",
		"fps", "memory", "perf", "sysinfo", "version",
	}
	for _, name := range names {
		assert.NotNil(t, f.exec.Registry().Get(name), name)
	}
	assert.Equal(t, len(names), f.exec.Registry().Len())
	assert.Equal(t, scene.Layers, f.exec.Converter().EnumMembers(scene.LayerEnum))
}

// =============================================================================
// SYSTEM
// =============================================================================

func TestHelpListsCategories(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "help")
	require.True(t, r.OK(), r.Message)
	out := outputText(r)
	assert.Contains(t, out, "=== COMMANDER CONSOLE HELP ===")
	assert.Contains(t, out, "teleport [target] <x,y,z>")
	for _, category := range []string{CategorySystem, CategoryDebug, CategoryScene} {
		assert.Contains(t, out, category)
	}
}

func TestHelpForCommand(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "help TELEPORT")
	require.True(t, r.OK())
	out := outputText(r)
	assert.Contains(t, out, "=== HELP: TELEPORT ===")
	assert.Contains(t, out, "Category: Scene")
	assert.Contains(t, out, "Usage: teleport [target] <x,y,z>")
	assert.Contains(t, out, "  1. x,y,z")
}

func TestHelpUnknownCommand(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "help warp")
	assert.Equal(t, commands.StatusError, r.Status)
	assert.Equal(t, "command 'help' failed", r.Message)
	assert.Contains(t, outputText(r), "Command 'warp' not found")
}

func TestClearAndQuitDriveConsole(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "clear")
	require.True(t, r.OK())
	assert.Equal(t, 1, f.console.cleared)
	assert.Contains(t, outputText(r), "Console cleared")

	r = f.run(t, "quit")
	require.True(t, r.OK())
	assert.True(t, f.console.quit)
}

func TestClearWithoutConsole(t *testing.T) {
	f := newFixture(t, Deps{})
	f.provider.SetConsole(nil)

	r := f.run(t, "clear")
	assert.True(t, r.OK())
	assert.Equal(t, commands.StatusWarning, r.Output[0].Status)
}

func TestEchoJoinsTokens(t *testing.T) {
	f := newFixture(t, Deps{})

	tests := []struct {
		line string
		want string
	}{
		{"echo hello   world", "hello world"},
		{`echo "a  b" c`, "a  b c"},
		{"echo", ""},
		{"echo cube", "cube"},
	}
	for _, tc := range tests {
		r := f.run(t, tc.line)
		require.True(t, r.OK(), tc.line)
		assert.Equal(t, tc.want, outputText(r), tc.line)
	}
}

// =============================================================================
// DEBUG
// =============================================================================

func TestListShowsVisibleObjects(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "list")
	require.True(t, r.OK())
	out := outputText(r)
	assert.Equal(t, "=== AVAILABLE OBJECTS ===", r.Output[0].Text)
	for _, name := range []string{"Cube", "Sphere", "Capsule", "Directional Light", "Water"} {
		assert.Contains(t, out, name)
	}
	for _, name := range []string{"Main Camera", "UI Canvas", "Spawn Marker"} {
		assert.NotContains(t, out, name)
	}
}

func TestListFilterAndLimit(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "list SPH")
	require.True(t, r.OK())
	assert.Contains(t, outputText(r), "Sphere")
	assert.NotContains(t, outputText(r), "Cube")

	for i := 0; i < MaxListed+5; i++ {
		_, err := f.scene.Spawn(fmt.Sprintf("Rock%02d", i), commands.Vector3{})
		require.NoError(t, err)
	}
	r = f.run(t, "list rock")
	require.True(t, r.OK())
	out := outputText(r)
	assert.Contains(t, out, "Rock19")
	assert.NotContains(t, out, "Rock20")
	assert.Contains(t, out, "... and 5 more")

	r = f.run(t, "list zebra")
	require.True(t, r.OK())
	assert.Contains(t, outputText(r), "No objects found")
}

func TestFindRequiresTerm(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "find")
	assert.Equal(t, commands.StatusError, r.Status)
	assert.Contains(t, outputText(r), "Usage: find <search_term>")

	r = f.run(t, "find cap")
	require.True(t, r.OK())
	assert.Contains(t, outputText(r), "Capsule")
}

func TestTimeScale(t *testing.T) {
	f := newFixture(t, Deps{})

	tests := []struct {
		line  string
		scale float64
		msg   string
	}{
		{"time 0.5", 0.5, "Time scale set to 0.5 (slow motion)"},
		{"time 1,5", 1.5, "Time scale set to 1.5 (fast forward)"},
		{"time 20", 10, "Time scale set to 10 (fast forward)"},
		{"time -3", 0, "Time scale set to 0 (paused)"},
		{"time", 1, "Time scale set to 1 (normal)"},
		{"time fast", 0, "Time scale set to 0 (paused)"},
	}
	for _, tc := range tests {
		r := f.run(t, tc.line)
		require.True(t, r.OK(), tc.line)
		assert.Equal(t, tc.msg, outputText(r), tc.line)
		assert.Equal(t, tc.scale, f.scene.TimeScale(), tc.line)
	}
}

func TestPauseToggles(t *testing.T) {
	f := newFixture(t, Deps{})
	f.run(t, "time 2")

	r := f.run(t, "pause")
	require.True(t, r.OK())
	assert.Equal(t, "Game paused", outputText(r))
	assert.Equal(t, 0.0, f.scene.TimeScale())

	r = f.run(t, "pause")
	assert.Equal(t, "Game resumed (time scale 2)", outputText(r))
	assert.Equal(t, 2.0, f.scene.TimeScale())
}

// =============================================================================
// SCENE
// =============================================================================

func TestTeleport(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "teleport Cube 1 2 3")
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, commands.Vector3{X: 1, Y: 2, Z: 3}, f.object(t, "Cube").Position)

	r = f.run(t, "teleport (4,5,6)")
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, commands.Vector3{X: 4, Y: 5, Z: 6}, f.object(t, PlayerName).Position)

	r = f.run(t, "teleport sph")
	assert.Equal(t, commands.StatusError, r.Status)
	assert.Equal(t, commands.Vector3{X: 2}, f.object(t, "Sphere").Position)
}

func TestPaintRequiresTarget(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "paint Capsule #00FF00")
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, commands.ColorGreen, f.object(t, "Capsule").Color)
	assert.Contains(t, outputText(r), "#00FF00")

	r = f.run(t, "paint nothing red")
	assert.True(t, errors.Is(r.Cause, commands.ErrCannotExecute))
}

func TestSpawnAndDestroy(t *testing.T) {
	f := newFixture(t, Deps{})
	before := f.scene.Len()

	r := f.run(t, `spawn "Big Rock" 1 0 1`)
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, commands.Vector3{X: 1, Z: 1}, f.object(t, "Big Rock").Position)

	r = f.run(t, `spawn "Big Rock"`)
	assert.Equal(t, commands.StatusError, r.Status)
	assert.True(t, errors.Is(r.Cause, scene.ErrDuplicateName))

	r = f.run(t, "spawn")
	assert.Equal(t, commands.StatusError, r.Status)

	r = f.run(t, "destroy big")
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, before, f.scene.Len())
}

func TestToggle(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "toggle Cube")
	require.True(t, r.OK())
	assert.False(t, f.object(t, "Cube").Active)
	assert.Equal(t, "Cube is now inactive", outputText(r))

	r = f.run(t, "toggle Cube on")
	require.True(t, r.OK())
	assert.True(t, f.object(t, "Cube").Active)

	r = f.run(t, "toggle Cube off")
	require.True(t, r.OK())
	assert.False(t, f.object(t, "Cube").Active)
}

func TestTagAndProps(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "tag Sphere ball,bouncy;red")
	require.True(t, r.OK())
	assert.Equal(t, []string{"ball", "bouncy", "red"}, f.object(t, "Sphere").Tags)

	r = f.run(t, "tag Sphere")
	require.True(t, r.OK())
	assert.Equal(t, "Sphere tags: ball, bouncy, red", outputText(r))

	r = f.run(t, "props Cube mass:2;speed:1,5")
	require.True(t, r.OK())
	props := f.object(t, "Cube").Props
	assert.Equal(t, 2.0, props["mass"])
	assert.Equal(t, 1.5, props["speed"])
	assert.Contains(t, outputText(r), "speed")
}

func TestLayerAndScale(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "layer Cube water")
	require.True(t, r.OK())
	assert.Equal(t, "Water", f.object(t, "Cube").Layer)

	r = f.run(t, "layer Cube")
	assert.Equal(t, commands.StatusError, r.Status)

	r = f.run(t, "scale Cube 2 3")
	require.True(t, r.OK())
	assert.Equal(t, commands.Vector2{X: 2, Y: 3}, f.object(t, "Cube").Scale)

	r = f.run(t, "inspect Cube")
	require.True(t, r.OK())
	assert.Contains(t, outputText(r), "Water")
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	f := newFixture(t, Deps{ScenePath: path})

	r := f.run(t, "save")
	require.True(t, r.OK(), r.Message)
	_, err := os.Stat(path)
	require.NoError(t, err)

	f.run(t, "destroy Cube")
	_, ok := f.scene.Get("Cube")
	require.False(t, ok)

	r = f.run(t, "load")
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, commands.ColorRed, f.object(t, "Cube").Color)

	r = f.run(t, "load "+filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, commands.StatusError, r.Status)
	_, ok = f.scene.Get("Cube")
	assert.True(t, ok, "failed load keeps the scene")
}

func TestSaveWithoutPath(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "save")
	assert.Equal(t, commands.StatusError, r.Status)
	assert.Contains(t, outputText(r), "no scene file configured")
}

// =============================================================================
// HISTORY AND CONFIG
// =============================================================================

func TestHistoryFromRecall(t *testing.T) {
	recall := history.NewRecall(0)
	f := newFixture(t, Deps{Recall: recall})
	f.exec.AddObserver(recall)

	f.run(t, "echo a")
	f.run(t, "echo b")

	r := f.run(t, "history 1")
	require.True(t, r.OK())
	out := outputText(r)
	assert.Contains(t, out, "echo b")
	assert.NotContains(t, out, "echo a")

	r = f.run(t, "history 0")
	assert.Equal(t, commands.StatusError, r.Status)
}

func TestHistoryFromStore(t *testing.T) {
	store, err := history.Open(":memory:", nil)
	require.NoError(t, err)
	defer store.Close()

	f := newFixture(t, Deps{Store: store})
	f.exec.AddObserver(store)

	f.run(t, "echo journaled")
	f.run(t, "warp")

	r := f.run(t, "history")
	require.True(t, r.OK(), r.Message)
	out := outputText(r)
	assert.Contains(t, out, "echo journaled")
	assert.Contains(t, out, "warp")
	assert.Contains(t, out, "error")
}

func TestHistoryDisabled(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "history")
	require.True(t, r.OK())
	assert.Contains(t, outputText(r), "History is disabled")
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.Default()
	f := newFixture(t, Deps{Config: cfg, ConfigPath: path})

	r := f.run(t, "config")
	require.True(t, r.OK())
	assert.Contains(t, outputText(r), "console.prompt")

	r = f.run(t, "config ui.mode")
	require.True(t, r.OK())
	assert.Equal(t, "ui.mode = auto", outputText(r))

	r = f.run(t, "config console.hint_limit 2")
	require.True(t, r.OK(), r.Message)
	assert.Equal(t, 2, cfg.Console.HintLimit)

	saved, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Console.HintLimit)

	r = f.run(t, "config console.suggestion_limit 0")
	assert.Equal(t, commands.StatusError, r.Status)
	assert.Contains(t, outputText(r), "console.suggestion_limit")
	assert.Equal(t, 5, cfg.Console.SuggestionLimit, "invalid value is not applied")

	r = f.run(t, "config console.bogus 1")
	assert.Equal(t, commands.StatusError, r.Status)
}

func TestConfigWithoutConfig(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "config")
	assert.Equal(t, commands.StatusError, r.Status)
}

// =============================================================================
// OVERLAY AND INFO
// =============================================================================

func TestFPSToggles(t *testing.T) {
	f := newFixture(t, Deps{})
	overlay := f.provider.Overlay()

	r := f.run(t, "fps")
	require.True(t, r.OK(), r.Message)
	assert.Contains(t, outputText(r), "FPS overlay enabled")
	assert.True(t, overlay.FPSVisible())

	r = f.run(t, "fps")
	assert.Contains(t, outputText(r), "FPS overlay disabled")
	assert.False(t, overlay.FPSVisible())

	f.run(t, "fps on")
	f.run(t, "fps on")
	assert.True(t, overlay.FPSVisible(), "explicit value does not toggle")
	f.run(t, "fps off")
	assert.False(t, overlay.FPSVisible())
}

func TestMemory(t *testing.T) {
	overlay := NewOverlay()
	f := newFixture(t, Deps{Overlay: overlay})
	assert.Same(t, overlay, f.provider.Overlay())

	r := f.run(t, "memory")
	require.True(t, r.OK(), r.Message)
	out := outputText(r)
	assert.Contains(t, out, "=== MEMORY INFO ===")
	assert.Contains(t, out, "Heap allocated")
	assert.Contains(t, out, "After GC")
	assert.False(t, overlay.MemoryVisible(), "report does not toggle the readout")

	r = f.run(t, "memory true")
	assert.Contains(t, outputText(r), "Memory overlay enabled")
	assert.True(t, overlay.MemoryVisible())
	assert.Contains(t, overlay.Segment(), "mem ")
}

func TestPerfBeforeAnyFrame(t *testing.T) {
	f := newFixture(t, Deps{})

	r := f.run(t, "perf")
	require.True(t, r.OK(), r.Message)
	out := outputText(r)
	assert.Contains(t, out, "=== PERFORMANCE INFO ===")
	assert.Contains(t, out, "not measured")
	assert.Contains(t, out, "Goroutines")
}

func TestSysinfoAndVersion(t *testing.T) {
	f := newFixture(t, Deps{Version: "1.2.3"})

	r := f.run(t, "sysinfo")
	require.True(t, r.OK(), r.Message)
	out := outputText(r)
	assert.Contains(t, out, "=== SYSTEM INFO ===")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "(demo scene)")

	r = f.run(t, "version")
	assert.Contains(t, outputText(r), "Commander Console 1.2.3")

	r = newFixture(t, Deps{}).run(t, "version")
	assert.Contains(t, outputText(r), "Commander Console "+DevVersion)
}
