// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/commander/internal/commands"
)

func names(targets []commands.Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Name()
	}
	return out
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestDemoQueries(t *testing.T) {
	s := Demo(nil)

	cube, ok := s.FindExact("Cube")
	require.True(t, ok)
	assert.Equal(t, "Cube", cube.Name())

	_, ok = s.FindExact("cube")
	assert.False(t, ok, "exact match is case sensitive")

	assert.Equal(t, []string{"Cube", "Capsule"}, names(s.FindContaining("C")[:2]))
	assert.Equal(t, []string{"Main Camera"}, names(s.FindContaining("camera")))
	assert.Empty(t, s.FindContaining("7"))

	visible := names(s.Visible())
	assert.Contains(t, visible, "Cube")
	assert.NotContains(t, visible, "Main Camera")
	assert.NotContains(t, visible, "UI Canvas")
	assert.NotContains(t, visible, "Spawn Marker")
}

func TestSpawnAndDestroy(t *testing.T) {
	s := New(nil)

	o, err := s.Spawn("Box", commands.Vector3{X: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, commands.Vector3{X: 1}, o.Position)

	_, err = s.Spawn("Box", commands.Vector3{})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = s.Spawn(" ", commands.Vector3{})
	assert.ErrorIs(t, err, ErrInvalidName)

	assert.True(t, s.Destroy(o))
	assert.False(t, s.Destroy(o))
	assert.Equal(t, 0, s.Len())
}

func TestMutate(t *testing.T) {
	s := Demo(nil)
	target, _ := s.FindExact("Cube")

	ok := s.Mutate(target, func(o *Object) { o.Position = commands.Vector3{Y: 5} })
	require.True(t, ok)
	got, _ := s.Get("Cube")
	assert.Equal(t, 5.0, got.Position.Y)

	// Stale targets are rejected after a replace.
	s.Replace(nil)
	assert.False(t, s.Mutate(target, func(*Object) { t.Fatal("must not run") }))
}

func TestGetReturnsCopy(t *testing.T) {
	s := Demo(nil)
	got, ok := s.Get("Cube")
	require.True(t, ok)
	got.Tags[0] = "changed"
	got.Props["mass"] = 99

	again, _ := s.Get("Cube")
	assert.Equal(t, "prop", again.Tags[0])
	assert.Equal(t, 1.0, again.Props["mass"])
}

func TestTimeScaleAndPause(t *testing.T) {
	s := New(nil)
	assert.Equal(t, 1.0, s.TimeScale())

	s.SetTimeScale(2)
	assert.True(t, s.TogglePause())
	assert.Equal(t, 0.0, s.TimeScale())
	assert.False(t, s.TogglePause())
	assert.Equal(t, 2.0, s.TimeScale())

	s.SetTimeScale(0)
	assert.False(t, s.TogglePause(), "scale 0 counts as paused")
	assert.Equal(t, 1.0, s.TimeScale())
}

// =============================================================================
// FILE TESTS
// =============================================================================

const sampleScene = `
objects:
  - name: Crate
    position: {x: 1, y: 2, z: 3}
    color: "#00FF00"
    layer: water
    tags: [prop, heavy]
    props: {mass: 2.5}
  - name: Eye
    kind: Camera
  - name: Ghost
    active: false
`

func TestParse(t *testing.T) {
	objects, err := Parse([]byte(sampleScene))
	require.NoError(t, err)
	require.Len(t, objects, 3)

	crate := objects[0]
	assert.Equal(t, "Crate", crate.Name())
	assert.Equal(t, commands.Vector3{X: 1, Y: 2, Z: 3}, crate.Position)
	assert.Equal(t, commands.ColorGreen, crate.Color)
	assert.Equal(t, "Water", crate.Layer)
	assert.Equal(t, []string{"prop", "heavy"}, crate.Tags)
	assert.Equal(t, 2.5, crate.Props["mass"])
	assert.True(t, crate.Active)

	assert.Equal(t, KindCamera, objects[1].Kind)
	assert.False(t, objects[2].Active)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"duplicate", "objects:\n  - name: A\n  - name: A\n", ErrDuplicateName},
		{"empty name", "objects:\n  - name: ''\n", ErrInvalidName},
		{"bad color", "objects:\n  - name: A\n    color: mauve\n", nil},
		{"bad layer", "objects:\n  - name: A\n    layer: lava\n", nil},
		{"bad yaml", "objects: [", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			if tc.want != nil {
				assert.True(t, errors.Is(err, tc.want))
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	s := Demo(nil)
	require.NoError(t, s.Save(path))

	loaded := New(nil)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, s.Len(), loaded.Len())

	cube, ok := loaded.Get("Cube")
	require.True(t, ok)
	assert.Equal(t, commands.ColorRed, cube.Color)
	marker, _ := loaded.Get("Spawn Marker")
	assert.False(t, marker.Active)
}

func TestLoadKeepsObjectsOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objects: ["), 0644))

	s := Demo(nil)
	before := s.Len()
	require.Error(t, s.Load(path))
	assert.Equal(t, before, s.Len())
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("objects:\n  - name: A\n"), 0644))

	s := New(nil)
	require.NoError(t, s.Load(path))

	w, err := NewWatcher(s, path, 20*time.Millisecond, nil)
	require.NoError(t, err)
	reloaded := make(chan error, 4)
	w.OnReload(func(err error) { reloaded <- err })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("objects:\n  - name: A\n  - name: B\n"), 0644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
	_, ok := s.FindExact("B")
	assert.True(t, ok)

	cancel()
	require.NoError(t, <-done)
}
