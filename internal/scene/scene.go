// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scene provides the object space commands act upon: a named set of
// objects with positions, colors, layers and properties, loaded from YAML.
package scene

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/commander/internal/commands"
)

// Object kinds. Cameras and console objects are never completion candidates.
const (
	KindMesh    = "mesh"
	KindLight   = "light"
	KindCamera  = "camera"
	KindConsole = "console"
	KindUI      = "ui"
)

// Layers are the members of the "layer" enum.
var Layers = []string{"Default", "TransparentFX", "IgnoreRaycast", "Water", "UI", "Effects"}

// LayerEnum is the enum name registered with the converter.
const LayerEnum = "layer"

var (
	// ErrDuplicateName is returned when spawning a name already in use.
	ErrDuplicateName = errors.New("object name already in use")
	// ErrInvalidName is returned for empty object names.
	ErrInvalidName = errors.New("object name must not be empty")
)

// =============================================================================
// OBJECT
// =============================================================================

// Object is a named thing in the scene. The name is fixed at creation.
type Object struct {
	name string

	Kind     string
	Position commands.Vector3
	Scale    commands.Vector2
	Color    commands.Color
	Layer    string
	Tags     []string
	Props    map[string]float64
	Active   bool
}

// NewObject creates an active mesh at the origin.
func NewObject(name string) *Object {
	return &Object{
		name:   name,
		Kind:   KindMesh,
		Scale:  commands.Vector2{X: 1, Y: 1},
		Color:  commands.ColorWhite,
		Layer:  Layers[0],
		Props:  map[string]float64{},
		Active: true,
	}
}

// Name implements commands.Target.
func (o *Object) Name() string {
	return o.name
}

// clone returns a deep copy for readers outside the scene lock.
func (o *Object) clone() Object {
	c := *o
	c.Tags = append([]string(nil), o.Tags...)
	c.Props = make(map[string]float64, len(o.Props))
	for k, v := range o.Props {
		c.Props[k] = v
	}
	return c
}

// visible reports whether the object is offered for target completion.
func (o *Object) visible() bool {
	if !o.Active {
		return false
	}
	if o.Kind == KindCamera || o.Kind == KindConsole || o.Kind == KindUI {
		return false
	}
	return !strings.HasPrefix(o.name, "UI")
}

// =============================================================================
// SCENE
// =============================================================================

// Scene is the live object space. It is safe for concurrent use; the UI
// goroutine executes commands while the file watcher may reload.
type Scene struct {
	mu      sync.RWMutex
	objects []*Object
	log     *zap.Logger

	timeScale float64
	paused    bool
	saved     float64
}

// New creates an empty scene.
func New(log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{log: log, timeScale: 1}
}

var _ commands.ObjectSpace = (*Scene)(nil)

// FindExact returns the object whose name equals name.
func (s *Scene) FindExact(name string) (commands.Target, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o := s.lookup(name); o != nil {
		return o, true
	}
	return nil, false
}

// FindContaining returns objects whose name contains fragment, ignoring
// case, in scene order.
func (s *Scene) FindContaining(fragment string) []commands.Target {
	fragment = strings.ToLower(fragment)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []commands.Target
	for _, o := range s.objects {
		if strings.Contains(strings.ToLower(o.name), fragment) {
			out = append(out, o)
		}
	}
	return out
}

// Visible returns active objects that are not cameras, console or UI
// elements, in scene order.
func (s *Scene) Visible() []commands.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []commands.Target
	for _, o := range s.objects {
		if o.visible() {
			out = append(out, o)
		}
	}
	return out
}

// Objects returns copies of every object in scene order.
func (s *Scene) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = o.clone()
	}
	return out
}

// Get returns a copy of the named object.
func (s *Scene) Get(name string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o := s.lookup(name); o != nil {
		return o.clone(), true
	}
	return Object{}, false
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Spawn adds a new mesh at position.
func (s *Scene) Spawn(name string, position commands.Vector3) (*Object, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookup(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	o := NewObject(name)
	o.Position = position
	s.objects = append(s.objects, o)
	return o, nil
}

// Destroy removes the object a target refers to. It reports false when the
// object is no longer part of the scene.
func (s *Scene) Destroy(target commands.Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.objects {
		if commands.Target(o) == target {
			s.objects = append(s.objects[:i:i], s.objects[i+1:]...)
			return true
		}
	}
	return false
}

// Mutate runs fn on the object target refers to while holding the write
// lock. It reports false, without calling fn, when the target is not an
// object of this scene (for example after a reload replaced it).
func (s *Scene) Mutate(target commands.Target, fn func(o *Object)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.objects {
		if commands.Target(o) == target {
			fn(o)
			return true
		}
	}
	return false
}

// Replace swaps the whole object set, e.g. after loading a file.
func (s *Scene) Replace(objects []*Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = objects
}

func (s *Scene) lookup(name string) *Object {
	for _, o := range s.objects {
		if o.name == name {
			return o
		}
	}
	return nil
}

// =============================================================================
// TIME
// =============================================================================

// TimeScale returns the simulation speed multiplier; 0 while paused.
func (s *Scene) TimeScale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeScale
}

// SetTimeScale sets the simulation speed. Setting a non-zero scale unpauses.
func (s *Scene) SetTimeScale(scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeScale = scale
	s.saved = scale
	s.paused = scale == 0
}

// TogglePause pauses or resumes, restoring the previous time scale. It
// returns true when the scene is now paused.
func (s *Scene) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.paused = false
		s.timeScale = s.saved
		if s.timeScale == 0 {
			s.timeScale = 1
		}
		return false
	}
	s.paused = true
	s.saved = s.timeScale
	s.timeScale = 0
	return true
}

// =============================================================================
// DEMO SCENE
// =============================================================================

// Demo returns a small scene used when no scene file is configured. Names
// avoid digits so numeric arguments never match an object by substring.
func Demo(log *zap.Logger) *Scene {
	s := New(log)

	cube := NewObject("Cube")
	cube.Color = commands.ColorRed
	cube.Tags = []string{"prop"}
	cube.Props["mass"] = 1

	sphere := NewObject("Sphere")
	sphere.Position = commands.Vector3{X: 2, Y: 0, Z: 0}
	sphere.Color = commands.ColorBlue

	capsule := NewObject("Capsule")
	capsule.Position = commands.Vector3{X: -2, Y: 0, Z: 0}

	light := NewObject("Directional Light")
	light.Kind = KindLight
	light.Position = commands.Vector3{X: 0, Y: 3, Z: 0}
	light.Color = commands.ColorYellow

	water := NewObject("Water")
	water.Layer = "Water"
	water.Color = commands.ColorCyan

	camera := NewObject("Main Camera")
	camera.Kind = KindCamera
	camera.Position = commands.Vector3{X: 0, Y: 1, Z: -10}

	canvas := NewObject("UI Canvas")
	canvas.Kind = KindUI
	canvas.Layer = "UI"

	hidden := NewObject("Spawn Marker")
	hidden.Active = false

	s.Replace([]*Object{cube, sphere, capsule, light, water, camera, canvas, hidden})
	return s
}
