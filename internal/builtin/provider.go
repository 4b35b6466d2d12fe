// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builtin provides the commands every console ships with: general
// console control, scene manipulation and history/config inspection.
package builtin

import (
	"go.uber.org/zap"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/config"
	"github.com/jeranaias/commander/internal/history"
	"github.com/jeranaias/commander/internal/scene"
)

// Command categories used in help output.
const (
	CategorySystem = "System"
	CategoryDebug  = "Debug"
	CategoryScene  = "Scene"
)

// Console is the front end the clear and quit commands drive.
type Console interface {
	Clear()
	Quit()
}

// Deps are the collaborators the built-in commands act upon. Scene and
// Registry are required; the rest are optional and the commands that need
// them report a warning when they are missing.
type Deps struct {
	Registry  *commands.Registry
	Converter *commands.Converter
	Scene     *scene.Scene
	ScenePath string

	Recall *history.Recall
	Store  *history.Store

	Config     *config.Config
	ConfigPath string

	// Overlay backs the fps and memory readouts; nil creates one.
	Overlay *Overlay
	// Version is reported by the version and sysinfo commands.
	Version string

	Log *zap.Logger
}

// Provider yields the built-in commands.
type Provider struct {
	deps    Deps
	console Console
	overlay *Overlay
	log     *zap.Logger
}

var _ commands.Provider = (*Provider)(nil)

// New creates a provider over d.
func New(d Deps) *Provider {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	overlay := d.Overlay
	if overlay == nil {
		overlay = NewOverlay()
	}
	return &Provider{deps: d, overlay: overlay, log: log}
}

// Overlay returns the readouts the console renders in its status bar.
func (p *Provider) Overlay() *Overlay {
	return p.overlay
}

// SetConsole attaches the front end. It is called once the UI exists,
// before the first command runs.
func (p *Provider) SetConsole(c Console) {
	p.console = c
}

// Install registers the layer enum with the executor's converter and every
// built-in command with its registry.
func Install(exec *commands.Executor, d Deps) *Provider {
	d.Registry = exec.Registry()
	d.Converter = exec.Converter()
	d.Converter.RegisterEnum(scene.LayerEnum, scene.Layers...)

	p := New(d)
	exec.Registry().RegisterProvider(p)
	return p
}

// Commands implements commands.Provider.
func (p *Provider) Commands() []*commands.Command {
	var all []*commands.Command
	all = append(all, p.systemCommands()...)
	all = append(all, p.debugCommands()...)
	all = append(all, p.infoCommands()...)
	all = append(all, p.sceneCommands()...)
	return all
}
