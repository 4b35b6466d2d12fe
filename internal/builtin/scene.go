// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/scene"
)

// PlayerName is the object teleport moves when no target is given.
const PlayerName = "Main Camera"

// =============================================================================
// SCENE COMMANDS
// =============================================================================

func (p *Provider) sceneCommands() []*commands.Command {
	return []*commands.Command{
		{
			Name:        "teleport",
			Description: "Move an object (default: the camera) to a position",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.Vector3Param},
			Usage:       "teleport [target] <x,y,z>",
			Handler:     p.teleport,
		},
		{
			Name:        "paint",
			Description: "Set an object's color",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.ColorParam},
			Usage:       "paint <target> <color>",
			CanExecute:  commands.RequireTarget,
			Handler:     p.paint,
		},
		{
			Name:        "spawn",
			Description: "Create a new object",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.TextParam, commands.Vector3Param},
			Usage:       "spawn <name> [x,y,z]",
			Untargeted:  true,
			Handler:     p.spawn,
		},
		{
			Name:        "destroy",
			Description: "Remove an object",
			Category:    CategoryScene,
			Usage:       "destroy <target>",
			CanExecute:  commands.RequireTarget,
			Handler:     p.destroy,
		},
		{
			Name:        "toggle",
			Description: "Activate or deactivate an object",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.BooleanParam},
			Usage:       "toggle <target> [on|off]",
			CanExecute:  commands.RequireTarget,
			Handler:     p.toggle,
		},
		{
			Name:        "tag",
			Description: "Show or replace an object's tags",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.ListOf(commands.TextParam)},
			Usage:       "tag <target> [a,b,...]",
			CanExecute:  commands.RequireTarget,
			Handler:     p.tag,
		},
		{
			Name:        "props",
			Description: "Show or merge numeric properties",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.MapOf(commands.TextParam, commands.DecimalParam)},
			Usage:       "props <target> [k:v;...]",
			CanExecute:  commands.RequireTarget,
			Handler:     p.props,
		},
		{
			Name:        "layer",
			Description: "Move an object to a layer",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.EnumOf(scene.LayerEnum)},
			Usage:       "layer <target> <layer>",
			CanExecute:  commands.RequireTarget,
			Handler:     p.layer,
		},
		{
			Name:        "scale",
			Description: "Set an object's 2D scale",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.Vector2Param},
			Usage:       "scale <target> <x,y>",
			CanExecute:  commands.RequireTarget,
			Handler:     p.scale,
		},
		{
			Name:        "inspect",
			Description: "Show every field of an object",
			Category:    CategoryScene,
			Usage:       "inspect <target>",
			CanExecute:  commands.RequireTarget,
			Handler:     p.inspect,
		},
		{
			Name:        "save",
			Description: "Write the scene to a YAML file",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.TextParam},
			Usage:       "save [path]",
			Untargeted:  true,
			Handler:     p.save,
		},
		{
			Name:        "load",
			Description: "Replace the scene with a YAML file",
			Category:    CategoryScene,
			Params:      commands.Signature{commands.TextParam},
			Usage:       "load [path]",
			Untargeted:  true,
			Handler:     p.load,
		},
	}
}

// mutate applies fn to the invocation target, reporting a stale target as
// a failure.
func (p *Provider) mutate(inv *commands.Invocation, target commands.Target, fn func(o *scene.Object)) bool {
	if p.deps.Scene.Mutate(target, fn) {
		return true
	}
	inv.Errorf("Object '%s' is no longer in the scene", target.Name())
	return false
}

func (p *Provider) teleport(inv *commands.Invocation) (bool, error) {
	target := inv.Target
	if target == nil {
		player, ok := p.deps.Scene.FindExact(PlayerName)
		if !ok {
			inv.Errorf("No target given and no '%s' in the scene", PlayerName)
			return false, nil
		}
		target = player
	}
	if !inv.Provided(0) {
		inv.Errorf("Usage: teleport [target] <x,y,z>")
		return false, nil
	}

	pos := inv.Args.Vector3(0)
	if !p.mutate(inv, target, func(o *scene.Object) { o.Position = pos }) {
		return false, nil
	}
	inv.Successf("Teleported %s to %s", target.Name(), pos)
	return true, nil
}

func (p *Provider) paint(inv *commands.Invocation) (bool, error) {
	color := inv.Args.Color(0)
	if !p.mutate(inv, inv.Target, func(o *scene.Object) { o.Color = color }) {
		return false, nil
	}
	inv.Successf("Painted %s %s", inv.Target.Name(), color.Hex())
	return true, nil
}

func (p *Provider) spawn(inv *commands.Invocation) (bool, error) {
	name := inv.Args.Text(0)
	if !inv.Provided(0) || strings.TrimSpace(name) == "" {
		inv.Errorf("Usage: spawn <name> [x,y,z]")
		return false, nil
	}
	pos := inv.Args.Vector3(1)
	if _, err := p.deps.Scene.Spawn(name, pos); err != nil {
		return false, err
	}
	p.log.Debug("object spawned", zap.String("name", name))
	inv.Successf("Spawned %s at %s", name, pos)
	return true, nil
}

func (p *Provider) destroy(inv *commands.Invocation) (bool, error) {
	if !p.deps.Scene.Destroy(inv.Target) {
		inv.Errorf("Object '%s' is no longer in the scene", inv.Target.Name())
		return false, nil
	}
	inv.Successf("Destroyed %s", inv.Target.Name())
	return true, nil
}

// toggle flips the active flag, or sets it when a value is given.
func (p *Provider) toggle(inv *commands.Invocation) (bool, error) {
	var active bool
	ok := p.mutate(inv, inv.Target, func(o *scene.Object) {
		if inv.Provided(0) {
			o.Active = inv.Args.Bool(0)
		} else {
			o.Active = !o.Active
		}
		active = o.Active
	})
	if !ok {
		return false, nil
	}
	state := "inactive"
	if active {
		state = "active"
	}
	inv.Successf("%s is now %s", inv.Target.Name(), state)
	return true, nil
}

func (p *Provider) tag(inv *commands.Invocation) (bool, error) {
	if !inv.Provided(0) {
		o, ok := p.deps.Scene.Get(inv.Target.Name())
		if !ok {
			inv.Errorf("Object '%s' is no longer in the scene", inv.Target.Name())
			return false, nil
		}
		inv.Infof("%s tags: %s", o.Name(), formatTags(o.Tags))
		return true, nil
	}

	var tags []string
	for _, v := range inv.Args.List(0) {
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			tags = append(tags, s)
		}
	}
	if !p.mutate(inv, inv.Target, func(o *scene.Object) { o.Tags = tags }) {
		return false, nil
	}
	inv.Successf("%s tags: %s", inv.Target.Name(), formatTags(tags))
	return true, nil
}

// props merges the given pairs into the object's properties and prints
// the resulting set.
func (p *Provider) props(inv *commands.Invocation) (bool, error) {
	updates := inv.Args.Map(0)
	var current map[string]float64
	ok := p.mutate(inv, inv.Target, func(o *scene.Object) {
		if o.Props == nil {
			o.Props = map[string]float64{}
		}
		for k, v := range updates {
			key, _ := k.(string)
			value, _ := v.(float64)
			if key != "" {
				o.Props[key] = value
			}
		}
		current = make(map[string]float64, len(o.Props))
		for k, v := range o.Props {
			current[k] = v
		}
	})
	if !ok {
		return false, nil
	}

	if len(current) == 0 {
		inv.Infof("%s has no properties", inv.Target.Name())
		return true, nil
	}
	keys := make([]string, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable("Property", "Value")
	for _, k := range keys {
		t.AppendRow([]interface{}{k, formatScale(current[k])})
	}
	emit(inv, t)
	return true, nil
}

func (p *Provider) layer(inv *commands.Invocation) (bool, error) {
	if !inv.Provided(0) {
		inv.Errorf("Usage: layer <target> <%s>", strings.Join(scene.Layers, "|"))
		return false, nil
	}
	layer := inv.Args.Text(0)
	if !p.mutate(inv, inv.Target, func(o *scene.Object) { o.Layer = layer }) {
		return false, nil
	}
	inv.Successf("Moved %s to layer %s", inv.Target.Name(), layer)
	return true, nil
}

func (p *Provider) scale(inv *commands.Invocation) (bool, error) {
	if !inv.Provided(0) {
		inv.Errorf("Usage: scale <target> <x,y>")
		return false, nil
	}
	s := inv.Args.Vector2(0)
	if !p.mutate(inv, inv.Target, func(o *scene.Object) { o.Scale = s }) {
		return false, nil
	}
	inv.Successf("Scaled %s to %s", inv.Target.Name(), s)
	return true, nil
}

func (p *Provider) inspect(inv *commands.Invocation) (bool, error) {
	o, ok := p.deps.Scene.Get(inv.Target.Name())
	if !ok {
		inv.Errorf("Object '%s' is no longer in the scene", inv.Target.Name())
		return false, nil
	}
	t := newTable("Field", "Value")
	t.AppendRows([]table.Row{
		{"Name", o.Name()},
		{"Kind", o.Kind},
		{"Active", o.Active},
		{"Position", o.Position},
		{"Scale", o.Scale},
		{"Color", o.Color.Hex()},
		{"Layer", o.Layer},
		{"Tags", formatTags(o.Tags)},
		{"Props", len(o.Props)},
	})
	emit(inv, t)
	return true, nil
}

// =============================================================================
// SCENE FILES
// =============================================================================

func (p *Provider) scenePath(inv *commands.Invocation, usage string) (string, bool) {
	if inv.Provided(0) && inv.Args.Text(0) != "" {
		return inv.Args.Text(0), true
	}
	if p.deps.ScenePath != "" {
		return p.deps.ScenePath, true
	}
	inv.Errorf("Usage: %s (no scene file configured)", usage)
	return "", false
}

func (p *Provider) save(inv *commands.Invocation) (bool, error) {
	path, ok := p.scenePath(inv, "save <path>")
	if !ok {
		return false, nil
	}
	if err := p.deps.Scene.Save(path); err != nil {
		return false, err
	}
	inv.Successf("Saved %d objects to %s", p.deps.Scene.Len(), path)
	return true, nil
}

func (p *Provider) load(inv *commands.Invocation) (bool, error) {
	path, ok := p.scenePath(inv, "load <path>")
	if !ok {
		return false, nil
	}
	if err := p.deps.Scene.Load(path); err != nil {
		return false, err
	}
	inv.Successf("Loaded %d objects from %s", p.deps.Scene.Len(), path)
	return true, nil
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "(none)"
	}
	return strings.Join(tags, ", ")
}
