// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"math"
	"strings"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/util"
)

// Limits for the debug commands.
const (
	MaxListed    = 20
	MaxTimeScale = 10.0
)

// =============================================================================
// DEBUG COMMANDS
// =============================================================================

func (p *Provider) debugCommands() []*commands.Command {
	return []*commands.Command{
		{
			Name:        "list",
			Description: "List available objects",
			Category:    CategoryDebug,
			Params:      commands.Signature{commands.TextParam},
			Usage:       "list [filter]",
			Untargeted:  true,
			Handler:     p.list,
		},
		{
			Name:        "find",
			Description: "Find objects by name",
			Category:    CategoryDebug,
			Params:      commands.Signature{commands.TextParam},
			Usage:       "find <search_term>",
			Untargeted:  true,
			Handler:     p.find,
		},
		{
			Name:        "time",
			Description: "Set time scale",
			Category:    CategoryDebug,
			Params:      commands.Signature{commands.DecimalParam},
			Usage:       "time [scale]",
			Untargeted:  true,
			Handler:     p.time,
		},
		{
			Name:        "pause",
			Description: "Pause or resume the simulation",
			Category:    CategoryDebug,
			Untargeted:  true,
			Handler:     p.pause,
		},
	}
}

// list shows up to MaxListed visible objects whose name contains the filter.
func (p *Provider) list(inv *commands.Invocation) (bool, error) {
	filter := strings.ToLower(inv.Args.Text(0))

	var names []string
	for _, t := range p.deps.Scene.Visible() {
		if filter == "" || strings.Contains(strings.ToLower(t.Name()), filter) {
			names = append(names, t.Name())
		}
	}

	inv.Infof("=== AVAILABLE OBJECTS ===")
	if len(names) == 0 {
		inv.Warnf("No objects found")
		return true, nil
	}

	hidden := 0
	if len(names) > MaxListed {
		hidden = len(names) - MaxListed
		names = names[:MaxListed]
	}

	t := newTable("Name", "Kind", "Position", "Layer", "Color")
	for _, name := range names {
		o, ok := p.deps.Scene.Get(name)
		if !ok {
			continue
		}
		t.AppendRow([]interface{}{
			util.TruncateWidth(o.Name(), nameWidth),
			o.Kind,
			o.Position,
			o.Layer,
			o.Color.Hex(),
		})
	}
	emit(inv, t)
	if hidden > 0 {
		inv.Infof("... and %d more", hidden)
	}
	return true, nil
}

func (p *Provider) find(inv *commands.Invocation) (bool, error) {
	if !inv.Provided(0) || strings.TrimSpace(inv.Args.Text(0)) == "" {
		inv.Errorf("Usage: find <search_term>")
		return false, nil
	}
	return p.list(inv)
}

// time clamps the scale to [0, MaxTimeScale]; no argument resets it to 1.
func (p *Provider) time(inv *commands.Invocation) (bool, error) {
	scale := 1.0
	if inv.Provided(0) {
		scale = inv.Args.Decimal(0)
	}
	if math.IsNaN(scale) {
		scale = 1
	}
	scale = clamp(scale, 0, MaxTimeScale)

	p.deps.Scene.SetTimeScale(scale)
	inv.Successf("Time scale set to %s (%s)", formatScale(scale), timeStatus(scale))
	return true, nil
}

func (p *Provider) pause(inv *commands.Invocation) (bool, error) {
	if p.deps.Scene.TogglePause() {
		inv.Successf("Game paused")
	} else {
		inv.Successf("Game resumed (time scale %s)", formatScale(p.deps.Scene.TimeScale()))
	}
	return true, nil
}

func timeStatus(scale float64) string {
	switch {
	case scale == 0:
		return "paused"
	case scale < 1:
		return "slow motion"
	case scale > 1:
		return "fast forward"
	default:
		return "normal"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
