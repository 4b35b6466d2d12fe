// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"fmt"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jeranaias/commander/internal/commands"
)

// DevVersion is reported when no build version was injected.
const DevVersion = "dev"

// =============================================================================
// OVERLAY AND INFO COMMANDS
// =============================================================================

func (p *Provider) infoCommands() []*commands.Command {
	return []*commands.Command{
		{
			Name:        "fps",
			Description: "Toggle the frame rate readout",
			Category:    CategoryDebug,
			Params:      commands.Signature{commands.BooleanParam},
			Usage:       "fps [on|off]",
			Untargeted:  true,
			Handler:     p.fps,
		},
		{
			Name:        "memory",
			Description: "Show memory usage or toggle its readout",
			Category:    CategoryDebug,
			Params:      commands.Signature{commands.BooleanParam},
			Usage:       "memory [on|off]",
			Untargeted:  true,
			Handler:     p.memory,
		},
		{
			Name:        "perf",
			Description: "Show performance information",
			Category:    CategoryDebug,
			Untargeted:  true,
			Handler:     p.perf,
		},
		{
			Name:        "sysinfo",
			Description: "Show system information",
			Category:    CategorySystem,
			Untargeted:  true,
			Handler:     p.sysinfo,
		},
		{
			Name:        "version",
			Description: "Show the console version",
			Category:    CategorySystem,
			Untargeted:  true,
			Handler:     p.version,
		},
	}
}

// fps toggles when called without an argument.
func (p *Provider) fps(inv *commands.Invocation) (bool, error) {
	show := !p.overlay.FPSVisible()
	if inv.Provided(0) {
		show = inv.Args.Bool(0)
	}
	p.overlay.SetFPS(show)
	inv.Successf("FPS overlay %s", enabledWord(show))
	return true, nil
}

// memory reports usage, before and after a collection, when called without
// an argument.
func (p *Provider) memory(inv *commands.Invocation) (bool, error) {
	if inv.Provided(0) {
		show := inv.Args.Bool(0)
		p.overlay.SetMemory(show)
		inv.Successf("Memory overlay %s", enabledWord(show))
		return true, nil
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	runtime.GC()
	runtime.ReadMemStats(&after)

	inv.Infof("=== MEMORY INFO ===")
	t := newTable("Field", "Value")
	t.AppendRows([]table.Row{
		{"Heap allocated", humanize.IBytes(before.HeapAlloc)},
		{"Heap in use", humanize.IBytes(before.HeapInuse)},
		{"Reserved", humanize.IBytes(before.Sys)},
		{"Unused", humanize.IBytes(before.HeapIdle - before.HeapReleased)},
		{"After GC", humanize.IBytes(after.HeapAlloc)},
	})
	emit(inv, t)
	return true, nil
}

func (p *Provider) perf(inv *commands.Invocation) (bool, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	rate, frameTime := "not measured", "not measured"
	if fps, ft, ok := p.overlay.FPS(); ok {
		rate = fmt.Sprintf("%.1f", fps)
		frameTime = fmt.Sprintf("%.1fms", ms(ft))
	}
	lastPause := time.Duration(stats.PauseNs[(stats.NumGC+255)%256])

	inv.Infof("=== PERFORMANCE INFO ===")
	t := newTable("Field", "Value")
	t.AppendRows([]table.Row{
		{"Frame rate", rate},
		{"Frame time", frameTime},
		{"Time scale", formatScale(p.deps.Scene.TimeScale())},
		{"Goroutines", runtime.NumGoroutine()},
		{"GC cycles", stats.NumGC},
		{"Last GC pause", lastPause},
	})
	emit(inv, t)
	return true, nil
}

func (p *Provider) sysinfo(inv *commands.Invocation) (bool, error) {
	sceneFile := p.deps.ScenePath
	if sceneFile == "" {
		sceneFile = "(demo scene)"
	}

	inv.Infof("=== SYSTEM INFO ===")
	t := newTable("Field", "Value")
	t.AppendRows([]table.Row{
		{"Version", p.versionString()},
		{"Go version", runtime.Version()},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
		{"CPUs", runtime.NumCPU()},
		{"Commands", p.deps.Registry.Len()},
		{"Objects", p.deps.Scene.Len()},
		{"Time scale", formatScale(p.deps.Scene.TimeScale())},
		{"Scene file", sceneFile},
	})
	emit(inv, t)
	return true, nil
}

func (p *Provider) version(inv *commands.Invocation) (bool, error) {
	inv.Infof("Commander Console %s", p.versionString())
	inv.Infof("Built with %s for %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return true, nil
}

func (p *Provider) versionString() string {
	if p.deps.Version == "" {
		return DevVersion
	}
	return p.deps.Version
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
