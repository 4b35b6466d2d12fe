// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/config"
	"github.com/jeranaias/commander/internal/util"
)

// DefaultHistoryCount is how many entries "history" shows without an argument.
const DefaultHistoryCount = 10

// syntaxExamples is printed at the top of the full help listing.
var syntaxExamples = []string{
	"Vectors: teleport (2,3,4) or teleport 2 3 4",
	"Decimals: use . or , as separator",
	"Booleans: true/false, 1/0, on/off, yes/no",
	"Colors: red, #FF0000, #FF000080",
	"Lists: tag Cube a,b;c    Maps: props Cube mass:2;speed:1,5",
	"Text with spaces: \"hello world\"",
}

// =============================================================================
// SYSTEM COMMANDS
// =============================================================================

func (p *Provider) systemCommands() []*commands.Command {
	return []*commands.Command{
		{
			Name:        "help",
			Description: "Show all commands or help for one command",
			Category:    CategorySystem,
			Params:      commands.Signature{commands.TextParam},
			Usage:       "help [command]",
			Untargeted:  true,
			Handler:     p.help,
		},
		{
			Name:        "clear",
			Description: "Clear the console log",
			Category:    CategorySystem,
			Untargeted:  true,
			Handler:     p.clear,
		},
		{
			Name:        "echo",
			Description: "Print the rest of the line",
			Category:    CategorySystem,
			Params:      commands.Signature{commands.TextParam},
			Usage:       "echo <text...>",
			Untargeted:  true,
			Handler:     p.echo,
		},
		{
			Name:        "quit",
			Description: "Exit the console",
			Category:    CategorySystem,
			Untargeted:  true,
			Handler:     p.quit,
		},
		{
			Name:        "history",
			Description: "Show recently executed commands",
			Category:    CategorySystem,
			Params:      commands.Signature{commands.IntegerParam},
			Usage:       "history [count]",
			Untargeted:  true,
			Handler:     p.history,
		},
		{
			Name:        "config",
			Description: "Show or change a configuration value",
			Category:    CategorySystem,
			Params:      commands.Signature{commands.TextParam, commands.TextParam},
			Usage:       "config [key] [value]",
			Untargeted:  true,
			Handler:     p.config,
		},
	}
}

func (p *Provider) help(inv *commands.Invocation) (bool, error) {
	if name := inv.Args.Text(0); inv.Provided(0) && name != "" {
		cmd := p.deps.Registry.Get(name)
		if cmd == nil {
			inv.Errorf("Command '%s' not found", name)
			return false, nil
		}
		p.commandHelp(inv, cmd)
		return true, nil
	}

	inv.Infof("=== COMMANDER CONSOLE HELP ===")
	inv.Infof("Use TAB for autocomplete, arrows for history")
	inv.Infof("")
	inv.Infof("SYNTAX EXAMPLES:")
	for _, ex := range syntaxExamples {
		inv.Infof("  %s", ex)
	}
	inv.Infof("")

	groups := p.deps.Registry.ByCategory()
	categories := make([]string, 0, len(groups))
	for category := range groups {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	t := newTable("Category", "Usage", "Description")
	for _, category := range categories {
		for i, cmd := range groups[category] {
			label := ""
			if i == 0 {
				label = category
			}
			t.AppendRow([]interface{}{
				label,
				util.TruncateWidth(cmd.Syntax(), nameWidth),
				util.TruncateWidth(cmd.Description, descriptionWidth),
			})
		}
		t.AppendSeparator()
	}
	emit(inv, t)
	return true, nil
}

func (p *Provider) commandHelp(inv *commands.Invocation, cmd *commands.Command) {
	category := cmd.Category
	if category == "" {
		category = "General"
	}
	inv.Infof("=== HELP: %s ===", strings.ToUpper(cmd.Name))
	inv.Infof("Description: %s", cmd.Description)
	inv.Infof("Category: %s", category)
	inv.Infof("Usage: %s", cmd.Syntax())
	if len(cmd.Params) > 0 {
		inv.Infof("Parameters:")
		for i, param := range cmd.Params {
			inv.Infof("  %d. %s", i+1, param)
		}
	}
}

func (p *Provider) clear(inv *commands.Invocation) (bool, error) {
	if p.console == nil {
		inv.Warnf("No console attached")
		return true, nil
	}
	p.console.Clear()
	inv.Successf("Console cleared")
	return true, nil
}

// echo prints every token after the command name, not only the first slot.
func (p *Provider) echo(inv *commands.Invocation) (bool, error) {
	tokens := commands.Tokenize(inv.Input)
	if len(tokens) > 1 {
		inv.Infof("%s", strings.Join(tokens[1:], " "))
		return true, nil
	}
	inv.Infof("")
	return true, nil
}

func (p *Provider) quit(inv *commands.Invocation) (bool, error) {
	inv.Infof("Quitting...")
	if p.console != nil {
		p.console.Quit()
	}
	return true, nil
}

// =============================================================================
// HISTORY AND CONFIG
// =============================================================================

func (p *Provider) history(inv *commands.Invocation) (bool, error) {
	n := DefaultHistoryCount
	if inv.Provided(0) {
		n = inv.Args.Int(0)
	}
	if n <= 0 {
		inv.Warnf("Usage: history [count], count must be positive")
		return false, nil
	}

	if p.deps.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		entries, err := p.deps.Store.Recent(ctx, n)
		if err != nil {
			return false, fmt.Errorf("read history: %w", err)
		}
		if len(entries) == 0 {
			inv.Infof("No history yet")
			return true, nil
		}
		t := newTable("Time", "Status", "Input")
		for _, e := range entries {
			t.AppendRow([]interface{}{
				e.At.Format("15:04:05"),
				e.Status,
				util.TruncateWidth(e.Input, descriptionWidth),
			})
		}
		emit(inv, t)
		return true, nil
	}

	if p.deps.Recall == nil {
		inv.Warnf("History is disabled")
		return true, nil
	}
	lines := p.deps.Recall.Lines()
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if len(lines) == 0 {
		inv.Infof("No history yet")
		return true, nil
	}
	for i, line := range lines {
		inv.Infof("%3d  %s", i+1, line)
	}
	return true, nil
}

// config lists every key, shows one, or sets one. A set is validated on a
// copy first and persisted when a config path is known.
func (p *Provider) config(inv *commands.Invocation) (bool, error) {
	cfg := p.deps.Config
	if cfg == nil {
		inv.Warnf("No configuration loaded")
		return false, nil
	}

	key := inv.Args.Text(0)
	if !inv.Provided(0) || key == "" {
		t := newTable("Key", "Value")
		for _, k := range config.GetAllKeys() {
			v, err := cfg.Get(k)
			if err != nil {
				continue
			}
			t.AppendRow([]interface{}{k, v})
		}
		emit(inv, t)
		return true, nil
	}

	if !inv.Provided(1) {
		v, err := cfg.Get(key)
		if err != nil {
			inv.Errorf("%v", err)
			return false, nil
		}
		inv.Infof("%s = %v", key, v)
		return true, nil
	}

	next := cfg.Clone()
	if err := next.Set(key, inv.Args.Text(1)); err != nil {
		inv.Errorf("%v", err)
		return false, nil
	}
	if err := next.Validate(); err != nil {
		inv.Errorf("%v", err)
		return false, nil
	}
	*cfg = *next

	v, _ := cfg.Get(key)
	inv.Successf("%s = %v", key, v)

	if p.deps.ConfigPath != "" {
		if err := config.SaveTOML(cfg, p.deps.ConfigPath); err != nil {
			return false, fmt.Errorf("save config: %w", err)
		}
		p.log.Info("configuration saved", zap.String("path", p.deps.ConfigPath), zap.String("key", key))
		inv.Infof("Saved to %s (applies on next start)", p.deps.ConfigPath)
	}
	return true, nil
}
