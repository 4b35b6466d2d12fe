// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the command interpretation pipeline for the console.
//
// A single line of text is tokenized, resolved to a registered command,
// optionally bound to a target object, converted into typed arguments and
// finally executed. Every execution produces exactly one Result which is
// delivered to the registered observers.
//
// # Key Types
//
//   - Registry: case-insensitive name -> Command mapping with suggestions
//   - Command: named action with a typed parameter Signature
//   - ParameterKind: closed set of argument kinds the Converter understands
//   - Converter: token -> typed value conversion with per-slot fallback
//   - TargetResolver: maps the first argument token to a scene object
//   - Executor: runs the whole pipeline and notifies observers
//   - Completer: command and target name completion
//
// # Syntax
//
//	line   := token (WS+ token)*
//	token  := quoted | bare
//	quoted := QUOTE .*? QUOTE
//
// A ' or " toggles a single shared quote flag, so mixed quote characters
// close each other.
//
// # Usage
//
// Register a command and execute a line:
//
//	registry := commands.NewRegistry(zap.NewNop())
//	registry.Register(&commands.Command{
//	    Name:   "teleport",
//	    Params: commands.Signature{commands.Vector3Param},
//	    Handler: func(inv *commands.Invocation) (bool, error) {
//	        pos := inv.Args.Vector3(0)
//	        inv.Successf("moved to %s", pos)
//	        return true, nil
//	    },
//	})
//
//	exec := commands.NewExecutor(registry)
//	result := exec.Execute("teleport 1 2 3")
package commands
