// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli builds the commander command line: flags, configuration,
// and the choice between the full screen console, the line-mode REPL and
// scripted execution.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Options are the command line settings. Zero values defer to the
// configuration file.
type Options struct {
	ConfigPath string
	ScenePath  string
	LogLevel   string
	Exec       []string
	Script     string
	Plain      bool
	Strict     bool
	NoHistory  bool

	// In and Out replace stdin/stdout for scripted runs; nil means the
	// process streams.
	In  io.Reader
	Out io.Writer
}

const (
	rootUse              = "commander"
	rootShortDescription = "Interactive command console for a live object scene"
	rootLongDescription  = `commander is a text console that runs typed commands against a scene of
named objects: teleport them, paint them, tag them, and inspect them.

Without arguments it opens the full screen console on a terminal and a
line-mode prompt otherwise. Use -e or --script to run commands and exit.`
	rootExample = `  commander
  commander --scene level.yaml
  commander -e "teleport Cube 1 2 3" -e "list"
  commander --plain --strict`
)

// Execute runs the commander application.
func Execute() error {
	return NewRootCommand(Options{}).ExecuteContext(context.Background())
}

// NewRootCommand builds the root Cobra command. defaults seeds the flag
// values; tests use it to inject streams.
func NewRootCommand(defaults Options) *cobra.Command {
	opts := defaults

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootExample,
		Version:      fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if opts.Out == nil {
				opts.Out = command.OutOrStdout()
			}
			if opts.In == nil {
				opts.In = os.Stdin
			}
			return Run(command.Context(), opts)
		},
	}

	flags := rootCommand.Flags()
	flags.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "configuration file (default ~/.commander/config.toml)")
	flags.StringVar(&opts.ScenePath, "scene", opts.ScenePath, "YAML scene file (default: built-in demo scene)")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level: debug, info, warn, error")
	flags.StringArrayVarP(&opts.Exec, "exec", "e", opts.Exec, "execute a command and exit (repeatable)")
	flags.StringVar(&opts.Script, "script", opts.Script, "execute commands from a file, one per line, and exit")
	flags.BoolVar(&opts.Plain, "plain", opts.Plain, "use the line-mode console")
	flags.BoolVar(&opts.Strict, "strict", opts.Strict, "fail commands on malformed arguments")
	flags.BoolVar(&opts.NoHistory, "no-history", opts.NoHistory, "do not journal commands")

	return rootCommand
}
