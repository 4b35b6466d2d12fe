// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/commander/internal/builtin"
	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/config"
	"github.com/jeranaias/commander/internal/history"
	"github.com/jeranaias/commander/internal/logging"
	"github.com/jeranaias/commander/internal/repl"
	"github.com/jeranaias/commander/internal/scene"
	"github.com/jeranaias/commander/internal/ui"
	"github.com/jeranaias/commander/internal/ui/styles"
)

// JournalLimit is how many results the history journal keeps on exit.
const JournalLimit = 10000

// app holds everything wired for one run.
type app struct {
	opts       Options
	cfg        *config.Config
	configPath string
	log        *zap.Logger

	scene     *scene.Scene
	exec      *commands.Executor
	completer *commands.Completer
	recall    *history.Recall
	store     *history.Store
	provider  *builtin.Provider
}

// Run loads configuration, wires the interpreter and runs the selected
// front end until it exits.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}

	cfg, configPath, err := loadConfig(opts)
	if err != nil {
		return err
	}

	batch := len(opts.Exec) > 0 || opts.Script != ""
	mode := ResolveMode(cfg.UI.Mode, IsTTY() && IsStdoutTTY())

	logCfg := cfg.Log
	if !batch && mode == ModeTUI {
		logCfg = logging.Quiet(logCfg)
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(ctx, opts, cfg, configPath, log)
	if err != nil {
		return err
	}
	defer a.close()

	if batch {
		return a.runBatch()
	}
	if mode == ModeTUI {
		return a.runTUI(ctx)
	}
	return a.runPlain(ctx)
}

// loadConfig reads the configuration and layers flags over it.
func loadConfig(opts Options) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path = opts.ConfigPath
		err  error
	)
	if path != "" {
		path, err = config.ExpandHome(path)
		if err != nil {
			return nil, "", err
		}
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
		if err == nil {
			path, err = config.ConfigPathTOML()
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if opts.ScenePath != "" {
		cfg.Scene.Path = opts.ScenePath
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Plain {
		cfg.UI.Mode = ModePlain
	}
	if opts.Strict {
		cfg.Console.StrictConversion = true
	}
	if opts.NoHistory {
		cfg.History.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

func newApp(ctx context.Context, opts Options, cfg *config.Config, configPath string, log *zap.Logger) (*app, error) {
	a := &app{opts: opts, cfg: cfg, configPath: configPath, log: log}

	if err := a.openScene(); err != nil {
		return nil, err
	}

	registry := commands.NewRegistry(log.Named("registry"))
	a.exec = commands.NewExecutor(registry,
		commands.WithLogger(log.Named("executor")),
		commands.WithObjectSpace(a.scene),
		commands.WithStrictConversion(cfg.Console.StrictConversion),
		commands.WithFuzzyHints(cfg.Console.FuzzyHints),
		commands.WithHintLimit(cfg.Console.HintLimit),
	)
	a.completer = commands.NewCompleter(registry, a.scene)

	a.recall = history.NewRecall(cfg.History.MaxEntries)
	a.exec.AddObserver(a.recall)
	if cfg.History.Enabled {
		a.openHistory(ctx)
	}

	a.provider = builtin.Install(a.exec, builtin.Deps{
		Scene:      a.scene,
		ScenePath:  cfg.Scene.Path,
		Recall:     a.recall,
		Store:      a.store,
		Config:     cfg,
		ConfigPath: configPath,
		Version:    Version,
		Log:        log.Named("builtin"),
	})
	return a, nil
}

// openScene loads the configured scene file, seeding a missing file with
// the demo scene, or uses the demo scene when none is configured.
func (a *app) openScene() error {
	log := a.log.Named("scene")
	if a.cfg.Scene.Path == "" {
		a.scene = scene.Demo(log)
		return nil
	}

	path, err := config.ExpandHome(a.cfg.Scene.Path)
	if err != nil {
		return err
	}
	a.cfg.Scene.Path = path

	s := scene.New(log)
	err = s.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		s = scene.Demo(log)
		if err := s.Save(path); err != nil {
			return err
		}
		log.Info("created scene file from demo scene", zap.String("path", path))
		err = nil
	}
	if err != nil {
		return err
	}
	a.scene = s
	return nil
}

// openHistory attaches the journal. A journal that cannot be opened only
// disables journaling.
func (a *app) openHistory(ctx context.Context) {
	path, err := a.cfg.HistoryPath()
	if err == nil {
		a.store, err = history.Open(path, a.log.Named("history"))
	}
	if err != nil {
		a.log.Warn("history journal unavailable", zap.Error(err))
		a.store = nil
		return
	}
	a.exec.AddObserver(a.store)

	entries, err := a.store.Recent(ctx, a.cfg.History.MaxEntries)
	if err != nil {
		a.log.Warn("failed to read history", zap.Error(err))
		return
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Input)
	}
	a.recall.Seed(lines)
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.Prune(ctx, JournalLimit); err != nil {
		a.log.Warn("failed to prune history", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close history", zap.Error(err))
	}
}

// =============================================================================
// FRONT ENDS
// =============================================================================

// runBatch executes -e commands, then the script, printing every result.
func (a *app) runBatch() error {
	var theme *styles.Theme
	if ColorsEnabled() {
		theme = styles.NewTheme(a.cfg.UI.Theme)
	}

	lines := append([]string(nil), a.opts.Exec...)
	if a.opts.Script != "" {
		script, err := a.readScript()
		if err != nil {
			return err
		}
		lines = append(lines, script...)
	}

	failed := 0
	for _, line := range lines {
		result := a.exec.Execute(line)
		repl.Print(a.opts.Out, theme, result)
		if !result.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(lines))
	}
	return nil
}

// readScript returns the non-blank, non-comment lines of the script; "-"
// reads standard input.
func (a *app) readScript() ([]string, error) {
	var r io.Reader = a.opts.In
	if a.opts.Script != "-" {
		f, err := os.Open(a.opts.Script)
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return lines, nil
}

func (a *app) runTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.New(ui.Options{
		Executor:        a.exec,
		Completer:       a.completer,
		Recall:          a.recall,
		Theme:           styles.NewTheme(a.cfg.UI.Theme),
		Prompt:          a.cfg.Console.Prompt,
		SuggestionLimit: a.cfg.Console.SuggestionLimit,
		Status:          a.statusLine,
		Frames:          a.provider.Overlay(),
		Log:             a.log.Named("ui"),
	})
	a.provider.SetConsole(model.Screen())

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	if w := a.watcher(); w != nil {
		path := a.cfg.Scene.Path
		w.OnReload(func(err error) {
			program.Send(ui.SceneReloadedMsg{Path: path, Err: err})
		})
		g.Go(func() error { return a.watch(gctx, w) })
	}
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}

func (a *app) runPlain(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var theme *styles.Theme
	if ColorsEnabled() {
		theme = styles.NewTheme(a.cfg.UI.Theme)
	}
	r := repl.New(repl.Options{
		Executor:        a.exec,
		Completer:       a.completer,
		Recall:          a.recall,
		Theme:           theme,
		Prompt:          a.cfg.Console.Prompt,
		SuggestionLimit: a.cfg.Console.SuggestionLimit,
		Out:             a.opts.Out,
		Log:             a.log.Named("repl"),
	})
	a.provider.SetConsole(r)

	g, gctx := errgroup.WithContext(ctx)
	if w := a.watcher(); w != nil {
		w.OnReload(func(err error) {
			if err == nil {
				a.log.Info("scene reloaded", zap.String("path", a.cfg.Scene.Path))
			}
		})
		g.Go(func() error { return a.watch(gctx, w) })
	}
	g.Go(func() error {
		defer cancel()
		return r.Run(gctx)
	})
	return g.Wait()
}

// watcher returns a scene watcher when hot reload applies.
func (a *app) watcher() *scene.Watcher {
	if a.cfg.Scene.Path == "" || !a.cfg.Scene.Watch {
		return nil
	}
	w, err := scene.NewWatcher(a.scene, a.cfg.Scene.Path, scene.DefaultDebounce, a.log.Named("watcher"))
	if err != nil {
		a.log.Warn("scene hot reload disabled", zap.Error(err))
		return nil
	}
	return w
}

// watch runs w; a failing watcher only disables hot reload.
func (a *app) watch(ctx context.Context, w *scene.Watcher) error {
	if err := w.Run(ctx); err != nil {
		a.log.Warn("scene hot reload stopped", zap.Error(err))
	}
	return nil
}

// statusLine summarizes the scene for the status bar.
func (a *app) statusLine() string {
	scale := a.scene.TimeScale()
	state := fmt.Sprintf("time x%s", formatScale(scale))
	if scale == 0 {
		state = "paused"
	}
	line := fmt.Sprintf("%d objects | %s", len(a.scene.Visible()), state)
	if overlay := a.provider.Overlay().Segment(); overlay != "" {
		line += " | " + overlay
	}
	return line
}

func formatScale(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
