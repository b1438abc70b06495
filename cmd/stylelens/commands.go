package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/colors"
	"github.com/gnana997/stylelens/pkg/inspect"
	mcpserver "github.com/gnana997/stylelens/pkg/mcp"
	"github.com/gnana997/stylelens/pkg/mcplog"
	"github.com/gnana997/stylelens/pkg/snapshot"
	"github.com/gnana997/stylelens/pkg/tokens"
)

var errNoArgs = errors.New("missing arguments")

type normalizeRow struct {
	Input string `json:"input"`
	colors.Result
}

func runNormalize(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.NArg() == 0 {
		return fmt.Errorf("%w: COLOR...", errNoArgs)
	}

	rows := make([]normalizeRow, 0, cmd.NArg())
	for _, raw := range cmd.Args().Slice() {
		rows = append(rows, normalizeRow{Input: raw, Result: env.norm.Normalize(raw)})
	}
	if env.json {
		return writeJSON(env.out, rows)
	}

	inW := 0
	for _, r := range rows {
		inW = max(inW, len(r.Input))
	}
	for _, r := range rows {
		note := ""
		if r.Fallback {
			note = "  (unresolved)"
		}
		fmt.Fprintf(env.out, "%-*s  %s%s\n", inW, r.Input, r.Result, note)
	}
	return nil
}

type contrastRow struct {
	Foreground colors.Result   `json:"foreground"`
	Background colors.Result   `json:"background"`
	Contrast   colors.Contrast `json:"contrast"`
}

func runContrast(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.NArg() != 2 {
		return fmt.Errorf("%w: FOREGROUND BACKGROUND", errNoArgs)
	}

	fg, bg := env.norm.Normalize(cmd.Args().Get(0)), env.norm.Normalize(cmd.Args().Get(1))
	row := contrastRow{Foreground: fg, Background: bg, Contrast: colors.ContrastOf(fg, bg)}
	if env.json {
		return writeJSON(env.out, row)
	}
	fmt.Fprintf(env.out, "%s on %s  %s\n", fg, bg, formatContrast(row.Contrast))
	return nil
}

func runList(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	root := env.cfg.resolveRoot(cmd.String("root"))
	files, err := snapshot.Discover(root, env.matcher)
	if err != nil {
		return err
	}
	if env.json {
		return writeJSON(env.out, nonNil(files))
	}
	for _, f := range files {
		fmt.Fprintln(env.out, f)
	}
	return nil
}

// loadSnapshots loads the snapshot arguments, or every discovered snapshot
// when none are given. Files that fail to load are logged and skipped; their
// combined error is returned alongside whatever did load.
func loadSnapshots(env *localEnv, cmd *cli.Command) ([]snapshot.Loaded, error) {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		var err error
		if paths, err = snapshot.Discover(env.cfg.resolveRoot(cmd.String("root")), env.matcher); err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: no snapshots found", errNoArgs)
		}
	}
	loaded, err := env.loader.LoadAll(paths)
	if err != nil {
		env.log.Warn("some snapshots failed to load", "error", err)
	}
	return loaded, err
}

type colorsReport struct {
	Path   string                 `json:"path"`
	URL    string                 `json:"url,omitempty"`
	Colors []aggregate.ColorToken `json:"colors"`
	Stats  aggregate.Stats        `json:"stats"`
}

func runColors(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	loaded, loadErr := loadSnapshots(env, cmd)

	reports := make([]colorsReport, 0, len(loaded))
	for _, l := range loaded {
		inv := env.aggregator(l.Snapshot).Aggregate(l.Snapshot.Samples)
		reports = append(reports, colorsReport{Path: l.Path, URL: l.Snapshot.URL, Colors: nonNil(inv.Colors), Stats: inv.Stats})
	}
	if env.json {
		if err := writeJSON(env.out, reports); err != nil {
			return err
		}
		return loadErr
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(env.out)
		}
		printColors(env.out, title(r.Path, r.URL), r.Colors)
		printStats(env.out, r.Stats)
	}
	return loadErr
}

type fontsReport struct {
	Path  string                `json:"path"`
	URL   string                `json:"url,omitempty"`
	Fonts []aggregate.FontToken `json:"fonts"`
	Stats aggregate.Stats       `json:"stats"`
}

func runFonts(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	loaded, loadErr := loadSnapshots(env, cmd)

	reports := make([]fontsReport, 0, len(loaded))
	for _, l := range loaded {
		inv := env.aggregator(l.Snapshot).Aggregate(l.Snapshot.Samples)
		reports = append(reports, fontsReport{Path: l.Path, URL: l.Snapshot.URL, Fonts: nonNil(inv.Fonts), Stats: inv.Stats})
	}
	if env.json {
		if err := writeJSON(env.out, reports); err != nil {
			return err
		}
		return loadErr
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(env.out)
		}
		printFonts(env.out, title(r.Path, r.URL), r.Fonts)
		printStats(env.out, r.Stats)
	}
	return loadErr
}

func runInspect(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.NArg() == 0 {
		return fmt.Errorf("%w: SNAPSHOT [SELECTOR]", errNoArgs)
	}
	snap, err := env.loader.Load(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	var sample aggregate.StyleSample
	if sel := cmd.Args().Get(1); sel != "" {
		found, ok := snap.Find(sel)
		if !ok {
			return fmt.Errorf("no element matches %q", sel)
		}
		sample = found
	} else {
		idx := int(cmd.Int("index"))
		if idx < 0 || idx >= len(snap.Samples) {
			return fmt.Errorf("selector or --index in [0, %d) is required", len(snap.Samples))
		}
		sample = snap.Samples[idx]
	}

	report := inspect.New(env.norm, env.log).Inspect(sample)
	if env.json {
		return writeJSON(env.out, report)
	}
	printReport(env.out, report)
	return nil
}

func runTokens(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: SNAPSHOT", errNoArgs)
	}
	path := cmd.Args().Get(0)
	snap, err := env.loader.Load(path)
	if err != nil {
		return err
	}

	inv := env.aggregator(snap).Aggregate(snap.Samples)
	cat := tokens.Build(catalogName(snap, path), snap.URL, inv)
	if out := cmd.String("out"); out != "" {
		if err := cat.SaveToFile(out); err != nil {
			return err
		}
		env.log.Info("catalog saved", "file", out, "tokens", len(cat.Tokens))
	}

	category := cmd.String("category")
	if env.json {
		return writeJSON(env.out, nonNil(tokens.NewQueryService(cat, nil).GetTokens(category)))
	}
	fmt.Fprint(env.out, tokenTree(cat, category).String())
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	callLog, err := mcplog.NewLogger(resolveString(cmd.String("mcp-log"), env.cfg.MCPLog, ""))
	if err != nil {
		return err
	}
	if callLog != nil {
		defer callLog.Close()
	}

	srv := mcpserver.NewServer(mcpserver.Config{
		Root:       env.cfg.resolveRoot(cmd.String("root")),
		Matcher:    env.matcher,
		Loader:     env.loader,
		Normalizer: env.norm,
		Excluder:   env.excluder,
		CallLog:    callLog,
		Logger:     env.log,
	})
	env.log.Info("serving MCP on stdio")
	return srv.ServeStdio()
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	root := env.cfg.resolveRoot(cmd.String("root"))

	w, err := snapshot.NewWatcher(snapshot.WatchOptions{
		Debounce: resolveDuration(cmd.Duration("debounce"), env.cfg.Watch.Debounce, snapshot.DefaultDebounce),
		Matcher:  env.matcher,
	}, watchHandler(env), env.log)
	if err != nil {
		return err
	}
	if err := w.Start(root); err != nil {
		return err
	}
	fmt.Fprintf(env.out, "watching %s\n", root)

	<-ctx.Done()
	return w.Stop()
}

// watchHandler reloads a changed snapshot and prints a one-line summary.
func watchHandler(env *localEnv) func(snapshot.Event) {
	return func(ev snapshot.Event) {
		if err := env.loader.Invalidate(ev.Path); err != nil {
			env.log.Warn("failed to invalidate snapshot", "path", ev.Path, "error", err)
		}
		if ev.Removed {
			fmt.Fprintf(env.out, "%s  removed\n", ev.Path)
			return
		}
		snap, err := env.loader.Load(ev.Path)
		if err != nil {
			env.log.Warn("failed to reload snapshot", "path", ev.Path, "error", err)
			return
		}
		inv := env.aggregator(snap).Aggregate(snap.Samples)
		fmt.Fprintf(env.out, "%s  %d colors, %d fonts\n", ev.Path, len(inv.Colors), len(inv.Fonts))
	}
}

func runConfig(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	cfg := env.cfg
	if cmd.Bool("default") {
		cfg = defaultProjectConfig()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to encode configuration: %w", err)
	}
	_, err = env.out.Write(data)
	return err
}

func catalogName(snap *snapshot.Snapshot, path string) string {
	if snap.Title != "" {
		return snap.Title
	}
	if snap.URL != "" {
		return snap.URL
	}
	return filepath.Base(path)
}

func title(path, url string) string {
	if url == "" {
		return path
	}
	return path + "  " + url
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
