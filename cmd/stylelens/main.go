package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"github.com/gnana997/stylelens/pkg/tokens"
)

const version = "0.1.0-dev"

// initializeAppContext loads configuration and prepares the shared
// environment after the command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		return ctx, nil
	}
	env := envFromContext(ctx)

	cfg, err := loadProjectConfig(cmd.String("config"))
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	level, err := cfg.resolveLogLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	format, err := cfg.resolveLogFormat(cmd.String("log-format"))
	if err != nil {
		return ctx, err
	}
	if err := env.prepare(cfg, level, format); err != nil {
		return ctx, err
	}
	env.json = cmd.Bool("json")

	env.log.Debug("Program started", "args", cmd.Args().Slice(), "ver", version, "runtime", runtime.Version())
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		env.log.Debug("Program ended", "elapsed", env.uptime(), "parsed args", cmd.Args().Slice())
	}
	if er := env.close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to release snapshot cache: %w", er))
	}
	return err
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func newApp() *cli.Command {
	snapshotArgs := "SNAPSHOT..."
	return &cli.Command{
		Name:            "stylelens",
		Usage:           "color and typography inventory of rendered pages",
		Version:         version + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML), default " + defaultConfigPath},
			&cli.BoolFlag{Name: "json", Usage: "write machine-readable JSON instead of tables"},
			&cli.StringFlag{Name: "log-level", Usage: "log `LEVEL` (debug, info, warn, error)"},
			&cli.StringFlag{Name: "log-format", Usage: "log `FORMAT` (text, json)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "normalize",
				Usage:     "Normalizes CSS colors to #RRGGBB",
				ArgsUsage: "COLOR...",
				Action:    runNormalize,
			},
			{
				Name:      "contrast",
				Usage:     "WCAG contrast ratio of a text color on a background",
				ArgsUsage: "FOREGROUND BACKGROUND",
				Action:    runContrast,
			},
			{
				Name:   "list",
				Usage:  "Lists snapshot files under the snapshot root",
				Flags:  []cli.Flag{rootFlag()},
				Action: runList,
			},
			{
				Name:      "colors",
				Usage:     "Ranked color inventory of each snapshot",
				ArgsUsage: snapshotArgs,
				Flags:     []cli.Flag{rootFlag()},
				Action:    runColors,
			},
			{
				Name:      "fonts",
				Usage:     "Ranked font inventory of each snapshot",
				ArgsUsage: snapshotArgs,
				Flags:     []cli.Flag{rootFlag()},
				Action:    runFonts,
			},
			{
				Name:      "inspect",
				Usage:     "Resolved styles and text contrast of one element",
				ArgsUsage: "SNAPSHOT [SELECTOR]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "index", Aliases: []string{"i"}, Value: -1, Usage: "zero-based sample `INDEX`, used when no selector is given"},
				},
				Action: runInspect,
			},
			{
				Name:      "tokens",
				Usage:     "Design tokens derived from a snapshot",
				ArgsUsage: "SNAPSHOT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "only tokens of `CATEGORY` (" + joinCategories() + ")"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "save the validated catalog to `FILE`"},
				},
				Action: runTokens,
			},
			{
				Name:  "serve",
				Usage: "Serves the inspector tools over MCP on stdio",
				Flags: []cli.Flag{
					rootFlag(),
					&cli.StringFlag{Name: "mcp-log", Usage: "append one JSONL line per tool call to `FILE`"},
				},
				Action: runServe,
			},
			{
				Name:  "watch",
				Usage: "Re-aggregates snapshots as they change",
				Flags: []cli.Flag{
					rootFlag(),
					&cli.DurationFlag{Name: "debounce", Usage: "quiet `PERIOD` before a changed file is processed"},
				},
				Action: runWatch,
			},
			{
				Name:  "setup",
				Usage: "Registers the MCP server with detected AI agents",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "auto", Usage: "configure every detected agent without prompting"},
				},
				Action: runSetup,
			},
			{
				Name:  "config",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output built-in defaults"},
				},
				Action: runConfig,
			},
			{
				Name:  "version",
				Usage: "Prints version",
				Action: func(ctx context.Context, _ *cli.Command) error {
					_, err := fmt.Fprintf(envFromContext(ctx).out, "stylelens %s\n", version)
					return err
				},
			},
		},
	}
}

func rootFlag() cli.Flag {
	return &cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "snapshot root `DIR`"}
}

func joinCategories() string {
	return strings.Join(tokens.Categories, ", ")
}

// run executes the app with the given streams. Split from main for tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	app := newApp()
	app.Writer, app.ErrWriter = stdout, stderr
	return app.Run(contextWithEnv(ctx, stdout, stderr), args)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "stylelens: %v\n", err)
		os.Exit(1)
	}
}
