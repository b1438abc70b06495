package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/colors"
	"github.com/gnana997/stylelens/pkg/snapshot"
	"github.com/gnana997/stylelens/pkg/util"
)

type envKey struct{}

// localEnv keeps everything a command needs in a single place. It is
// prepared once in the root Before hook.
type localEnv struct {
	cfg      *ProjectConfig
	log      *slog.Logger
	out      io.Writer
	errOut   io.Writer
	json     bool
	norm     *colors.Normalizer
	excluder *aggregate.Excluder
	matcher  *snapshot.Matcher
	loader   *snapshot.Loader

	start time.Time
}

func envFromContext(ctx context.Context) *localEnv {
	if env, ok := ctx.Value(envKey{}).(*localEnv); ok {
		return env
	}
	panic("localEnv not found in context")
}

func contextWithEnv(ctx context.Context, out, errOut io.Writer) context.Context {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return context.WithValue(ctx, envKey{}, &localEnv{out: out, errOut: errOut, start: time.Now()})
}

// prepare builds the shared collaborators from the resolved configuration.
func (e *localEnv) prepare(cfg *ProjectConfig, level util.LogLevel, format util.LogFormat) error {
	e.cfg = cfg
	e.log = util.NewLogger(util.LoggerConfig{Level: level, Format: format, Output: e.errOut})

	var resolver colors.ColorSpaceResolver = colors.NewNativeResolver()
	if cfg.Resolver != resolverNative {
		cached, err := colors.NewCachedResolver(resolver, cfg.CacheSize)
		if err != nil {
			return err
		}
		resolver = cached
	}
	e.norm = colors.NewNormalizer(resolver, e.log)

	excluder, err := aggregate.NewExcluder(cfg.excludeSelectors()...)
	if err != nil {
		return fmt.Errorf("unable to prepare exclusion selectors: %w", err)
	}
	e.excluder = excluder

	if e.matcher, err = snapshot.NewMatcher(cfg.Snapshots.Include, cfg.Snapshots.Exclude); err != nil {
		return fmt.Errorf("unable to prepare snapshot patterns: %w", err)
	}
	e.loader = snapshot.NewLoader(nil, e.log)
	return nil
}

func (e *localEnv) close() error {
	if e.loader == nil {
		return nil
	}
	return e.loader.Close()
}

func (e *localEnv) aggregator(snap *snapshot.Snapshot) *aggregate.Aggregator {
	return aggregate.New(aggregate.Options{
		Normalizer: e.norm,
		Viewport:   snap.Viewport,
		Excluder:   e.excluder,
		Logger:     e.log,
	})
}

func (e *localEnv) uptime() time.Duration {
	return time.Since(e.start)
}
