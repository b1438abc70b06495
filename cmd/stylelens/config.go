package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/stylelens/pkg/aggregate"
	"github.com/gnana997/stylelens/pkg/snapshot"
	"github.com/gnana997/stylelens/pkg/util"
)

// defaultConfigPath is read when --config is not given.
const defaultConfigPath = ".stylelens/config.yaml"

// Resolver variants.
const (
	resolverNative = "native"
	resolverCached = "cached"
)

// ProjectConfig holds the contents of .stylelens/config.yaml.
type ProjectConfig struct {
	Version string `yaml:"version"`

	// Resolver selects the color-space resolver: "cached" (default) or "native".
	Resolver  string `yaml:"resolver"`
	CacheSize int    `yaml:"cache_size"`

	ExcludeSelectors []string `yaml:"exclude_selectors"`

	Snapshots struct {
		Root    string   `yaml:"root"`
		Include []string `yaml:"include"`
		Exclude []string `yaml:"exclude"`
	} `yaml:"snapshots"`

	Watch struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"watch"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	MCPLog string `yaml:"mcp_log"`
}

// loadProjectConfig reads the config at path. When path is empty the default
// location is tried and a missing file yields an empty config. An explicit
// path must exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *ProjectConfig) validate() error {
	var errs []error
	switch c.Resolver {
	case "", resolverNative, resolverCached:
	default:
		errs = append(errs, fmt.Errorf("unknown resolver %q (want native or cached)", c.Resolver))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative"))
	}
	if c.Log.Level != "" {
		if _, err := util.ParseLogLevel(c.Log.Level); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Log.Format != "" {
		if _, err := util.ParseLogFormat(c.Log.Format); err != nil {
			errs = append(errs, err)
		}
	}
	if len(c.ExcludeSelectors) > 0 {
		if _, err := aggregate.NewExcluder(c.ExcludeSelectors...); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := snapshot.NewMatcher(c.Snapshots.Include, c.Snapshots.Exclude); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// The resolve helpers apply the fallback chain:
//  1. explicit flag value
//  2. value from .stylelens/config.yaml
//  3. built-in default

func resolveString(flagValue, configValue, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	return def
}

func resolveDuration(flagValue, configValue, def time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	if configValue > 0 {
		return configValue
	}
	return def
}

func (c *ProjectConfig) resolveLogLevel(flagValue string) (util.LogLevel, error) {
	return util.ParseLogLevel(resolveString(flagValue, c.Log.Level, string(util.LevelWarn)))
}

func (c *ProjectConfig) resolveLogFormat(flagValue string) (util.LogFormat, error) {
	return util.ParseLogFormat(resolveString(flagValue, c.Log.Format, string(util.FormatText)))
}

func (c *ProjectConfig) resolveRoot(flagValue string) string {
	return filepath.Clean(resolveString(flagValue, c.Snapshots.Root, "."))
}

func (c *ProjectConfig) excludeSelectors() []string {
	if len(c.ExcludeSelectors) > 0 {
		return c.ExcludeSelectors
	}
	return aggregate.DefaultExcludeSelectors
}

// defaultProjectConfig is what `stylelens config --default` prints.
func defaultProjectConfig() *ProjectConfig {
	var cfg ProjectConfig
	cfg.Version = "1"
	cfg.Resolver = resolverCached
	cfg.ExcludeSelectors = aggregate.DefaultExcludeSelectors
	cfg.Snapshots.Root = "."
	cfg.Snapshots.Include = snapshot.DefaultInclude
	cfg.Snapshots.Exclude = snapshot.DefaultExclude
	cfg.Watch.Debounce = snapshot.DefaultDebounce
	cfg.Log.Level = string(util.LevelWarn)
	cfg.Log.Format = string(util.FormatText)
	return &cfg
}
