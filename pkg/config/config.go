// Package config loads cratecat's TOML configuration.
//
// The file is looked up at --config, else $XDG_CONFIG_HOME/cratecat/config.toml,
// else ~/.config/cratecat/config.toml. A missing default file is not an error.
//
//	[collect]
//	include-workspace = false
//	kinds = ["normal", "build", "dev"]
//
//	[cache]
//	backend = "file"   # file | memory | redis | none
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
//	[output]
//	format = "table"
//
// CRATECAT_CACHE_BACKEND and CRATECAT_REDIS_URL override the file. Command-line
// flags override both.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cratecat/pkg/cache"
	"github.com/matzehuels/cratecat/pkg/deps"
	"github.com/matzehuels/cratecat/pkg/errors"
	"github.com/matzehuels/cratecat/pkg/pipeline"
)

// Environment variables read by [Load].
const (
	EnvCacheBackend = "CRATECAT_CACHE_BACKEND"
	EnvRedisURL     = "CRATECAT_REDIS_URL"
)

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultMaxBody         = 32 << 20
	DefaultReadTimeout     = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRedisURL        = "redis://localhost:6379/0"
)

// Duration is a time.Duration written as a string ("90s", "24h") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete configuration.
type Config struct {
	Collect CollectConfig `toml:"collect"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
	Output  OutputConfig  `toml:"output"`
}

// CollectConfig holds the defaults for catalog collection.
type CollectConfig struct {
	InputFormat      string   `toml:"input-format"`
	IncludeWorkspace bool     `toml:"include-workspace"`
	Kinds            []string `toml:"kinds"`
}

// CacheConfig selects the catalog cache backend.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	TTL           Duration `toml:"ttl"`
	RedisURL      string   `toml:"redis-url"`
	Namespace     string   `toml:"namespace"`
	MemoryEntries int      `toml:"memory-entries"`
	Scope         string   `toml:"scope"` // Optional prefix for every cache key
}

// ServerConfig configures `cratecat serve`.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	MaxBody         int64    `toml:"max-body"`
	ReadTimeout     Duration `toml:"read-timeout"`
	ShutdownTimeout Duration `toml:"shutdown-timeout"`
}

// OutputConfig holds output defaults of the CLI.
type OutputConfig struct {
	Format string `toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.WithDefaults()
	return cfg
}

// WithDefaults replaces zero values with defaults.
func (c *Config) WithDefaults() *Config {
	if c.Collect.InputFormat == "" {
		c.Collect.InputFormat = pipeline.DefaultInputFormat
	}
	if len(c.Collect.Kinds) == 0 {
		for _, k := range deps.AllKinds {
			c.Collect.Kinds = append(c.Collect.Kinds, k.String())
		}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = cache.DefaultTTL
	}
	if c.Cache.RedisURL == "" {
		c.Cache.RedisURL = DefaultRedisURL
	}
	if c.Cache.Namespace == "" {
		c.Cache.Namespace = cache.DefaultNamespace
	}
	if c.Cache.MemoryEntries == 0 {
		c.Cache.MemoryEntries = cache.DefaultMemoryEntries
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBody == 0 {
		c.Server.MaxBody = DefaultMaxBody
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = DefaultReadTimeout
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
	if c.Output.Format == "" {
		c.Output.Format = pipeline.FormatTable
	}
	return c
}

// Validate rejects unknown kinds, backends, formats and negative limits.
func (c *Config) Validate() error {
	if _, err := deps.LookupFormat(pipeline.InputFormats, c.Collect.InputFormat); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "collect.input-format")
	}
	if _, err := deps.ParseDependencyKinds(c.Collect.Kinds); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "collect.kinds")
	}
	if !slices.Contains(cache.Backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend: unknown backend %q (available: %v)", c.Cache.Backend, cache.Backends)
	}
	if c.Cache.Backend == cache.BackendFile {
		if err := errors.ValidatePath(c.Cache.Dir); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "cache.dir")
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if c.Cache.MemoryEntries < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.memory-entries must not be negative")
	}
	if c.Server.MaxBody < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "server.max-body must not be negative")
	}
	if err := pipeline.ValidateFormat(c.Output.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "output.format")
	}
	return nil
}

// Kinds returns the parsed collect.kinds.
func (c *Config) Kinds() []deps.DependencyKind {
	kinds, _ := deps.ParseDependencyKinds(c.Collect.Kinds)
	return kinds
}

// CacheOptions converts the cache section to [cache.Options].
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisURL:      c.Cache.RedisURL,
		Namespace:     c.Cache.Namespace,
		MemoryEntries: c.Cache.MemoryEntries,
		TTL:           c.Cache.TTL.Duration,
	}
}

// Keyer returns the cache keyer, scoped when cache.scope is set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Scope+":")
}

// PipelineOptions converts the collect and cache sections to
// [pipeline.Options].
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		InputFormat:      c.Collect.InputFormat,
		Kinds:            c.Kinds(),
		IncludeWorkspace: c.Collect.IncludeWorkspace,
		CacheTTL:         c.Cache.TTL.Duration,
	}
}

// Load reads the configuration at path, or at [DefaultPath] when path is
// empty, applies environment overrides and defaults, and validates the
// result. Keys the file sets that cratecat does not know are returned as
// warnings.
func Load(path string) (*Config, []string, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, []string, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}

	cfg := &Config{}
	var warnings []string
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		for _, key := range md.Undecoded() {
			warnings = append(warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
		}
	case os.IsNotExist(err) && !explicit:
		cfg = &Config{}
	case os.IsNotExist(err):
		return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	default:
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config file %s", path)
	}

	cfg.applyEnv(getenv)
	cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, warnings, err
	}
	return cfg, warnings, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvCacheBackend); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
}
