// Package config loads peoplepack settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/peoplepack/config.toml. A missing file
// is not an error: [Load] returns [Default]. Environment variables override
// the file for connection strings, and command-line flags override both.
//
//	[layout]
//	margin = 10
//	padding = [12, 24, 6]
//	weight_by = "members"
//
//	[source]
//	kind = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "org"
//
//	[cache]
//	kind = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/peoplepack/pkg/errors"
)

const (
	// Dir is the directory name under XDG_CONFIG_HOME.
	Dir = "peoplepack"
	// File is the config file name.
	File = "config.toml"

	// EnvMongoURI overrides [SourceConfig.MongoURI].
	EnvMongoURI = "PEOPLEPACK_MONGO_URI"
	// EnvRedisAddr overrides [CacheConfig.RedisAddr].
	EnvRedisAddr = "PEOPLEPACK_REDIS_ADDR"
)

// Source kinds.
const (
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// Cache kinds.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Weighting modes.
const (
	WeightMembers = "members"
	WeightHours   = "hours"
)

// Config is the complete configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Source SourceConfig `toml:"source"`
	Cache  CacheConfig  `toml:"cache"`
	Serve  ServeConfig  `toml:"serve"`
}

// LayoutConfig controls grouping and packing.
type LayoutConfig struct {
	Margin float64 `toml:"margin"`
	// Padding by depth; the last value applies to all deeper levels.
	Padding     []float64 `toml:"padding"`
	AspectRatio float64   `toml:"aspect_ratio"`
	MinHeight   float64   `toml:"min_height"`
	WeightBy    string    `toml:"weight_by"`
	CatchAll    string    `toml:"catch_all"`
	SubCatchAll string    `toml:"sub_catch_all"`
}

// RenderConfig controls output.
type RenderConfig struct {
	Style  string  `toml:"style"`
	Marker string  `toml:"marker"`
	Scale  float64 `toml:"scale"`
}

// SourceConfig selects where records come from.
type SourceConfig struct {
	Kind     string        `toml:"kind"`
	Path     string        `toml:"path"`
	MongoURI string        `toml:"mongo_uri"`
	Database string        `toml:"database"`
	Timeout  time.Duration `toml:"timeout"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Kind      string `toml:"kind"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	Prefix    string `toml:"prefix"`
}

// ServeConfig configures the HTTP host.
type ServeConfig struct {
	Addr  string  `toml:"addr"`
	Watch bool    `toml:"watch"`
	Width float64 `toml:"width"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Margin:      10,
			Padding:     []float64{12, 24, 6},
			AspectRatio: 0.8,
			MinHeight:   800,
			WeightBy:    WeightMembers,
			CatchAll:    "Other",
			SubCatchAll: "General",
		},
		Render: RenderConfig{Style: "simple", Marker: "★", Scale: 2},
		Source: SourceConfig{Kind: SourceFile, Database: "peoplepack", Timeout: 10 * time.Second},
		Cache:  CacheConfig{Kind: CacheFile},
		Serve:  ServeConfig{Addr: "127.0.0.1:8080", Width: 1200},
	}
}

// Path returns the default config file path, or "" when no home directory
// can be determined.
func Path() string {
	home := os.Getenv("XDG_CONFIG_HOME")
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		home = filepath.Join(h, ".config")
	}
	return filepath.Join(home, Dir, File)
}

// Load reads the config at path, or at [Path] when path is empty. Values
// missing from the file keep their defaults. A missing file at the default
// location yields the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case os.IsNotExist(err) && !explicit:
		case os.IsNotExist(err):
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "config file %s", path)
		case err != nil:
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		default:
			if keys := md.Undecoded(); len(keys) > 0 {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, joinKeys(keys))
			}
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func joinKeys(keys []toml.Key) string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = k.String()
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}

// ApplyEnv overrides connection settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Source.MongoURI = v
		if c.Source.Path == "" {
			c.Source.Kind = SourceMongo
		}
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	l := c.Layout
	if l.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.margin must not be negative")
	}
	for i, p := range l.Padding {
		if p < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "layout.padding[%d] must not be negative", i)
		}
	}
	if l.AspectRatio <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.aspect_ratio must be positive")
	}
	if l.MinHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.min_height must be positive")
	}
	if l.WeightBy != WeightMembers && l.WeightBy != WeightHours {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.weight_by must be %q or %q", WeightMembers, WeightHours)
	}

	switch c.Source.Kind {
	case SourceFile:
	case SourceMongo:
		if err := errors.ValidateURI(c.Source.MongoURI); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "source.kind must be %q or %q", SourceFile, SourceMongo)
	}

	switch c.Cache.Kind {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis cache")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.kind must be one of file, redis, none")
	}

	if c.Render.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.scale must be positive")
	}
	return nil
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
