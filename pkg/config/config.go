// Package config loads and saves the discrete settings file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/discrete/config.toml
// (falling back to ~/.config/discrete/config.toml):
//
//	limit = 500
//
//	[tiling]
//	schlafli = "{7,3}"
//	relations = ["0 2 1;8"]
//	subgroup = "0 1"
//
//	[cache]
//	backend = "file"
//	prefix = "staging:"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// Command line flags override file values; see internal/cli.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/discrete/pkg/coxeter"
	derrors "github.com/matzehuels/discrete/pkg/errors"
)

const appName = "discrete"

// DefaultLimit is the discovery limit used when none is configured.
const DefaultLimit = 500

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the contents of the settings file.
type Config struct {
	// Limit caps the number of discovery steps per enumeration.
	Limit int `toml:"limit"`

	Tiling coxeter.Settings `toml:"tiling"`
	Cache  CacheConfig      `toml:"cache"`
	Server ServerConfig     `toml:"server"`
}

// CacheConfig selects where enumeration results are cached.
type CacheConfig struct {
	// Backend is one of "file", "redis", "mongo" or "none".
	Backend string `toml:"backend"`

	// URL addresses the redis or mongo server.
	URL string `toml:"url,omitempty"`

	// Dir overrides the file cache directory.
	Dir string `toml:"dir,omitempty"`

	// Prefix scopes every cache key, so several deployments can share one
	// backend without serving each other's results.
	Prefix string `toml:"prefix,omitempty"`

	// TTL is a Go duration string such as "24h".
	TTL string `toml:"ttl"`
}

// ServerConfig configures `discrete serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration: the rank 3 tiling preset, a
// file cache and a limit of DefaultLimit.
func Default() Config {
	tiling, _ := coxeter.DefaultSettings(3)
	return Config{
		Limit:  DefaultLimit,
		Tiling: tiling,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     "24h",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// CacheTTL parses Cache.TTL. An empty value returns zero, which callers
// treat as their default TTL.
func (c Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "cache.ttl")
	}
	if d < 0 {
		return 0, derrors.New(derrors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return d, nil
}

// Validate checks field ranges and that the tiling parses.
func (c Config) Validate() error {
	if err := derrors.ValidateLimit(c.Limit); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "limit")
	}
	if _, err := coxeter.NewTiling(c.Tiling); err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "tiling")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone, "":
	case BackendRedis:
		if err := derrors.ValidateBackendURL(c.Cache.URL, "redis", "rediss"); err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "cache.url")
		}
	case BackendMongo:
		if err := derrors.ValidateBackendURL(c.Cache.URL, "mongodb", "mongodb+srv"); err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "cache.url")
		}
	default:
		return derrors.New(derrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if strings.ContainsAny(c.Cache.Prefix, " \t\r\n") {
		return derrors.New(derrors.ErrCodeInvalidConfig, "cache.prefix %q contains whitespace", c.Cache.Prefix)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// DefaultPath returns the settings file location using the XDG standard.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads and validates the file at path. Keys missing from the file keep
// their Default values; unknown keys are rejected.
func Load(path string) (Config, error) {
	if err := derrors.ValidatePath(path); err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, derrors.Wrap(derrors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// LoadOrDefault is Load, returning Default when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if derrors.Is(err, derrors.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes TOML settings on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, derrors.Wrap(derrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, derrors.New(derrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := derrors.ValidatePath(path); err != nil {
		return err
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
