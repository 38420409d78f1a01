// Package config loads the kvorm CLI configuration from an optional YAML
// file and the environment, and opens the storage engine it describes.
package config

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/picatz/kvorm/storage"
	"github.com/picatz/kvorm/storage/memory"
	pebbleStorage "github.com/picatz/kvorm/storage/pebble"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the default location of the kvorm database.
//
// On Unix-like systems, it is ~/.kvorm, and on Windows, %USERPROFILE%/.kvorm.
var DefaultPath = filepath.Join(cmp.Or(os.Getenv("HOME"), os.Getenv("USERPROFILE")), ".kvorm")

// Environment variables read by [FromEnv].
const (
	EnvPath     = "KVORM_PATH"
	EnvLogLevel = "KVORM_LOG_LEVEL"
)

// Engine names accepted in [Config.Engine].
const (
	EnginePebble = "pebble"
	EngineMemory = "memory"
)

// Config is the CLI configuration.
type Config struct {
	// Path is the directory of the pebble database.
	Path string `yaml:"path"`

	// Engine selects the storage engine: "pebble" (default) or "memory".
	Engine string `yaml:"engine"`

	// InMemory keeps a pebble database on an in-memory filesystem.
	InMemory bool `yaml:"in_memory"`

	// CreateIfMissing creates the database when Path does not hold one.
	CreateIfMissing bool `yaml:"create_if_missing"`

	// Sync makes every put and delete a synced write.
	Sync bool `yaml:"sync"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// CacheSize is the pebble block cache size in bytes. Zero uses pebble's default.
	CacheSize int64 `yaml:"cache_size"`

	// MaxOpenFiles limits the number of files pebble keeps open. Zero uses
	// pebble's default.
	MaxOpenFiles int `yaml:"max_open_files"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Path:            DefaultPath,
		Engine:          EnginePebble,
		CreateIfMissing: true,
		LogLevel:        "info",
	}
}

// Load reads a YAML configuration file over the defaults. Unknown fields are
// rejected. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return c, c.Validate()
}

// FromEnv overrides c with the values of the kvorm environment variables
// that are set.
func FromEnv(c Config) Config {
	if v := os.Getenv(EnvPath); v != "" {
		c.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return c
}

// Validate checks that c can be used to open an engine.
func (c Config) Validate() error {
	switch c.Engine {
	case EnginePebble:
		if c.Path == "" && !c.InMemory {
			return errors.New("config: path is required for an on-disk pebble engine")
		}
	case EngineMemory:
	default:
		return fmt.Errorf("config: unknown engine %q", c.Engine)
	}

	if c.CacheSize < 0 {
		return fmt.Errorf("config: cache_size must not be negative: %d", c.CacheSize)
	}
	if c.MaxOpenFiles < 0 {
		return fmt.Errorf("config: max_open_files must not be negative: %d", c.MaxOpenFiles)
	}

	_, err := c.Level()
	return err
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
}

// WriteOptions returns the write options selected by Sync.
func (c Config) WriteOptions() *storage.WriteOptions {
	if c.Sync {
		return storage.Sync
	}
	return storage.NoSync
}

// NewLogger creates a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}

	lvl := new(slog.LevelVar)
	lvl.Set(level)

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// PebbleOptions returns the pebble options described by c.
func (c Config) PebbleOptions(logger *slog.Logger) *pebble.Options {
	opts := &pebble.Options{
		ErrorIfNotExists: !c.CreateIfMissing,
		LoggerAndTracer:  pebbleStorage.NewLogger(logger),
		MaxOpenFiles:     c.MaxOpenFiles,
	}

	if c.InMemory {
		opts.FS = vfs.NewMem()
	}
	if c.CacheSize > 0 {
		opts.Cache = pebble.NewCache(c.CacheSize)
	}

	return opts
}

// OpenEngine opens the engine described by c.
func (c Config) OpenEngine(logger *slog.Logger) (storage.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.Engine == EngineMemory {
		return memory.NewEngine(), nil
	}

	opts := c.PebbleOptions(logger)
	if opts.Cache != nil {
		// The database holds its own reference to the cache.
		defer opts.Cache.Unref()
	}

	path := c.Path
	if c.InMemory {
		path = ""
	}

	logger.Debug("opening pebble engine", "path", path, "in_memory", c.InMemory)

	return pebbleStorage.NewEngine(path, opts)
}
