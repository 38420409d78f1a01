package config_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/picatz/kvorm/command"
	"github.com/picatz/kvorm/internal/config"
	"github.com/picatz/kvorm/storage"
	"github.com/shoenig/test/must"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kvorm.yaml")
	must.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_defaults(t *testing.T) {
	c, err := config.Load("")
	must.NoError(t, err)
	must.Eq(t, config.Default(), c)

	c, err = config.Load(writeConfig(t, ""))
	must.NoError(t, err)
	must.Eq(t, config.Default(), c)
}

func TestLoad_file(t *testing.T) {
	path := writeConfig(t, `
path: /var/lib/kvorm
sync: true
log_level: debug
cache_size: 1048576
max_open_files: 64
`)

	c, err := config.Load(path)
	must.NoError(t, err)
	must.Eq(t, "/var/lib/kvorm", c.Path)
	must.Eq(t, config.EnginePebble, c.Engine)
	must.True(t, c.Sync)
	must.True(t, c.CreateIfMissing)
	must.Eq(t, int64(1<<20), c.CacheSize)
	must.Eq(t, 64, c.MaxOpenFiles)

	level, err := c.Level()
	must.NoError(t, err)
	must.Eq(t, slog.LevelDebug, level)
	must.True(t, c.WriteOptions().Sync)
}

func TestLoad_errors(t *testing.T) {
	for name, content := range map[string]string{
		"unknown field":  "colour: blue\n",
		"bad type":       "sync: sometimes\n",
		"unknown engine": "engine: leveldb\n",
		"bad log level":  "log_level: loud\n",
		"negative cache": "cache_size: -1\n",
	} {
		_, err := config.Load(writeConfig(t, content))
		must.Error(t, err, must.Sprintf("case %s", name))
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	must.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(config.EnvPath, "/tmp/kvorm-env")
	t.Setenv(config.EnvLogLevel, "warn")

	c := config.FromEnv(config.Default())
	must.Eq(t, "/tmp/kvorm-env", c.Path)

	level, err := c.Level()
	must.NoError(t, err)
	must.Eq(t, slog.LevelWarn, level)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	c := config.Default()
	c.LogLevel = "warn"

	logger, err := c.NewLogger(&buf)
	must.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	must.StrNotContains(t, buf.String(), "hidden")
	must.StrContains(t, buf.String(), "shown")
}

func TestOpenEngine(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	for name, c := range map[string]config.Config{
		"pebble dir": {Engine: config.EnginePebble, Path: t.TempDir(), CreateIfMissing: true, CacheSize: 1 << 20},
		"pebble mem": {Engine: config.EnginePebble, InMemory: true, CreateIfMissing: true},
		"memory":     {Engine: config.EngineMemory},
	} {
		t.Run(name, func(t *testing.T) {
			engine, err := c.OpenEngine(logger)
			must.NoError(t, err)

			store := command.NewStore(engine, storage.WithLogger(logger))

			cmd := command.Command{Executable: 1, Args: []string{"a"}}
			must.NoError(t, store.PutWithOptions(t.Context(), cmd, c.WriteOptions()))

			key, err := cmd.Key()
			must.NoError(t, err)

			got, ok, err := store.Get(t.Context(), key)
			must.NoError(t, err)
			must.True(t, ok)
			must.Eq(t, cmd, got)

			must.NoError(t, store.Close(context.Background()))
		})
	}

	missing := config.Config{
		Engine: config.EnginePebble,
		Path:   filepath.Join(t.TempDir(), "missing"),
	}
	_, err := missing.OpenEngine(logger)
	must.Error(t, err)

	_, err = config.Config{Engine: config.EnginePebble}.OpenEngine(logger)
	must.Error(t, err)
}
