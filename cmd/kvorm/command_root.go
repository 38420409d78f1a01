package main

import (
	"fmt"
	"log/slog"

	"github.com/picatz/kvorm/command"
	"github.com/picatz/kvorm/internal/config"
	"github.com/picatz/kvorm/storage"
	"github.com/spf13/cobra"
)

// app holds the flags shared by every command and the configuration resolved
// from them before a command runs.
type app struct {
	configPath string
	path       string
	memory     bool
	sync       bool
	logLevel   string

	config config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "kvorm",
		Short: "Store typed command records in an ordered key-value store",
		Long: "kvorm stores command records in a pebble database, keyed by their executable\n" +
			"and arguments, and lists them back in key order.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&a.path, "db", "", fmt.Sprintf("Database directory (default $%s or %s)", config.EnvPath, config.DefaultPath))
	flags.BoolVarP(&a.memory, "temporary", "t", false, "Use a temporary in-memory database")
	flags.BoolVar(&a.sync, "sync", false, "Sync every write to stable storage before returning")
	flags.StringVar(&a.logLevel, "log-level", "", fmt.Sprintf("Log level: debug, info, warn or error (default $%s or info)", config.EnvLogLevel))

	rootCmd.AddCommand(
		newDemoCommand(a),
		newPutCommand(a),
		newGetCommand(a),
		newDeleteCommand(a),
		newListCommand(a),
		newFillCommand(a),
	)

	return rootCmd
}

// load resolves the configuration: defaults, then the config file, then the
// environment, then flags.
func (a *app) load(cmd *cobra.Command) error {
	c, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	c = config.FromEnv(c)

	if cmd.Flags().Changed("db") {
		c.Path = a.path
	}
	if a.memory {
		c.InMemory = true
	}
	if a.sync {
		c.Sync = true
	}
	if a.logLevel != "" {
		c.LogLevel = a.logLevel
	}

	if err := c.Validate(); err != nil {
		return err
	}

	logger, err := c.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.config = c
	a.logger = logger

	return nil
}

// openStore opens the configured engine as a command store. The caller must
// close it.
func (a *app) openStore() (*command.Store, error) {
	engine, err := a.config.OpenEngine(a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage engine: %w", err)
	}

	return command.NewStore(engine, storage.WithLogger(a.logger)), nil
}
