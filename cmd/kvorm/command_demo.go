package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/picatz/kvorm/command"
	"github.com/picatz/kvorm/internal/config"
	"github.com/picatz/kvorm/storage"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

func newDemoCommand(a *app) *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a put, get, iterate and delete round trip on a scratch database",
		Long: "Opens a fresh database in a temporary directory (or in memory with -t), stores a\n" +
			"command, reads it back, iterates over it and deletes it, failing on any mismatch.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			c := a.config
			c.CreateIfMissing = true
			if !c.InMemory && c.Engine == config.EnginePebble {
				c.Path = filepath.Join(os.TempDir(), "kvorm-demo-"+ksuid.New().String())
				if !keep {
					defer os.RemoveAll(c.Path)
				}
			}

			engine, err := c.OpenEngine(a.logger)
			if err != nil {
				return fmt.Errorf("failed to open storage engine: %w", err)
			}

			store := command.NewStore(engine, storage.WithLogger(a.logger))
			defer func() {
				if closeErr := store.Close(cmd.Context()); closeErr != nil && err == nil {
					err = fmt.Errorf("failed to close store: %w", closeErr)
				}
			}()

			p := newPrinter(cmd.OutOrStdout())
			if !c.InMemory && c.Engine == config.EnginePebble {
				p.println(p.faint("database:"), c.Path)
			}

			return runDemo(cmd, store, p)
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the scratch database directory after the demo")

	return cmd
}

func runDemo(cmd *cobra.Command, store *command.Store, p *printer) error {
	ctx := cmd.Context()

	want := command.Command{
		Executable: 1,
		Args:       []string{"arg1", "arg2", "arg3"},
		CurrentDir: command.Dir(`\dir`),
	}

	key, err := want.Key()
	if err != nil {
		return err
	}

	if err := store.Put(ctx, want); err != nil {
		return fmt.Errorf("failed to put command: %w", err)
	}
	p.println(p.bold("put"), p.faint(key.String()), want.String())

	got, ok, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get command: %w", err)
	}
	if !ok {
		return errors.New("stored command was not found")
	}
	if !got.Equal(want) {
		return fmt.Errorf("got command %s, want %s", got, want)
	}
	p.println(p.bold("get"), got.String())

	it, err := store.Iter(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to iterate commands: %w", err)
	}
	if !it.Next() {
		err := it.Err()
		it.Close()
		if err != nil {
			return fmt.Errorf("failed to iterate commands: %w", err)
		}
		return errors.New("iteration yielded no entries")
	}
	k, v, err := storage.Decode(store.KeyCodec(), store.ValueCodec(), it.Key(), it.Value())
	it.Close()
	if err != nil {
		return err
	}
	if !k.Equal(want.LogicalKey()) || !v.Equal(want) {
		return fmt.Errorf("iteration yielded %s, want %s", v, want)
	}
	p.println(p.bold("iter"), v.String())

	if err := store.Delete(ctx, key, nil); err != nil {
		return fmt.Errorf("failed to delete command: %w", err)
	}

	_, ok, err = store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get command: %w", err)
	}
	if ok {
		return errors.New("deleted command is still stored")
	}
	p.println(p.bold("delete"), p.faint("ok"))

	return nil
}
