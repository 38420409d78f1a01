package main

import (
	"fmt"

	"github.com/picatz/kvorm/command"
	"github.com/spf13/cobra"
)

func newPutCommand(a *app) *cobra.Command {
	var (
		key keyFlags
		dir string
	)

	cmd := &cobra.Command{
		Use:     "put [flags] [--] [args...]",
		Short:   "Store a command record",
		Example: `  kvorm put -e 1 --dir '\dir' -- arg1 arg2 arg3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := key.command(args)
			if cmd.Flags().Changed("dir") {
				c.CurrentDir = command.Dir(dir)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			if err := store.PutWithOptions(cmd.Context(), c, a.config.WriteOptions()); err != nil {
				return fmt.Errorf("failed to put command: %w", err)
			}

			k, err := c.Key()
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.println(p.bold("stored"), p.faint(k.String()), c.String())
			return nil
		},
	}

	key.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "Current directory to store with the command")

	return cmd
}
