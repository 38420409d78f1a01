package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCommand(a *app) *cobra.Command {
	var key keyFlags

	cmd := &cobra.Command{
		Use:     "get [flags] [--] [args...]",
		Short:   "Look up a command record by its executable and arguments",
		Example: `  kvorm get -e 1 -- arg1 arg2 arg3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := key.command(args).Key()
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			c, ok, err := store.Get(cmd.Context(), k)
			if err != nil {
				return fmt.Errorf("failed to get command: %w", err)
			}
			if !ok {
				return fmt.Errorf("command not found: %s", k)
			}

			p := newPrinter(cmd.OutOrStdout())
			p.println(p.faint(k.String()), c.String())
			return nil
		},
	}

	key.register(cmd)

	return cmd
}
