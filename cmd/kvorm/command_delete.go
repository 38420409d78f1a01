package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCommand(a *app) *cobra.Command {
	var key keyFlags

	cmd := &cobra.Command{
		Use:     "delete [flags] [--] [args...]",
		Aliases: []string{"rm"},
		Short:   "Delete a command record; deleting a missing record is not an error",
		Example: `  kvorm delete -e 1 -- arg1 arg2 arg3`,
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

			if err := store.Delete(cmd.Context(), k, a.config.WriteOptions()); err != nil {
				return fmt.Errorf("failed to delete command: %w", err)
			}

			p := newPrinter(cmd.OutOrStdout())
			p.println(p.bold("deleted"), p.faint(k.String()))
			return nil
		},
	}

	key.register(cmd)

	return cmd
}
