package main

import (
	"fmt"

	"github.com/picatz/kvorm/command"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func newFillCommand(a *app) *cobra.Command {
	var (
		key   keyFlags
		count int
		args  int
		limit float64
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Store generated command records",
		Long: "Stores generated command records with random, unique arguments. Writes can be\n" +
			"rate limited to observe the store under a steady load.",
		Example: `  kvorm fill -e 2 --count 1000 --rate 200`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 || args < 0 {
				return fmt.Errorf("count and args must not be negative")
			}

			r := rate.Limit(limit)
			if limit <= 0 {
				r = rate.Inf
			}
			limiter := rate.NewLimiter(r, 1)

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			opts := a.config.WriteOptions()

			for i := range count {
				if err := limiter.Wait(cmd.Context()); err != nil {
					return fmt.Errorf("failed to wait for rate limiter: %w", err)
				}

				c := command.Command{Executable: key.executable}
				for range args {
					c.Args = append(c.Args, ksuid.New().String())
				}

				if err := store.PutWithOptions(cmd.Context(), c, opts); err != nil {
					return fmt.Errorf("failed to put command %d: %w", i, err)
				}
			}

			if err := store.Flush(cmd.Context()); err != nil {
				return fmt.Errorf("failed to flush store: %w", err)
			}

			p := newPrinter(cmd.OutOrStdout())
			p.println(p.bold("stored"), p.number(fmt.Sprint(count)), p.faint("commands"))
			return nil
		},
	}

	key.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "c", 10, "Number of commands to store")
	cmd.Flags().IntVar(&args, "args", 3, "Number of generated arguments per command")
	cmd.Flags().Float64Var(&limit, "rate", 0, "Maximum writes per second (0 for unlimited)")

	return cmd
}
