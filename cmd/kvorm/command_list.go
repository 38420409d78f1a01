package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/picatz/kvorm/command"
	"github.com/picatz/kvorm/storage"
	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	var (
		key      keyFlags
		limit    int
		markdown bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List command records in key order",
		Example: `  kvorm list
  kvorm list -e 1 --markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts *storage.ReadOptions
			if cmd.Flags().Changed("exec") {
				opts = command.Range(key.executable)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			it, err := store.Iter(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to list commands: %w", err)
			}
			defer it.Close()

			p := newPrinter(cmd.OutOrStdout())

			var (
				table strings.Builder
				n     int
			)

			table.WriteString("| Key | Executable | Args | Directory |\n|---|---|---|---|\n")

			for k, v := range it.All() {
				if limit > 0 && n >= limit {
					break
				}

				_, c, err := storage.Decode(store.KeyCodec(), store.ValueCodec(), k, v)
				if err != nil {
					p.println(p.warning("skipping entry:"), err.Error())
					continue
				}
				n++

				if markdown {
					dir := ""
					if c.CurrentDir != nil {
						dir = fmt.Sprintf("`%s`", *c.CurrentDir)
					}
					fmt.Fprintf(&table, "| `%s` | %d | %s | %s |\n", k, c.Executable, markdownArgs(c.Args), dir)
					continue
				}

				p.println(p.faint(k.String()), c.String())
			}
			if err := it.Err(); err != nil {
				return fmt.Errorf("failed to list commands: %w", err)
			}

			if markdown {
				out := table.String()
				if p.styled {
					rendered, err := glamour.Render(out, "dark")
					if err != nil {
						return fmt.Errorf("failed to render markdown: %w", err)
					}
					out = rendered
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			}

			p.println(p.number(fmt.Sprint(n)), p.faint("commands"))
			return nil
		},
	}

	key.register(cmd)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of commands to list (0 for all)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the listing as a markdown table")

	return cmd
}

func markdownArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = fmt.Sprintf("`%s`", strings.ReplaceAll(arg, "|", `\|`))
	}
	return strings.Join(quoted, " ")
}
