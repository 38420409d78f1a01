package main

import (
	"github.com/picatz/kvorm/command"
	"github.com/spf13/cobra"
)

// keyFlags are the flags that, with the positional arguments, identify a
// command record.
type keyFlags struct {
	executable uint8
}

func (f *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint8VarP(&f.executable, "exec", "e", 0, "Executable discriminant of the command (0-255)")
}

func (f *keyFlags) command(args []string) command.Command {
	c := command.Command{Executable: f.executable}
	if len(args) > 0 {
		c.Args = args
	}
	return c
}
