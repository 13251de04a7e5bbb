// Package cmd wires the engine, the terminal loop and the web front
// end into a command tree.
package cmd

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"playout/engine"
	"playout/tictactoe"
)

type rootFlags struct {
	samples int
	idle    time.Duration
	debug   bool
}

func Root() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:  "playout",
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	root.PersistentFlags().IntVar(&flags.samples, "samples", engine.DefaultSampleFloor,
		"samples required per candidate move before choosing")
	root.PersistentFlags().DurationVar(&flags.idle, "idle", engine.DefaultIdleTimeout,
		"how long background training outlives the last exchange")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false,
		"show debug logging")

	root.AddCommand(Play(flags))
	root.AddCommand(Train(flags))
	root.AddCommand(Serve(flags))

	return root
}

// newEngine builds the tic-tac-toe engine every subcommand plays with.
func newEngine(flags *rootFlags) *engine.Engine[tictactoe.Board] {
	return engine.New[tictactoe.Board](tictactoe.Game{},
		engine.WithSampleFloor[tictactoe.Board](flags.samples),
		engine.WithIdleTimeout[tictactoe.Board](flags.idle),
	)
}
