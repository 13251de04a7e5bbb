package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/adrg/xdg"
	"github.com/briandowns/spinner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"playout/engine"
	"playout/tictactoe"
)

func Train(flags *rootFlags) *cobra.Command {
	var (
		iterations int
		seconds    float64
		board      string
		out        string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Pre-warm the statistics table and save it to disk",
		Long: heredoc.Doc(`
			Run offline training from a given board (the empty board by
			default) and snapshot the statistics table, so later games
			start from warmed-up estimates instead of scratch.
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEngine(flags)

			options := []engine.TrainOption[tictactoe.Board]{}
			if cmd.Flag("iterations").Changed {
				options = append(options, engine.WithIterations[tictactoe.Board](iterations))
			}
			if cmd.Flag("seconds").Changed {
				options = append(options, engine.WithDeadline[tictactoe.Board](time.Duration(seconds*float64(time.Second))))
			}
			if board != "" {
				root, err := tictactoe.Parse(board)
				if err != nil {
					return err
				}
				options = append(options, engine.WithRoot[tictactoe.Board](root))
			}

			path := out
			if path == "" {
				var err error
				path, err = xdg.DataFile(filepath.Join("playout", "table.gob"))
				if err != nil {
					return fmt.Errorf("resolving snapshot path: %w", err)
				}
			}

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = " training..."
			s.Start()
			err := e.Train(cmd.Context(), options...)
			s.Stop()
			if err != nil {
				return err
			}

			metrics := e.Metrics()
			log.Info().
				Int64("playouts", metrics.Playouts).
				Int("states", e.Table().Len()).
				Msg("training finished")

			file, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating snapshot: %w", err)
			}
			defer file.Close()
			if err := e.Table().Save(file); err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("saved statistics table")
			return nil
		},
	}

	cmd.Flags().IntVar(&iterations, "iterations", 0, "playout budget (default one million)")
	cmd.Flags().Float64Var(&seconds, "seconds", 0, "wall-clock budget in seconds (default none)")
	cmd.Flags().StringVar(&board, "board", "", "board to train from, e.g. X--O-----")
	cmd.Flags().StringVar(&out, "out", "", "snapshot path (default under the user data dir)")

	return cmd
}
