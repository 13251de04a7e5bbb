package cmd

import (
	"bufio"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"playout/game"
	"playout/tictactoe"
)

func Play(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play tic-tac-toe against the engine in the terminal",
		Long: heredoc.Doc(`
			Play tic-tac-toe against the engine. You are X and move
			first; squares are named column-row, like A2. The engine
			keeps training on the current position while you think,
			so taking your time makes it stronger.
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEngine(flags)
			rules := tictactoe.Game{}
			input := bufio.NewScanner(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			match := e.Play(cmd.Context())
			defer match.Close()

			var placed tictactoe.Board
			first := true
			for {
				board, err := match.Next(cmd.Context())
				if err != nil {
					outcome, ok := game.AsOutcome(err)
					if !ok {
						return err
					}
					// The match ended on the player's move, so the
					// outcome is from the engine's perspective.
					printOutcome(out, outcome, false)
					return nil
				}
				if !first {
					if i := tictactoe.Diff(placed, board); i >= 0 {
						fmt.Fprintf(out, "engine move: %s\n", tictactoe.Square(i))
					}
				}
				first = false
				fmt.Fprintln(out, board.Render())

				// The player is about to move; the game may already
				// be over from their perspective.
				if _, err := rules.Successors(board); err != nil {
					outcome, ok := game.AsOutcome(err)
					if !ok {
						return err
					}
					printOutcome(out, outcome, true)
					return nil
				}

				placed, err = humanMove(out, input, board)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, placed.Render())
				if err := match.Send(cmd.Context(), placed); err != nil {
					return err
				}
			}
		},
	}
}

func humanMove(out io.Writer, input *bufio.Scanner, board tictactoe.Board) (tictactoe.Board, error) {
	for {
		fmt.Fprint(out, "move (e.g. A2): ")
		if !input.Scan() {
			return board, fmt.Errorf("input closed")
		}
		index, err := tictactoe.ParseSquare(input.Text())
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		next, err := board.Place(index, tictactoe.X)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		return next, nil
	}
}

// printOutcome reports the result. humanToMove says whose perspective
// the outcome is from.
func printOutcome(out io.Writer, outcome game.Outcome, humanToMove bool) {
	won := outcome == game.Won
	if !humanToMove {
		won = outcome == game.Lost
	}
	switch {
	case outcome == game.Tied:
		fmt.Fprintln(out, "Well... nobody won.")
	case won:
		fmt.Fprintln(out, "Congratulations! You won!")
	default:
		fmt.Fprintln(out, "Better luck next time, the engine won.")
	}
}
