// Package game defines the contract between the Monte Carlo engine and a
// concrete two-player game. The engine never builds or mutates states
// itself; it only asks the Rules for the successors of a state and treats
// equal states as the same position.
package game

import "errors"

// Outcome reports that the game is over, from the perspective of the
// player who would move next. It doubles as an error value so that
// Rules.Successors can signal termination instead of returning children.
type Outcome int

const (
	Lost Outcome = -1
	Tied Outcome = 0
	Won  Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Tied:
		return "tied"
	case Lost:
		return "lost"
	default:
		return "unknown outcome"
	}
}

func (o Outcome) Error() string {
	return "game over: " + o.String()
}

// Flip returns the same outcome seen by the opponent. Ties are their own
// flip.
func (o Outcome) Flip() Outcome {
	return -o
}

// AsOutcome unwraps an Outcome from err, if one is there.
func AsOutcome(err error) (Outcome, bool) {
	var o Outcome
	ok := errors.As(err, &o)
	return o, ok
}

// Rules supplies the moves of a concrete game. S must be an immutable,
// comparable value; two equal states are the same position no matter how
// they were reached.
type Rules[S comparable] interface {
	// InitialState returns the position the game starts from.
	InitialState() S

	// Successors returns every state reachable in one move from state,
	// or an Outcome error when the player to move has no moves left.
	// Any other error is a rules failure and aborts whatever the engine
	// was doing with it.
	Successors(state S) ([]S, error)
}
