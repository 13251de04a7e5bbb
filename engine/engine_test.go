package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"playout/game"
)

// Mock games used across the engine tests.
//
// chainGame is a forced line: state n has the single successor n+1 and
// the game ends at state length with a fixed outcome for the player to
// move there. fanGame is one decision: the root's children are all
// terminal, each with its own outcome. brokenGame is a rules provider
// that always fails.

type chainGame struct {
	length int
	out    game.Outcome
}

func (g chainGame) InitialState() int { return 0 }

func (g chainGame) Successors(s int) ([]int, error) {
	if s >= g.length {
		return nil, g.out
	}
	return []int{s + 1}, nil
}

type fanGame struct {
	outs []game.Outcome // outcome at child i+1, for the player to move there
}

func (g fanGame) InitialState() int { return 0 }

func (g fanGame) Successors(s int) ([]int, error) {
	if s == 0 {
		children := make([]int, len(g.outs))
		for i := range g.outs {
			children[i] = i + 1
		}
		return children, nil
	}
	return nil, g.outs[s-1]
}

type brokenGame struct {
	err error
}

func (g brokenGame) InitialState() int { return 0 }

func (g brokenGame) Successors(s int) ([]int, error) {
	return nil, g.err
}

func TestMoveTerminalState(t *testing.T) {
	t.Run("terminal state signals its outcome without sampling", func(t *testing.T) {
		e := New[int](chainGame{length: 0, out: game.Won})

		_, err := e.Move(context.Background(), 0)

		outcome, ok := game.AsOutcome(err)
		require.True(t, ok, "Move on a terminal state should return the outcome")
		require.Equal(t, game.Won, outcome, "Outcome should pass through unchanged")
		require.Equal(t, 0, e.Table().Len(), "No sampling should happen for a terminal state")
	})

	t.Run("rules failure aborts the move", func(t *testing.T) {
		boom := errors.New("boom")
		e := New[int](brokenGame{err: boom})

		_, err := e.Move(context.Background(), 0)

		require.ErrorIs(t, err, boom, "Move should propagate the rules failure")
	})
}

func TestMoveSampleFloor(t *testing.T) {
	// Child 1 always wins for the mover, child 2 always loses.
	g := fanGame{outs: []game.Outcome{game.Lost, game.Won}}
	e := New[int](g, WithSampleFloor[int](25), WithSeed[int](1))

	got, err := e.Move(context.Background(), 0)

	require.NoError(t, err)
	require.Equal(t, 1, got, "Move should pick the child that always wins for the mover")

	edges, ok := e.Table().Edges(0)
	require.True(t, ok, "The root should be expanded")
	for _, edge := range edges {
		require.GreaterOrEqual(t, edge.Total(), 25,
			"Move should not decide before every child meets the sample floor")
	}
}

// slowGame throttles a fanGame so a deadline can elapse mid-sampling.
type slowGame struct {
	fanGame
	delay time.Duration
}

func (g slowGame) Successors(s int) ([]int, error) {
	time.Sleep(g.delay)
	return g.fanGame.Successors(s)
}

func TestMoveOutlivesIdleTimeout(t *testing.T) {
	// The idle timeout governs interactive play only. Move keeps its
	// task alive until the floor is met, however short the timeout.
	g := slowGame{
		fanGame: fanGame{outs: []game.Outcome{game.Lost, game.Won}},
		delay:   200 * time.Microsecond,
	}
	e := New[int](g,
		WithSampleFloor[int](50),
		WithIdleTimeout[int](time.Millisecond),
		WithSeed[int](3))

	got, err := e.Move(context.Background(), 0)

	require.NoError(t, err)
	require.Equal(t, 1, got)

	edges, ok := e.Table().Edges(0)
	require.True(t, ok)
	for _, edge := range edges {
		require.GreaterOrEqual(t, edge.Total(), 50,
			"An expired idle timeout must not cut the sampling short")
	}
}

func TestBestEdge(t *testing.T) {
	t.Run("higher Laplace score wins", func(t *testing.T) {
		// (99,0,0) scores 1.99, (0,0,1) scores 0.5.
		edges := []Edge[int]{
			{Child: 1, Stats: Stats{Wins: 99}},
			{Child: 2, Stats: Stats{Losses: 1}},
		}
		require.Equal(t, 0, bestEdge(edges))

		// Same stats, reversed order.
		edges = []Edge[int]{
			{Child: 2, Stats: Stats{Losses: 1}},
			{Child: 1, Stats: Stats{Wins: 99}},
		}
		require.Equal(t, 1, bestEdge(edges))
	})

	t.Run("score ties keep discovery order", func(t *testing.T) {
		edges := []Edge[int]{
			{Child: 1, Stats: Stats{Wins: 5, Losses: 5}},
			{Child: 2, Stats: Stats{Wins: 5, Losses: 5}},
			{Child: 3, Stats: Stats{Wins: 5, Losses: 5}},
		}
		require.Equal(t, 0, bestEdge(edges), "Equal scores should resolve to the first child")
	})
}

func TestScore(t *testing.T) {
	require.Equal(t, 1.0, Stats{}.Score(), "Unsampled children score the smoothing prior")
	require.Equal(t, 1.99, Stats{Wins: 99}.Score())
	require.Equal(t, 0.5, Stats{Losses: 1}.Score())
	require.Equal(t, 1.0, Stats{Ties: 9}.Score(), "All ties should score an even 1.0")
}
