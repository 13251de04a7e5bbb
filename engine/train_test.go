package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"playout/game"
)

func TestTrainValidation(t *testing.T) {
	e := New[int](fanGame{outs: []game.Outcome{game.Won}})

	t.Run("zero iterations are rejected", func(t *testing.T) {
		err := e.Train(context.Background(), WithIterations[int](0))
		require.ErrorContains(t, err, "iterations must be positive")
	})

	t.Run("negative iterations are rejected", func(t *testing.T) {
		err := e.Train(context.Background(), WithIterations[int](-5))
		require.ErrorContains(t, err, "iterations must be positive")
	})

	t.Run("negative deadline is rejected", func(t *testing.T) {
		err := e.Train(context.Background(), WithDeadline[int](-time.Second))
		require.ErrorContains(t, err, "deadline must not be negative")
	})

	require.Equal(t, 0, e.Table().Len(), "Validation failures must not start any training")
}

func TestTrainIterationBudget(t *testing.T) {
	g := fanGame{outs: []game.Outcome{game.Won, game.Lost, game.Tied}}
	e := New[int](g, WithSeed[int](2))

	err := e.Train(context.Background(), WithIterations[int](12))

	require.NoError(t, err)
	edges, ok := e.Table().Edges(0)
	require.True(t, ok)
	require.Equal(t, 12, sum(edges), "Training should run exactly the iteration budget")
	require.Equal(t, int64(12), e.Metrics().Playouts)
}

func TestTrainDeadline(t *testing.T) {
	// An effectively endless game: only the deadline can stop this.
	e := New[int](chainGame{length: 1 << 30, out: game.Won})

	start := time.Now()
	err := e.Train(context.Background(), WithDeadline[int](50*time.Millisecond))

	require.NoError(t, err)
	require.Less(t, time.Since(start), 30*time.Second, "The deadline should cut training short")
}

func TestTrainFromRoot(t *testing.T) {
	e := New[int](chainGame{length: 10, out: game.Tied}, WithSeed[int](4))

	err := e.Train(context.Background(), WithIterations[int](2), WithRoot[int](7))

	require.NoError(t, err)
	require.True(t, e.Table().Expanded(7), "Training should start from the supplied root")
	require.False(t, e.Table().Expanded(0), "The initial state should stay untouched")
}
