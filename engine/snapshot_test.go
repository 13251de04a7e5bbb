package engine

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"playout/game"
)

func TestTableSnapshotRoundTrip(t *testing.T) {
	g := fanGame{outs: []game.Outcome{game.Won, game.Lost, game.Tied}}
	e := New[int](g, WithSeed[int](6))
	require.NoError(t, e.Train(context.Background(), WithIterations[int](30)))

	var buf bytes.Buffer
	require.NoError(t, e.Table().Save(&buf))

	restored := NewTable[int]()
	require.NoError(t, restored.Load(&buf))

	want, _ := e.Table().Edges(0)
	got, ok := restored.Edges(0)
	require.True(t, ok, "The restored table should know the trained root")
	require.Equal(t, want, got, "Counters and child order should survive the round trip")
}

func TestTableLoadKeepsLiveEntries(t *testing.T) {
	saved := NewTable[int]()
	saved.Expand(0, []int{1, 2})
	saved.record(0, 1, game.Won)

	var buf bytes.Buffer
	require.NoError(t, saved.Save(&buf))

	live := NewTable[int]()
	live.Expand(0, []int{1, 2})
	live.record(0, 2, game.Lost)
	require.NoError(t, live.Load(&buf))

	edges, _ := live.Edges(0)
	require.Equal(t, Stats{}, edges[0].Stats, "Loading must not overwrite an expanded entry")
	require.Equal(t, Stats{Losses: 1}, edges[1].Stats)
}
