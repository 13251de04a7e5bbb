package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"playout/game"
)

func TestTableExpandOnce(t *testing.T) {
	table := NewTable[int]()

	table.Expand(0, []int{1, 2, 3})
	table.record(0, 2, game.Won)
	table.Expand(0, []int{9, 8}) // must be a no-op

	edges, ok := table.Edges(0)
	require.True(t, ok)
	require.Len(t, edges, 3, "A parent is expanded exactly once")
	require.Equal(t, []int{1, 2, 3}, children(edges), "Discovery order is preserved")
	require.Equal(t, 1, edges[1].Wins, "Statistics survive a re-expansion attempt")
}

func TestTableEdgesIsACopy(t *testing.T) {
	table := NewTable[int]()
	table.Expand(0, []int{1, 2})

	edges, _ := table.Edges(0)
	edges[0].Wins = 42

	fresh, _ := table.Edges(0)
	require.Equal(t, 0, fresh[0].Wins, "Mutating a returned snapshot should not touch the table")
}

func TestTableRecord(t *testing.T) {
	table := NewTable[int]()
	table.Expand(0, []int{1, 2})

	table.record(0, 1, game.Won)
	table.record(0, 1, game.Won)
	table.record(0, 1, game.Tied)
	table.record(0, 2, game.Lost)
	table.record(0, 7, game.Won) // unknown child: ignored
	table.record(9, 1, game.Won) // unexpanded parent: ignored

	edges, _ := table.Edges(0)
	require.Equal(t, Stats{Wins: 2, Ties: 1}, edges[0].Stats)
	require.Equal(t, Stats{Losses: 1}, edges[1].Stats)
	require.Equal(t, 1, table.Len())
}

func TestTableChanges(t *testing.T) {
	table := NewTable[int]()
	table.Expand(0, []int{1})

	changed := table.changes()
	select {
	case <-changed:
		t.Fatal("changes channel should be open before a broadcast")
	default:
	}

	table.broadcast()
	select {
	case <-changed:
	default:
		t.Fatal("a broadcast should release everyone waiting on changes")
	}
}

func children[S comparable](edges []Edge[S]) []S {
	out := make([]S, len(edges))
	for i, edge := range edges {
		out[i] = edge.Child
	}
	return out
}
