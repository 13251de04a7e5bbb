package engine

import (
	"sync"

	"playout/game"
)

// Stats counts the simulated continuations through one child, from the
// perspective of the player choosing it.
type Stats struct {
	Wins   int
	Ties   int
	Losses int
}

func (s Stats) Total() int {
	return s.Wins + s.Ties + s.Losses
}

// Score is the Laplace-smoothed win-rate estimate used both to weight
// playout selection and to pick the final move.
func (s Stats) Score() float64 {
	return float64(2*s.Wins+s.Ties+1) / float64(s.Total()+1)
}

// Edge pairs a child state with its counters.
type Edge[S comparable] struct {
	Child S
	Stats
}

type entry[S comparable] struct {
	edges []Edge[S]
	index map[S]int
}

// Table maps every expanded parent state to its children and their
// counters. Children keep the order the rules discovered them in, which
// is the tie-break order for move selection. The table only grows.
type Table[S comparable] struct {
	mu      sync.RWMutex
	entries map[S]*entry[S]
	changed chan struct{}
}

func NewTable[S comparable]() *Table[S] {
	return &Table[S]{
		entries: make(map[S]*entry[S]),
		changed: make(chan struct{}),
	}
}

// Expand records the full child list for parent. A parent is expanded at
// most once; later calls are no-ops, so an entry is never re-expanded or
// partially filled.
func (t *Table[S]) Expand(parent S, children []S) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[parent]; ok {
		return
	}
	e := &entry[S]{
		edges: make([]Edge[S], len(children)),
		index: make(map[S]int, len(children)),
	}
	for i, child := range children {
		e.edges[i] = Edge[S]{Child: child}
		e.index[child] = i
	}
	t.entries[parent] = e
}

// Expanded reports whether parent has been visited by a simulation task.
func (t *Table[S]) Expanded(parent S) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.entries[parent]
	return ok
}

// Edges returns a copy of parent's edges in discovery order.
func (t *Table[S]) Edges(parent S) ([]Edge[S], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[parent]
	if !ok {
		return nil, false
	}
	edges := make([]Edge[S], len(e.edges))
	copy(edges, e.edges)
	return edges, true
}

// Len returns the number of expanded parents.
func (t *Table[S]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.entries)
}

// record counts one simulated result on the edge from parent to child.
// result is from the perspective of the player moving at parent.
func (t *Table[S]) record(parent, child S, result game.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[parent]
	if !ok {
		return
	}
	i, ok := e.index[child]
	if !ok {
		return
	}
	switch result {
	case game.Won:
		e.edges[i].Wins++
	case game.Tied:
		e.edges[i].Ties++
	case game.Lost:
		e.edges[i].Losses++
	}
}

// broadcast wakes everyone blocked in changes. Called after each full
// backpropagation so selectors re-check their sampling thresholds.
func (t *Table[S]) broadcast() {
	t.mu.Lock()
	close(t.changed)
	t.changed = make(chan struct{})
	t.mu.Unlock()
}

// changes returns a channel closed on the next table update. Grab it
// before inspecting the table to avoid missing an update in between.
func (t *Table[S]) changes() <-chan struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.changed
}
