// Package engine estimates move quality by repeated weighted random
// playouts. It keeps a statistics table of (parent, child) win/tie/loss
// counters, trains it with a background simulation task and picks moves
// once every option has been sampled enough.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"playout/game"
)

const (
	// DefaultSampleFloor is how many samples every child of a state
	// needs before a move is chosen from it.
	DefaultSampleFloor = 100

	// DefaultIdleTimeout is how long a simulation task keeps running
	// after the last exchange of an interactive game.
	DefaultIdleTimeout = 10 * time.Second

	defaultIterations = 1_000_000
	rootQueueSize     = 16
)

// Engine owns one statistics table for one game. Engines for different
// games do not share tables.
type Engine[S comparable] struct {
	rules       game.Rules[S]
	table       *Table[S]
	metrics     *collector
	sampleFloor int
	idleTimeout time.Duration
	seed        atomic.Uint64
}

type Option[S comparable] func(*Engine[S])

// WithSampleFloor overrides the per-child sampling budget required
// before a move is picked.
func WithSampleFloor[S comparable](n int) Option[S] {
	return func(e *Engine[S]) {
		if n > 0 {
			e.sampleFloor = n
		}
	}
}

// WithIdleTimeout overrides the rolling inactivity deadline of the
// simulation task during interactive play.
func WithIdleTimeout[S comparable](d time.Duration) Option[S] {
	return func(e *Engine[S]) {
		if d > 0 {
			e.idleTimeout = d
		}
	}
}

// WithSeed fixes the random source so playout selection is
// reproducible.
func WithSeed[S comparable](seed uint64) Option[S] {
	return func(e *Engine[S]) {
		e.seed.Store(seed)
	}
}

func New[S comparable](rules game.Rules[S], options ...Option[S]) *Engine[S] {
	e := &Engine[S]{
		rules:       rules,
		table:       NewTable[S](),
		metrics:     &collector{started: time.Now()},
		sampleFloor: DefaultSampleFloor,
		idleTimeout: DefaultIdleTimeout,
	}
	e.seed.Store(uint64(time.Now().UnixNano()))
	for _, option := range options {
		option(e)
	}
	return e
}

// InitialState returns the position the underlying game starts from.
func (e *Engine[S]) InitialState() S {
	return e.rules.InitialState()
}

// Table exposes the engine's statistics table, mainly for inspection
// and snapshots.
func (e *Engine[S]) Table() *Table[S] {
	return e.table
}

// Metrics returns a snapshot of the training counters.
func (e *Engine[S]) Metrics() Metrics {
	return e.metrics.snapshot()
}

func (e *Engine[S]) nextSeed() uint64 {
	return e.seed.Add(0x9e3779b97f4a7c15)
}

// Move returns the strongest known reply to state, training in the
// background until every child has at least the sample floor. A
// terminal state returns its game.Outcome as the error before any
// sampling starts.
func (e *Engine[S]) Move(ctx context.Context, state S) (S, error) {
	var zero S
	children, err := e.rules.Successors(state)
	if err != nil {
		return zero, err
	}
	if len(children) == 0 {
		return zero, fmt.Errorf("rules returned no successors and no outcome")
	}

	// No deadline on the task: the wait below ends only once the floor
	// is met, the task fails, or ctx is done, so a chosen move always
	// carries at least sampleFloor samples per child.
	t := e.startTask(ctx, -1, 0, state)
	if err := e.awaitSamples(ctx, t, state); err != nil {
		t.stop()
		return zero, err
	}
	if err := t.stop(); err != nil {
		return zero, err
	}

	edges, ok := e.table.Edges(state)
	if !ok || len(edges) == 0 {
		return zero, fmt.Errorf("simulation task stopped before sampling the state")
	}
	return edges[bestEdge(edges)].Child, nil
}

// awaitSamples blocks until state is expanded and every child has at
// least the sample floor, the task stops, or ctx is done. A task that
// stops before the floor is met ends the wait: the caller decides
// from whatever statistics exist.
func (e *Engine[S]) awaitSamples(ctx context.Context, t *task[S], state S) error {
	for {
		changed := e.table.changes()
		if edges, ok := e.table.Edges(state); ok && len(edges) > 0 && minSamples(edges) >= e.sampleFloor {
			return nil
		}
		select {
		case <-changed:
		case <-t.done:
			return t.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// bestEdge returns the index of the maximum-score edge. Score ties keep
// the earliest edge in discovery order, so the choice is deterministic
// given the table contents.
func bestEdge[S comparable](edges []Edge[S]) int {
	best := 0
	bestScore := edges[0].Score()
	for i, edge := range edges[1:] {
		if s := edge.Score(); s > bestScore {
			best, bestScore = i+1, s
		}
	}
	return best
}

func minSamples[S comparable](edges []Edge[S]) int {
	min := edges[0].Total()
	for _, edge := range edges[1:] {
		if n := edge.Total(); n < min {
			min = n
		}
	}
	return min
}
