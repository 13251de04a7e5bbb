package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"playout/game"
)

// errTerminalRoot stops a task whose root has no moves to learn from.
var errTerminalRoot = errors.New("root state is terminal")

// errDeadline abandons the playout in flight once the deadline passes.
var errDeadline = errors.New("simulation deadline reached")

// task runs weighted random playouts in the background, feeding the
// statistics table until its budget, deadline or context runs out. A
// task outlives single moves: new roots arrive on its queue as the real
// game advances.
type task[S comparable] struct {
	rules   game.Rules[S]
	table   *Table[S]
	metrics *collector
	rng     *rand.Rand

	roots  chan S
	budget int          // playouts remaining; < 0 means unlimited
	until  atomic.Int64 // deadline in unix nanoseconds; 0 means none

	cancel context.CancelFunc
	done   chan struct{}
	err    error // stored failure, written before done closes; never a cancellation
}

// startTask launches a simulation task rooted at root. A budget < 0
// means unlimited playouts; a deadline of 0 means none.
func (e *Engine[S]) startTask(ctx context.Context, budget int, deadline time.Duration, root S) *task[S] {
	ctx, cancel := context.WithCancel(ctx)
	t := &task[S]{
		rules:   e.rules,
		table:   e.table,
		metrics: e.metrics,
		rng:     rand.New(rand.NewSource(e.nextSeed())),
		roots:   make(chan S, rootQueueSize),
		budget:  budget,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if deadline > 0 {
		t.until.Store(time.Now().Add(deadline).UnixNano())
	}
	t.roots <- root
	go t.run(ctx)
	return t
}

func (t *task[S]) run(ctx context.Context) {
	defer close(t.done)

	root := <-t.roots
	for {
		if t.budget == 0 {
			log.Debug().Msg("simulation task finished its budget")
			return
		}
		if t.budget > 0 {
			t.budget--
		}

		if err := t.playout(ctx, root); err != nil {
			switch {
			case errors.Is(err, errTerminalRoot):
				log.Debug().Msg("simulation task stopped on a terminal root")
			case errors.Is(err, errDeadline):
				log.Debug().Msg("simulation task reached its deadline")
			case ctx.Err() != nil:
				// Cancelled; nothing to report.
			default:
				t.err = err
				log.Debug().Err(err).Msg("simulation task failed")
			}
			return
		}

		if t.expired() {
			log.Debug().Msg("simulation task reached its deadline")
			return
		}
		// Switch to a newer root if one is waiting, otherwise keep
		// sampling the same one.
		select {
		case root = <-t.roots:
		default:
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// playout simulates one game from root to an Outcome and backpropagates
// the result along the simulated path. A root that is itself terminal
// returns errTerminalRoot with no statistics update.
func (t *task[S]) playout(ctx context.Context, root S) error {
	path := []S{root}
	var out game.Outcome
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.expired() {
			return errDeadline
		}
		current := path[len(path)-1]
		children, err := t.rules.Successors(current)
		if err != nil {
			var o game.Outcome
			if errors.As(err, &o) {
				out = o
				break
			}
			return err
		}
		t.table.Expand(current, children)
		next, err := t.pick(current)
		if err != nil {
			return err
		}
		path = append(path, next)
	}

	if len(path) == 1 {
		return errTerminalRoot
	}

	// Walk back from the terminal end. out is seen by the player to
	// move at path[i]; the mover at path[i-1] sees it flipped, and the
	// perspective keeps flipping every ply. Once started, the walk
	// always completes: cancellation is only honored between playouts
	// and plies, never inside a backpropagation.
	result := out
	for i := len(path) - 1; i >= 1; i-- {
		t.table.record(path[i-1], path[i], result.Flip())
		result = result.Flip()
	}
	t.metrics.addPlayout(len(path) - 1)
	t.table.broadcast()
	return nil
}

// pick chooses the next child of parent: uniformly among never-sampled
// children while any remain, otherwise weighted by the smoothed score.
func (t *task[S]) pick(parent S) (S, error) {
	var zero S
	edges, ok := t.table.Edges(parent)
	if !ok || len(edges) == 0 {
		return zero, fmt.Errorf("state has successors entry with no children and no outcome")
	}

	var fresh []int
	for i, edge := range edges {
		if edge.Total() == 0 {
			fresh = append(fresh, i)
		}
	}
	if len(fresh) > 0 {
		return edges[fresh[t.rng.Intn(len(fresh))]].Child, nil
	}

	total := 0.0
	for _, edge := range edges {
		total += edge.Score()
	}
	x := t.rng.Float64() * total
	for _, edge := range edges {
		x -= edge.Score()
		if x <= 0 {
			return edge.Child, nil
		}
	}
	return edges[len(edges)-1].Child, nil
}

// enqueue hands the task a new root to sample from. A stopped task
// ignores it.
func (t *task[S]) enqueue(s S) {
	select {
	case t.roots <- s:
	case <-t.done:
	}
}

// extend pushes the task's deadline to now+idle. Used as a rolling
// inactivity timeout during interactive play.
func (t *task[S]) extend(idle time.Duration) {
	if idle > 0 {
		t.until.Store(time.Now().Add(idle).UnixNano())
	}
}

func (t *task[S]) expired() bool {
	d := t.until.Load()
	return d != 0 && time.Now().UnixNano() > d
}

func (t *task[S]) stopped() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// stop cancels the task, waits for it to unwind and returns any stored
// failure. Stopping an already finished task just collects its result.
func (t *task[S]) stop() error {
	t.cancel()
	<-t.done
	return t.err
}
