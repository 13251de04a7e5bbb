package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"playout/game"
)

// ErrOutOfTurn reports a state sent while the engine still owed the
// caller a state: the protocol is exactly one Send per state received.
var ErrOutOfTurn = errors.New("state sent out of turn")

// Match is an in-progress interactive game. The engine yields the
// states it produces through Next and takes the opponent's replies
// through Send, keeping a simulation task training on whichever state
// is live between exchanges.
type Match[S comparable] struct {
	out    chan S
	in     chan S
	done   chan struct{}
	err    error // written by the coordinator before done closes
	cancel context.CancelFunc

	mu        sync.Mutex
	awaiting  bool  // the caller owes us exactly one Send
	violation error // set by an out-of-turn Send, read at teardown
}

// Play starts an interactive game from the given state, or from the
// rules' initial state when none is supplied. The first Next yields
// that starting state.
func (e *Engine[S]) Play(ctx context.Context, initial ...S) *Match[S] {
	state := e.rules.InitialState()
	if len(initial) > 0 {
		state = initial[0]
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &Match[S]{
		out:    make(chan S, 1),
		in:     make(chan S),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go e.coordinate(ctx, m, state)
	return m
}

// coordinate drives the turn exchange: yield the current state, receive
// the opponent's reply, end on a terminal reply, otherwise answer with
// the engine's move. Every exchange resets the task's idle deadline; a
// task that idled out is restarted on the fresh root.
func (e *Engine[S]) coordinate(ctx context.Context, m *Match[S], state S) {
	t := e.startTask(ctx, -1, e.idleTimeout, state)

	finish := func(err error) {
		stopErr := t.stop()
		m.mu.Lock()
		violation := m.violation
		m.mu.Unlock()
		err = matchError(err, stopErr, violation)
		if err == nil {
			err = ctx.Err()
		}
		m.err = err
		close(m.done)
	}

	for {
		m.mu.Lock()
		m.awaiting = true
		m.mu.Unlock()
		select {
		case m.out <- state:
		case <-ctx.Done():
			finish(nil)
			return
		}

		var received S
		select {
		case received = <-m.in:
		case <-ctx.Done():
			finish(nil)
			return
		}

		t.extend(e.idleTimeout)
		if t.stopped() {
			if t.err != nil {
				finish(t.err)
				return
			}
			log.Debug().Msg("restarting idle simulation task for a new root")
			t = e.startTask(ctx, -1, e.idleTimeout, received)
		} else {
			t.enqueue(received)
		}

		if _, err := e.rules.Successors(received); err != nil {
			finish(err)
			return
		}

		next, err := e.Move(ctx, received)
		if err != nil {
			finish(err)
			return
		}
		state = next
		t.enqueue(next)
		t.extend(e.idleTimeout)
	}
}

// Next blocks for the engine's next state. When the game is over it
// returns the game.Outcome as the error; a failed simulation task
// surfaces its error here instead.
func (m *Match[S]) Next(ctx context.Context) (S, error) {
	var zero S
	select {
	case s := <-m.out:
		return s, nil
	default:
	}
	select {
	case s := <-m.out:
		return s, nil
	case <-m.done:
		return zero, m.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// matchError settles the error a match reports at teardown. A protocol
// violation outranks the cancellation it caused, and a failure stored
// in the simulation task outranks the cancellation that collected it.
// A real game error, the Outcome included, keeps its place.
func matchError(err, stopErr, violation error) error {
	switch {
	case violation != nil && (err == nil || cancellation(err)):
		return violation
	case stopErr != nil && (err == nil || cancellation(err)):
		return stopErr
	}
	return err
}

func cancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Send supplies the opponent's reply to the last yielded state. Sending
// twice without an intervening yield is a protocol violation: it aborts
// the match, and every call after it fails with ErrOutOfTurn.
func (m *Match[S]) Send(ctx context.Context, state S) error {
	m.mu.Lock()
	if !m.awaiting {
		if m.violation == nil {
			m.violation = ErrOutOfTurn
		}
		m.mu.Unlock()
		m.cancel()
		return ErrOutOfTurn
	}
	m.awaiting = false
	m.mu.Unlock()

	select {
	case m.in <- state:
		return nil
	case <-m.done:
		return m.err
	case <-ctx.Done():
		// Nothing was delivered, so the turn is still the caller's.
		m.mu.Lock()
		m.awaiting = true
		m.mu.Unlock()
		return ctx.Err()
	}
}

// Close abandons the game: the simulation task is cancelled and
// awaited, and any failure stored in it is reported. Normal game
// endings and cancellation are not failures.
func (m *Match[S]) Close() error {
	m.cancel()
	<-m.done
	if _, ok := game.AsOutcome(m.err); ok {
		return nil
	}
	if cancellation(m.err) {
		return nil
	}
	return m.err
}
