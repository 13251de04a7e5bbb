package engine

import (
	"context"
	"fmt"
	"time"
)

type trainConfig[S comparable] struct {
	iterations    int
	iterationsSet bool
	deadline      time.Duration
	deadlineSet   bool
	root          *S
}

type TrainOption[S comparable] func(*trainConfig[S])

// WithIterations caps offline training at n playouts. Must be positive.
func WithIterations[S comparable](n int) TrainOption[S] {
	return func(cfg *trainConfig[S]) {
		cfg.iterations = n
		cfg.iterationsSet = true
	}
}

// WithDeadline caps offline training at d of wall-clock time. Must not
// be negative; zero means no deadline.
func WithDeadline[S comparable](d time.Duration) TrainOption[S] {
	return func(cfg *trainConfig[S]) {
		cfg.deadline = d
		cfg.deadlineSet = true
	}
}

// WithRoot trains from the given state instead of the initial state.
func WithRoot[S comparable](state S) TrainOption[S] {
	return func(cfg *trainConfig[S]) {
		cfg.root = &state
	}
}

// Train pre-warms the statistics table outside interactive play. It
// runs until the iteration budget (default one million playouts) or the
// deadline runs out, whichever comes first, and validates its arguments
// before any task starts.
func (e *Engine[S]) Train(ctx context.Context, options ...TrainOption[S]) error {
	cfg := trainConfig[S]{iterations: defaultIterations}
	for _, option := range options {
		option(&cfg)
	}
	if cfg.iterationsSet && cfg.iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", cfg.iterations)
	}
	if cfg.deadlineSet && cfg.deadline < 0 {
		return fmt.Errorf("deadline must not be negative, got %s", cfg.deadline)
	}

	root := e.rules.InitialState()
	if cfg.root != nil {
		root = *cfg.root
	}

	t := e.startTask(ctx, cfg.iterations, cfg.deadline, root)
	<-t.done
	return t.err
}
