package ligatag

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSuperseded is the cancellation cause of a batch replaced by a newer Run.
var ErrSuperseded = errors.New("superseded by a newer batch")

type activeBatch struct {
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// Runner owns at most one running batch. Starting a batch cancels the previous one and waits for
// it to stop, so two batches never run at the same time and a superseded batch's output is never
// returned.
//
// The zero value is ready to use.
type Runner struct {
	mu     sync.Mutex
	gen    uint64
	active *activeBatch
	state  BatchState
}

// Run cancels any in-flight batch, waits for it to stop, then processes job.
//
// If yet another Run starts while this one is still waiting, this one gives up without doing any
// work and returns an error satisfying IsCancelled and errors.Is(err, ErrSuperseded).
func (r *Runner) Run(ctx context.Context, job Job) ([]string, error) {
	if err := job.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("Runner.Run: %w", err)
	}

	r.mu.Lock()
	r.gen++
	gen := r.gen
	for r.active != nil {
		prev := r.active
		prev.cancel(ErrSuperseded)
		r.mu.Unlock()
		<-prev.done
		r.mu.Lock()
		if r.gen != gen {
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ErrSuperseded)
		}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	a := &activeBatch{cancel: cancel, done: make(chan struct{})}
	r.active = a
	r.state = BatchRunning
	r.mu.Unlock()

	b := newBatch(job)
	out, err := b.run(ctx)

	r.mu.Lock()
	r.active = nil
	r.state = b.state
	close(a.done)
	r.mu.Unlock()

	return out, err
}

// Cancel signals the in-flight batch, if any, without waiting for it.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.cancel(context.Canceled)
	}
}

// State returns the state of the most recent batch.
func (r *Runner) State() BatchState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
