package testutil

import (
	"context"
	"sync"

	"flipbutton/internal/button"
)

type pickOutcome struct {
	file *button.File
	err  error
}

// StubPicker answers Pick calls from a queue. With an empty queue Pick blocks
// until Queue is called or its context is cancelled.
type StubPicker struct {
	outcomes chan pickOutcome

	mu        sync.Mutex
	calls     int
	cancelled int
}

// NewStubPicker creates a picker with an empty queue.
func NewStubPicker() *StubPicker {
	return &StubPicker{outcomes: make(chan pickOutcome, 16)}
}

// Queue adds the outcome of a future Pick: a file, an error, or both nil.
func (p *StubPicker) Queue(f *button.File, err error) {
	p.outcomes <- pickOutcome{file: f, err: err}
}

func (p *StubPicker) Pick(ctx context.Context) (*button.File, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	select {
	case o := <-p.outcomes:
		return o.file, o.err
	case <-ctx.Done():
		p.mu.Lock()
		p.cancelled++
		p.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Calls returns how many times Pick was called.
func (p *StubPicker) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Cancelled returns how many Pick calls ended because their context was cancelled.
func (p *StubPicker) Cancelled() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}

var _ button.Picker = (*StubPicker)(nil)
