// Package tui draws the flip button in a terminal with bubbletea and adapts
// it to the coordinator's Renderer and Picker interfaces.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"flipbutton/internal/button"
)

// Dispatcher queues events for the coordinator.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev button.Event) error
}

// newDispatch adapts d for the model. A failed dispatch only happens while
// shutting down, so it is logged and dropped.
func newDispatch(ctx context.Context, d Dispatcher, logger button.Logger) dispatchFunc {
	return func(ev button.Event) {
		if err := d.Dispatch(ctx, ev); err != nil {
			logger.Debug("interaction dropped", "event", fmt.Sprintf("%T", ev), "error", err)
		}
	}
}

// Run starts the coordinator and the terminal program and blocks until the
// user quits or ctx is cancelled. r and p must be the renderer and picker the
// coordinator was built with.
func Run(ctx context.Context, c *button.Coordinator, r *Renderer, p *Picker, refs Lookup, logger button.Logger, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatch := newDispatch(ctx, c, logger)
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, opts...)
	prog := tea.NewProgram(newModel(dispatch, r, refs), opts...)
	r.attach(prog)
	p.attach(prog)

	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	_, err := prog.Run()
	cancel()
	runErr := <-errc

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return runErr
}
