package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"flipbutton/internal/button"
)

type pickReply struct {
	file *button.File
	err  error
}

// openPickerMsg asks the model to show the file picker. The model answers on
// reply exactly once.
type openPickerMsg struct {
	startDir string
	reply    chan pickReply
}

// closePickerMsg withdraws the request that owns reply.
type closePickerMsg struct {
	reply chan pickReply
}

// Picker is the button.Picker backed by the terminal file picker overlay.
type Picker struct {
	startDir string

	mu      sync.Mutex
	program *tea.Program
}

// NewPicker creates a picker that opens in startDir ("" for the working directory).
func NewPicker(startDir string) *Picker {
	if startDir == "" {
		startDir = "."
	}
	return &Picker{startDir: startDir}
}

func (p *Picker) Pick(ctx context.Context) (*button.File, error) {
	p.mu.Lock()
	prog := p.program
	p.mu.Unlock()
	if prog == nil {
		return nil, fmt.Errorf("%w: terminal is not running", button.ErrPicker)
	}

	reply := make(chan pickReply, 1)
	go prog.Send(openPickerMsg{startDir: p.startDir, reply: reply})

	select {
	case r := <-reply:
		return r.file, r.err
	case <-ctx.Done():
		go prog.Send(closePickerMsg{reply: reply})
		return nil, ctx.Err()
	}
}

func (p *Picker) attach(prog *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = prog
}

var _ button.Picker = (*Picker)(nil)
