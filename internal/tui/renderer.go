package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"flipbutton/internal/button"
)

// redrawMsg tells the program that the button view changed.
type redrawMsg struct{}

// Renderer is the button.Renderer for the terminal. It keeps the latest View
// and nudges the program to redraw. Render never blocks on the UI goroutine.
type Renderer struct {
	mu      sync.Mutex
	view    button.View
	program *tea.Program
}

// NewRenderer creates a renderer showing nothing until the first Render.
func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(v button.View) {
	r.mu.Lock()
	r.view = v
	p := r.program
	r.mu.Unlock()

	if p != nil {
		go p.Send(redrawMsg{})
	}
}

// Current returns the latest View.
func (r *Renderer) Current() button.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

func (r *Renderer) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
}

var _ button.Renderer = (*Renderer)(nil)
