package testutil

import (
	"sync"

	"flipbutton/internal/button"
)

// RecordingRenderer keeps every View it is given. Safe for concurrent use.
type RecordingRenderer struct {
	mu    sync.Mutex
	views []button.View
}

func (r *RecordingRenderer) Render(v button.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

// Count returns the number of renders so far.
func (r *RecordingRenderer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Last returns the most recent View, or the zero View.
func (r *RecordingRenderer) Last() button.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return button.View{}
	}
	return r.views[len(r.views)-1]
}

var _ button.Renderer = (*RecordingRenderer)(nil)
