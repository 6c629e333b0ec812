package button

import (
	"context"
	"errors"
)

// Picker shows a file selection surface restricted to images and blocks until
// the user picks a file or dismisses it. Dismissal returns ErrEmptySelection;
// a picker that cannot be shown returns an error wrapping ErrPicker.
// Pick must return promptly once ctx is cancelled.
type Picker interface {
	Pick(ctx context.Context) (*File, error)
}

// References turns picked files into transient references that can be drawn
// right away, before or without durable storage.
type References interface {
	Create(f *File) (string, error)
}

// PickResult is the outcome of a prompt. File is nil when nothing was picked.
type PickResult struct {
	File *File
	Ref  string
}

// Prompt is one pending request for an image.
type Prompt struct {
	ID uint64

	ctx  context.Context
	ctrl *UploadController
}

// Wait blocks until the picker resolves. Failures and empty selections
// resolve to an empty PickResult; only picker failures are logged.
func (p *Prompt) Wait() PickResult {
	f, err := p.ctrl.picker.Pick(p.ctx)
	switch {
	case err == nil && f != nil:
	case err == nil, errors.Is(err, ErrEmptySelection):
		return PickResult{}
	case p.ctx.Err() != nil:
		// Replaced by a newer prompt or shutting down.
		return PickResult{}
	default:
		p.ctrl.logger.Warn("image picker failed", "prompt", p.ID, "error", err)
		return PickResult{}
	}

	ref, err := p.ctrl.refs.Create(f)
	if err != nil {
		p.ctrl.logger.Warn("creating image reference", "name", f.Name, "error", err)
		return PickResult{}
	}
	return PickResult{File: f, Ref: ref}
}

// UploadController drives the picker. It owns a single subscription slot:
// starting a prompt while another is pending cancels the old one.
//
// PromptForImage, Settle and Abandon must be called from one goroutine
// (the Coordinator loop); Prompt.Wait may run anywhere.
type UploadController struct {
	picker Picker
	refs   References
	logger Logger

	nextID  uint64
	pending uint64
	cancel  context.CancelFunc
}

// NewUploadController creates a controller around picker and refs.
func NewUploadController(picker Picker, refs References, logger Logger) *UploadController {
	return &UploadController{
		picker: picker,
		refs:   refs,
		logger: logger,
	}
}

// PromptForImage starts a new prompt, dropping any pending one.
func (c *UploadController) PromptForImage(ctx context.Context) *Prompt {
	c.drop()
	c.nextID++
	pctx, cancel := context.WithCancel(ctx)
	c.pending = c.nextID
	c.cancel = cancel
	return &Prompt{ID: c.nextID, ctx: pctx, ctrl: c}
}

// Settle releases the slot held by prompt id. It reports false when the
// prompt was already replaced, in which case its result must be ignored.
func (c *UploadController) Settle(id uint64) bool {
	if id == 0 || id != c.pending {
		return false
	}
	c.drop()
	return true
}

// Pending returns the id of the pending prompt, or 0.
func (c *UploadController) Pending() uint64 {
	return c.pending
}

// Abandon cancels the pending prompt, if any.
func (c *UploadController) Abandon() {
	c.drop()
}

func (c *UploadController) drop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = nil
	c.pending = 0
}
