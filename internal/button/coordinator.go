package button

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Event is anything the Coordinator loop reacts to. External callers send
// Started and Interaction; the other events are produced by Tasks.
type Event interface {
	isEvent()
}

// Started kicks off the startup workflow. Only the first one counts.
type Started struct{}

// Interaction is a click on the button. Modifier is true when the modifier
// key (shift) was held.
type Interaction struct {
	Modifier bool
}

type storeOpened struct {
	handle *StoreHandle
	err    error
}

type assetsLoaded struct {
	refs []string
	err  error
}

type imagePicked struct {
	prompt uint64
	result PickResult
}

type assetPersisted struct {
	asset *Asset
	err   error
}

func (Started) isEvent()        {}
func (Interaction) isEvent()    {}
func (storeOpened) isEvent()    {}
func (assetsLoaded) isEvent()   {}
func (imagePicked) isEvent()    {}
func (assetPersisted) isEvent() {}

// Action is what an Interaction asks for.
type Action int

const (
	ActionFlip Action = iota
	ActionChooseImage
)

func (a Action) String() string {
	switch a {
	case ActionFlip:
		return "flip"
	case ActionChooseImage:
		return "choose-image"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Classify maps a raw interaction to an Action. The modifier key is the only
// discriminator.
func Classify(in Interaction) Action {
	if in.Modifier {
		return ActionChooseImage
	}
	return ActionFlip
}

// Task is a unit of blocking work started by the Coordinator. It runs off the
// loop and reports back with an Event.
type Task func(ctx context.Context) Event

// Coordinator owns the FaceState and the store handle and sequences the
// startup, flip and upload workflows.
//
// All state is mutated from a single goroutine: Run's loop, or the caller of
// Update when driving the coordinator step by step. Blocking work is returned
// as Tasks and never touches the state directly.
type Coordinator struct {
	state    *FaceState
	store    Store
	uploads  *UploadController
	refs     References
	renderer Renderer
	logger   Logger

	ctx     context.Context
	events  chan Event
	started bool
	opened  bool
	handle  *StoreHandle
}

// NewCoordinator wires a coordinator. store may be nil, in which case the
// widget runs memory-only.
func NewCoordinator(store Store, picker Picker, refs References, renderer Renderer, logger Logger) *Coordinator {
	return &Coordinator{
		state:    NewFaceState(),
		store:    store,
		uploads:  NewUploadController(picker, refs, logger),
		refs:     refs,
		renderer: renderer,
		logger:   logger,
		ctx:      context.Background(),
		events:   make(chan Event, 64),
	}
}

// State exposes the face state for inspection. Callers must not mutate it
// while Run is active.
func (c *Coordinator) State() *FaceState {
	return c.state
}

// Handle returns the store handle, or nil if the store is not open.
func (c *Coordinator) Handle() *StoreHandle {
	return c.handle
}

// Dispatch queues an event for Run. It blocks only while the queue is full
// and gives up when ctx is done.
func (c *Coordinator) Dispatch(ctx context.Context, ev Event) error {
	select {
	case c.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled. It dispatches Started itself.
// On return any pending prompt is abandoned and in-flight store work has
// finished.
func (c *Coordinator) Run(ctx context.Context) error {
	c.ctx = ctx
	// Store writes outlive the UI so an upload made just before quitting is kept.
	taskCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer c.uploads.Abandon()

	tasks := c.Update(Started{})
	for {
		for _, task := range tasks {
			wg.Add(1)
			go func(task Task) {
				defer wg.Done()
				ev := task(taskCtx)
				select {
				case c.events <- ev:
				case <-ctx.Done():
				}
			}(task)
		}

		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			tasks = c.Update(ev)
		}
	}
}

// Update applies one event and returns the tasks it started. It never blocks.
func (c *Coordinator) Update(ev Event) []Task {
	switch ev := ev.(type) {
	case Started:
		return c.start()
	case Interaction:
		return c.interact(ev)
	case storeOpened:
		return c.storeOpened(ev)
	case assetsLoaded:
		c.assetsLoaded(ev)
		return nil
	case imagePicked:
		return c.imagePicked(ev)
	case assetPersisted:
		c.assetPersisted(ev)
		return nil
	default:
		panic(fmt.Sprintf("button: unknown event %T", ev))
	}
}

func (c *Coordinator) start() []Task {
	if c.started {
		return nil
	}
	c.started = true
	c.render()

	if c.store == nil {
		c.opened = true
		c.logger.Info("no asset store configured; uploads are display-only")
		return nil
	}
	store := c.store
	return []Task{func(ctx context.Context) Event {
		h, err := store.Open(ctx)
		return storeOpened{handle: h, err: err}
	}}
}

func (c *Coordinator) storeOpened(ev storeOpened) []Task {
	c.opened = true
	if ev.err != nil || ev.handle == nil {
		c.logger.Warn("asset store unavailable; uploads will not be persisted", "error", ev.err)
		return nil
	}
	c.handle = ev.handle
	c.logger.Info("asset store opened", "store", ev.handle.Name(), "version", ev.handle.Version())

	store, h, refs, logger := c.store, c.handle, c.refs, c.logger
	return []Task{func(ctx context.Context) Event {
		assets, err := store.ListAll(ctx, h)
		if err != nil {
			return assetsLoaded{err: err}
		}
		loaded := make([]string, 0, len(assets))
		for _, a := range assets {
			ref, err := refs.Create(a.File())
			if err != nil {
				logger.Warn("creating reference for stored asset", "id", a.ID, "name", a.Name, "error", err)
				continue
			}
			loaded = append(loaded, ref)
		}
		return assetsLoaded{refs: loaded}
	}}
}

func (c *Coordinator) assetsLoaded(ev assetsLoaded) {
	if ev.err != nil {
		c.logger.Error("loading stored assets", "error", ev.err)
		return
	}
	c.logger.Info("stored assets loaded", "count", len(ev.refs))
	if c.state.BulkLoad(ev.refs) {
		c.render()
	}
}

func (c *Coordinator) interact(in Interaction) []Task {
	switch action := Classify(in); action {
	case ActionFlip:
		c.state.Flip()
		c.render()
		return nil
	case ActionChooseImage:
		p := c.uploads.PromptForImage(c.ctx)
		c.logger.Debug("image prompt opened", "prompt", p.ID)
		return []Task{func(context.Context) Event {
			return imagePicked{prompt: p.ID, result: p.Wait()}
		}}
	default:
		panic(fmt.Sprintf("button: unknown action %v", action))
	}
}

func (c *Coordinator) imagePicked(ev imagePicked) []Task {
	if !c.uploads.Settle(ev.prompt) {
		c.logger.Debug("ignoring result of replaced prompt", "prompt", ev.prompt)
		return nil
	}
	if ev.result.File == nil {
		return nil
	}

	c.state.AddOrSelect(ev.result.Ref)
	c.render()

	if c.handle == nil {
		c.logger.Debug("asset store not open; upload kept in memory only",
			"name", ev.result.File.Name, "store_opened", c.opened)
		return nil
	}

	store, h := c.store, c.handle
	asset := NewAsset(ev.result.File)
	return []Task{func(ctx context.Context) Event {
		stored, err := store.Insert(ctx, h, asset)
		if err != nil {
			return assetPersisted{asset: asset, err: err}
		}
		return assetPersisted{asset: stored}
	}}
}

// assetPersisted only logs: the face was already shown when the file was picked.
func (c *Coordinator) assetPersisted(ev assetPersisted) {
	switch {
	case ev.err == nil:
		c.logger.Info("asset stored", "id", ev.asset.ID, "name", ev.asset.Name, "size", ev.asset.Size)
	case errors.Is(ev.err, ErrDuplicate):
		c.logger.Debug("asset already stored", "name", ev.asset.Name)
	default:
		c.logger.Error("storing asset", "name", ev.asset.Name, "error", ev.err)
	}
}

func (c *Coordinator) render() {
	if c.renderer != nil {
		c.renderer.Render(Render(c.state))
	}
}
