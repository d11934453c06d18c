package native

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
	"github.com/wippyai/dombind/binding/events"
	"github.com/wippyai/dombind/errors"
	"github.com/wippyai/dombind/heap"
	"github.com/wippyai/dombind/resource"
)

const defaultURL = "about:blank"

// Option configures an Engine.
type Option func(*config)

type config struct {
	logger     *zap.Logger
	clock      func() time.Time
	url        string
	limitPages uint32
}

// WithURL sets the initial location of the window.
func WithURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.url = u
		}
	}
}

// WithMemoryLimitPages caps the native heap at n 64KiB pages.
func WithMemoryLimitPages(n uint32) Option {
	return func(c *config) {
		c.limitPages = n
	}
}

// WithLogger sets the logger for the engine and its heap and context.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used for event time stamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.clock = now
		}
	}
}

type tables struct {
	eventTarget   binding.EventTargetMethodTable
	node          binding.NodeMethodTable
	containerNode binding.ContainerNodeMethodTable
	element       binding.ElementMethodTable
	document      binding.DocumentMethodTable
	window        binding.WindowMethodTable
	event         binding.EventMethodTable
	hashchange    events.HashchangeEventMethodTable
	closeEvent    events.CloseEventMethodTable
	context       binding.ExecutingContextMethodTable
}

// Engine is a reference native DOM engine. It owns a heap, an object table
// and a document tree, and serves them through method tables to a
// binding.ExecutingContext.
//
// The engine lock is never held while a listener runs, so listeners may call
// back into the engine.
type Engine struct {
	heap     *heap.Heap
	ctx      *binding.ExecutingContext
	logger   *zap.Logger
	clock    func() time.Time
	objects  *resource.Typed[*object]
	table    *resource.UnifiedTable
	ctxObj   *object
	document *object
	window   *object
	origin   time.Time
	url      string
	tables   tables
	mu       sync.Mutex
	closed   bool
}

// New creates an engine with a document holding <html><body></body></html>
// and a window at the configured location.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	cfg := config{
		logger: Logger(),
		clock:  time.Now,
		url:    defaultURL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := url.Parse(cfg.url); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "engine url")
	}

	var heapOpts []heap.Option
	heapOpts = append(heapOpts, heap.WithLogger(cfg.logger.Named("heap")))
	if cfg.limitPages > 0 {
		heapOpts = append(heapOpts, heap.WithMemoryLimitPages(cfg.limitPages))
	}
	h, err := heap.New(ctx, heapOpts...)
	if err != nil {
		return nil, err
	}

	table := resource.NewTable()
	e := &Engine{
		heap:    h,
		logger:  cfg.logger,
		clock:   cfg.clock,
		objects: resource.NewTyped[*object](table, objectTypeID),
		table:   table,
		origin:  cfg.clock(),
		url:     cfg.url,
	}
	e.buildTables()

	if err := e.buildInitialTree(); err != nil {
		_ = h.Close(ctx)
		return nil, errors.Load("build initial document", err)
	}

	bc, err := binding.NewExecutingContext(e.ctxObj.ptr, &e.tables.context, h, h,
		binding.WithLogger(cfg.logger.Named("binding")))
	if err != nil {
		_ = h.Close(ctx)
		return nil, err
	}
	e.ctx = bc

	e.logger.Debug("engine created",
		zap.String("url", e.url),
		zap.String("context_id", bc.ID()))
	return e, nil
}

func (e *Engine) buildInitialTree() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.ctxObj, err = e.newObject(kindContext); err != nil {
		return err
	}
	if e.window, err = e.newObject(kindWindow); err != nil {
		return err
	}
	if e.document, err = e.newObject(kindDocument); err != nil {
		return err
	}
	htmlEl, err := e.newObject(kindElement)
	if err != nil {
		return err
	}
	htmlEl.name = "html"
	body, err := e.newObject(kindElement)
	if err != nil {
		return err
	}
	body.name = "body"

	htmlEl.parent = e.document
	e.document.children = append(e.document.children, htmlEl)
	body.parent = htmlEl
	htmlEl.children = append(htmlEl.children, body)
	return nil
}

// Context returns the binding context served by this engine.
func (e *Engine) Context() *binding.ExecutingContext {
	return e.ctx
}

// Heap returns the native heap.
func (e *Engine) Heap() *heap.Heap {
	return e.heap
}

// URL returns the current location.
func (e *Engine) URL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}

// ObjectCount returns the number of live object headers.
func (e *Engine) ObjectCount() int {
	return e.objects.Len()
}

// RegistrationCount returns the number of listener registrations on ptr.
func (e *Engine) RegistrationCount(ptr binding.OpaquePtr) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(ptr)
	if o == nil {
		return 0
	}
	return len(o.listeners)
}

// IsDisposed reports whether ptr names an object that has been disposed but
// not yet released.
func (e *Engine) IsDisposed(ptr binding.OpaquePtr) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(ptr)
	return o != nil && o.status.Disposed
}

// Dispose destroys the object at ptr and, for nodes, its subtree. Every
// listener registration on the destroyed objects is dropped. The headers
// stay valid so later calls through stale wrappers fail with
// InvalidStateError instead of touching freed memory.
func (e *Engine) Dispose(ptr binding.OpaquePtr) error {
	e.mu.Lock()
	o := e.lookup(ptr)
	if o == nil {
		e.mu.Unlock()
		return errors.NotFound(errors.PhaseRuntime, "object", ptrString(ptr))
	}
	dropped := e.disposeLocked(o)
	e.mu.Unlock()

	e.freeRegistrations(dropped)
	e.logger.Debug("object disposed",
		zap.Uint32("ptr", uint32(ptr)),
		zap.Stringer("kind", o.kind),
		zap.Int("dropped_listeners", len(dropped)))
	return nil
}

// disposeLocked marks o and its subtree disposed and returns the dropped
// registrations. Their Free callbacks must be invoked after e.mu is
// released.
func (e *Engine) disposeLocked(o *object) []*registration {
	if o.status.Disposed {
		return nil
	}
	o.detach()

	var dropped []*registration
	for _, n := range o.subtree() {
		n.status.Disposed = true
		for _, r := range n.listeners {
			r.removed = true
			dropped = append(dropped, r)
		}
		n.listeners = nil
		e.releaseStrings(n)
	}
	return dropped
}

// SetHash replaces the fragment of the window location and fires hashchange
// at the window when it changed.
func (e *Engine) SetHash(hash string) error {
	es := e.ctx.CreateExceptionState()
	e.updateHash(e.window.ptr, hash, es)
	if es.HasException() {
		msg := es.Stringify()
		es.Clear()
		return errors.NativeException("Engine.SetHash", msg)
	}
	return nil
}

// FireClose fires a trusted close event at the window.
func (e *Engine) FireClose(code int64, reason string, wasClean bool) error {
	e.mu.Lock()
	ev, err := e.newEvent(&e.tables.closeEvent, "close", false, false, true)
	if err != nil {
		e.mu.Unlock()
		return errors.Wrap(errors.PhaseDispatch, errors.KindAllocation, err, "create close event")
	}
	ev.event.code = code
	ev.event.reason = reason
	ev.event.wasClean = wasClean
	target := e.window
	e.mu.Unlock()

	e.dispatch(target, ev)
	e.finishTrusted(ev)
	return nil
}

// FireEvent fires a trusted event of the given type at ptr and reports
// whether its default action was left in place.
func (e *Engine) FireEvent(ptr binding.OpaquePtr, eventType string, bubbles, cancelable bool) (bool, error) {
	e.mu.Lock()
	target := e.lookup(ptr)
	if target == nil || target.status.Disposed || target.kind == kindEvent || target.kind == kindContext {
		e.mu.Unlock()
		return false, errors.NotFound(errors.PhaseDispatch, "event target", ptrString(ptr))
	}
	ev, err := e.newEvent(&e.tables.event, eventType, bubbles, cancelable, true)
	if err != nil {
		e.mu.Unlock()
		return false, errors.Wrap(errors.PhaseDispatch, errors.KindAllocation, err, "create event")
	}
	e.mu.Unlock()

	ok := e.dispatch(target, ev)
	e.finishTrusted(ev)
	return ok, nil
}

// Close disposes every object, closes the binding context and releases the
// heap. Close is idempotent.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true

	var dropped []*registration
	e.objects.Each(func(_ resource.Handle, o *object) bool {
		dropped = append(dropped, e.disposeLocked(o)...)
		return true
	})
	e.mu.Unlock()

	e.freeRegistrations(dropped)

	if err := e.ctx.Close(); err != nil {
		e.logger.Warn("close binding context", zap.Error(err))
	}
	if err := e.table.Close(); err != nil {
		e.logger.Warn("close object table", zap.Error(err))
	}
	e.logger.Debug("engine closed", zap.Int("dropped_listeners", len(dropped)))
	return e.heap.Close(ctx)
}

func ptrString(ptr binding.OpaquePtr) string {
	return fmt.Sprintf("%#x", uint32(ptr))
}
