package binding

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/dombind/errors"
	"github.com/wippyai/dombind/resource"
)

// EventListener is a Go callback with stable identity. Registering the same
// *EventListener twice for the same event and phase is a duplicate; two
// listeners built from the same func are distinct.
type EventListener struct {
	fn func(*Event)
}

// NewEventListener wraps fn. fn must not be nil.
func NewEventListener(fn func(*Event)) *EventListener {
	if fn == nil {
		panic(errors.Precondition("NewEventListener", "nil listener func"))
	}
	return &EventListener{fn: fn}
}

// HandleEvent invokes the listener directly.
func (l *EventListener) HandleEvent(e *Event) {
	l.fn(e)
}

const listenerTypeID uint32 = 1

// listenerRegistry maps native registrations back to Go closures. Each
// listener gets one handle; each native registration holds one borrow on it.
// The closure is dropped when the last borrow is returned.
type listenerRegistry struct {
	table     *resource.UnifiedTable
	listeners *resource.Typed[*EventListener]
	handles   map[*EventListener]resource.Handle
	live      atomic.Int64
	mu        sync.Mutex
}

func newListenerRegistry(logger *zap.Logger) *listenerRegistry {
	table := resource.NewTable()
	r := &listenerRegistry{
		table:     table,
		listeners: resource.NewTyped[*EventListener](table, listenerTypeID),
		handles:   make(map[*EventListener]resource.Handle),
	}
	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		r.observe(logger, e)
	}))
	return r
}

// observe runs with r.mu held and must not take it.
func (r *listenerRegistry) observe(logger *zap.Logger, e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		r.live.Add(1)
	case resource.EventDropped:
		r.live.Add(-1)
	}
	logger.Debug("listener "+e.Type.String(),
		zap.Uint32("listener", uint32(e.Handle)),
		zap.Uint32("registrations", e.Borrows))
}

// retain returns the handle for l with one more borrow on it.
func (r *listenerRegistry) retain(l *EventListener) (resource.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[l]
	if !ok {
		h = r.listeners.Insert(l)
		if h == 0 {
			return 0, false
		}
		r.handles[l] = h
	}
	if !r.listeners.Borrow(h) {
		return 0, false
	}
	return h, true
}

// release returns one borrow and drops the closure at zero. It reports
// whether the handle was known.
func (r *listenerRegistry) release(h resource.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.listeners.ReturnBorrow(h)
	if !ok {
		return false
	}
	if n == 0 {
		if l, ok := r.listeners.Remove(h); ok {
			delete(r.handles, l)
		}
	}
	return true
}

func (r *listenerRegistry) lookup(h resource.Handle) (*EventListener, bool) {
	return r.listeners.Get(h)
}

func (r *listenerRegistry) handle(l *EventListener) (resource.Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[l]
	return h, ok
}

func (r *listenerRegistry) borrows(h resource.Handle) uint32 {
	n, _ := r.listeners.Borrows(h)
	return n
}

func (r *listenerRegistry) len() int {
	return int(r.live.Load())
}

func (r *listenerRegistry) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.handles)
	return r.table.Close()
}

// callbackContext builds the record the native side keeps for one
// registration of handle h.
func (c *ExecutingContext) callbackContext(h resource.Handle) *EventCallbackContext {
	return &EventCallbackContext{
		Callback: c.invokeListener,
		Free:     c.freeListener,
		Data:     uint32(h),
	}
}

// invokeListener is the trampoline the native side calls for every listener
// invocation. A panicking listener is reported back through es; the native
// side decides what to do with it.
func (c *ExecutingContext) invokeListener(data uint32, event OpaquePtr, table EventTable, status *ValueStatus, es *ExceptionState) {
	l, ok := c.listeners.lookup(resource.Handle(data))
	if !ok {
		c.logger.Debug("callback for dropped listener ignored", zap.Uint32("data", data))
		return
	}

	e := InitializeEvent(event, c, table, status)
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("listener panic: %v", r)
			c.logger.Error("event listener panicked",
				zap.Uint32("data", data),
				zap.Uint32("event", uint32(event)),
				zap.Any("panic", r))
			if es != nil {
				es.raiseString(msg)
			}
		}
	}()
	l.fn(e)
}

// freeListener is called by the native side exactly once per accepted
// registration when it drops that registration.
func (c *ExecutingContext) freeListener(data uint32) {
	if !c.listeners.release(resource.Handle(data)) && !c.closed.Load() {
		c.logger.Warn("free of unknown listener registration", zap.Uint32("data", data))
	}
}
