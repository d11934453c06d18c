package binding

import (
	"go.uber.org/zap"

	"github.com/wippyai/dombind/errors"
)

// EventTargetMethods is implemented by every wrapper that can receive events.
type EventTargetMethods interface {
	Ptr() OpaquePtr
	Context() *ExecutingContext
	AddEventListener(eventName string, l *EventListener, opts *AddEventListenerOptions, es *ExceptionState) error
	RemoveEventListener(eventName string, l *EventListener, es *ExceptionState) error
	DispatchEvent(event EventMethods, es *ExceptionState) (bool, error)
	AsEventTarget() *EventTarget
}

// EventTarget wraps a native object that can receive events.
type EventTarget struct {
	context *ExecutingContext
	methods *EventTargetMethodTable
	ptr     OpaquePtr
}

var _ EventTargetMethods = (*EventTarget)(nil)

// InitializeEventTarget wraps ptr. ptr must be a live EventTarget served by
// methods in ctx.
func InitializeEventTarget(ptr OpaquePtr, ctx *ExecutingContext, methods *EventTargetMethodTable) *EventTarget {
	return &EventTarget{context: ctx, methods: methods, ptr: ptr}
}

func targetFromValue(ctx *ExecutingContext, v EventTargetValue) (*EventTarget, bool) {
	if v.Ptr == 0 || v.Methods == nil {
		return nil, false
	}
	return InitializeEventTarget(v.Ptr, ctx, v.Methods), true
}

// Ptr returns the native handle.
func (t *EventTarget) Ptr() OpaquePtr {
	return t.ptr
}

// Context returns the owning context.
func (t *EventTarget) Context() *ExecutingContext {
	return t.context
}

// AsEventTarget returns t.
func (t *EventTarget) AsEventTarget() *EventTarget {
	return t
}

// AddEventListener registers l for eventName. A nil opts is equivalent to
// the zero options. Registering the same listener twice for the same event
// and phase has no additional effect.
func (t *EventTarget) AddEventListener(eventName string, l *EventListener, opts *AddEventListenerOptions, es *ExceptionState) error {
	const op = "EventTarget.addEventListener"
	if l == nil {
		panic(errors.Precondition(op, "nil listener"))
	}
	c := t.context
	if c.Closed() {
		return errors.Disposed(errors.PhaseBoundary, "executing context")
	}
	es = c.exceptionState(es)

	args := c.newArgs()
	defer args.release()
	name, err := args.cstring(op, eventName)
	if err != nil {
		return err
	}

	h, ok := c.listeners.retain(l)
	if !ok {
		return errors.Disposed(errors.PhaseBoundary, "listener registry")
	}
	if opts == nil {
		opts = &AddEventListenerOptions{}
	}

	t.methods.AddEventListener(t.ptr, name, c.callbackContext(h), opts, es)
	if es.HasException() {
		c.listeners.release(h)
		return es.takeError(op)
	}

	c.logger.Debug("event listener added",
		zap.String("event", eventName),
		zap.Uint32("target", uint32(t.ptr)),
		zap.Uint32("listener", uint32(h)),
		zap.Bool("capture", opts.Capture),
		zap.Bool("once", opts.Once),
		zap.Bool("passive", opts.Passive))
	return nil
}

// RemoveEventListener removes every registration of l for eventName on t,
// in both phases. The native side decides what removing a listener that is
// not registered means; its report is returned unchanged.
func (t *EventTarget) RemoveEventListener(eventName string, l *EventListener, es *ExceptionState) error {
	const op = "EventTarget.removeEventListener"
	if l == nil {
		panic(errors.Precondition(op, "nil listener"))
	}
	c := t.context
	if c.Closed() {
		return errors.Disposed(errors.PhaseBoundary, "executing context")
	}
	es = c.exceptionState(es)

	args := c.newArgs()
	defer args.release()
	name, err := args.cstring(op, eventName)
	if err != nil {
		return err
	}

	// A listener never registered in this context has no handle and goes
	// across as Data 0, which no registration carries.
	h, _ := c.listeners.handle(l)
	t.methods.RemoveEventListener(t.ptr, name, c.callbackContext(h), es)
	if err := es.takeError(op); err != nil {
		return err
	}

	c.logger.Debug("event listener removed",
		zap.String("event", eventName),
		zap.Uint32("target", uint32(t.ptr)),
		zap.Uint32("listener", uint32(h)))
	return nil
}

// DispatchEvent dispatches event at t synchronously. It returns false when a
// listener canceled the event.
func (t *EventTarget) DispatchEvent(event EventMethods, es *ExceptionState) (bool, error) {
	const op = "EventTarget.dispatchEvent"
	if event == nil {
		panic(errors.Precondition(op, "nil event"))
	}
	es = t.context.exceptionState(es)
	ok := t.methods.DispatchEvent(t.ptr, event.Ptr(), es)
	if err := es.takeError(op); err != nil {
		return false, err
	}
	return ok, nil
}

// Release tells the engine the binding no longer needs t. A detached node
// may be destroyed; t must not be used afterwards.
func (t *EventTarget) Release() {
	if t.methods.Release != nil {
		t.methods.Release(t.ptr)
	}
}
