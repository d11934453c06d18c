package native

import (
	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
)

// registration is one accepted addEventListener call.
type registration struct {
	cb      *binding.EventCallbackContext
	name    string
	capture bool
	once    bool
	passive bool
	removed bool
}

func (e *Engine) target(ptr binding.OpaquePtr) *object {
	o := e.lookup(ptr)
	if o == nil || o.kind == kindEvent || o.kind == kindContext {
		return nil
	}
	return o
}

func (e *Engine) addEventListener(ptr binding.OpaquePtr, eventName binding.CString, cb *binding.EventCallbackContext, opts *binding.AddEventListenerOptions, es *binding.ExceptionState) {
	name := e.arg(eventName)
	if cb == nil || cb.Callback == nil || cb.Free == nil {
		e.raise(es, errType("The callback provided as parameter 2 is not an object."))
		return
	}
	var o binding.AddEventListenerOptions
	if opts != nil {
		o = *opts
	}

	e.mu.Lock()
	t := e.target(ptr)
	if t == nil || t.status.Disposed {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The event target has been disposed."))
		return
	}
	for _, r := range t.listeners {
		if r.name == name && r.capture == o.Capture && r.cb.Data == cb.Data {
			e.mu.Unlock()
			// Accepted as a no-op; the registration it would have created
			// is dropped straight away.
			cb.Free(cb.Data)
			return
		}
	}
	t.listeners = append(t.listeners, &registration{
		cb:      cb,
		name:    name,
		capture: o.Capture,
		once:    o.Once,
		passive: o.Passive,
	})
	e.mu.Unlock()
}

func (e *Engine) removeEventListener(ptr binding.OpaquePtr, eventName binding.CString, cb *binding.EventCallbackContext, es *binding.ExceptionState) {
	name := e.arg(eventName)
	if cb == nil {
		return
	}

	e.mu.Lock()
	t := e.target(ptr)
	if t == nil {
		e.mu.Unlock()
		return
	}
	var dropped []*registration
	kept := t.listeners[:0]
	for _, r := range t.listeners {
		if r.name == name && r.cb.Data == cb.Data {
			r.removed = true
			dropped = append(dropped, r)
			continue
		}
		kept = append(kept, r)
	}
	t.listeners = kept
	e.mu.Unlock()

	e.freeRegistrations(dropped)
}

func (e *Engine) freeRegistrations(regs []*registration) {
	for _, r := range regs {
		r.cb.Free(r.cb.Data)
	}
}

func (e *Engine) removeRegistrationLocked(t *object, reg *registration) {
	reg.removed = true
	for i, r := range t.listeners {
		if r == reg {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

func (e *Engine) dispatchEvent(ptr, event binding.OpaquePtr, es *binding.ExceptionState) bool {
	e.mu.Lock()
	t := e.target(ptr)
	if t == nil || t.status.Disposed {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The event target has been disposed."))
		return false
	}
	ev := e.lookup(event)
	var derr *domError
	switch {
	case ev == nil || ev.kind != kindEvent:
		derr = errType("The provided value is not of type 'Event'.")
	case ev.event.dispatching:
		derr = errInvalidState("The event is already being dispatched.")
	case !ev.event.initialized:
		derr = errInvalidState("The event provided is uninitialized.")
	}
	if derr != nil {
		e.mu.Unlock()
		e.raise(es, derr)
		return false
	}
	ev.event.trusted = false
	e.mu.Unlock()

	return e.dispatch(t, ev)
}

// eventPath returns target followed by its ancestors. Nodes in the
// document tree end with the window. Must be called with e.mu held.
func (e *Engine) eventPath(target *object) []*object {
	path := []*object{target}
	if !target.isNode() {
		return path
	}
	for p := target.parent; p != nil; p = p.parent {
		path = append(path, p)
	}
	if path[len(path)-1] == e.document && !e.window.status.Disposed {
		path = append(path, e.window)
	}
	return path
}

// dispatch runs the capture, target and bubble phases and reports whether
// the default action was left in place.
func (e *Engine) dispatch(target, ev *object) bool {
	e.mu.Lock()
	st := ev.event
	path := e.eventPath(target)
	st.target = target
	st.dispatching = true
	bubbles := st.bubbles
	e.mu.Unlock()

	for i := len(path) - 1; i > 0 && !e.stopped(st); i-- {
		e.invoke(path[i], ev, true)
	}
	if !e.stopped(st) {
		e.invoke(target, ev, true)
	}
	if !e.stopped(st) {
		e.invoke(target, ev, false)
	}
	if bubbles {
		for i := 1; i < len(path) && !e.stopped(st); i++ {
			e.invoke(path[i], ev, false)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	st.dispatching = false
	st.currentTarget = nil
	st.stopPropagation = false
	st.stopImmediate = false
	return !st.defaultPrevented
}

func (e *Engine) stopped(st *eventState) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return st.stopPropagation
}

// invoke calls the listeners of t for the given phase. The listener list is
// snapshotted first; registrations removed while listeners run are skipped.
func (e *Engine) invoke(t, ev *object, capture bool) {
	e.mu.Lock()
	st := ev.event
	if t.status.Disposed {
		e.mu.Unlock()
		return
	}
	var list []*registration
	for _, r := range t.listeners {
		if r.name == st.typ && r.capture == capture {
			list = append(list, r)
		}
	}
	st.currentTarget = t
	e.mu.Unlock()

	for _, r := range list {
		e.mu.Lock()
		if st.stopImmediate {
			e.mu.Unlock()
			return
		}
		if r.removed {
			e.mu.Unlock()
			continue
		}
		if r.once {
			e.removeRegistrationLocked(t, r)
		}
		st.inPassive = r.passive
		st.currentTarget = t
		e.mu.Unlock()

		es := e.ctx.CreateExceptionState()
		r.cb.Callback(r.cb.Data, ev.ptr, st.table, &ev.status, es)
		if es.HasException() {
			e.logger.Warn("event listener failed",
				zap.String("event", st.typ),
				zap.Uint32("target", uint32(t.ptr)),
				zap.String("message", es.Stringify()))
			es.Clear()
		}

		e.mu.Lock()
		st.inPassive = false
		e.mu.Unlock()

		if r.once {
			r.cb.Free(r.cb.Data)
		}
	}
}

// releaseTarget is the EventTarget release hook. A detached node, or an
// already disposed object, is destroyed and its header freed; attached nodes
// stay owned by the tree.
func (e *Engine) releaseTarget(ptr binding.OpaquePtr) {
	e.mu.Lock()
	o := e.target(ptr)
	if o == nil {
		e.mu.Unlock()
		return
	}
	detached := o.isNode() && o.kind != kindDocument && o.parent == nil
	if !detached && !o.status.Disposed {
		e.mu.Unlock()
		return
	}
	dropped := e.disposeLocked(o)
	e.freeObject(o)
	e.mu.Unlock()

	e.freeRegistrations(dropped)
}
