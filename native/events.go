package native

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
)

type eventState struct {
	table         binding.EventTable
	target        *object
	currentTarget *object
	typ           string
	oldURL        string
	newURL        string
	reason        string
	timeStamp     float64
	code          int64

	bubbles          bool
	cancelable       bool
	trusted          bool
	initialized      bool
	dispatching      bool
	defaultPrevented bool
	stopPropagation  bool
	stopImmediate    bool
	inPassive        bool
	wasClean         bool
}

// newEvent allocates an initialized event object. Must be called with e.mu
// held.
func (e *Engine) newEvent(table binding.EventTable, typ string, bubbles, cancelable, trusted bool) (*object, error) {
	o, err := e.newObject(kindEvent)
	if err != nil {
		return nil, err
	}
	o.event = &eventState{
		table:       table,
		typ:         typ,
		timeStamp:   e.now(),
		bubbles:     bubbles,
		cancelable:  cancelable,
		trusted:     trusted,
		initialized: true,
	}
	return o, nil
}

func (e *Engine) now() float64 {
	return float64(e.clock().Sub(e.origin).Microseconds()) / 1000
}

// finishTrusted frees an engine-created event once its dispatch is over.
func (e *Engine) finishTrusted(ev *object) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ev.status.Disposed = true
	e.freeObject(ev)
}

// eventLocked resolves ptr to an event. Must be called with e.mu held.
func (e *Engine) eventLocked(ptr binding.OpaquePtr) *eventState {
	o := e.lookup(ptr)
	if o == nil || o.kind != kindEvent {
		return nil
	}
	return o.event
}

func (e *Engine) eventFlag(ptr binding.OpaquePtr, get func(st *eventState) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.eventLocked(ptr)
	if st == nil {
		return false
	}
	return get(st)
}

func (e *Engine) eventBubbles(ptr binding.OpaquePtr) bool {
	return e.eventFlag(ptr, func(st *eventState) bool { return st.bubbles })
}

func (e *Engine) eventCancelBubble(ptr binding.OpaquePtr) bool {
	return e.eventFlag(ptr, func(st *eventState) bool { return st.stopPropagation })
}

func (e *Engine) eventCancelable(ptr binding.OpaquePtr) bool {
	return e.eventFlag(ptr, func(st *eventState) bool { return st.cancelable })
}

func (e *Engine) eventDefaultPrevented(ptr binding.OpaquePtr) bool {
	return e.eventFlag(ptr, func(st *eventState) bool { return st.defaultPrevented })
}

func (e *Engine) eventIsTrusted(ptr binding.OpaquePtr) bool {
	return e.eventFlag(ptr, func(st *eventState) bool { return st.trusted })
}

func (e *Engine) eventSetCancelBubble(ptr binding.OpaquePtr, value bool, es *binding.ExceptionState) {
	e.mu.Lock()
	st := e.eventLocked(ptr)
	if st == nil {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The object is not an event."))
		return
	}
	if value {
		st.stopPropagation = true
	}
	e.mu.Unlock()
}

func (e *Engine) eventCurrentTarget(ptr binding.OpaquePtr) binding.EventTargetValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.eventLocked(ptr)
	if st == nil {
		return binding.EventTargetValue{}
	}
	return e.targetValue(st.currentTarget)
}

func (e *Engine) eventTarget(ptr binding.OpaquePtr) binding.EventTargetValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.eventLocked(ptr)
	if st == nil {
		return binding.EventTargetValue{}
	}
	return e.targetValue(st.target)
}

func (e *Engine) eventTimeStamp(ptr binding.OpaquePtr) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.eventLocked(ptr)
	if st == nil {
		return 0
	}
	return st.timeStamp
}

func (e *Engine) eventType(ptr binding.OpaquePtr) binding.CString {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(ptr)
	if o == nil || o.kind != kindEvent {
		return 0
	}
	return e.intern(o, "type", o.event.typ)
}

func (e *Engine) initEvent(ptr binding.OpaquePtr, eventType binding.CString, bubbles, cancelable bool, es *binding.ExceptionState) {
	typ := e.arg(eventType)
	e.mu.Lock()
	st := e.eventLocked(ptr)
	if st == nil {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The object is not an event."))
		return
	}
	if st.dispatching {
		e.mu.Unlock()
		return
	}
	st.typ = typ
	st.bubbles = bubbles
	st.cancelable = cancelable
	st.initialized = true
	st.defaultPrevented = false
	st.stopPropagation = false
	st.stopImmediate = false
	e.mu.Unlock()
}

func (e *Engine) preventDefault(ptr binding.OpaquePtr, es *binding.ExceptionState) {
	e.mu.Lock()
	st := e.eventLocked(ptr)
	if st == nil {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The object is not an event."))
		return
	}
	switch {
	case !st.cancelable:
	case st.inPassive:
		e.logger.Debug("preventDefault ignored inside passive listener", zap.String("event", st.typ))
	default:
		st.defaultPrevented = true
	}
	e.mu.Unlock()
}

func (e *Engine) stopImmediatePropagation(ptr binding.OpaquePtr, es *binding.ExceptionState) {
	e.mu.Lock()
	st := e.eventLocked(ptr)
	if st == nil {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The object is not an event."))
		return
	}
	st.stopPropagation = true
	st.stopImmediate = true
	e.mu.Unlock()
}

func (e *Engine) stopPropagation(ptr binding.OpaquePtr, es *binding.ExceptionState) {
	e.mu.Lock()
	st := e.eventLocked(ptr)
	if st == nil {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The object is not an event."))
		return
	}
	st.stopPropagation = true
	e.mu.Unlock()
}

// releaseEvent frees an event created through Document.createEvent. Events
// owned by an engine-initiated dispatch are freed by the engine.
func (e *Engine) releaseEvent(ptr binding.OpaquePtr) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(ptr)
	if o == nil || o.kind != kindEvent {
		return
	}
	if o.event.trusted || o.event.dispatching {
		e.logger.Debug("release of engine-owned event ignored", zap.Uint32("ptr", uint32(ptr)))
		return
	}
	o.status.Disposed = true
	e.freeObject(o)
}

func (e *Engine) createEvent(ptr binding.OpaquePtr, eventInterface binding.CString, es *binding.ExceptionState) binding.EventValue {
	name := e.arg(eventInterface)

	var table binding.EventTable
	switch strings.ToLower(name) {
	case "event", "events", "htmlevents":
		table = &e.tables.event
	case "hashchangeevent":
		table = &e.tables.hashchange
	case "closeevent":
		table = &e.tables.closeEvent
	default:
		e.raise(es, errNotSupported(fmt.Sprintf("The provided event type ('%s') is invalid.", name)))
		return binding.EventValue{}
	}

	e.mu.Lock()
	if derr := e.documentCheck(ptr); derr != nil {
		e.mu.Unlock()
		e.raise(es, derr)
		return binding.EventValue{}
	}
	o, err := e.newEvent(table, "", false, false, false)
	if err != nil {
		e.mu.Unlock()
		e.raise(es, errNotSupported(err.Error()))
		return binding.EventValue{}
	}
	o.event.initialized = false
	e.mu.Unlock()

	return binding.EventValue{Methods: table, Ptr: o.ptr}
}

// HashchangeEvent

func (e *Engine) eventString(ptr binding.OpaquePtr, key string, borrowed bool, get func(st *eventState) string) binding.CString {
	e.mu.Lock()
	o := e.lookup(ptr)
	if o == nil || o.kind != kindEvent {
		e.mu.Unlock()
		return 0
	}
	v := get(o.event)
	if borrowed {
		defer e.mu.Unlock()
		return e.intern(o, key, v)
	}
	e.mu.Unlock()
	return e.dup(v)
}

func (e *Engine) hashchangeNewURL(ptr binding.OpaquePtr) binding.CString {
	return e.eventString(ptr, "newURL", true, func(st *eventState) string { return st.newURL })
}

func (e *Engine) hashchangeDupNewURL(ptr binding.OpaquePtr) binding.CString {
	return e.eventString(ptr, "newURL", false, func(st *eventState) string { return st.newURL })
}

func (e *Engine) hashchangeOldURL(ptr binding.OpaquePtr) binding.CString {
	return e.eventString(ptr, "oldURL", true, func(st *eventState) string { return st.oldURL })
}

func (e *Engine) hashchangeDupOldURL(ptr binding.OpaquePtr) binding.CString {
	return e.eventString(ptr, "oldURL", false, func(st *eventState) string { return st.oldURL })
}

// CloseEvent

func (e *Engine) closeCode(ptr binding.OpaquePtr) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.eventLocked(ptr)
	if st == nil {
		return 0
	}
	return st.code
}

func (e *Engine) closeReason(ptr binding.OpaquePtr) binding.CString {
	return e.eventString(ptr, "reason", true, func(st *eventState) string { return st.reason })
}

func (e *Engine) closeDupReason(ptr binding.OpaquePtr) binding.CString {
	return e.eventString(ptr, "reason", false, func(st *eventState) string { return st.reason })
}

func (e *Engine) closeWasClean(ptr binding.OpaquePtr) bool {
	return e.eventFlag(ptr, func(st *eventState) bool { return st.wasClean })
}
