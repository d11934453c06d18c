package binding

// EventMethods is implemented by every event wrapper.
type EventMethods interface {
	Ptr() OpaquePtr
	Context() *ExecutingContext
	Bubbles() bool
	CancelBubble() bool
	SetCancelBubble(value bool, es *ExceptionState) error
	Cancelable() bool
	CurrentTarget() (*EventTarget, bool)
	DefaultPrevented() bool
	SrcElement() (*EventTarget, bool)
	Target() (*EventTarget, bool)
	IsTrusted() bool
	TimeStamp() float64
	Type() string
	InitEvent(eventType string, bubbles, cancelable bool, es *ExceptionState) error
	PreventDefault(es *ExceptionState) error
	StopImmediatePropagation(es *ExceptionState) error
	StopPropagation(es *ExceptionState) error
	AsEvent() *Event
}

// Event wraps a native event. Accessors cross the boundary on every call;
// nothing is cached.
type Event struct {
	context *ExecutingContext
	methods *EventMethodTable
	table   EventTable
	status  *ValueStatus
	ptr     OpaquePtr
}

var _ EventMethods = (*Event)(nil)

// InitializeEvent wraps ptr. table may be a concrete event table; it is
// kept for checked down-casts. status may be nil.
func InitializeEvent(ptr OpaquePtr, ctx *ExecutingContext, table EventTable, status *ValueStatus) *Event {
	return &Event{
		context: ctx,
		methods: table.BaseEventTable(),
		table:   table,
		status:  status,
		ptr:     ptr,
	}
}

// Ptr returns the native handle.
func (e *Event) Ptr() OpaquePtr {
	return e.ptr
}

// Context returns the owning context.
func (e *Event) Context() *ExecutingContext {
	return e.context
}

// AsEvent returns e.
func (e *Event) AsEvent() *Event {
	return e
}

// Table returns the most derived table the event was created with.
func (e *Event) Table() EventTable {
	return e.table
}

// Status returns the status record passed with the event, or nil.
func (e *Event) Status() *ValueStatus {
	return e.status
}

// Bubbles reports whether the event bubbles.
func (e *Event) Bubbles() bool {
	return e.methods.Bubbles(e.ptr)
}

// CancelBubble reports whether propagation has been stopped.
func (e *Event) CancelBubble() bool {
	return e.methods.CancelBubble(e.ptr)
}

// SetCancelBubble stops propagation when value is true. false has no effect.
func (e *Event) SetCancelBubble(value bool, es *ExceptionState) error {
	const op = "Event.setCancelBubble"
	es = e.context.exceptionState(es)
	e.methods.SetCancelBubble(e.ptr, value, es)
	return es.takeError(op)
}

// Cancelable reports whether PreventDefault can cancel the event.
func (e *Event) Cancelable() bool {
	return e.methods.Cancelable(e.ptr)
}

// CurrentTarget returns the target whose listeners are running, or false
// outside dispatch.
func (e *Event) CurrentTarget() (*EventTarget, bool) {
	return targetFromValue(e.context, e.methods.CurrentTarget(e.ptr))
}

// DefaultPrevented reports whether a cancelable event was canceled.
func (e *Event) DefaultPrevented() bool {
	return e.methods.DefaultPrevented(e.ptr)
}

// SrcElement is the legacy alias of Target.
func (e *Event) SrcElement() (*EventTarget, bool) {
	return targetFromValue(e.context, e.methods.SrcElement(e.ptr))
}

// Target returns the target the event was dispatched to, or false before
// the first dispatch.
func (e *Event) Target() (*EventTarget, bool) {
	return targetFromValue(e.context, e.methods.Target(e.ptr))
}

// IsTrusted reports whether the engine raised the event rather than script.
func (e *Event) IsTrusted() bool {
	return e.methods.IsTrusted(e.ptr)
}

// TimeStamp returns the creation time in milliseconds.
func (e *Event) TimeStamp() float64 {
	return e.methods.TimeStamp(e.ptr)
}

// Type returns the event type name. The native string is borrowed and
// copied.
func (e *Event) Type() string {
	return e.context.readBorrowed("Event.type", e.methods.Type(e.ptr))
}

// InitEvent sets the type and flags of an event that is not being
// dispatched.
func (e *Event) InitEvent(eventType string, bubbles, cancelable bool, es *ExceptionState) error {
	const op = "Event.initEvent"
	es = e.context.exceptionState(es)
	args := e.context.newArgs()
	defer args.release()
	p, err := args.cstring(op, eventType)
	if err != nil {
		return err
	}
	e.methods.InitEvent(e.ptr, p, bubbles, cancelable, es)
	return es.takeError(op)
}

// PreventDefault cancels the event if it is cancelable. On a non-cancelable
// event it succeeds without effect.
func (e *Event) PreventDefault(es *ExceptionState) error {
	const op = "Event.preventDefault"
	es = e.context.exceptionState(es)
	e.methods.PreventDefault(e.ptr, es)
	return es.takeError(op)
}

// StopImmediatePropagation stops propagation and skips the remaining
// listeners on the current target.
func (e *Event) StopImmediatePropagation(es *ExceptionState) error {
	const op = "Event.stopImmediatePropagation"
	es = e.context.exceptionState(es)
	e.methods.StopImmediatePropagation(e.ptr, es)
	return es.takeError(op)
}

// StopPropagation stops propagation after the current target.
func (e *Event) StopPropagation(es *ExceptionState) error {
	const op = "Event.stopPropagation"
	es = e.context.exceptionState(es)
	e.methods.StopPropagation(e.ptr, es)
	return es.takeError(op)
}

// Release frees an event created with Document.CreateEvent. Events passed
// to listeners are owned by the dispatch and must not be released.
func (e *Event) Release() {
	if e.methods.Release != nil {
		e.methods.Release(e.ptr)
	}
}
