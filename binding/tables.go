package binding

// Method tables are fixed-order records of functions supplied by the native
// side. The first field is always the ABI version. A derived table points at
// (or, for events, embeds) the table of its base so that one table serves
// every level of an object's hierarchy.

// EventTargetMethodTable serves every object that can receive events.
type EventTargetMethodTable struct {
	Version             float64
	AddEventListener    func(ptr OpaquePtr, eventName CString, cb *EventCallbackContext, opts *AddEventListenerOptions, es *ExceptionState)
	RemoveEventListener func(ptr OpaquePtr, eventName CString, cb *EventCallbackContext, es *ExceptionState)
	DispatchEvent       func(ptr OpaquePtr, event OpaquePtr, es *ExceptionState) bool
	// Release tells the engine the binding holds no further interest in ptr.
	// Detached objects may be destroyed.
	Release func(ptr OpaquePtr)
}

// NodeMethodTable serves tree nodes.
type NodeMethodTable struct {
	Version     float64
	EventTarget *EventTargetMethodTable
	AppendChild func(ptr OpaquePtr, newNode OpaquePtr, es *ExceptionState) NodeValue
	RemoveChild func(ptr OpaquePtr, child OpaquePtr, es *ExceptionState) NodeValue

	ParentNode      func(ptr OpaquePtr) NodeValue
	FirstChild      func(ptr OpaquePtr) NodeValue
	LastChild       func(ptr OpaquePtr) NodeValue
	NextSibling     func(ptr OpaquePtr) NodeValue
	PreviousSibling func(ptr OpaquePtr) NodeValue

	NodeType func(ptr OpaquePtr) int32
	// NodeName is borrowed.
	NodeName func(ptr OpaquePtr) CString
	// TextContent is a fresh copy owned by the caller.
	TextContent func(ptr OpaquePtr) CString
}

// ContainerNodeMethodTable adds nothing of its own; it exists so derived
// tables can reach the Node level.
type ContainerNodeMethodTable struct {
	Version float64
	Node    *NodeMethodTable
}

// ElementMethodTable serves elements.
type ElementMethodTable struct {
	Version       float64
	ContainerNode *ContainerNodeMethodTable
	// TagName is borrowed.
	TagName func(ptr OpaquePtr) CString
	// GetAttribute returns a fresh copy owned by the caller, or 0 when the
	// attribute is absent.
	GetAttribute func(ptr OpaquePtr, name CString) CString
	HasAttribute func(ptr OpaquePtr, name CString) bool
	SetAttribute func(ptr OpaquePtr, name CString, value CString, es *ExceptionState)
}

// DocumentMethodTable serves the document.
type DocumentMethodTable struct {
	Version         float64
	ContainerNode   *ContainerNodeMethodTable
	CreateElement   func(ptr OpaquePtr, tagName CString, es *ExceptionState) ElementValue
	CreateTextNode  func(ptr OpaquePtr, data CString, es *ExceptionState) NodeValue
	CreateEvent     func(ptr OpaquePtr, eventType CString, es *ExceptionState) EventValue
	DocumentElement func(ptr OpaquePtr) ElementValue
	Body            func(ptr OpaquePtr) ElementValue
}

// WindowMethodTable serves the window.
type WindowMethodTable struct {
	Version     float64
	EventTarget *EventTargetMethodTable
	// Href is a fresh copy owned by the caller.
	Href    func(ptr OpaquePtr) CString
	SetHash func(ptr OpaquePtr, hash CString, es *ExceptionState)
}

// EventMethodTable serves every event. Concrete event tables embed it by
// value as their first non-version field.
type EventMethodTable struct {
	Version                  float64
	Bubbles                  func(ptr OpaquePtr) bool
	CancelBubble             func(ptr OpaquePtr) bool
	SetCancelBubble          func(ptr OpaquePtr, value bool, es *ExceptionState)
	Cancelable               func(ptr OpaquePtr) bool
	CurrentTarget            func(ptr OpaquePtr) EventTargetValue
	DefaultPrevented         func(ptr OpaquePtr) bool
	SrcElement               func(ptr OpaquePtr) EventTargetValue
	Target                   func(ptr OpaquePtr) EventTargetValue
	IsTrusted                func(ptr OpaquePtr) bool
	TimeStamp                func(ptr OpaquePtr) float64
	Type                     func(ptr OpaquePtr) CString
	InitEvent                func(ptr OpaquePtr, eventType CString, bubbles bool, cancelable bool, es *ExceptionState)
	PreventDefault           func(ptr OpaquePtr, es *ExceptionState)
	StopImmediatePropagation func(ptr OpaquePtr, es *ExceptionState)
	StopPropagation          func(ptr OpaquePtr, es *ExceptionState)
	Release                  func(ptr OpaquePtr)
}

// EventTable is implemented by *EventMethodTable and by every concrete event
// table. It lets a callback carry the most derived table so a checked
// down-cast can recover it.
type EventTable interface {
	BaseEventTable() *EventMethodTable
}

// BaseEventTable returns t.
func (t *EventMethodTable) BaseEventTable() *EventMethodTable {
	return t
}

// ExecutingContextMethodTable serves the execution context.
type ExecutingContextMethodTable struct {
	Version  float64
	Document func(ptr OpaquePtr) DocumentValue
	Window   func(ptr OpaquePtr) WindowValue
}
