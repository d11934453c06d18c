package binding

// ABIVersion is the method table version this package was written against.
// Every table's first field must carry it.
const ABIVersion float64 = 1

// OpaquePtr is the address of a native-owned object. The binding never reads
// through it; it only hands it back to method table functions. Zero is null.
type OpaquePtr uint32

// CString is the address of a NUL-terminated byte sequence in the native heap.
type CString uint32

// ValueStatus is a native-owned status record handed to listener callbacks
// alongside the event handle. The native side sets Disposed when the object
// is destroyed; the binding only reports it.
type ValueStatus struct {
	Disposed bool
}

// AddEventListenerOptions mirrors the native options record.
type AddEventListenerOptions struct {
	// Capture registers the listener for the capture phase.
	Capture bool
	// Once removes the listener after its first invocation.
	Once bool
	// Passive promises the listener will not call PreventDefault.
	Passive bool
}

// EventCallbackContext is what the native side stores for a registered
// listener. Callback is the trampoline into Go; Free must be called exactly
// once when the native side drops the registration. Data identifies the
// listener and is what the native side compares when removing.
type EventCallbackContext struct {
	Callback func(data uint32, event OpaquePtr, table EventTable, status *ValueStatus, es *ExceptionState)
	Free     func(data uint32)
	Data     uint32
}

// EventTargetValue is a handle plus the EventTarget table that serves it.
type EventTargetValue struct {
	Methods *EventTargetMethodTable
	Ptr     OpaquePtr
}

// NodeValue is a handle plus the Node table that serves it.
type NodeValue struct {
	Methods *NodeMethodTable
	Ptr     OpaquePtr
}

// ElementValue is a handle plus the Element table that serves it.
type ElementValue struct {
	Methods *ElementMethodTable
	Ptr     OpaquePtr
}

// DocumentValue is a handle plus the Document table that serves it.
type DocumentValue struct {
	Methods *DocumentMethodTable
	Ptr     OpaquePtr
}

// WindowValue is a handle plus the Window table that serves it.
type WindowValue struct {
	Methods *WindowMethodTable
	Ptr     OpaquePtr
}

// EventValue is an event handle plus its most derived table.
type EventValue struct {
	Methods EventTable
	Ptr     OpaquePtr
}
