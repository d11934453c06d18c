package events

import (
	"github.com/wippyai/dombind/binding"
)

// CloseEventMethodTable serves close events.
type CloseEventMethodTable struct {
	Version float64
	Event   binding.EventMethodTable
	Code    func(ptr binding.OpaquePtr) int64
	// Reason is borrowed; DupReason is owned by the caller.
	Reason    func(ptr binding.OpaquePtr) binding.CString
	DupReason func(ptr binding.OpaquePtr) binding.CString
	WasClean  func(ptr binding.OpaquePtr) bool
}

// BaseEventTable returns the embedded Event table.
func (t *CloseEventMethodTable) BaseEventTable() *binding.EventMethodTable {
	return &t.Event
}

// CloseEventMethods is implemented by close event wrappers.
type CloseEventMethods interface {
	binding.EventMethods
	Code() int64
	Reason() string
	WasClean() bool
	AsCloseEvent() *CloseEvent
}

// CloseEvent reports that a connection-like resource was closed.
type CloseEvent struct {
	binding.Event
	methods *CloseEventMethodTable
}

var _ CloseEventMethods = (*CloseEvent)(nil)

// InitializeCloseEvent wraps ptr.
func InitializeCloseEvent(ptr binding.OpaquePtr, ctx *binding.ExecutingContext, methods *CloseEventMethodTable, status *binding.ValueStatus) *CloseEvent {
	return &CloseEvent{
		Event:   *binding.InitializeEvent(ptr, ctx, methods, status),
		methods: methods,
	}
}

// AsCloseEvent returns e as a close event when it was created with a close
// table.
func AsCloseEvent(e binding.EventMethods) (*CloseEvent, bool) {
	if ce, ok := e.(CloseEventMethods); ok {
		return ce.AsCloseEvent(), true
	}
	ev := e.AsEvent()
	t, ok := ev.Table().(*CloseEventMethodTable)
	if !ok {
		return nil, false
	}
	return InitializeCloseEvent(ev.Ptr(), ev.Context(), t, ev.Status()), true
}

// AsCloseEvent returns e.
func (e *CloseEvent) AsCloseEvent() *CloseEvent {
	return e
}

func (e *CloseEvent) Code() int64 {
	return e.methods.Code(e.Ptr())
}

func (e *CloseEvent) Reason() string {
	return e.Context().ReadBorrowedString("CloseEvent.reason", e.methods.Reason(e.Ptr()))
}

func (e *CloseEvent) DupReason() string {
	return e.Context().ReadOwnedString("CloseEvent.dupReason", e.methods.DupReason(e.Ptr()))
}

func (e *CloseEvent) WasClean() bool {
	return e.methods.WasClean(e.Ptr())
}
