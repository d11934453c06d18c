package events

import (
	"github.com/wippyai/dombind/binding"
)

// HashchangeEventMethodTable serves hashchange events.
type HashchangeEventMethodTable struct {
	Version float64
	Event   binding.EventMethodTable
	// NewURL and OldURL are borrowed.
	NewURL func(ptr binding.OpaquePtr) binding.CString
	// DupNewURL and DupOldURL return fresh copies owned by the caller.
	DupNewURL func(ptr binding.OpaquePtr) binding.CString
	OldURL    func(ptr binding.OpaquePtr) binding.CString
	DupOldURL func(ptr binding.OpaquePtr) binding.CString
}

// BaseEventTable returns the embedded Event table.
func (t *HashchangeEventMethodTable) BaseEventTable() *binding.EventMethodTable {
	return &t.Event
}

// HashchangeEventMethods is implemented by hashchange event wrappers.
type HashchangeEventMethods interface {
	binding.EventMethods
	NewURL() string
	OldURL() string
	AsHashchangeEvent() *HashchangeEvent
}

// HashchangeEvent is fired at the window when the fragment of its location
// changes.
type HashchangeEvent struct {
	binding.Event
	methods *HashchangeEventMethodTable
}

var _ HashchangeEventMethods = (*HashchangeEvent)(nil)

// InitializeHashchangeEvent wraps ptr.
func InitializeHashchangeEvent(ptr binding.OpaquePtr, ctx *binding.ExecutingContext, methods *HashchangeEventMethodTable, status *binding.ValueStatus) *HashchangeEvent {
	return &HashchangeEvent{
		Event:   *binding.InitializeEvent(ptr, ctx, methods, status),
		methods: methods,
	}
}

// AsHashchangeEvent returns e as a hashchange event when it was created with
// a hashchange table.
func AsHashchangeEvent(e binding.EventMethods) (*HashchangeEvent, bool) {
	if hc, ok := e.(HashchangeEventMethods); ok {
		return hc.AsHashchangeEvent(), true
	}
	ev := e.AsEvent()
	t, ok := ev.Table().(*HashchangeEventMethodTable)
	if !ok {
		return nil, false
	}
	return InitializeHashchangeEvent(ev.Ptr(), ev.Context(), t, ev.Status()), true
}

// AsHashchangeEvent returns e.
func (e *HashchangeEvent) AsHashchangeEvent() *HashchangeEvent {
	return e
}

// NewURL returns the location after the change.
func (e *HashchangeEvent) NewURL() string {
	return e.Context().ReadBorrowedString("HashchangeEvent.newURL", e.methods.NewURL(e.Ptr()))
}

// DupNewURL is NewURL through the owned-copy convention.
func (e *HashchangeEvent) DupNewURL() string {
	return e.Context().ReadOwnedString("HashchangeEvent.dupNewURL", e.methods.DupNewURL(e.Ptr()))
}

// OldURL returns the location before the change.
func (e *HashchangeEvent) OldURL() string {
	return e.Context().ReadBorrowedString("HashchangeEvent.oldURL", e.methods.OldURL(e.Ptr()))
}

// DupOldURL is OldURL through the owned-copy convention.
func (e *HashchangeEvent) DupOldURL() string {
	return e.Context().ReadOwnedString("HashchangeEvent.dupOldURL", e.methods.DupOldURL(e.Ptr()))
}
