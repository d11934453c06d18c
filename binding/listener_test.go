package binding

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/dombind/errors"
)

func TestListenerRegistry_BorrowPerRegistration(t *testing.T) {
	r := newListenerRegistry(zap.NewNop())
	l := NewEventListener(func(*Event) {})

	h1, ok := r.retain(l)
	if !ok {
		t.Fatal("retain failed")
	}
	h2, _ := r.retain(l)
	if h1 != h2 {
		t.Fatalf("same listener got two handles: %d, %d", h1, h2)
	}
	if n := r.borrows(h1); n != 2 {
		t.Fatalf("borrows = %d, want 2", n)
	}

	other := NewEventListener(func(*Event) {})
	h3, _ := r.retain(other)
	if h3 == h1 {
		t.Fatal("distinct listeners share a handle")
	}
	if r.len() != 2 {
		t.Fatalf("len = %d, want 2", r.len())
	}

	if !r.release(h1) {
		t.Fatal("release failed")
	}
	if _, ok := r.lookup(h1); !ok {
		t.Fatal("listener dropped while a registration remains")
	}
	r.release(h1)
	if _, ok := r.lookup(h1); ok {
		t.Fatal("listener kept after its last registration was freed")
	}
	if _, ok := r.handle(l); ok {
		t.Fatal("identity map kept a dropped listener")
	}
	if r.release(h1) {
		t.Fatal("release of a dropped handle reported success")
	}
	if r.len() != 1 {
		t.Fatalf("len = %d, want 1", r.len())
	}
}

func TestNewEventListener_NilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewEventListener(nil)
}

func TestAddEventListener_ReturnsBorrowOnException(t *testing.T) {
	f := newFakeTables()
	c, h := newTestContext(t, f)
	var seen *ExceptionState
	f.eventTarget.AddEventListener = func(_ OpaquePtr, _ CString, _ *EventCallbackContext, _ *AddEventListenerOptions, es *ExceptionState) {
		seen = es
		raiseMessage(t, h, es, "InvalidStateError: disposed")
	}

	l := NewEventListener(func(*Event) {})
	es := c.CreateExceptionState()
	err := c.Window().AddEventListener("hashchange", l, nil, es)
	if err == nil || !strings.Contains(err.Error(), "InvalidStateError") {
		t.Fatalf("AddEventListener = %v", err)
	}
	if seen != es {
		t.Fatal("caller's exception state not passed through")
	}
	if es.HasException() {
		t.Fatal("exception state not cleared")
	}
	if c.ListenerCount() != 0 {
		t.Fatalf("ListenerCount = %d after rejected registration", c.ListenerCount())
	}
}

func TestAddEventListener_FreeDropsClosure(t *testing.T) {
	f := newFakeTables()
	var stored []*EventCallbackContext
	f.eventTarget.AddEventListener = func(_ OpaquePtr, _ CString, cb *EventCallbackContext, _ *AddEventListenerOptions, _ *ExceptionState) {
		stored = append(stored, cb)
	}
	c, _ := newTestContext(t, f)

	calls := 0
	l := NewEventListener(func(*Event) { calls++ })
	win := c.Window()
	if err := win.AddEventListener("a", l, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := win.AddEventListener("b", l, &AddEventListenerOptions{Capture: true}, nil); err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[0].Data != stored[1].Data {
		t.Fatalf("expected two registrations of one handle, got %+v", stored)
	}

	stored[0].Callback(stored[0].Data, 5, &f.event, nil, c.CreateExceptionState())
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}

	stored[0].Free(stored[0].Data)
	if c.ListenerCount() != 1 {
		t.Fatal("listener dropped while still registered for b")
	}
	stored[1].Free(stored[1].Data)
	if c.ListenerCount() != 0 {
		t.Fatal("listener kept after every registration was freed")
	}

	// A late callback for a dropped registration is ignored.
	stored[0].Callback(stored[0].Data, 5, &f.event, nil, c.CreateExceptionState())
	if calls != 1 {
		t.Fatal("dropped listener invoked")
	}
}

func TestInvokeListener_PanicReported(t *testing.T) {
	f := newFakeTables()
	c, h := newTestContext(t, f)
	base := h.Stats().LiveAllocs

	l := NewEventListener(func(*Event) { panic("boom") })
	hd, _ := c.listeners.retain(l)
	cb := c.callbackContext(hd)

	es := c.CreateExceptionState()
	cb.Callback(cb.Data, 5, &f.event, &ValueStatus{}, es)
	if !es.HasException() {
		t.Fatal("panic not reported")
	}
	if msg := es.Stringify(); !strings.Contains(msg, "boom") {
		t.Fatalf("message = %q", msg)
	}
	es.Clear()
	if got := h.Stats().LiveAllocs; got != base {
		t.Fatalf("leaked %d allocations", got-base)
	}
}

func TestInvokeListener_EventCarriesStatus(t *testing.T) {
	f := newFakeTables()
	c, _ := newTestContext(t, f)

	status := &ValueStatus{Disposed: true}
	var got *Event
	l := NewEventListener(func(e *Event) { got = e })
	hd, _ := c.listeners.retain(l)
	cb := c.callbackContext(hd)
	cb.Callback(cb.Data, 77, &f.event, status, nil)

	if got == nil || got.Ptr() != 77 || got.Status() != status || got.Context() != c {
		t.Fatalf("event = %+v", got)
	}
	if got.Table() != EventTable(&f.event) {
		t.Fatal("table not preserved")
	}
}

func TestExecutingContext_Close(t *testing.T) {
	f := newFakeTables()
	var stored *EventCallbackContext
	f.eventTarget.AddEventListener = func(_ OpaquePtr, _ CString, cb *EventCallbackContext, _ *AddEventListenerOptions, _ *ExceptionState) {
		stored = cb
	}
	c, _ := newTestContext(t, f)

	l := NewEventListener(func(*Event) { t.Fatal("listener invoked after Close") })
	if err := c.Window().AddEventListener("x", l, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal("second Close failed")
	}
	if !c.Closed() || c.ListenerCount() != 0 {
		t.Fatal("Close did not drop listeners")
	}

	stored.Callback(stored.Data, 1, &f.event, nil, nil)
	stored.Free(stored.Data)

	if err := c.Window().AddEventListener("x", l, nil, nil); err == nil {
		t.Fatal("expected registration on a closed context to fail")
	}
}

func TestListenerRegistry_LogsLifecycle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newListenerRegistry(zap.New(core))
	l := NewEventListener(func(*Event) {})

	h, _ := r.retain(l)
	r.retain(l)
	r.release(h)
	r.release(h)

	var got []string
	for _, e := range logs.All() {
		got = append(got, e.Message)
	}
	want := []string{
		"listener created",
		"listener borrowed",
		"listener borrowed",
		"listener borrow_returned",
		"listener borrow_returned",
		"listener dropped",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("log messages = %q, want %q", got, want)
	}
	if n := logs.All()[2].ContextMap()["registrations"]; n != uint32(2) {
		t.Fatalf("registrations after second retain = %v, want 2", n)
	}
	if r.len() != 0 {
		t.Fatalf("len = %d, want 0", r.len())
	}
}

func TestListenerRegistry_CloseDropsLive(t *testing.T) {
	r := newListenerRegistry(zap.NewNop())
	r.retain(NewEventListener(func(*Event) {}))
	r.retain(NewEventListener(func(*Event) {}))
	if r.len() != 2 {
		t.Fatalf("len = %d, want 2", r.len())
	}
	if err := r.close(); err != nil {
		t.Fatal(err)
	}
	if r.len() != 0 {
		t.Fatalf("len = %d after close, want 0", r.len())
	}
	if _, ok := r.retain(NewEventListener(func(*Event) {})); ok {
		t.Fatal("retain succeeded on a closed registry")
	}
}

func TestRemoveEventListener_UnknownListenerReachesNative(t *testing.T) {
	f := newFakeTables()
	c, h := newTestContext(t, f)
	var got []*EventCallbackContext
	f.eventTarget.RemoveEventListener = func(_ OpaquePtr, _ CString, cb *EventCallbackContext, es *ExceptionState) {
		got = append(got, cb)
		raiseMessage(t, h, es, "InvalidStateError: not removable")
	}

	l := NewEventListener(func(*Event) {})
	err := c.Window().RemoveEventListener("hashchange", l, nil)
	if len(got) != 1 {
		t.Fatalf("native removeEventListener called %d times, want 1", len(got))
	}
	if got[0].Data != 0 {
		t.Fatalf("Data = %d for a listener never registered, want 0", got[0].Data)
	}
	if e := asError(t, err); e.Kind != errors.KindNativeException {
		t.Fatalf("RemoveEventListener = %v, want native exception", err)
	}
	if msg := errors.NativeMessage(err); msg != "InvalidStateError: not removable" {
		t.Fatalf("message = %q", msg)
	}
}

func TestRemoveEventListener_PassesRegisteredHandle(t *testing.T) {
	f := newFakeTables()
	var added, removed *EventCallbackContext
	f.eventTarget.AddEventListener = func(_ OpaquePtr, _ CString, cb *EventCallbackContext, _ *AddEventListenerOptions, _ *ExceptionState) {
		added = cb
	}
	f.eventTarget.RemoveEventListener = func(_ OpaquePtr, _ CString, cb *EventCallbackContext, _ *ExceptionState) {
		removed = cb
	}
	c, _ := newTestContext(t, f)

	l := NewEventListener(func(*Event) {})
	if err := c.Window().AddEventListener("x", l, nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := c.Window().RemoveEventListener("x", l, nil); err != nil {
		t.Fatalf("RemoveEventListener failed: %v", err)
	}
	if removed == nil || removed.Data == 0 || removed.Data != added.Data {
		t.Fatalf("removal carried %+v, registration carried %+v", removed, added)
	}
}

func TestRemoveEventListener_ClosedContext(t *testing.T) {
	f := newFakeTables()
	called := false
	f.eventTarget.RemoveEventListener = func(OpaquePtr, CString, *EventCallbackContext, *ExceptionState) {
		called = true
	}
	c, _ := newTestContext(t, f)
	win := c.Window()
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	err := win.RemoveEventListener("x", NewEventListener(func(*Event) {}), nil)
	if e := asError(t, err); e.Kind != errors.KindDisposed {
		t.Fatalf("RemoveEventListener = %v, want disposed error", err)
	}
	if called {
		t.Fatal("native side called on a closed context")
	}
}

func TestRemoveEventListener_RejectsNulInName(t *testing.T) {
	f := newFakeTables()
	called := false
	f.eventTarget.RemoveEventListener = func(OpaquePtr, CString, *EventCallbackContext, *ExceptionState) {
		called = true
	}
	c, _ := newTestContext(t, f)

	err := c.Window().RemoveEventListener("a\x00b", NewEventListener(func(*Event) {}), nil)
	if e := asError(t, err); e.Kind != errors.KindInvalidData || e.Phase != errors.PhaseEncode {
		t.Fatalf("RemoveEventListener = %v, want encode error", err)
	}
	if called {
		t.Fatal("native side called with a truncated name")
	}
}
