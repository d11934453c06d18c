package native

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/wippyai/dombind/binding"
	"github.com/wippyai/dombind/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	ctx := context.Background()
	e, err := New(ctx, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := e.Close(ctx); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return e
}

// countingCallback builds a callback context that records invocations and
// frees without a binding context behind it.
type countingCallback struct {
	calls int
	frees int
}

func (c *countingCallback) context(data uint32) *binding.EventCallbackContext {
	return &binding.EventCallbackContext{
		Callback: func(uint32, binding.OpaquePtr, binding.EventTable, *binding.ValueStatus, *binding.ExceptionState) {
			c.calls++
		},
		Free: func(uint32) { c.frees++ },
		Data: data,
	}
}

func (e *Engine) cstring(t *testing.T, s string) binding.CString {
	t.Helper()
	p, err := e.heap.AllocCString(s)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.heap.FreeCString(p, len(s)) })
	return binding.CString(p)
}

func TestNew_InitialTree(t *testing.T) {
	e := newEngine(t, WithURL("https://example.com/"))

	e.mu.Lock()
	defer e.mu.Unlock()

	var shape []string
	var walk func(o *object)
	walk = func(o *object) {
		shape = append(shape, o.nodeName())
		for _, c := range o.children {
			walk(c)
		}
	}
	walk(e.document)

	if diff := cmp.Diff([]string{"#document", "HTML", "BODY"}, shape); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
	if e.url != "https://example.com/" {
		t.Fatalf("url = %q", e.url)
	}
	for _, o := range []*object{e.ctxObj, e.window, e.document} {
		if e.lookup(o.ptr) != o {
			t.Fatalf("lookup of %s failed", o.kind)
		}
	}
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), WithURL("http://[::1"))
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
}

func TestLookup_RejectsForeignPointers(t *testing.T) {
	e := newEngine(t)

	p, err := e.heap.Alloc(headerSize, headerAlign)
	if err != nil {
		t.Fatal(err)
	}
	defer e.heap.Free(p, headerSize, headerAlign)
	_ = e.heap.WriteU32(p, uint32(e.document.handle))
	_ = e.heap.WriteU8(p+4, uint8(kindDocument))

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lookup(binding.OpaquePtr(p)) != nil {
		t.Fatal("copied header resolved to the document")
	}
	if e.lookup(0) != nil {
		t.Fatal("null resolved")
	}
	if e.lookup(binding.OpaquePtr(e.heap.Size()+64)) != nil {
		t.Fatal("out of range pointer resolved")
	}
}

func TestRegistrations_DuplicateAndRemove(t *testing.T) {
	e := newEngine(t)
	cb := &countingCallback{}
	name := e.cstring(t, "ping")
	es := e.ctx.CreateExceptionState()

	e.addEventListener(e.window.ptr, name, cb.context(7), nil, es)
	e.addEventListener(e.window.ptr, name, cb.context(7), nil, es)
	if cb.frees != 1 {
		t.Fatalf("duplicate registration freed %d times, want 1", cb.frees)
	}
	e.addEventListener(e.window.ptr, name, cb.context(7), &binding.AddEventListenerOptions{Capture: true}, es)
	if got := e.RegistrationCount(e.window.ptr); got != 2 {
		t.Fatalf("RegistrationCount = %d, want 2", got)
	}

	e.removeEventListener(e.window.ptr, name, cb.context(7), es)
	if cb.frees != 3 {
		t.Fatalf("remove freed %d registrations in total, want 3", cb.frees)
	}
	if e.RegistrationCount(e.window.ptr) != 0 {
		t.Fatal("registrations remain")
	}
	if es.HasException() {
		t.Fatalf("unexpected exception %q", es.Stringify())
	}
}

func TestDispose_FreesRegistrationsOfSubtree(t *testing.T) {
	e := newEngine(t)
	cb := &countingCallback{}
	name := e.cstring(t, "ping")
	es := e.ctx.CreateExceptionState()

	body := e.document.children[0].children[0]
	e.addEventListener(body.ptr, name, cb.context(1), nil, es)
	e.addEventListener(e.document.ptr, name, cb.context(2), nil, es)

	if err := e.Dispose(e.document.ptr); err != nil {
		t.Fatal(err)
	}
	if cb.frees != 2 {
		t.Fatalf("frees = %d, want 2", cb.frees)
	}
	if !e.IsDisposed(body.ptr) {
		t.Fatal("descendant not disposed")
	}
	if err := e.Dispose(e.document.ptr); err != nil {
		t.Fatal("second Dispose must be a no-op")
	}

	e.addEventListener(body.ptr, name, cb.context(3), nil, es)
	if !es.HasException() {
		t.Fatal("registration on a disposed target accepted")
	}
	es.Clear()
	if cb.frees != 2 {
		t.Fatal("rejected registration must not be freed by the engine")
	}

	if err := e.Dispose(0); !isKind(err, errors.KindNotFound) {
		t.Fatalf("Dispose(0) = %v", err)
	}
}

func isKind(err error, k errors.Kind) bool {
	e, ok := err.(*errors.Error)
	return ok && e.Kind == k
}

func TestFireEvent(t *testing.T) {
	now := time.Unix(100, 0)
	e := newEngine(t, WithClock(func() time.Time { return now }))
	cb := &countingCallback{}
	name := e.cstring(t, "tick")
	body := e.document.children[0].children[0]

	e.addEventListener(e.window.ptr, name, cb.context(1), nil, nil)
	now = now.Add(1500 * time.Millisecond)

	var stamp float64
	e.addEventListener(body.ptr, name, &binding.EventCallbackContext{
		Callback: func(_ uint32, ev binding.OpaquePtr, _ binding.EventTable, _ *binding.ValueStatus, _ *binding.ExceptionState) {
			stamp = e.eventTimeStamp(ev)
		},
		Free: func(uint32) {},
		Data: 2,
	}, nil, nil)

	ok, err := e.FireEvent(body.ptr, "tick", true, false)
	if err != nil || !ok {
		t.Fatalf("FireEvent = %v, %v", ok, err)
	}
	if cb.calls != 1 {
		t.Fatal("bubbling event did not reach the window")
	}
	if stamp != 1500 {
		t.Fatalf("timeStamp = %v, want 1500", stamp)
	}

	before := e.ObjectCount()
	if _, err := e.FireEvent(body.ptr, "tick", false, false); err != nil {
		t.Fatal(err)
	}
	if cb.calls != 1 {
		t.Fatal("non-bubbling event reached the window")
	}
	if e.ObjectCount() != before {
		t.Fatal("trusted event not freed after dispatch")
	}

	if _, err := e.FireEvent(e.ctxObj.ptr, "tick", false, false); err == nil {
		t.Fatal("context is not an event target")
	}
}

func TestWithFragment(t *testing.T) {
	tests := []struct {
		url, hash, want string
	}{
		{"https://x/#b", "#a", "https://x/#a"},
		{"https://x/#b", "a", "https://x/#a"},
		{"https://x/", "#a", "https://x/#a"},
		{"https://x/#b", "", "https://x/"},
		{"https://x/p?q=1", "frag", "https://x/p?q=1#frag"},
		{"about:blank", "#top", "about:blank#top"},
	}
	for _, tt := range tests {
		got, err := withFragment(tt.url, tt.hash)
		if err != nil {
			t.Fatalf("withFragment(%q, %q) failed: %v", tt.url, tt.hash, err)
		}
		if got != tt.want {
			t.Errorf("withFragment(%q, %q) = %q, want %q", tt.url, tt.hash, got, tt.want)
		}
	}
}

func TestSetHash_Public(t *testing.T) {
	e := newEngine(t, WithURL("https://x/#b"))
	if err := e.SetHash("#c"); err != nil {
		t.Fatal(err)
	}
	if e.URL() != "https://x/#c" {
		t.Fatalf("URL = %q", e.URL())
	}

	if err := e.Dispose(e.window.ptr); err != nil {
		t.Fatal(err)
	}
	err := e.SetHash("#d")
	if !errors.IsNativeException(err) {
		t.Fatalf("SetHash on disposed window = %v", err)
	}
}

func TestValidName(t *testing.T) {
	valid := []string{"div", "my-element", "x1", "svg:rect", "_a", "é"}
	invalid := []string{"", "1x", "a b", "<p>", "-a", "a\x00"}

	for _, n := range valid {
		if !validName(n) {
			t.Errorf("validName(%q) = false", n)
		}
	}
	for _, n := range invalid {
		if validName(n) {
			t.Errorf("validName(%q) = true", n)
		}
	}
}

func TestIntern_ReusesUntilChanged(t *testing.T) {
	e := newEngine(t)
	e.mu.Lock()
	defer e.mu.Unlock()

	o := e.document
	a := e.intern(o, "k", "one")
	b := e.intern(o, "k", "one")
	if a != b {
		t.Fatal("same value interned twice")
	}
	live := e.heap.Stats().LiveAllocs
	c := e.intern(o, "k", "two")
	if c == 0 {
		t.Fatal("intern failed")
	}
	if e.heap.Stats().LiveAllocs != live {
		t.Fatal("replaced string not released")
	}
	e.releaseStrings(o)
	if e.heap.Stats().LiveAllocs != live-1 {
		t.Fatal("releaseStrings left allocations")
	}
}

func TestClose_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, err := New(ctx)
	if err != nil {
		t.Fatal(err)
	}
	cb := &countingCallback{}
	p, _ := e.heap.AllocCString("ping")
	e.addEventListener(e.window.ptr, binding.CString(p), cb.context(1), nil, nil)
	e.heap.FreeCString(p, 4)

	if err := e.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if cb.frees != 1 {
		t.Fatalf("Close freed %d registrations, want 1", cb.frees)
	}
	if err := e.Close(ctx); err != nil {
		t.Fatal(err)
	}
}
