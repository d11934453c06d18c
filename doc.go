// Package dombind provides typed Go bindings over a native DOM engine that
// the Go side does not own.
//
// The engine exposes nodes, events and event targets as opaque handles plus a
// fixed-layout table of functions per entity type. This module wraps each
// handle in a typed value with the right identity and lifetime rules, lets
// wrappers compose through capability interfaces (a Node is an EventTarget,
// a ContainerNode is a Node), marshals strings across the boundary without
// leaking native memory, and turns native exceptions into Go errors.
//
// # Architecture Overview
//
//	dombind/          Root package with the Memory and Allocator interfaces
//	├── binding/      Method tables, wrappers, exception channel, listeners
//	│   └── events/   Concrete event types (hashchange, close)
//	├── heap/         Native heap on a wazero linear memory
//	├── native/       Reference engine implementing the native side
//	├── resource/     Handle tables with borrow tracking
//	├── script/       JavaScript host driving the bindings through goja
//	├── errors/       Structured error types
//	└── cmd/domrun/   CLI and interactive tree inspector
//
// # Quick Start
//
//	eng, err := native.New(ctx, native.WithURL("https://x/#b"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close(ctx)
//
//	bc := eng.Context()
//	win := bc.Window()
//
//	l := binding.NewEventListener(func(e *binding.Event) {
//	    if hc, ok := events.AsHashchangeEvent(e); ok {
//	        fmt.Println(hc.NewURL())
//	    }
//	})
//	es := bc.CreateExceptionState()
//	if err := win.AddEventListener("hashchange", l, nil, es); err != nil {
//	    log.Fatal(err)
//	}
//	_ = win.SetHash("#a", es)
//
// # Memory Model
//
// Strings cross the boundary as pointers to NUL-terminated bytes in the
// native heap. Accessors copy them into Go strings before returning. Fields
// whose native implementation hands over a fresh allocation ("dup" accessors)
// are released by the binding right after the copy; borrowed pointers are
// never released by the binding.
//
// # Thread Safety
//
// An ExecutingContext and every wrapper created from it belong to one logical
// thread of control. Listener callbacks may run reentrantly while a call into
// the engine is in flight.
package dombind
