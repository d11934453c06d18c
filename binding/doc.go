// Package binding wraps objects owned by a native DOM engine in typed Go
// values.
//
// A native object is reached through an OpaquePtr and a method table: a
// struct of functions supplied by the engine whose first field is the ABI
// version. Wrappers hold the pointer, the table and the ExecutingContext and
// never cache anything; every accessor crosses the boundary.
//
// # Hierarchy
//
// Wrappers compose their base by value:
//
//	EventTarget
//	├── Node
//	│   └── ContainerNode
//	│       ├── Element
//	│       └── Document
//	└── Window
//	Event
//
// Capability interfaces (EventTargetMethods, NodeMethods,
// ContainerNodeMethods, EventMethods) let code accept any wrapper that has a
// given capability. AsNode, AsEventTarget and friends are total upcasts.
//
// # Failures
//
// Fallible calls take an *ExceptionState. The engine raises a message into
// it; the wrapper checks it straight after the call, releases the message and
// returns *errors.Error with Kind errors.KindNativeException. Passing nil uses
// a call-scoped state.
//
// Misuse of the contract, such as an unreadable string returned by the
// engine, panics with Kind errors.KindPrecondition.
//
// # Strings
//
// Strings returned by the engine are either borrowed (copied, the engine
// keeps ownership) or owned (copied, then released through the context
// allocator). Which one applies is fixed per accessor. Argument strings are
// allocated in the native heap for the duration of one call.
//
// # Listeners
//
// An *EventListener has stable identity. Each native registration holds one
// borrow on the listener's registry entry; the engine calls
// EventCallbackContext.Free once per registration it drops. The closure is
// released when no registration remains.
//
//	l := binding.NewEventListener(func(e *binding.Event) {
//	    log.Println(e.Type())
//	})
//	if err := win.AddEventListener("hashchange", l, nil, es); err != nil {
//	    return err
//	}
//
// A context is driven by one logical thread. Listeners run synchronously on
// that thread and may call back into the binding.
package binding
