// Package resource provides handle tables for values that must be named by
// an integer across the native boundary.
//
// Two tables in this module are built on it: the listener registry owned by
// each binding.ExecutingContext, which maps callback handles to Go closures,
// and the object table of the reference engine, which maps the contents of
// native object headers to engine objects.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, value)
//
//	// Retrieve value by handle
//	value, ok := table.Get(handle)
//
//	// Remove and get value
//	value, ok := table.Remove(handle)
//
// # Borrows
//
// An entry can be pinned with Borrow. Remove fails while borrows are
// outstanding; ReturnBorrow reports how many remain, so the owner can remove
// the entry deterministically when the count reaches zero:
//
//	table.Borrow(h)
//	if left, _ := table.ReturnBorrow(h); left == 0 {
//	    table.Remove(h)
//	}
//
// # Typed Views
//
//	listeners := resource.NewTyped[*Listener](table, ListenerTypeID)
//	h := listeners.Insert(l)
//	l, ok := listeners.Get(h) // entries with other type IDs are invisible
//
// # Observers
//
// Observers are notified on create, drop, borrow and borrow return, after the
// store lock is released. Borrow events carry the count after the change.
// They must not call Subscribe. Close reports a drop for every entry it
// discards, so an observer can keep its own live count:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("handle %d %s", e.Handle, e.Type)
//	}))
//
// # Memory Management
//
// Entries are not garbage collected. Owners call Remove when the native side
// releases a handle, or Close to drop everything at once.
package resource
