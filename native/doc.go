// Package native is a reference DOM engine that sits on the other side of
// the binding boundary. It owns every object, allocates object headers and
// strings in a heap.Heap, and serves them through the method tables defined
// in package binding.
//
//	eng, err := native.New(ctx, native.WithURL("https://example.com/#b"))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
//	bc := eng.Context()
//	win := bc.Window()
//
// Tree rules follow the DOM: only documents and elements have children, a
// node cannot be inserted into its own subtree, a document has at most one
// element child and no text children. Failures are raised into the caller's
// ExceptionState as "<Name>: <message>", e.g.
// "NotFoundError: The node to be removed is not a child of this node.".
//
// Dispatch runs capture, target and bubble phases over a snapshot of each
// target's listeners. The engine lock is released around every listener
// call, so listeners may mutate the tree or their own registrations.
//
// Strings returned through borrowed accessors are interned on the object
// they belong to and live until that object is freed. Dup accessors return
// fresh allocations the caller releases.
package native
