// Package heap provides the native heap that strings and object headers live
// in on the engine side of the boundary.
//
// The heap is a WebAssembly linear memory instantiated with wazero from a
// module that exports nothing but its memory. A first-fit free-list allocator
// with coalescing hands out blocks inside it. Address 0 is never returned, so
// it can stand for null.
//
//	h, err := heap.New(ctx, heap.WithMemoryLimitPages(64))
//	if err != nil {
//	    return err
//	}
//	defer h.Close(ctx)
//
//	ptr, err := h.AllocCString("hashchange")
//	s, err := h.ReadCString(ptr)
//	h.FreeCString(ptr, len(s))
//
// Linear memory only grows. Freed blocks are reused but never returned to the
// host.
package heap
