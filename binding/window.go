package binding

// Window wraps the native window.
type Window struct {
	EventTarget
	methods *WindowMethodTable
}

var _ EventTargetMethods = (*Window)(nil)

// InitializeWindow wraps ptr.
func InitializeWindow(ptr OpaquePtr, ctx *ExecutingContext, methods *WindowMethodTable) *Window {
	return &Window{
		EventTarget: *InitializeEventTarget(ptr, ctx, methods.EventTarget),
		methods:     methods,
	}
}

// Href returns the current location.
func (w *Window) Href() string {
	return w.context.readOwned("Window.href", w.methods.Href(w.ptr))
}

// SetHash replaces the fragment of the current location. When it changes,
// the engine fires hashchange at the window before SetHash returns.
func (w *Window) SetHash(hash string, es *ExceptionState) error {
	const op = "Window.setHash"
	es = w.context.exceptionState(es)
	args := w.context.newArgs()
	defer args.release()
	p, err := args.cstring(op, hash)
	if err != nil {
		return err
	}
	w.methods.SetHash(w.ptr, p, es)
	return es.takeError(op)
}
