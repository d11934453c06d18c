package binding

// ElementMethods is implemented by element wrappers.
type ElementMethods interface {
	ContainerNodeMethods
	AsElement() *Element
}

// Element wraps a native element.
type Element struct {
	ContainerNode
	methods *ElementMethodTable
}

var _ ElementMethods = (*Element)(nil)

// InitializeElement wraps ptr.
func InitializeElement(ptr OpaquePtr, ctx *ExecutingContext, methods *ElementMethodTable) *Element {
	return &Element{
		ContainerNode: *InitializeContainerNode(ptr, ctx, methods.ContainerNode),
		methods:       methods,
	}
}

func elementFromValue(ctx *ExecutingContext, v ElementValue) (*Element, bool) {
	if v.Ptr == 0 || v.Methods == nil {
		return nil, false
	}
	return InitializeElement(v.Ptr, ctx, v.Methods), true
}

// AsElement returns e.
func (e *Element) AsElement() *Element {
	return e
}

// TagName returns the element's tag name.
func (e *Element) TagName() string {
	return e.context.readBorrowed("Element.tagName", e.methods.TagName(e.ptr))
}

// GetAttribute returns the attribute value and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool, error) {
	const op = "Element.getAttribute"
	args := e.context.newArgs()
	defer args.release()
	n, err := args.cstring(op, name)
	if err != nil {
		return "", false, err
	}
	p := e.methods.GetAttribute(e.ptr, n)
	if p == 0 {
		return "", false, nil
	}
	return e.context.readOwned(op, p), true, nil
}

// HasAttribute reports whether the attribute is present.
func (e *Element) HasAttribute(name string) (bool, error) {
	const op = "Element.hasAttribute"
	args := e.context.newArgs()
	defer args.release()
	n, err := args.cstring(op, name)
	if err != nil {
		return false, err
	}
	return e.methods.HasAttribute(e.ptr, n), nil
}

// SetAttribute sets or replaces an attribute.
func (e *Element) SetAttribute(name, value string, es *ExceptionState) error {
	const op = "Element.setAttribute"
	es = e.context.exceptionState(es)
	args := e.context.newArgs()
	defer args.release()
	n, err := args.cstring(op, name)
	if err != nil {
		return err
	}
	v, err := args.cstring(op, value)
	if err != nil {
		return err
	}
	e.methods.SetAttribute(e.ptr, n, v, es)
	return es.takeError(op)
}
