package binding

// Document wraps the native document.
type Document struct {
	ContainerNode
	methods *DocumentMethodTable
}

var _ ContainerNodeMethods = (*Document)(nil)

// InitializeDocument wraps ptr.
func InitializeDocument(ptr OpaquePtr, ctx *ExecutingContext, methods *DocumentMethodTable) *Document {
	return &Document{
		ContainerNode: *InitializeContainerNode(ptr, ctx, methods.ContainerNode),
		methods:       methods,
	}
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tagName string, es *ExceptionState) (*Element, error) {
	const op = "Document.createElement"
	es = d.context.exceptionState(es)
	args := d.context.newArgs()
	defer args.release()
	tag, err := args.cstring(op, tagName)
	if err != nil {
		return nil, err
	}
	v := d.methods.CreateElement(d.ptr, tag, es)
	if err := es.takeError(op); err != nil {
		return nil, err
	}
	return InitializeElement(v.Ptr, d.context, v.Methods), nil
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(data string, es *ExceptionState) (*Node, error) {
	const op = "Document.createTextNode"
	es = d.context.exceptionState(es)
	args := d.context.newArgs()
	defer args.release()
	p, err := args.cstring(op, data)
	if err != nil {
		return nil, err
	}
	v := d.methods.CreateTextNode(d.ptr, p, es)
	if err := es.takeError(op); err != nil {
		return nil, err
	}
	return InitializeNode(v.Ptr, d.context, v.Methods), nil
}

// CreateEvent creates an uninitialized event of the given interface name,
// e.g. "Event". Initialize it with InitEvent before dispatching, and Release
// it when done.
func (d *Document) CreateEvent(eventInterface string, es *ExceptionState) (*Event, error) {
	const op = "Document.createEvent"
	es = d.context.exceptionState(es)
	args := d.context.newArgs()
	defer args.release()
	p, err := args.cstring(op, eventInterface)
	if err != nil {
		return nil, err
	}
	v := d.methods.CreateEvent(d.ptr, p, es)
	if err := es.takeError(op); err != nil {
		return nil, err
	}
	return InitializeEvent(v.Ptr, d.context, v.Methods, nil), nil
}

// DocumentElement returns the root element, if any.
func (d *Document) DocumentElement() (*Element, bool) {
	return elementFromValue(d.context, d.methods.DocumentElement(d.ptr))
}

// Body returns the body element, if any.
func (d *Document) Body() (*Element, bool) {
	return elementFromValue(d.context, d.methods.Body(d.ptr))
}
