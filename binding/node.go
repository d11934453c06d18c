package binding

import (
	"github.com/wippyai/dombind/errors"
)

// Node types as reported by NodeType.
const (
	ElementNode  int32 = 1
	TextNode     int32 = 3
	DocumentNode int32 = 9
)

// NodeMethods is implemented by every wrapper that is a tree node.
type NodeMethods interface {
	EventTargetMethods
	AppendChild(newNode NodeMethods, es *ExceptionState) (NodeMethods, error)
	RemoveChild(child NodeMethods, es *ExceptionState) (NodeMethods, error)
	AsNode() *Node
}

// Node wraps a native tree node. It embeds its EventTarget by value.
type Node struct {
	EventTarget
	methods *NodeMethodTable
}

var _ NodeMethods = (*Node)(nil)

// InitializeNode wraps ptr; the EventTarget level is served by
// methods.EventTarget.
func InitializeNode(ptr OpaquePtr, ctx *ExecutingContext, methods *NodeMethodTable) *Node {
	return &Node{
		EventTarget: EventTarget{context: ctx, methods: methods.EventTarget, ptr: ptr},
		methods:     methods,
	}
}

func nodeFromValue(ctx *ExecutingContext, v NodeValue) (*Node, bool) {
	if v.Ptr == 0 || v.Methods == nil {
		return nil, false
	}
	return InitializeNode(v.Ptr, ctx, v.Methods), true
}

// AsNode returns n.
func (n *Node) AsNode() *Node {
	return n
}

// AppendChild appends newNode to n's children, moving it if it is already
// attached elsewhere. The result is newNode itself.
func (n *Node) AppendChild(newNode NodeMethods, es *ExceptionState) (NodeMethods, error) {
	const op = "Node.appendChild"
	if newNode == nil {
		panic(errors.Precondition(op, "nil node"))
	}
	es = n.context.exceptionState(es)
	n.methods.AppendChild(n.ptr, newNode.Ptr(), es)
	if err := es.takeError(op); err != nil {
		return nil, err
	}
	return newNode, nil
}

// RemoveChild detaches child from n. The detached node stays owned by the
// engine and can be re-inserted.
func (n *Node) RemoveChild(child NodeMethods, es *ExceptionState) (NodeMethods, error) {
	const op = "Node.removeChild"
	if child == nil {
		panic(errors.Precondition(op, "nil node"))
	}
	es = n.context.exceptionState(es)
	n.methods.RemoveChild(n.ptr, child.Ptr(), es)
	if err := es.takeError(op); err != nil {
		return nil, err
	}
	return child, nil
}

// AppendChild appends child to parent and returns child with its concrete
// type intact.
func AppendChild[T NodeMethods](parent NodeMethods, child T, es *ExceptionState) (T, error) {
	if _, err := parent.AppendChild(child, es); err != nil {
		var zero T
		return zero, err
	}
	return child, nil
}

// RemoveChild removes child from parent and returns child with its concrete
// type intact.
func RemoveChild[T NodeMethods](parent NodeMethods, child T, es *ExceptionState) (T, error) {
	if _, err := parent.RemoveChild(child, es); err != nil {
		var zero T
		return zero, err
	}
	return child, nil
}

// ParentNode returns the parent, or false for a detached node or the document.
func (n *Node) ParentNode() (*Node, bool) {
	return nodeFromValue(n.context, n.methods.ParentNode(n.ptr))
}

// FirstChild returns the first child, if any.
func (n *Node) FirstChild() (*Node, bool) {
	return nodeFromValue(n.context, n.methods.FirstChild(n.ptr))
}

// LastChild returns the last child, if any.
func (n *Node) LastChild() (*Node, bool) {
	return nodeFromValue(n.context, n.methods.LastChild(n.ptr))
}

// NextSibling returns the following sibling, if any.
func (n *Node) NextSibling() (*Node, bool) {
	return nodeFromValue(n.context, n.methods.NextSibling(n.ptr))
}

// PreviousSibling returns the preceding sibling, if any.
func (n *Node) PreviousSibling() (*Node, bool) {
	return nodeFromValue(n.context, n.methods.PreviousSibling(n.ptr))
}

// ChildNodes walks n's children in order.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for c, ok := n.FirstChild(); ok; c, ok = c.NextSibling() {
		out = append(out, c)
	}
	return out
}

// NodeType returns the DOM node type constant, such as 1 for an element.
func (n *Node) NodeType() int32 {
	return n.methods.NodeType(n.ptr)
}

// NodeName returns the node name. The native string is borrowed and copied.
func (n *Node) NodeName() string {
	return n.context.readBorrowed("Node.nodeName", n.methods.NodeName(n.ptr))
}

// TextContent returns the concatenated text of n and its descendants. The
// native side hands over a fresh copy, which is released after reading.
func (n *Node) TextContent() string {
	return n.context.readOwned("Node.textContent", n.methods.TextContent(n.ptr))
}

// IsSameNode reports whether other refers to the same native node.
func (n *Node) IsSameNode(other NodeMethods) bool {
	return other != nil && other.Ptr() == n.ptr && other.Context() == n.context
}
