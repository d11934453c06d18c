package binding

// ContainerNodeMethods is implemented by nodes that may have children.
type ContainerNodeMethods interface {
	NodeMethods
	AsContainerNode() *ContainerNode
}

// ContainerNode wraps a node that may have children. It has no operations of
// its own beyond its Node.
type ContainerNode struct {
	Node
	methods *ContainerNodeMethodTable
}

var _ ContainerNodeMethods = (*ContainerNode)(nil)

// InitializeContainerNode wraps ptr; the Node level is served by
// methods.Node.
func InitializeContainerNode(ptr OpaquePtr, ctx *ExecutingContext, methods *ContainerNodeMethodTable) *ContainerNode {
	return &ContainerNode{
		Node:    *InitializeNode(ptr, ctx, methods.Node),
		methods: methods,
	}
}

// AsContainerNode returns n.
func (n *ContainerNode) AsContainerNode() *ContainerNode {
	return n
}
