package native

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
	"github.com/wippyai/dombind/resource"
)

type kind uint8

const (
	kindContext kind = iota + 1
	kindDocument
	kindElement
	kindText
	kindWindow
	kindEvent
)

func (k kind) String() string {
	switch k {
	case kindContext:
		return "context"
	case kindDocument:
		return "document"
	case kindElement:
		return "element"
	case kindText:
		return "text"
	case kindWindow:
		return "window"
	case kindEvent:
		return "event"
	default:
		return "unknown"
	}
}

const (
	objectTypeID uint32 = 1

	// headerSize is the size of the heap block an OpaquePtr points at:
	// a u32 object table handle followed by a u8 kind.
	headerSize  = 8
	headerAlign = 4
)

type attr struct {
	name  string
	value string
}

type interned struct {
	value string
	ptr   uint32
}

// object is the engine side of an OpaquePtr.
type object struct {
	parent    *object
	event     *eventState
	strings   map[string]interned
	name      string
	data      string
	children  []*object
	attrs     []attr
	listeners []*registration
	status    binding.ValueStatus
	handle    resource.Handle
	ptr       binding.OpaquePtr
	kind      kind
}

func (o *object) isNode() bool {
	return o.kind == kindDocument || o.kind == kindElement || o.kind == kindText
}

func (o *object) canHaveChildren() bool {
	return o.kind == kindDocument || o.kind == kindElement
}

// isInclusiveAncestorOf reports whether o is n or one of n's ancestors.
func (o *object) isInclusiveAncestorOf(n *object) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur == o {
			return true
		}
	}
	return false
}

func (o *object) indexOf(child *object) int {
	for i, c := range o.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (o *object) detach() {
	if o.parent == nil {
		return
	}
	if i := o.parent.indexOf(o); i >= 0 {
		o.parent.children = append(o.parent.children[:i], o.parent.children[i+1:]...)
	}
	o.parent = nil
}

func (o *object) firstElementChild() *object {
	for _, c := range o.children {
		if c.kind == kindElement {
			return c
		}
	}
	return nil
}

func (o *object) attribute(name string) (string, bool) {
	for _, a := range o.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

func (o *object) setAttribute(name, value string) {
	for i, a := range o.attrs {
		if a.name == name {
			o.attrs[i].value = value
			return
		}
	}
	o.attrs = append(o.attrs, attr{name: name, value: value})
}

func (o *object) nodeName() string {
	switch o.kind {
	case kindElement:
		return strings.ToUpper(o.name)
	case kindText:
		return "#text"
	case kindDocument:
		return "#document"
	default:
		return ""
	}
}

func (o *object) nodeType() int32 {
	switch o.kind {
	case kindElement:
		return binding.ElementNode
	case kindText:
		return binding.TextNode
	case kindDocument:
		return binding.DocumentNode
	default:
		return 0
	}
}

func (o *object) textContent(b *strings.Builder) {
	switch o.kind {
	case kindText:
		b.WriteString(o.data)
	case kindElement:
		for _, c := range o.children {
			c.textContent(b)
		}
	}
}

// subtree returns o followed by its descendants in tree order.
func (o *object) subtree() []*object {
	out := []*object{o}
	for _, c := range o.children {
		out = append(out, c.subtree()...)
	}
	return out
}

// newObject allocates a header for a fresh object. Must be called with
// e.mu held.
func (e *Engine) newObject(k kind) (*object, error) {
	o := &object{kind: k}
	h := e.objects.Insert(o)
	if h == 0 {
		return nil, errInvalidState("The engine is closed.")
	}

	ptr, err := e.heap.Alloc(headerSize, headerAlign)
	if err != nil {
		e.objects.Remove(h)
		return nil, err
	}
	if err := e.heap.WriteU32(ptr, uint32(h)); err != nil {
		e.heap.Free(ptr, headerSize, headerAlign)
		e.objects.Remove(h)
		return nil, err
	}
	if err := e.heap.WriteU8(ptr+4, uint8(k)); err != nil {
		e.heap.Free(ptr, headerSize, headerAlign)
		e.objects.Remove(h)
		return nil, err
	}

	o.handle = h
	o.ptr = binding.OpaquePtr(ptr)
	return o, nil
}

// lookup resolves ptr through its header. It returns nil for null, freed or
// foreign pointers. Must be called with e.mu held.
func (e *Engine) lookup(ptr binding.OpaquePtr) *object {
	if ptr == 0 {
		return nil
	}
	h, err := e.heap.ReadU32(uint32(ptr))
	if err != nil {
		return nil
	}
	k, err := e.heap.ReadU8(uint32(ptr) + 4)
	if err != nil {
		return nil
	}
	o, ok := e.objects.Get(resource.Handle(h))
	if !ok || o.ptr != ptr || uint8(o.kind) != k {
		return nil
	}
	return o
}

// freeObject releases o's header and strings. o must already be disposed.
// Must be called with e.mu held.
func (e *Engine) freeObject(o *object) {
	e.releaseStrings(o)
	if err := e.heap.WriteU32(uint32(o.ptr), 0); err != nil {
		e.logger.Debug("clear object header", zap.Error(err))
	}
	e.heap.Free(uint32(o.ptr), headerSize, headerAlign)
	e.objects.Remove(o.handle)
}

// intern returns a borrowed copy of value that stays valid until the next
// intern of key on o or until o is freed. Must be called with e.mu held.
func (e *Engine) intern(o *object, key, value string) binding.CString {
	if s, ok := o.strings[key]; ok {
		if s.value == value {
			return binding.CString(s.ptr)
		}
		e.heap.FreeCString(s.ptr, len(s.value))
		delete(o.strings, key)
	}
	ptr, err := e.heap.AllocCString(value)
	if err != nil {
		e.logger.Error("cannot intern string", zap.String("key", key), zap.Error(err))
		return 0
	}
	if o.strings == nil {
		o.strings = make(map[string]interned)
	}
	o.strings[key] = interned{value: value, ptr: ptr}
	return binding.CString(ptr)
}

func (e *Engine) releaseStrings(o *object) {
	for key, s := range o.strings {
		e.heap.FreeCString(s.ptr, len(s.value))
		delete(o.strings, key)
	}
}

// dup returns a fresh copy of s owned by the caller.
func (e *Engine) dup(s string) binding.CString {
	ptr, err := e.heap.AllocCString(s)
	if err != nil {
		e.logger.Error("cannot duplicate string", zap.Error(err))
		return 0
	}
	return binding.CString(ptr)
}

// arg copies a caller-owned argument string.
func (e *Engine) arg(p binding.CString) string {
	if p == 0 {
		return ""
	}
	s, err := e.heap.ReadCString(uint32(p))
	if err != nil {
		e.logger.Warn("unreadable argument string", zap.Uint32("ptr", uint32(p)), zap.Error(err))
		return ""
	}
	return s
}
