package native

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
)

// node resolves ptr to a live node. Must be called with e.mu held.
func (e *Engine) node(ptr binding.OpaquePtr) (*object, *domError) {
	o := e.lookup(ptr)
	if o == nil || !o.isNode() {
		return nil, errInvalidState("The object is not a node.")
	}
	if o.status.Disposed {
		return nil, errInvalidState("The node has been disposed.")
	}
	return o, nil
}

// validateAppend checks that node may become the last child of parent.
func validateAppend(parent, node *object) *domError {
	if !parent.canHaveChildren() {
		return errHierarchyRequest("The operation would yield an incorrect node tree.")
	}
	if node.kind == kindDocument {
		return errHierarchyRequest("The operation would yield an incorrect node tree.")
	}
	if node.isInclusiveAncestorOf(parent) {
		return errHierarchyRequest("The new child element contains the parent.")
	}
	if parent.kind == kindDocument {
		if node.kind == kindText {
			return errHierarchyRequest("Cannot insert Text node as a direct child of Document.")
		}
		if el := parent.firstElementChild(); el != nil && el != node {
			return errHierarchyRequest("Document can have only one element child.")
		}
	}
	return nil
}

func (e *Engine) appendChild(ptr, newNode binding.OpaquePtr, es *binding.ExceptionState) binding.NodeValue {
	e.mu.Lock()
	parent, derr := e.node(ptr)
	var child *object
	if derr == nil {
		child, derr = e.node(newNode)
	}
	if derr == nil {
		derr = validateAppend(parent, child)
	}
	if derr != nil {
		e.mu.Unlock()
		e.raise(es, derr)
		return binding.NodeValue{}
	}

	child.detach()
	child.parent = parent
	parent.children = append(parent.children, child)
	e.mu.Unlock()

	return e.nodeValue(child)
}

func (e *Engine) removeChild(ptr, child binding.OpaquePtr, es *binding.ExceptionState) binding.NodeValue {
	e.mu.Lock()
	parent, derr := e.node(ptr)
	var c *object
	if derr == nil {
		c, derr = e.node(child)
	}
	if derr == nil && c.parent != parent {
		derr = errNotFound("The node to be removed is not a child of this node.")
	}
	if derr != nil {
		e.mu.Unlock()
		e.raise(es, derr)
		return binding.NodeValue{}
	}

	c.detach()
	e.mu.Unlock()
	return e.nodeValue(c)
}

// relative resolves a traversal from ptr. Disposed or unknown nodes have no
// relatives.
func (e *Engine) relative(ptr binding.OpaquePtr, pick func(o *object) *object) binding.NodeValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, derr := e.node(ptr)
	if derr != nil {
		return binding.NodeValue{}
	}
	return e.nodeValue(pick(o))
}

func (e *Engine) parentNode(ptr binding.OpaquePtr) binding.NodeValue {
	return e.relative(ptr, func(o *object) *object { return o.parent })
}

func (e *Engine) firstChild(ptr binding.OpaquePtr) binding.NodeValue {
	return e.relative(ptr, func(o *object) *object {
		if len(o.children) == 0 {
			return nil
		}
		return o.children[0]
	})
}

func (e *Engine) lastChild(ptr binding.OpaquePtr) binding.NodeValue {
	return e.relative(ptr, func(o *object) *object {
		if len(o.children) == 0 {
			return nil
		}
		return o.children[len(o.children)-1]
	})
}

func (e *Engine) nextSibling(ptr binding.OpaquePtr) binding.NodeValue {
	return e.relative(ptr, func(o *object) *object {
		if o.parent == nil {
			return nil
		}
		i := o.parent.indexOf(o)
		if i < 0 || i+1 >= len(o.parent.children) {
			return nil
		}
		return o.parent.children[i+1]
	})
}

func (e *Engine) previousSibling(ptr binding.OpaquePtr) binding.NodeValue {
	return e.relative(ptr, func(o *object) *object {
		if o.parent == nil {
			return nil
		}
		i := o.parent.indexOf(o)
		if i <= 0 {
			return nil
		}
		return o.parent.children[i-1]
	})
}

func (e *Engine) nodeType(ptr binding.OpaquePtr) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(ptr)
	if o == nil {
		return 0
	}
	return o.nodeType()
}

func (e *Engine) nodeName(ptr binding.OpaquePtr) binding.CString {
	e.mu.Lock()
	defer e.mu.Unlock()
	o := e.lookup(ptr)
	if o == nil || o.status.Disposed {
		return 0
	}
	return e.intern(o, "nodeName", o.nodeName())
}

func (e *Engine) textContent(ptr binding.OpaquePtr) binding.CString {
	e.mu.Lock()
	o := e.lookup(ptr)
	if o == nil || o.status.Disposed || o.kind == kindDocument {
		e.mu.Unlock()
		return 0
	}
	var b strings.Builder
	o.textContent(&b)
	e.mu.Unlock()
	return e.dup(b.String())
}

// Element

func (e *Engine) element(ptr binding.OpaquePtr) (*object, *domError) {
	o, derr := e.node(ptr)
	if derr != nil {
		return nil, derr
	}
	if o.kind != kindElement {
		return nil, errInvalidState("The node is not an element.")
	}
	return o, nil
}

// validName accepts the subset of XML names used for tags and attributes.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.'):
		case r > 0x7f:
		default:
			return false
		}
	}
	return true
}

func (e *Engine) tagName(ptr binding.OpaquePtr) binding.CString {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, derr := e.element(ptr)
	if derr != nil {
		return 0
	}
	return e.intern(o, "tagName", o.nodeName())
}

func (e *Engine) getAttribute(ptr binding.OpaquePtr, name binding.CString) binding.CString {
	key := strings.ToLower(e.arg(name))
	e.mu.Lock()
	o, derr := e.element(ptr)
	if derr != nil {
		e.mu.Unlock()
		return 0
	}
	v, ok := o.attribute(key)
	e.mu.Unlock()
	if !ok {
		return 0
	}
	return e.dup(v)
}

func (e *Engine) hasAttribute(ptr binding.OpaquePtr, name binding.CString) bool {
	key := strings.ToLower(e.arg(name))
	e.mu.Lock()
	defer e.mu.Unlock()
	o, derr := e.element(ptr)
	if derr != nil {
		return false
	}
	_, ok := o.attribute(key)
	return ok
}

func (e *Engine) setAttribute(ptr binding.OpaquePtr, name, value binding.CString, es *binding.ExceptionState) {
	key := e.arg(name)
	val := e.arg(value)
	if !validName(key) {
		e.raise(es, errInvalidCharacter(fmt.Sprintf("'%s' is not a valid attribute name.", key)))
		return
	}
	e.mu.Lock()
	o, derr := e.element(ptr)
	if derr != nil {
		e.mu.Unlock()
		e.raise(es, derr)
		return
	}
	o.setAttribute(strings.ToLower(key), val)
	e.mu.Unlock()
}

// Document

func (e *Engine) createElement(ptr binding.OpaquePtr, tagName binding.CString, es *binding.ExceptionState) binding.ElementValue {
	tag := e.arg(tagName)
	if !validName(tag) {
		e.raise(es, errInvalidCharacter(fmt.Sprintf("The tag name provided ('%s') is not a valid name.", tag)))
		return binding.ElementValue{}
	}

	e.mu.Lock()
	if derr := e.documentCheck(ptr); derr != nil {
		e.mu.Unlock()
		e.raise(es, derr)
		return binding.ElementValue{}
	}
	o, err := e.newObject(kindElement)
	if err != nil {
		e.mu.Unlock()
		e.raise(es, errNotSupported(err.Error()))
		return binding.ElementValue{}
	}
	o.name = strings.ToLower(tag)
	e.mu.Unlock()

	e.logger.Debug("element created", zap.String("tag", o.name), zap.Uint32("ptr", uint32(o.ptr)))
	return e.elementValue(o)
}

func (e *Engine) createTextNode(ptr binding.OpaquePtr, data binding.CString, es *binding.ExceptionState) binding.NodeValue {
	text := e.arg(data)

	e.mu.Lock()
	if derr := e.documentCheck(ptr); derr != nil {
		e.mu.Unlock()
		e.raise(es, derr)
		return binding.NodeValue{}
	}
	o, err := e.newObject(kindText)
	if err != nil {
		e.mu.Unlock()
		e.raise(es, errNotSupported(err.Error()))
		return binding.NodeValue{}
	}
	o.data = text
	e.mu.Unlock()
	return e.nodeValue(o)
}

func (e *Engine) documentCheck(ptr binding.OpaquePtr) *domError {
	o := e.lookup(ptr)
	if o == nil || o.kind != kindDocument {
		return errInvalidState("The object is not a document.")
	}
	if o.status.Disposed {
		return errInvalidState("The document has been disposed.")
	}
	return nil
}

func (e *Engine) documentElement(ptr binding.OpaquePtr) binding.ElementValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.documentCheck(ptr) != nil {
		return binding.ElementValue{}
	}
	return e.elementValue(e.lookup(ptr).firstElementChild())
}

func (e *Engine) body(ptr binding.OpaquePtr) binding.ElementValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.documentCheck(ptr) != nil {
		return binding.ElementValue{}
	}
	root := e.lookup(ptr).firstElementChild()
	if root == nil {
		return binding.ElementValue{}
	}
	for _, c := range root.children {
		if c.kind == kindElement && c.name == "body" {
			return e.elementValue(c)
		}
	}
	return binding.ElementValue{}
}

// Window

func (e *Engine) href(ptr binding.OpaquePtr) binding.CString {
	e.mu.Lock()
	o := e.lookup(ptr)
	if o == nil || o.kind != kindWindow {
		e.mu.Unlock()
		return 0
	}
	u := e.url
	e.mu.Unlock()
	return e.dup(u)
}

func (e *Engine) setHash(ptr binding.OpaquePtr, hash binding.CString, es *binding.ExceptionState) {
	e.updateHash(ptr, e.arg(hash), es)
}

// withFragment returns raw with its fragment replaced by hash. A leading
// "#" in hash is optional; an empty hash clears the fragment.
func withFragment(raw, hash string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	frag := strings.TrimPrefix(hash, "#")
	u.Fragment = ""
	u.RawFragment = ""
	base := u.String()
	if frag == "" {
		return base, nil
	}
	return base + "#" + frag, nil
}

func (e *Engine) updateHash(ptr binding.OpaquePtr, hash string, es *binding.ExceptionState) {
	e.mu.Lock()
	o := e.lookup(ptr)
	if o == nil || o.kind != kindWindow || o.status.Disposed {
		e.mu.Unlock()
		e.raise(es, errInvalidState("The window is not available."))
		return
	}
	oldURL := e.url
	newURL, err := withFragment(oldURL, hash)
	if err != nil {
		e.mu.Unlock()
		e.raise(es, errType(fmt.Sprintf("Invalid URL: %v", err)))
		return
	}
	if newURL == oldURL {
		e.mu.Unlock()
		return
	}
	e.url = newURL

	ev, err := e.newEvent(&e.tables.hashchange, "hashchange", false, false, true)
	if err != nil {
		e.mu.Unlock()
		e.logger.Error("cannot create hashchange event", zap.Error(err))
		return
	}
	ev.event.oldURL = oldURL
	ev.event.newURL = newURL
	e.mu.Unlock()

	e.logger.Debug("hash changed", zap.String("old_url", oldURL), zap.String("new_url", newURL))
	e.dispatch(o, ev)
	e.finishTrusted(ev)
}
