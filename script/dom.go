package script

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/wippyai/dombind/binding"
)

func (r *Runtime) installDocument() *goja.Object {
	doc := r.ctx.Document()
	obj := r.wrapNode(doc.AsNode()).(*goja.Object)

	r.method(obj, "createElement", func(call goja.FunctionCall) goja.Value {
		el, err := doc.CreateElement(call.Argument(0).String(), nil)
		r.check(err)
		return r.wrapElement(el)
	})
	r.method(obj, "createTextNode", func(call goja.FunctionCall) goja.Value {
		n, err := doc.CreateTextNode(call.Argument(0).String(), nil)
		r.check(err)
		return r.wrapNode(n)
	})
	r.method(obj, "createEvent", func(call goja.FunctionCall) goja.Value {
		ev, err := doc.CreateEvent(call.Argument(0).String(), nil)
		r.check(err)
		r.created = append(r.created, ev)
		ref := r.wrapEvent(ev)
		r.events[ev.Ptr()] = ref
		r.eventObjects[ref.obj] = ref
		return ref.obj
	})
	r.getter(obj, "documentElement", func() goja.Value {
		el, ok := doc.DocumentElement()
		if !ok {
			return goja.Null()
		}
		return r.wrapElement(el)
	})
	r.getter(obj, "body", func() goja.Value {
		el, ok := doc.Body()
		if !ok {
			return goja.Null()
		}
		return r.wrapElement(el)
	})

	_ = r.vm.Set("document", obj)
	return obj
}

func (r *Runtime) installWindow(doc *goja.Object) {
	win := r.ctx.Window()
	obj := r.vm.NewObject()
	r.objects[win.Ptr()] = obj
	r.refs[obj] = &targetRef{target: win}
	r.bindTarget(obj, win)

	location := r.vm.NewObject()
	r.getter(location, "href", func() goja.Value {
		return r.vm.ToValue(win.Href())
	})
	r.accessor(location, "hash", func() goja.Value {
		href := win.Href()
		if i := strings.IndexByte(href, '#'); i >= 0 && i < len(href)-1 {
			return r.vm.ToValue(href[i:])
		}
		return r.vm.ToValue("")
	}, func(v goja.Value) {
		r.check(win.SetHash(v.String(), nil))
	})
	r.method(location, "toString", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(win.Href())
	})

	_ = obj.Set("location", location)
	_ = obj.Set("document", doc)
	_ = r.vm.Set("window", obj)
}

// wrapNode returns the cached object for n, building it on first sight.
// Element methods are added when the node turns out to be an element.
func (r *Runtime) wrapNode(n *binding.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := r.objects[n.Ptr()]; ok {
		return obj
	}

	obj := r.vm.NewObject()
	r.objects[n.Ptr()] = obj
	r.refs[obj] = &targetRef{target: n, node: n}
	r.bindTarget(obj, n)
	r.bindNode(obj, n)
	return obj
}

func (r *Runtime) wrapElement(el *binding.Element) goja.Value {
	if el == nil {
		return goja.Null()
	}
	obj := r.wrapNode(el.AsNode()).(*goja.Object)
	ref := r.refs[obj]
	if ref.element == nil {
		ref.element = el
		r.bindElement(obj, el)
	}
	return obj
}

// relative adapts a traversal accessor to a JavaScript value.
func (r *Runtime) relative(get func() (*binding.Node, bool)) func() goja.Value {
	return func() goja.Value {
		n, ok := get()
		if !ok {
			return goja.Null()
		}
		return r.wrapNode(n)
	}
}

// nodeArg resolves a JavaScript argument to the node it wraps.
func (r *Runtime) nodeArg(v goja.Value, method string) *binding.Node {
	if obj, ok := v.(*goja.Object); ok {
		if ref, ok := r.refs[obj]; ok && ref.node != nil {
			return ref.node
		}
	}
	r.throwTypeError("Failed to execute '%s' on 'Node': parameter 1 is not of type 'Node'.", method)
	return nil
}

func (r *Runtime) bindNode(obj *goja.Object, n *binding.Node) {
	r.getter(obj, "nodeType", func() goja.Value {
		return r.vm.ToValue(n.NodeType())
	})
	r.getter(obj, "nodeName", func() goja.Value {
		return r.vm.ToValue(n.NodeName())
	})
	r.getter(obj, "textContent", func() goja.Value {
		if n.NodeType() == binding.DocumentNode {
			return goja.Null()
		}
		return r.vm.ToValue(n.TextContent())
	})
	r.getter(obj, "parentNode", r.relative(n.ParentNode))
	r.getter(obj, "firstChild", r.relative(n.FirstChild))
	r.getter(obj, "lastChild", r.relative(n.LastChild))
	r.getter(obj, "nextSibling", r.relative(n.NextSibling))
	r.getter(obj, "previousSibling", r.relative(n.PreviousSibling))
	r.getter(obj, "childNodes", func() goja.Value {
		children := n.ChildNodes()
		items := make([]any, len(children))
		for i, c := range children {
			items[i] = r.wrapNode(c)
		}
		return r.vm.NewArray(items...)
	})

	r.method(obj, "appendChild", func(call goja.FunctionCall) goja.Value {
		child := r.nodeArg(call.Argument(0), "appendChild")
		res, err := n.AppendChild(child, nil)
		r.check(err)
		return r.wrapNode(res.AsNode())
	})
	r.method(obj, "removeChild", func(call goja.FunctionCall) goja.Value {
		child := r.nodeArg(call.Argument(0), "removeChild")
		res, err := n.RemoveChild(child, nil)
		r.check(err)
		return r.wrapNode(res.AsNode())
	})
	r.method(obj, "hasChildNodes", func(goja.FunctionCall) goja.Value {
		_, ok := n.FirstChild()
		return r.vm.ToValue(ok)
	})
	r.method(obj, "isSameNode", func(call goja.FunctionCall) goja.Value {
		other, ok := call.Argument(0).(*goja.Object)
		if !ok {
			return r.vm.ToValue(false)
		}
		ref, ok := r.refs[other]
		return r.vm.ToValue(ok && ref.node != nil && n.IsSameNode(ref.node))
	})
}

func (r *Runtime) bindElement(obj *goja.Object, el *binding.Element) {
	r.getter(obj, "tagName", func() goja.Value {
		return r.vm.ToValue(el.TagName())
	})
	r.method(obj, "getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok, err := el.GetAttribute(call.Argument(0).String())
		r.check(err)
		if !ok {
			return goja.Null()
		}
		return r.vm.ToValue(v)
	})
	r.method(obj, "hasAttribute", func(call goja.FunctionCall) goja.Value {
		ok, err := el.HasAttribute(call.Argument(0).String())
		r.check(err)
		return r.vm.ToValue(ok)
	})
	r.method(obj, "setAttribute", func(call goja.FunctionCall) goja.Value {
		r.check(el.SetAttribute(call.Argument(0).String(), call.Argument(1).String(), nil))
		return goja.Undefined()
	})
	r.accessor(obj, "id", func() goja.Value {
		v, _, err := el.GetAttribute("id")
		r.check(err)
		return r.vm.ToValue(v)
	}, func(v goja.Value) {
		r.check(el.SetAttribute("id", v.String(), nil))
	})
}
