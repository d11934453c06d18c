package script

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
	"github.com/wippyai/dombind/binding/events"
)

func (r *Runtime) bindTarget(obj *goja.Object, t binding.EventTargetMethods) {
	r.method(obj, "addEventListener", func(call goja.FunctionCall) goja.Value {
		l, ok := r.listenerArg(call.Argument(1), true)
		if !ok {
			return goja.Undefined()
		}
		opts := r.listenerOptions(call.Argument(2))
		r.check(t.AddEventListener(call.Argument(0).String(), l, &opts, nil))
		return goja.Undefined()
	})
	r.method(obj, "removeEventListener", func(call goja.FunctionCall) goja.Value {
		l, ok := r.listenerArg(call.Argument(1), false)
		if !ok {
			return goja.Undefined()
		}
		r.check(t.RemoveEventListener(call.Argument(0).String(), l, nil))
		return goja.Undefined()
	})
	r.method(obj, "dispatchEvent", func(call goja.FunctionCall) goja.Value {
		ref := r.eventArg(call.Argument(0))
		ok, err := t.DispatchEvent(ref.ev, nil)
		r.check(err)
		return r.vm.ToValue(ok)
	})
}

// listenerOptions reads the third addEventListener argument: either a
// boolean capture flag or an options object.
func (r *Runtime) listenerOptions(v goja.Value) binding.AddEventListenerOptions {
	var opts binding.AddEventListenerOptions
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return opts
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		opts.Capture = v.ToBoolean()
		return opts
	}
	flag := func(name string) bool {
		f := obj.Get(name)
		return f != nil && f.ToBoolean()
	}
	opts.Capture = flag("capture")
	opts.Once = flag("once")
	opts.Passive = flag("passive")
	return opts
}

// listenerArg maps a JavaScript function to its EventListener. The same
// function always maps to the same listener, so removeEventListener finds
// what addEventListener registered. Non-object arguments are ignored.
func (r *Runtime) listenerArg(v goja.Value, create bool) (*binding.EventListener, bool) {
	fnObj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	if l, ok := r.listeners[fnObj]; ok {
		return l, true
	}
	if !create {
		// Never registered: the engine still gets to answer the removal.
		return binding.NewEventListener(func(*binding.Event) {}), true
	}
	fn, ok := goja.AssertFunction(fnObj)
	if !ok {
		r.throwTypeError("Failed to execute 'addEventListener' on 'EventTarget': parameter 2 is not a function.")
	}

	l := binding.NewEventListener(func(e *binding.Event) {
		r.callListener(fn, e)
	})
	r.listeners[fnObj] = l
	return l, true
}

func (r *Runtime) callListener(fn goja.Callable, e *binding.Event) {
	ref, owned := r.events[e.Ptr()]
	if !owned {
		ref = r.wrapEvent(e)
		defer ref.freeze()
	}

	this := goja.Undefined()
	if ct, ok := e.CurrentTarget(); ok {
		if obj, ok := r.objects[ct.Ptr()]; ok {
			this = obj
		}
	}
	if _, err := fn(this, ref.obj); err != nil {
		r.report(err)
	}
}

func (r *Runtime) eventArg(v goja.Value) *eventRef {
	if obj, ok := v.(*goja.Object); ok {
		if ref, ok := r.eventObjects[obj]; ok {
			return ref
		}
	}
	r.throwTypeError("Failed to execute 'dispatchEvent' on 'EventTarget': parameter 1 is not of type 'Event'.")
	return nil
}

// eventRef is the JavaScript view of one event. Events handed to listeners
// are only valid while the listener runs; freeze snapshots every property
// so a script that keeps the object sees the last values instead of a freed
// handle.
type eventRef struct {
	obj      *goja.Object
	ev       binding.EventMethods
	getters  map[string]func() goja.Value
	snapshot map[string]goja.Value
	frozen   bool
}

func (ref *eventRef) freeze() {
	ref.snapshot = make(map[string]goja.Value, len(ref.getters))
	for name, get := range ref.getters {
		ref.snapshot[name] = get()
	}
	ref.frozen = true
}

func (r *Runtime) wrapEvent(ev binding.EventMethods) *eventRef {
	ref := &eventRef{
		obj:     r.vm.NewObject(),
		ev:      ev,
		getters: make(map[string]func() goja.Value),
	}

	prop := func(name string, get func() goja.Value) {
		ref.getters[name] = get
		r.getter(ref.obj, name, func() goja.Value {
			if ref.frozen {
				return ref.snapshot[name]
			}
			return get()
		})
	}
	target := func(get func() (*binding.EventTarget, bool)) func() goja.Value {
		return func() goja.Value {
			t, ok := get()
			if !ok {
				return goja.Null()
			}
			if obj, ok := r.objects[t.Ptr()]; ok {
				return obj
			}
			return goja.Null()
		}
	}
	call := func(name string, fn func(es *binding.ExceptionState) error) {
		r.method(ref.obj, name, func(goja.FunctionCall) goja.Value {
			if !ref.frozen {
				r.check(fn(nil))
			}
			return goja.Undefined()
		})
	}

	prop("type", func() goja.Value { return r.vm.ToValue(ev.Type()) })
	prop("bubbles", func() goja.Value { return r.vm.ToValue(ev.Bubbles()) })
	prop("cancelable", func() goja.Value { return r.vm.ToValue(ev.Cancelable()) })
	prop("defaultPrevented", func() goja.Value { return r.vm.ToValue(ev.DefaultPrevented()) })
	prop("isTrusted", func() goja.Value { return r.vm.ToValue(ev.IsTrusted()) })
	prop("timeStamp", func() goja.Value { return r.vm.ToValue(ev.TimeStamp()) })
	prop("cancelBubble", func() goja.Value { return r.vm.ToValue(ev.CancelBubble()) })
	prop("target", target(ev.Target))
	prop("currentTarget", target(ev.CurrentTarget))
	prop("srcElement", target(ev.SrcElement))

	call("preventDefault", ev.PreventDefault)
	call("stopPropagation", ev.StopPropagation)
	call("stopImmediatePropagation", ev.StopImmediatePropagation)
	r.method(ref.obj, "initEvent", func(c goja.FunctionCall) goja.Value {
		if !ref.frozen {
			r.check(ev.InitEvent(c.Argument(0).String(), c.Argument(1).ToBoolean(), c.Argument(2).ToBoolean(), nil))
		}
		return goja.Undefined()
	})

	if hc, ok := events.AsHashchangeEvent(ev); ok {
		prop("newURL", func() goja.Value { return r.vm.ToValue(hc.NewURL()) })
		prop("oldURL", func() goja.Value { return r.vm.ToValue(hc.OldURL()) })
	}
	if ce, ok := events.AsCloseEvent(ev); ok {
		prop("code", func() goja.Value { return r.vm.ToValue(ce.Code()) })
		prop("reason", func() goja.Value { return r.vm.ToValue(ce.Reason()) })
		prop("wasClean", func() goja.Value { return r.vm.ToValue(ce.WasClean()) })
	}

	r.logger.Debug("event wrapped", zap.Uint32("event", uint32(ev.Ptr())))
	return ref
}
