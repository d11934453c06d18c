package native

import (
	"github.com/wippyai/dombind/binding"
	"github.com/wippyai/dombind/binding/events"
)

// buildTables fills in every method table. Derived tables point at (or, for
// events, embed) their base so one table serves all levels of an object.
func (e *Engine) buildTables() {
	t := &e.tables
	v := binding.ABIVersion

	t.eventTarget = binding.EventTargetMethodTable{
		Version:             v,
		AddEventListener:    e.addEventListener,
		RemoveEventListener: e.removeEventListener,
		DispatchEvent:       e.dispatchEvent,
		Release:             e.releaseTarget,
	}
	t.node = binding.NodeMethodTable{
		Version:         v,
		EventTarget:     &t.eventTarget,
		AppendChild:     e.appendChild,
		RemoveChild:     e.removeChild,
		ParentNode:      e.parentNode,
		FirstChild:      e.firstChild,
		LastChild:       e.lastChild,
		NextSibling:     e.nextSibling,
		PreviousSibling: e.previousSibling,
		NodeType:        e.nodeType,
		NodeName:        e.nodeName,
		TextContent:     e.textContent,
	}
	t.containerNode = binding.ContainerNodeMethodTable{
		Version: v,
		Node:    &t.node,
	}
	t.element = binding.ElementMethodTable{
		Version:       v,
		ContainerNode: &t.containerNode,
		TagName:       e.tagName,
		GetAttribute:  e.getAttribute,
		HasAttribute:  e.hasAttribute,
		SetAttribute:  e.setAttribute,
	}
	t.document = binding.DocumentMethodTable{
		Version:         v,
		ContainerNode:   &t.containerNode,
		CreateElement:   e.createElement,
		CreateTextNode:  e.createTextNode,
		CreateEvent:     e.createEvent,
		DocumentElement: e.documentElement,
		Body:            e.body,
	}
	t.window = binding.WindowMethodTable{
		Version:     v,
		EventTarget: &t.eventTarget,
		Href:        e.href,
		SetHash:     e.setHash,
	}
	t.event = binding.EventMethodTable{
		Version:                  v,
		Bubbles:                  e.eventBubbles,
		CancelBubble:             e.eventCancelBubble,
		SetCancelBubble:          e.eventSetCancelBubble,
		Cancelable:               e.eventCancelable,
		CurrentTarget:            e.eventCurrentTarget,
		DefaultPrevented:         e.eventDefaultPrevented,
		SrcElement:               e.eventTarget,
		Target:                   e.eventTarget,
		IsTrusted:                e.eventIsTrusted,
		TimeStamp:                e.eventTimeStamp,
		Type:                     e.eventType,
		InitEvent:                e.initEvent,
		PreventDefault:           e.preventDefault,
		StopImmediatePropagation: e.stopImmediatePropagation,
		StopPropagation:          e.stopPropagation,
		Release:                  e.releaseEvent,
	}
	t.hashchange = events.HashchangeEventMethodTable{
		Version:   v,
		Event:     t.event,
		NewURL:    e.hashchangeNewURL,
		DupNewURL: e.hashchangeDupNewURL,
		OldURL:    e.hashchangeOldURL,
		DupOldURL: e.hashchangeDupOldURL,
	}
	t.closeEvent = events.CloseEventMethodTable{
		Version:   v,
		Event:     t.event,
		Code:      e.closeCode,
		Reason:    e.closeReason,
		DupReason: e.closeDupReason,
		WasClean:  e.closeWasClean,
	}
	t.context = binding.ExecutingContextMethodTable{
		Version:  v,
		Document: e.contextDocument,
		Window:   e.contextWindow,
	}
}

func (e *Engine) contextDocument(binding.OpaquePtr) binding.DocumentValue {
	return binding.DocumentValue{Methods: &e.tables.document, Ptr: e.document.ptr}
}

func (e *Engine) contextWindow(binding.OpaquePtr) binding.WindowValue {
	return binding.WindowValue{Methods: &e.tables.window, Ptr: e.window.ptr}
}

func (e *Engine) nodeValue(o *object) binding.NodeValue {
	if o == nil {
		return binding.NodeValue{}
	}
	return binding.NodeValue{Methods: &e.tables.node, Ptr: o.ptr}
}

func (e *Engine) elementValue(o *object) binding.ElementValue {
	if o == nil || o.kind != kindElement {
		return binding.ElementValue{}
	}
	return binding.ElementValue{Methods: &e.tables.element, Ptr: o.ptr}
}

func (e *Engine) targetValue(o *object) binding.EventTargetValue {
	if o == nil {
		return binding.EventTargetValue{}
	}
	return binding.EventTargetValue{Methods: &e.tables.eventTarget, Ptr: o.ptr}
}
