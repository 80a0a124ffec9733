package js

import (
	"net/url"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/vibewindow/idle"
	"github.com/chrisuehlinger/vibewindow/messaging"
	"github.com/chrisuehlinger/vibewindow/window"
)

// scriptListener tracks an addEventListener registration so that
// removeEventListener can find it again by function identity.
type scriptListener struct {
	target *window.Window
	typ    messaging.EventType
	fn     goja.Value
	id     int
}

// setupWindow binds the runtime's own window onto the global object, so
// bare identifiers (postMessage, innerWidth, ...) resolve the way they do
// in a page.
func (r *Runtime) setupWindow() {
	global := r.vm.GlobalObject()
	r.windowObjects[r.win.ContextID()] = global

	r.vm.Set("window", global)
	r.vm.Set("self", global)
	r.vm.Set("globalThis", global)

	r.populateWindow(global, r.win)
	r.setupDialogs(global)
	r.setupPerformance(global)
}

// bindWindow returns the script object for a window, creating and caching
// it on first use. Windows returned from open() and message-event sources
// go through here so the same window is always the same object.
func (r *Runtime) bindWindow(w *window.Window) *goja.Object {
	if obj, ok := r.windowObjects[w.ContextID()]; ok {
		return obj
	}
	obj := r.vm.NewObject()
	r.windowObjects[w.ContextID()] = obj
	r.populateWindow(obj, w)
	return obj
}

// populateWindow attaches the window surface to obj: messaging, open,
// scheduling entry points, geometry and the location object.
func (r *Runtime) populateWindow(obj *goja.Object, w *window.Window) {
	obj.Set("self", obj)
	// Flat window model: every window is its own parent and top.
	obj.Set("parent", obj)
	obj.Set("top", obj)
	obj.Set("closed", false)
	obj.Set("frameElement", goja.Null())

	r.defineAccessor(obj, "name",
		func() goja.Value { return r.vm.ToValue(w.Name()) },
		func(v goja.Value) { w.SetName(v.String()) })

	r.defineAccessor(obj, "opener", func() goja.Value {
		if op := w.Opener(); op != nil {
			return r.bindWindow(op)
		}
		return goja.Null()
	}, nil)

	r.bindGeometry(obj, w)
	r.bindLocation(obj, w)
	r.bindDocument(obj, w)
	r.bindMessaging(obj, w)
	r.bindScheduling(obj, w)

	obj.Set("open", func(call goja.FunctionCall) goja.Value {
		opened, err := w.Open(argString(call, 0), argString(call, 1), argString(call, 2))
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		if opened == nil {
			return goja.Null()
		}
		return r.bindWindow(opened)
	})
}

// bindMessaging wires postMessage (both arities) and the message-event
// listener surface.
func (r *Runtime) bindMessaging(obj *goja.Object, w *window.Window) {
	obj.Set("postMessage", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		message := call.Arguments[0].Export()

		targetOrigin := "/"
		if len(call.Arguments) > 1 {
			arg := call.Arguments[1]
			if dict, ok := arg.(*goja.Object); ok {
				// Dictionary form: postMessage(message, {targetOrigin}).
				if v := dict.Get("targetOrigin"); v != nil && !goja.IsUndefined(v) {
					targetOrigin = v.String()
				}
			} else if !goja.IsUndefined(arg) && !goja.IsNull(arg) {
				targetOrigin = arg.String()
			}
		}

		if err := w.PostMessage(r.win, message, targetOrigin, nil); err != nil {
			panic(r.vm.NewGoError(err))
		}
		return goja.Undefined()
	})

	obj.Set("addEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		et, ok := messageEventType(call.Arguments[0].String())
		if !ok {
			return goja.Undefined()
		}
		fn := call.Arguments[1]
		callback, ok := goja.AssertFunction(fn)
		if !ok {
			return goja.Undefined()
		}

		id := w.MessageEvents().AddListener(et, func(e messaging.Event) error {
			return r.callbackError(callback, r.eventObject(e))
		})
		r.mu.Lock()
		r.listeners = append(r.listeners, scriptListener{target: w, typ: et, fn: fn, id: id})
		r.mu.Unlock()
		return goja.Undefined()
	})

	obj.Set("removeEventListener", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			return goja.Undefined()
		}
		et, ok := messageEventType(call.Arguments[0].String())
		if !ok {
			return goja.Undefined()
		}
		fn := call.Arguments[1]

		r.mu.Lock()
		for i, l := range r.listeners {
			if l.target == w && l.typ == et && l.fn.StrictEquals(fn) {
				w.MessageEvents().RemoveListener(et, l.id)
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				break
			}
		}
		r.mu.Unlock()
		return goja.Undefined()
	})

	r.bindEventHandler(obj, w, "onmessage", messaging.EventMessage)
	r.bindEventHandler(obj, w, "onmessageerror", messaging.EventMessageError)
}

// bindEventHandler defines an onmessage-style handler property: assigning
// a function replaces the previous handler, assigning anything else
// clears it.
func (r *Runtime) bindEventHandler(obj *goja.Object, w *window.Window, name string, et messaging.EventType) {
	var current goja.Value = goja.Null()
	currentID := 0

	r.defineAccessor(obj, name,
		func() goja.Value { return current },
		func(v goja.Value) {
			if currentID != 0 {
				w.MessageEvents().RemoveListener(et, currentID)
				currentID = 0
			}
			current = goja.Null()
			if callback, ok := goja.AssertFunction(v); ok {
				current = v
				currentID = w.MessageEvents().AddListener(et, func(e messaging.Event) error {
					return r.callbackError(callback, r.eventObject(e))
				})
			}
		})
}

// bindScheduling wires requestIdleCallback, requestAnimationFrame and
// their cancel counterparts.
func (r *Runtime) bindScheduling(obj *goja.Object, w *window.Window) {
	obj.Set("requestIdleCallback", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}

		opts := window.IdleRequestOptions{}
		if len(call.Arguments) > 1 {
			if dict, ok := call.Arguments[1].(*goja.Object); ok {
				if v := dict.Get("timeout"); v != nil && !goja.IsUndefined(v) {
					opts.Timeout = time.Duration(v.ToInteger()) * time.Millisecond
				}
			}
		}

		handle := w.RequestIdleCallback(func(d idle.Deadline) error {
			return r.callbackError(callback, r.deadlineObject(d))
		}, opts)
		return r.vm.ToValue(handle)
	})

	obj.Set("cancelIdleCallback", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		w.CancelIdleCallback(uint32(call.Arguments[0].ToInteger()))
		return goja.Undefined()
	})

	obj.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}

		handle := w.RequestAnimationFrame(func(timestamp float64) error {
			return r.callbackError(callback, r.vm.ToValue(timestamp))
		})
		return r.vm.ToValue(handle)
	})

	obj.Set("cancelAnimationFrame", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		w.CancelAnimationFrame(int32(call.Arguments[0].ToInteger()))
		return goja.Undefined()
	})
}

// bindGeometry defines the viewport, scroll and screen getters as live
// accessors backed by the window's geometry supplier.
func (r *Runtime) bindGeometry(obj *goja.Object, w *window.Window) {
	getters := map[string]func() goja.Value{
		"innerWidth":       func() goja.Value { return r.vm.ToValue(w.InnerWidth()) },
		"innerHeight":      func() goja.Value { return r.vm.ToValue(w.InnerHeight()) },
		"outerWidth":       func() goja.Value { return r.vm.ToValue(w.OuterWidth()) },
		"outerHeight":      func() goja.Value { return r.vm.ToValue(w.OuterHeight()) },
		"scrollX":          func() goja.Value { return r.vm.ToValue(w.ScrollX()) },
		"scrollY":          func() goja.Value { return r.vm.ToValue(w.ScrollY()) },
		"pageXOffset":      func() goja.Value { return r.vm.ToValue(w.ScrollX()) },
		"pageYOffset":      func() goja.Value { return r.vm.ToValue(w.ScrollY()) },
		"screenX":          func() goja.Value { return r.vm.ToValue(w.ScreenX()) },
		"screenY":          func() goja.Value { return r.vm.ToValue(w.ScreenY()) },
		"screenLeft":       func() goja.Value { return r.vm.ToValue(w.ScreenX()) },
		"screenTop":        func() goja.Value { return r.vm.ToValue(w.ScreenY()) },
		"devicePixelRatio": func() goja.Value { return r.vm.ToValue(w.DevicePixelRatio()) },
	}
	for name, getter := range getters {
		r.defineAccessor(obj, name, getter, nil)
	}
}

// bindLocation attaches a location object whose fields track the window's
// current document URL.
func (r *Runtime) bindLocation(obj *goja.Object, w *window.Window) {
	location := r.vm.NewObject()

	part := func(extract func(*url.URL) string) func() goja.Value {
		return func() goja.Value {
			parsed, err := url.Parse(w.Document().URL())
			if err != nil {
				return r.vm.ToValue("")
			}
			return r.vm.ToValue(extract(parsed))
		}
	}

	r.defineAccessor(location, "href",
		func() goja.Value { return r.vm.ToValue(w.Document().URL()) }, nil)
	r.defineAccessor(location, "origin",
		func() goja.Value { return r.vm.ToValue(w.DocumentOrigin().Serialize()) }, nil)
	r.defineAccessor(location, "protocol", part(func(u *url.URL) string {
		if u.Scheme == "" {
			return ""
		}
		return u.Scheme + ":"
	}), nil)
	r.defineAccessor(location, "host", part(func(u *url.URL) string { return u.Host }), nil)
	r.defineAccessor(location, "hostname", part(func(u *url.URL) string { return u.Hostname() }), nil)
	r.defineAccessor(location, "pathname", part(func(u *url.URL) string { return u.Path }), nil)
	r.defineAccessor(location, "search", part(func(u *url.URL) string {
		if u.RawQuery == "" {
			return ""
		}
		return "?" + u.RawQuery
	}), nil)
	r.defineAccessor(location, "hash", part(func(u *url.URL) string {
		if u.Fragment == "" {
			return ""
		}
		return "#" + u.Fragment
	}), nil)

	location.Set("toString", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(w.Document().URL())
	})

	obj.Set("location", location)
}

// bindDocument attaches a minimal document object: the URL and named
// lookup over the element tree.
func (r *Runtime) bindDocument(obj *goja.Object, w *window.Window) {
	doc := r.vm.NewObject()

	r.defineAccessor(doc, "URL",
		func() goja.Value { return r.vm.ToValue(w.Document().URL()) }, nil)

	doc.Set("namedItem", func(call goja.FunctionCall) goja.Value {
		node := w.NamedItem(argString(call, 0))
		if node == nil {
			return goja.Null()
		}
		el := r.vm.NewObject()
		el.Set("tagName", strings.ToUpper(node.Data))
		for _, attr := range node.Attr {
			if attr.Key == "id" || attr.Key == "name" {
				el.Set(attr.Key, attr.Val)
			}
		}
		return el
	})

	obj.Set("document", doc)
}

// setupDialogs attaches alert, confirm and prompt stubs that log the
// message and return the dismissed-dialog result.
func (r *Runtime) setupDialogs(obj *goja.Object) {
	obj.Set("alert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			r.log.Info("alert: %s", call.Arguments[0].String())
		}
		return goja.Undefined()
	})

	obj.Set("confirm", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			r.log.Info("confirm: %s", call.Arguments[0].String())
		}
		return r.vm.ToValue(false)
	})

	obj.Set("prompt", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			r.log.Info("prompt: %s", call.Arguments[0].String())
		}
		return goja.Null()
	})
}

// setupPerformance attaches performance.now relative to runtime creation.
func (r *Runtime) setupPerformance(obj *goja.Object) {
	performance := r.vm.NewObject()
	performance.Set("now", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(float64(time.Since(r.start).Nanoseconds()) / 1e6)
	})
	performance.Set("timeOrigin", float64(r.start.UnixNano())/1e6)
	obj.Set("performance", performance)
}

// eventObject converts a delivered message event into its script shape.
func (r *Runtime) eventObject(e messaging.Event) *goja.Object {
	obj := r.vm.NewObject()
	obj.Set("type", string(e.Type))
	obj.Set("origin", e.Origin)
	obj.Set("data", r.vm.ToValue(e.Data))

	if src, ok := e.Source.(*window.Window); ok && src != nil {
		obj.Set("source", r.bindWindow(src))
	} else {
		obj.Set("source", goja.Null())
	}

	ports := make([]interface{}, len(e.Ports))
	for i := range e.Ports {
		ports[i] = r.vm.NewObject()
	}
	obj.Set("ports", r.vm.ToValue(ports))
	return obj
}

// deadlineObject converts an idle deadline accessor into its script
// shape: {timeRemaining(), didTimeout}.
func (r *Runtime) deadlineObject(d idle.Deadline) *goja.Object {
	obj := r.vm.NewObject()
	obj.Set("timeRemaining", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(float64(d.TimeRemaining().Nanoseconds()) / 1e6)
	})
	obj.Set("didTimeout", d.DidTimeout())
	return obj
}

// defineAccessor defines a property with a Go getter and optional setter.
func (r *Runtime) defineAccessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getter := r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return get()
	})
	var setter goja.Value
	if set != nil {
		setter = r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				set(call.Arguments[0])
			}
			return goja.Undefined()
		})
	}
	_ = obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

// messageEventType maps addEventListener type strings to event types.
func messageEventType(name string) (messaging.EventType, bool) {
	switch name {
	case "message":
		return messaging.EventMessage, true
	case "messageerror":
		return messaging.EventMessageError, true
	}
	return "", false
}

// argString returns the call argument at index as a string, or "" when it
// is absent, undefined or null.
func argString(call goja.FunctionCall, index int) string {
	if index >= len(call.Arguments) {
		return ""
	}
	arg := call.Arguments[index]
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		return ""
	}
	return arg.String()
}
