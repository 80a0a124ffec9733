// Package js exposes the window surface to scripts. It uses the goja
// JavaScript engine (pure Go ES5.1+ implementation) and binds the host
// window's scheduling and messaging operations onto the global object.
package js

import (
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/vibewindow/logger"
	"github.com/chrisuehlinger/vibewindow/window"
)

// Runtime wraps a goja runtime bound to one window. All script execution
// and callback invocation must happen on the host loop's goroutine; the
// runtime itself is not safe for concurrent use.
type Runtime struct {
	vm      *goja.Runtime
	win     *window.Window
	log     logger.Logger
	timers  *timerManager
	start   time.Time
	mu      sync.Mutex
	errors  []error
	onError func(error)

	// windowObjects caches the script object for each window this
	// runtime has seen, keyed by context id.
	windowObjects map[uint64]*goja.Object
	listeners     []scriptListener
}

// NewRuntime creates a runtime bound to the given window. A nil logger
// silences console and dialog output.
func NewRuntime(win *window.Window, log logger.Logger) *Runtime {
	if log == nil {
		log = logger.Nop{}
	}

	vm := goja.New()
	r := &Runtime{
		vm:            vm,
		win:           win,
		log:           log,
		timers:        newTimerManager(win.Queue(), time.Now),
		start:         time.Now(),
		errors:        make([]error, 0),
		windowObjects: make(map[uint64]*goja.Object),
	}

	r.setupConsole()
	r.setupTimers()
	r.setupWindow()

	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Window returns the window this runtime is bound to.
func (r *Runtime) Window() *window.Window {
	return r.win
}

// SetOnError sets a callback for JavaScript errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = handler
}

// Execute runs JavaScript code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	// Recover from panics in the goja parser/runtime
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.recordError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.recordError(err)
	}
	return result, err
}

// ExecuteScript runs JavaScript code with a source name for stack traces.
// Scripts are compiled in non-strict (sloppy) mode; scripts that need
// strict mode should include a "use strict" directive.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.recordError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.recordError(err)
		return err
	}

	_, err = r.vm.RunProgram(program)
	if err != nil {
		r.recordError(err)
	}
	return err
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

func (r *Runtime) recordError(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.mu.Unlock()
	if handler != nil {
		handler(err)
	}
}

// invoke calls a script callback and records any error it throws.
func (r *Runtime) invoke(callback goja.Callable, args []goja.Value) {
	if _, err := callback(goja.Undefined(), args...); err != nil {
		r.recordError(err)
	}
}

// callbackError adapts a script callback's thrown error for the
// schedulers, which expect an error return.
func (r *Runtime) callbackError(callback goja.Callable, args ...goja.Value) error {
	_, err := callback(goja.Undefined(), args...)
	if err != nil {
		r.recordError(err)
	}
	return err
}

// ProcessTimers moves due timers onto the host task queue. The host loop
// drains them along with posted messages and idle work.
func (r *Runtime) ProcessTimers() {
	r.timers.process(r.invoke)
}

// HasPendingWork returns true if there are timers waiting to come due or
// tasks already queued on the host loop.
func (r *Runtime) HasPendingWork() bool {
	return r.timers.hasPending() || r.win.Queue().HasPending()
}

// NextTimerDue returns the time until the next timer fires; zero when
// one is already due or none are pending.
func (r *Runtime) NextTimerDue() time.Duration {
	return r.timers.nextDueIn()
}

// setupConsole creates the console object, routing output through the
// runtime's logger.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	console.Set("log", func(call goja.FunctionCall) goja.Value {
		r.log.Info("%s", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("info", func(call goja.FunctionCall) goja.Value {
		r.log.Info("%s", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("debug", func(call goja.FunctionCall) goja.Value {
		r.log.Info("%s", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("warn", func(call goja.FunctionCall) goja.Value {
		r.log.Warning("%s", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("error", func(call goja.FunctionCall) goja.Value {
		r.log.Error("%s", formatArgs(call.Arguments))
		return goja.Undefined()
	})

	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			msg := "Assertion failed"
			if len(call.Arguments) > 1 {
				msg = formatArgs(call.Arguments[1:])
			}
			r.log.Error("assert: %s", msg)
		}
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

// setupTimers creates setTimeout, setInterval, clearTimeout and
// clearInterval on the global object.
func (r *Runtime) setupTimers() {
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		callback, delay, args, ok := timerArgs(call, 0)
		if !ok {
			return goja.Undefined()
		}
		id := r.timers.setTimeout(callback, delay, args)
		return r.vm.ToValue(id)
	})

	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		// Minimum interval of 4ms per the HTML timer steps.
		callback, delay, args, ok := timerArgs(call, 4*time.Millisecond)
		if !ok {
			return goja.Undefined()
		}
		id := r.timers.setInterval(callback, delay, args)
		return r.vm.ToValue(id)
	})

	clear := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		r.timers.clearTimer(int(call.Arguments[0].ToInteger()))
		return goja.Undefined()
	}
	r.vm.Set("clearTimeout", clear)
	r.vm.Set("clearInterval", clear)
}

// timerArgs extracts the (callback, delay, extra args) triple shared by
// setTimeout and setInterval.
func timerArgs(call goja.FunctionCall, min time.Duration) (goja.Callable, time.Duration, []goja.Value, bool) {
	if len(call.Arguments) < 1 {
		return nil, 0, nil, false
	}
	callback, ok := goja.AssertFunction(call.Arguments[0])
	if !ok {
		return nil, 0, nil, false
	}

	delayMS := int64(0)
	if len(call.Arguments) > 1 {
		delayMS = call.Arguments[1].ToInteger()
	}
	delay := time.Duration(delayMS) * time.Millisecond
	if delay < min {
		delay = min
	}

	var args []goja.Value
	if len(call.Arguments) > 2 {
		args = call.Arguments[2:]
	}
	return callback, delay, args, true
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	result := ""
	for i, arg := range args {
		if i > 0 {
			result += " "
		}
		result += formatValue(arg)
	}
	return result
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
