package script

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
	"github.com/wippyai/dombind/errors"
)

// Option configures a Runtime.
type Option func(*config)

type config struct {
	logger *zap.Logger
	stdout io.Writer
}

// WithLogger sets the logger for script diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStdout sets where console.log writes. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.stdout = w
		}
	}
}

// targetRef ties a JavaScript object to the wrapper it was built from.
// node is nil for the window; element is set once the object is known to
// be an element.
type targetRef struct {
	target  binding.EventTargetMethods
	node    *binding.Node
	element *binding.Element
}

// Runtime is a goja VM bound to one ExecutingContext.
type Runtime struct {
	vm        *goja.Runtime
	ctx       *binding.ExecutingContext
	logger    *zap.Logger
	stdout    io.Writer
	objects   map[binding.OpaquePtr]*goja.Object
	refs      map[*goja.Object]*targetRef
	listeners map[*goja.Object]*binding.EventListener
	events    map[binding.OpaquePtr]*eventRef
	created   []*binding.Event
	errs      []error
	closed    bool

	eventObjects map[*goja.Object]*eventRef
}

// New creates a runtime with document, window and console installed.
func New(ctx *binding.ExecutingContext, opts ...Option) *Runtime {
	cfg := config{
		logger: Logger(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Runtime{
		vm:        goja.New(),
		ctx:       ctx,
		logger:    cfg.logger.With(zap.String("context_id", ctx.ID())),
		stdout:    cfg.stdout,
		objects:   make(map[binding.OpaquePtr]*goja.Object),
		refs:      make(map[*goja.Object]*targetRef),
		listeners: make(map[*goja.Object]*binding.EventListener),
		events:    make(map[binding.OpaquePtr]*eventRef),

		eventObjects: make(map[*goja.Object]*eventRef),
	}

	r.installConsole()
	doc := r.installDocument()
	r.installWindow(doc)
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Run evaluates src. name is used in stack traces.
func (r *Runtime) Run(name, src string) (goja.Value, error) {
	return r.RunContext(context.Background(), name, src)
}

// RunContext evaluates src and interrupts it when ctx is done.
func (r *Runtime) RunContext(ctx context.Context, name, src string) (goja.Value, error) {
	if r.closed {
		return nil, errors.Disposed(errors.PhaseScript, "script runtime")
	}

	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, errors.Script(name, err)
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	defer func() {
		close(done)
		<-stopped
		r.vm.ClearInterrupt()
	}()

	r.logger.Debug("running script", zap.String("name", name))
	v, err := r.vm.RunProgram(prog)
	if err != nil {
		var interrupted *goja.InterruptedError
		if stderrors.As(err, &interrupted) {
			return nil, errors.Script(name, fmt.Errorf("interrupted: %w", ctx.Err()))
		}
		return nil, errors.Script(name, err)
	}
	return v, nil
}

// Errors returns the exceptions thrown by listeners so far.
func (r *Runtime) Errors() []error {
	return r.errs
}

// Close releases the events created by scripts. Listener closures stay
// registered until the engine drops them.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, ev := range r.created {
		ev.Release()
	}
	r.created = nil
	r.logger.Debug("script runtime closed", zap.Int("listener_errors", len(r.errs)))
}

// check turns a binding error into a JavaScript exception. A native
// exception keeps its message verbatim.
func (r *Runtime) check(err error) {
	if err == nil {
		return
	}
	msg := errors.NativeMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	ctor := r.vm.Get("Error")
	obj, cerr := r.vm.New(ctor, r.vm.ToValue(msg))
	if cerr != nil {
		panic(r.vm.NewGoError(err))
	}
	if name, _, ok := strings.Cut(msg, ": "); ok && !strings.ContainsAny(name, " \t") {
		_ = obj.Set("domName", name)
	}
	panic(obj)
}

func (r *Runtime) throwTypeError(format string, args ...any) {
	panic(r.vm.NewTypeError(fmt.Sprintf(format, args...)))
}

func (r *Runtime) report(err error) {
	r.errs = append(r.errs, err)
	r.logger.Error("event listener threw", zap.Error(err))
}

func (r *Runtime) installConsole() {
	console := r.vm.NewObject()
	write := func(level string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, a := range call.Arguments {
				parts[i] = a.String()
			}
			line := strings.Join(parts, " ")
			if level == "log" {
				fmt.Fprintln(r.stdout, line)
			} else {
				fmt.Fprintf(r.stdout, "[%s] %s\n", level, line)
			}
			r.logger.Debug("console", zap.String("level", level), zap.String("line", line))
			return goja.Undefined()
		}
	}
	_ = console.Set("log", write("log"))
	_ = console.Set("info", write("log"))
	_ = console.Set("warn", write("warn"))
	_ = console.Set("error", write("error"))
	_ = r.vm.Set("console", console)
}

// getter defines a read-only accessor on obj.
func (r *Runtime) getter(obj *goja.Object, name string, get func() goja.Value) {
	fn := r.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})
	if err := obj.DefineAccessorProperty(name, fn, nil, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		r.logger.Error("define getter", zap.String("property", name), zap.Error(err))
	}
}

// accessor defines a read-write accessor on obj.
func (r *Runtime) accessor(obj *goja.Object, name string, get func() goja.Value, set func(goja.Value)) {
	getFn := r.vm.ToValue(func(goja.FunctionCall) goja.Value {
		return get()
	})
	setFn := r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		set(call.Argument(0))
		return goja.Undefined()
	})
	if err := obj.DefineAccessorProperty(name, getFn, setFn, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		r.logger.Error("define accessor", zap.String("property", name), zap.Error(err))
	}
}

func (r *Runtime) method(obj *goja.Object, name string, fn func(goja.FunctionCall) goja.Value) {
	if err := obj.Set(name, fn); err != nil {
		r.logger.Error("define method", zap.String("method", name), zap.Error(err))
	}
}
