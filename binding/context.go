package binding

import (
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/dombind"
	"github.com/wippyai/dombind/errors"
)

// ContextOption configures an ExecutingContext.
type ContextOption func(*contextConfig)

type contextConfig struct {
	logger *zap.Logger
	id     string
}

// WithLogger sets the parent logger for the context.
func WithLogger(l *zap.Logger) ContextOption {
	return func(c *contextConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithID overrides the generated context identifier.
func WithID(id string) ContextOption {
	return func(c *contextConfig) {
		if id != "" {
			c.id = id
		}
	}
}

// ExecutingContext is the per-document execution environment. Every wrapper
// carries one, and every boundary call marshals through its memory and
// allocator. It owns the listener registry.
type ExecutingContext struct {
	methods   *ExecutingContextMethodTable
	mem       dombind.Memory
	alloc     dombind.Allocator
	logger    *zap.Logger
	listeners *listenerRegistry
	id        string
	ptr       OpaquePtr
	closed    atomic.Bool
}

// NewExecutingContext wraps a native context. It is the only place table
// versions are checked: the context table and the tables reachable from the
// document and the window must all match ABIVersion.
func NewExecutingContext(ptr OpaquePtr, methods *ExecutingContextMethodTable, mem dombind.Memory, alloc dombind.Allocator, opts ...ContextOption) (*ExecutingContext, error) {
	if methods == nil {
		return nil, errors.NilPointer(errors.PhaseLoad, []string{"methods"}, "*ExecutingContextMethodTable")
	}
	if mem == nil {
		return nil, errors.NotInitialized(errors.PhaseLoad, "memory")
	}
	if alloc == nil {
		return nil, errors.NotInitialized(errors.PhaseLoad, "allocator")
	}

	cfg := contextConfig{logger: Logger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}

	if err := checkVersion("ExecutingContextMethodTable", methods.Version); err != nil {
		return nil, err
	}
	if methods.Document == nil || methods.Window == nil {
		return nil, errors.InvalidData(errors.PhaseLoad, []string{"ExecutingContextMethodTable"}, "missing document or window accessor")
	}
	if err := checkDocumentTable(methods.Document(ptr).Methods); err != nil {
		return nil, err
	}
	if err := checkWindowTable(methods.Window(ptr).Methods); err != nil {
		return nil, err
	}

	logger := cfg.logger.With(zap.String("context_id", cfg.id))
	c := &ExecutingContext{
		methods:   methods,
		mem:       mem,
		alloc:     alloc,
		logger:    logger,
		listeners: newListenerRegistry(logger),
		id:        cfg.id,
		ptr:       ptr,
	}
	c.logger.Debug("executing context created", zap.Uint32("ptr", uint32(ptr)))
	return c, nil
}

func checkVersion(table string, got float64) error {
	if got != ABIVersion {
		return errors.VersionMismatch(table, got, ABIVersion)
	}
	return nil
}

func checkEventTargetTable(t *EventTargetMethodTable) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseLoad, []string{"EventTarget"}, "*EventTargetMethodTable")
	}
	return checkVersion("EventTargetMethodTable", t.Version)
}

func checkContainerNodeTable(t *ContainerNodeMethodTable) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseLoad, []string{"ContainerNode"}, "*ContainerNodeMethodTable")
	}
	if err := checkVersion("ContainerNodeMethodTable", t.Version); err != nil {
		return err
	}
	if t.Node == nil {
		return errors.NilPointer(errors.PhaseLoad, []string{"ContainerNode", "Node"}, "*NodeMethodTable")
	}
	if err := checkVersion("NodeMethodTable", t.Node.Version); err != nil {
		return err
	}
	return checkEventTargetTable(t.Node.EventTarget)
}

func checkDocumentTable(t *DocumentMethodTable) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseLoad, []string{"Document"}, "*DocumentMethodTable")
	}
	if err := checkVersion("DocumentMethodTable", t.Version); err != nil {
		return err
	}
	return checkContainerNodeTable(t.ContainerNode)
}

func checkWindowTable(t *WindowMethodTable) error {
	if t == nil {
		return errors.NilPointer(errors.PhaseLoad, []string{"Window"}, "*WindowMethodTable")
	}
	if err := checkVersion("WindowMethodTable", t.Version); err != nil {
		return err
	}
	return checkEventTargetTable(t.EventTarget)
}

// Ptr returns the native context handle.
func (c *ExecutingContext) Ptr() OpaquePtr {
	return c.ptr
}

// ID returns the context identifier used in logs.
func (c *ExecutingContext) ID() string {
	return c.id
}

// Memory returns the native heap the context marshals through.
func (c *ExecutingContext) Memory() dombind.Memory {
	return c.mem
}

// Allocator returns the allocator shared with the native side.
func (c *ExecutingContext) Allocator() dombind.Allocator {
	return c.alloc
}

// Logger returns the context logger.
func (c *ExecutingContext) Logger() *zap.Logger {
	return c.logger
}

// Document returns the document of this context.
func (c *ExecutingContext) Document() *Document {
	v := c.methods.Document(c.ptr)
	return InitializeDocument(v.Ptr, c, v.Methods)
}

// Window returns the window of this context.
func (c *ExecutingContext) Window() *Window {
	v := c.methods.Window(c.ptr)
	return InitializeWindow(v.Ptr, c, v.Methods)
}

// CreateExceptionState returns a fresh, empty exception state.
func (c *ExecutingContext) CreateExceptionState() *ExceptionState {
	return &ExceptionState{context: c}
}

// ListenerCount returns the number of listeners with at least one live
// native registration.
func (c *ExecutingContext) ListenerCount() int {
	return c.listeners.len()
}

// Closed reports whether Close has been called.
func (c *ExecutingContext) Closed() bool {
	return c.closed.Load()
}

// Close drops every listener closure. Native registrations that still refer
// to them become inert: their callbacks are ignored and their Free calls are
// no-ops. Close is idempotent.
func (c *ExecutingContext) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	n := c.listeners.len()
	if err := c.listeners.close(); err != nil {
		return err
	}
	c.logger.Debug("executing context closed", zap.Int("dropped_listeners", n))
	return nil
}

// exceptionState returns es, or a call-scoped state when es is nil. A zero
// ExceptionState is bound to c on first use. A stale message left by a
// caller that never surfaced it is dropped so it cannot be attributed to the
// next call.
func (c *ExecutingContext) exceptionState(es *ExceptionState) *ExceptionState {
	if es == nil {
		return c.CreateExceptionState()
	}
	if es.context == nil {
		es.context = c
	}
	if es.HasException() {
		c.logger.Debug("discarding stale exception", zap.String("message", es.Stringify()))
		es.Clear()
	}
	return es
}
