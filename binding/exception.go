package binding

import (
	"go.uber.org/zap"

	"github.com/wippyai/dombind"
	"github.com/wippyai/dombind/errors"
)

// ExceptionState is the out-parameter through which the native side reports
// failures. The message, when present, is a native allocation that the state
// owns until it is surfaced or cleared.
//
// The zero value is ready to use: it binds to the context of the first call
// it is passed to. An ExceptionState belongs to one context and is not safe
// for concurrent use. It may be reused across calls; every surfaced error
// leaves it clean.
type ExceptionState struct {
	context *ExecutingContext
	message CString
	raised  bool
}

// Raise records msg as the pending exception and takes ownership of it. A
// message recorded earlier is released first. Called by the native side.
func (es *ExceptionState) Raise(msg CString) {
	es.release()
	es.message = msg
	es.raised = true
}

// HasException reports whether a failure is pending.
func (es *ExceptionState) HasException() bool {
	return es.raised
}

// Stringify copies the pending message without clearing it.
func (es *ExceptionState) Stringify() string {
	if !es.raised {
		return ""
	}
	return es.context.readBorrowed("ExceptionState.stringify", es.message)
}

// Clear releases the pending message, if any.
func (es *ExceptionState) Clear() {
	es.release()
}

// Context returns the context this state belongs to.
func (es *ExceptionState) Context() *ExecutingContext {
	return es.context
}

func (es *ExceptionState) release() {
	if es.message != 0 {
		es.context.readOwned("ExceptionState.release", es.message)
	}
	es.message = 0
	es.raised = false
}

// takeError converts a pending failure into an error and leaves the state
// clean. It returns nil when nothing is pending.
func (es *ExceptionState) takeError(op string) error {
	if !es.raised {
		return nil
	}
	msg := es.context.readOwned(op, es.message)
	es.message = 0
	es.raised = false
	es.context.logger.Debug("native exception",
		zap.String("op", op),
		zap.String("message", msg))
	return errors.NativeException(op, msg)
}

// raiseString allocates s in the native heap and records it. Used to report
// listener failures back to the native side.
func (es *ExceptionState) raiseString(s string) {
	ptr, err := dombind.WriteCString(es.context.mem, es.context.alloc, s)
	if err != nil {
		// The failure is still reported, without a message.
		es.context.logger.Warn("cannot allocate exception message", zap.Error(err))
		es.Raise(0)
		return
	}
	es.Raise(CString(ptr))
}
