package native

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/dombind/binding"
)

// domError is a DOM exception raised into an ExceptionState as
// "<Name>: <Message>".
type domError struct {
	Name    string
	Message string
}

func (e *domError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func errHierarchyRequest(message string) *domError {
	return &domError{Name: "HierarchyRequestError", Message: message}
}

func errNotFound(message string) *domError {
	return &domError{Name: "NotFoundError", Message: message}
}

func errInvalidState(message string) *domError {
	return &domError{Name: "InvalidStateError", Message: message}
}

func errInvalidCharacter(message string) *domError {
	return &domError{Name: "InvalidCharacterError", Message: message}
}

func errNotSupported(message string) *domError {
	return &domError{Name: "NotSupportedError", Message: message}
}

func errType(message string) *domError {
	return &domError{Name: "TypeError", Message: message}
}

// raise records err in es. The message is allocated in the heap and owned by
// es from then on. Must not be called with e.mu held.
func (e *Engine) raise(es *binding.ExceptionState, err *domError) {
	if es == nil {
		e.logger.Warn("exception with no state to raise into", zap.String("error", err.Error()))
		return
	}
	ptr, aerr := e.heap.AllocCString(err.Error())
	if aerr != nil {
		e.logger.Error("cannot allocate exception message", zap.Error(aerr))
		es.Raise(0)
		return
	}
	es.Raise(binding.CString(ptr))
}
