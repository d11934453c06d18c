// Package errors provides structured error types for the dombind library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/native type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBoundary, errors.KindNativeException).
//		Op("Node.appendChild").
//		Detail("HierarchyRequestError: the new child contains the parent").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NativeException("Node.removeChild", msg)
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
