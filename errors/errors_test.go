package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:      PhaseDecode,
				Kind:       KindInvalidData,
				Op:         "HashchangeEvent.newURL",
				Path:       []string{"event", "newURL"},
				GoType:     "string",
				NativeType: "const char*",
				Detail:     "cannot convert",
			},
			contains: []string{"[decode]", "invalid_data", "HashchangeEvent.newURL", "event.newURL", "string", "const char*", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRuntime,
				Kind:   KindAllocation,
				Detail: "heap full",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[runtime]", "allocation", "heap full", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := NativeException("Node.removeChild", "NotFoundError: not a child")

	if !errors.Is(err, &Error{Phase: PhaseBoundary, Kind: KindNativeException}) {
		t.Error("expected match on phase and kind")
	}
	if errors.Is(err, &Error{Phase: PhaseBoundary, Kind: KindPrecondition}) {
		t.Error("expected no match on different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseDecode, Kind: KindNativeException}) {
		t.Error("expected no match on different phase")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("cause")
	err := New(PhaseBoundary, KindNativeException).
		Op("Node.appendChild").
		Path("parent", "child").
		GoType("*binding.Node").
		NativeType("Node").
		Value(42).
		Cause(cause).
		Detail("failed with %d", 3).
		Build()

	if err.Op != "Node.appendChild" {
		t.Errorf("Op = %q", err.Op)
	}
	if len(err.Path) != 2 || err.Path[1] != "child" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.GoType != "*binding.Node" || err.NativeType != "Node" {
		t.Errorf("types = %q, %q", err.GoType, err.NativeType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v", err.Value)
	}
	if err.Detail != "failed with 3" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}

	plain := New(PhaseLoad, KindInvalidInput).Detail("100%").Build()
	if plain.Detail != "100%" {
		t.Errorf("Detail without args = %q", plain.Detail)
	}
}

func TestNativeException(t *testing.T) {
	err := NativeException("EventTarget.addEventListener", "InvalidStateError: target disposed")

	if !IsNativeException(err) {
		t.Fatal("IsNativeException = false")
	}
	if got := NativeMessage(err); got != "InvalidStateError: target disposed" {
		t.Fatalf("NativeMessage = %q", got)
	}

	wrapped := fmt.Errorf("register: %w", err)
	if !IsNativeException(wrapped) {
		t.Fatal("IsNativeException should see through wrapping")
	}
	if NativeMessage(wrapped) == "" {
		t.Fatal("NativeMessage should see through wrapping")
	}

	other := InvalidInput(PhaseScript, "bad")
	if IsNativeException(other) {
		t.Fatal("InvalidInput is not a native exception")
	}
	if NativeMessage(other) != "" {
		t.Fatal("NativeMessage of a non-native error should be empty")
	}
	if IsNativeException(nil) {
		t.Fatal("nil is not a native exception")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
		want  string
	}{
		{"version", VersionMismatch("NodeMethodTable", 2, 1), PhaseLoad, KindVersionMismatch, "version 2"},
		{"precondition", Precondition("Event.type", "unreadable string"), PhaseBoundary, KindPrecondition, "unreadable"},
		{"disposed", Disposed(PhaseDispatch, "listener"), PhaseDispatch, KindDisposed, "listener has been disposed"},
		{"alloc", AllocationFailed(PhaseEncode, 1024, 8), PhaseEncode, KindAllocation, "1024"},
		{"unsupported", Unsupported(PhaseRuntime, "shadow roots"), PhaseRuntime, KindUnsupported, "shadow roots"},
		{"oob", OutOfBounds(PhaseDecode, nil, 10, 5), PhaseDecode, KindOutOfBounds, "index 10"},
		{"nil", NilPointer(PhaseEncode, nil, "*Node"), PhaseEncode, KindNilPointer, "nil pointer"},
		{"invalid", InvalidData(PhaseDecode, nil, "missing terminator"), PhaseDecode, KindInvalidData, "terminator"},
		{"notinit", NotInitialized(PhaseRuntime, "engine"), PhaseRuntime, KindNotInitialized, "engine not initialized"},
		{"notfound", NotFound(PhaseRuntime, "listener", "click"), PhaseRuntime, KindNotFound, `"click"`},
		{"load", Load("create heap", errors.New("x")), PhaseLoad, KindInvalidData, "create heap"},
		{"script", Script("main.js", errors.New("x")), PhaseScript, KindInvalidInput, "main.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("Phase = %s, want %s", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.want) {
				t.Errorf("%q does not contain %q", tt.err.Error(), tt.want)
			}
		})
	}
}
