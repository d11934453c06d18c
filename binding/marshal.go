package binding

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/wippyai/dombind"
	"github.com/wippyai/dombind/errors"
)

// readBorrowed copies a string the native side keeps ownership of.
// A null pointer reads as "". Invalid UTF-8 is replaced with U+FFFD.
func (c *ExecutingContext) readBorrowed(op string, p CString) string {
	b := c.readBytes(op, p)
	return toValidString(b)
}

// readOwned copies a string handed over to the caller and then releases it
// with the context allocator.
func (c *ExecutingContext) readOwned(op string, p CString) string {
	if p == 0 {
		return ""
	}
	b := c.readBytes(op, p)
	c.alloc.Free(uint32(p), dombind.CStringSize(len(b)), 1)
	return toValidString(b)
}

func (c *ExecutingContext) readBytes(op string, p CString) []byte {
	if p == 0 {
		return nil
	}
	b, err := dombind.ReadCString(c.mem, uint32(p))
	if err != nil {
		panic(errors.New(errors.PhaseDecode, errors.KindPrecondition).
			Op(op).
			NativeType("const char*").
			Value(uint32(p)).
			Cause(err).
			Detail("string returned by the native side is unreadable").
			Build())
	}
	return b
}

func toValidString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}

type allocation struct {
	ptr  uint32
	size uint32
}

// argList tracks strings the binding allocates for one boundary call and
// frees them once the call returns.
type argList struct {
	context *ExecutingContext
	allocs  []allocation
}

var argListPool = sync.Pool{
	New: func() any {
		return &argList{allocs: make([]allocation, 0, 4)}
	},
}

const maxPooledArgCapacity = 32

func (c *ExecutingContext) newArgs() *argList {
	a := argListPool.Get().(*argList)
	a.context = c
	return a
}

// cstring copies s into the native heap for the duration of the call. A
// string with an embedded NUL cannot cross as a C string and is rejected.
func (a *argList) cstring(op string, s string) (CString, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return 0, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Op(op).
			GoType("string").
			Detail("argument contains a NUL byte at offset %d", i).
			Build()
	}
	ptr, err := dombind.WriteCString(a.context.mem, a.context.alloc, s)
	if err != nil {
		return 0, errors.New(errors.PhaseEncode, errors.KindAllocation).
			Op(op).
			GoType("string").
			Cause(err).
			Detail("cannot marshal %d byte argument", len(s)).
			Build()
	}
	a.allocs = append(a.allocs, allocation{ptr: ptr, size: dombind.CStringSize(len(s))})
	return CString(ptr), nil
}

// release frees every argument and returns the list to the pool.
func (a *argList) release() {
	for _, al := range a.allocs {
		a.context.alloc.Free(al.ptr, al.size, 1)
	}
	if cap(a.allocs) > maxPooledArgCapacity {
		return
	}
	a.allocs = a.allocs[:0]
	a.context = nil
	argListPool.Put(a)
}

// ReadBorrowedString copies a string the native side keeps ownership of.
// Concrete wrappers outside this package use it for borrowed accessors.
func (c *ExecutingContext) ReadBorrowedString(op string, p CString) string {
	return c.readBorrowed(op, p)
}

// ReadOwnedString copies a string handed over to the caller and releases it.
func (c *ExecutingContext) ReadOwnedString(op string, p CString) string {
	return c.readOwned(op, p)
}
