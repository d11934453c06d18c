package dombind

import (
	"bytes"

	"github.com/wippyai/dombind/errors"
)

// cstringChunk is the scan window used while looking for the terminator.
const cstringChunk = 64

// MaxCStringLen bounds the terminator scan so a missing NUL cannot walk the
// whole heap.
const MaxCStringLen = 1 << 20

// ReadCString copies the NUL-terminated byte sequence at ptr out of mem.
// The returned slice does not include the terminator and does not alias mem.
// A null pointer reads as an empty string.
func ReadCString(mem Memory, ptr uint32) ([]byte, error) {
	if ptr == 0 {
		return nil, nil
	}

	var out []byte
	offset := ptr
	for {
		n := uint32(cstringChunk)
		if s, ok := mem.(MemorySizer); ok {
			size := s.Size()
			if offset >= size {
				return nil, errors.OutOfBounds(errors.PhaseDecode, []string{"cstring"}, int(offset), int(size))
			}
			if offset+n > size {
				n = size - offset
			}
		}

		chunk, err := mem.Read(offset, n)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "read cstring")
		}
		if i := bytes.IndexByte(chunk, 0); i >= 0 {
			out = append(out, chunk[:i]...)
			return out, nil
		}
		out = append(out, chunk...)
		if len(out) > MaxCStringLen {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{"cstring"}, "missing terminator")
		}
		offset += n
	}
}

// WriteCString allocates len(s)+1 bytes with alloc and writes s followed by
// a NUL terminator. The caller owns the allocation and must release it with
// CStringSize(len(s)) and alignment 1.
func WriteCString(mem Memory, alloc Allocator, s string) (uint32, error) {
	size := CStringSize(len(s))
	ptr, err := alloc.Alloc(size, 1)
	if err != nil {
		return 0, err
	}
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseEncode, size, 1)
	}

	buf := make([]byte, size)
	copy(buf, s)
	if err := mem.Write(ptr, buf); err != nil {
		alloc.Free(ptr, size, 1)
		return 0, errors.Wrap(errors.PhaseEncode, errors.KindOutOfBounds, err, "write cstring")
	}
	return ptr, nil
}

// CStringSize is the allocation size of a C string holding n bytes.
func CStringSize(n int) uint32 {
	return uint32(n) + 1
}
