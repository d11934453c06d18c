package heap

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/dombind"
	"github.com/wippyai/dombind/errors"
)

const (
	pageSize = 65536

	// heapBase keeps the first bytes unused so that 0 stays a null pointer.
	heapBase = 16

	defaultLimitPages = 1024
)

// memoryModule is a core module with one exported memory of one page:
//
//	(module (memory (export "memory") 1))
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

var (
	_ dombind.Memory      = (*Heap)(nil)
	_ dombind.Allocator   = (*Heap)(nil)
	_ dombind.MemorySizer = (*Heap)(nil)
)

// Stats reports allocator counters.
type Stats struct {
	LiveBytes   uint32
	LiveAllocs  int
	TotalAllocs int
	TotalFrees  int
	FreeBlocks  int
	Pages       uint32
}

type block struct {
	ptr  uint32
	size uint32
}

// Option configures a Heap.
type Option func(*config)

type config struct {
	logger     *zap.Logger
	limitPages uint32
}

// WithMemoryLimitPages caps the linear memory at n 64KiB pages.
func WithMemoryLimitPages(n uint32) Option {
	return func(c *config) {
		if n > 0 {
			c.limitPages = n
		}
	}
}

// WithLogger sets the logger used for allocator diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Heap is a native heap backed by a wazero linear memory.
// It is safe for concurrent use.
type Heap struct {
	runtime wazero.Runtime
	module  api.Module
	mem     api.Memory
	logger  *zap.Logger
	live    map[uint32]uint32
	free    []block
	stats   Stats
	top     uint32
	mu      sync.Mutex
}

// New instantiates a fresh linear memory and returns a heap over it.
func New(ctx context.Context, opts ...Option) (*Heap, error) {
	cfg := config{
		logger:     Logger(),
		limitPages: defaultLimitPages,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	rtCfg := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(cfg.limitPages).
		WithCloseOnContextDone(false)
	rt := wazero.NewRuntimeWithConfig(ctx, rtCfg)

	mod, err := rt.InstantiateWithConfig(ctx, memoryModule, wazero.NewModuleConfig().WithName("native-heap"))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Load("instantiate heap memory", err)
	}

	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "export", "memory")
	}

	cfg.logger.Debug("native heap created",
		zap.Uint32("pages", mem.Size()/pageSize),
		zap.Uint32("limit_pages", cfg.limitPages))

	return &Heap{
		runtime: rt,
		module:  mod,
		mem:     mem,
		logger:  cfg.logger,
		live:    make(map[uint32]uint32),
		top:     heapBase,
	}, nil
}

// Close releases the underlying wazero runtime. The heap must not be used
// afterwards.
func (h *Heap) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// Alloc returns a block of at least size bytes aligned to align.
func (h *Heap) Alloc(size, align uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}
	if align == 0 || align&(align-1) != 0 {
		return 0, errors.InvalidInput(errors.PhaseRuntime, fmt.Sprintf("alignment %d is not a power of two", align))
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if ptr, ok := h.allocFromFreeList(size, align); ok {
		h.record(ptr, size)
		return ptr, nil
	}

	ptr := alignUp(h.top, align)
	end := uint64(ptr) + uint64(size)
	if end > uint64(h.mem.Size()) {
		need := end - uint64(h.mem.Size())
		pages := uint32((need + pageSize - 1) / pageSize)
		if _, ok := h.mem.Grow(pages); !ok {
			h.logger.Warn("native heap exhausted",
				zap.Uint32("size", size),
				zap.Uint32("pages", h.mem.Size()/pageSize))
			return 0, errors.AllocationFailed(errors.PhaseRuntime, size, align)
		}
	}

	if gap := ptr - h.top; gap > 0 {
		h.insertFree(block{ptr: h.top, size: gap})
	}
	h.top = uint32(end)
	h.record(ptr, size)
	return ptr, nil
}

func (h *Heap) allocFromFreeList(size, align uint32) (uint32, bool) {
	for i, b := range h.free {
		start := alignUp(b.ptr, align)
		if uint64(start)+uint64(size) > uint64(b.ptr)+uint64(b.size) {
			continue
		}

		h.free = append(h.free[:i], h.free[i+1:]...)
		if lead := start - b.ptr; lead > 0 {
			h.insertFree(block{ptr: b.ptr, size: lead})
		}
		if tail := b.ptr + b.size - (start + size); tail > 0 {
			h.insertFree(block{ptr: start + size, size: tail})
		}
		return start, true
	}
	return 0, false
}

func (h *Heap) record(ptr, size uint32) {
	h.live[ptr] = size
	h.stats.LiveBytes += size
	h.stats.LiveAllocs++
	h.stats.TotalAllocs++
}

// Free releases a block returned by Alloc. The recorded size of the block is
// authoritative; size and align are accepted for Allocator compatibility.
// Freeing an unknown pointer is logged and ignored.
func (h *Heap) Free(ptr, size, _ uint32) {
	if ptr == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	actual, ok := h.live[ptr]
	if !ok {
		h.logger.Warn("free of unknown pointer", zap.Uint32("ptr", ptr), zap.Uint32("size", size))
		return
	}
	if size != 0 && size != actual {
		h.logger.Debug("free size differs from allocation",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Uint32("allocated", actual))
	}

	delete(h.live, ptr)
	h.stats.LiveBytes -= actual
	h.stats.LiveAllocs--
	h.stats.TotalFrees++
	h.insertFree(block{ptr: ptr, size: actual})
}

// insertFree adds b to the sorted free list, merging adjacent blocks and
// folding a trailing block back into the bump region.
func (h *Heap) insertFree(b block) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].ptr >= b.ptr })
	h.free = append(h.free, block{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = b

	if i+1 < len(h.free) && h.free[i].ptr+h.free[i].size == h.free[i+1].ptr {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].ptr+h.free[i-1].size == h.free[i].ptr {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
		i--
	}

	if last := h.free[len(h.free)-1]; last.ptr+last.size == h.top {
		h.top = last.ptr
		h.free = h.free[:len(h.free)-1]
	}
}

// Stats returns a snapshot of the allocator counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stats
	s.FreeBlocks = len(h.free)
	s.Pages = h.mem.Size() / pageSize
	return s
}

// SizeOf returns the recorded size of a live allocation.
func (h *Heap) SizeOf(ptr uint32) (uint32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	size, ok := h.live[ptr]
	return size, ok
}

// AllocCString copies s into a fresh NUL-terminated allocation.
func (h *Heap) AllocCString(s string) (uint32, error) {
	return dombind.WriteCString(h, h, s)
}

// ReadCString copies the NUL-terminated string at ptr.
func (h *Heap) ReadCString(ptr uint32) (string, error) {
	b, err := dombind.ReadCString(h, ptr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FreeCString releases an allocation made by AllocCString for a string of n
// bytes.
func (h *Heap) FreeCString(ptr uint32, n int) {
	h.Free(ptr, dombind.CStringSize(n), 1)
}

// Size returns the current size of the linear memory in bytes.
func (h *Heap) Size() uint32 {
	return h.mem.Size()
}

// Read returns a copy of length bytes at offset.
func (h *Heap) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := h.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write writes bytes to memory.
func (h *Heap) Write(offset uint32, data []byte) error {
	if !h.mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

// ReadU8 reads an unsigned 8-bit value.
func (h *Heap) ReadU8(offset uint32) (uint8, error) {
	v, ok := h.mem.ReadByte(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (h *Heap) ReadU32(offset uint32) (uint32, error) {
	v, ok := h.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (h *Heap) ReadU64(offset uint32) (uint64, error) {
	v, ok := h.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// WriteU8 writes an unsigned 8-bit value.
func (h *Heap) WriteU8(offset uint32, value uint8) error {
	if !h.mem.WriteByte(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (h *Heap) WriteU32(offset uint32, value uint32) error {
	if !h.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (h *Heap) WriteU64(offset uint32, value uint64) error {
	if !h.mem.WriteUint64Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) &^ (align - 1)
}
