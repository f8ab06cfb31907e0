package engine

import (
	"bytes"
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	shadervalidator "github.com/wippyai/shader-validator"
	"github.com/wippyai/shader-validator/errors"
)

// WazeroMemory wraps wazero memory to implement shadervalidator.Memory
type WazeroMemory struct {
	mem api.Memory
}

var (
	_ shadervalidator.Memory      = (*WazeroMemory)(nil)
	_ shadervalidator.MemorySizer = (*WazeroMemory)(nil)
	_ shadervalidator.Allocator   = (*wazeroAllocator)(nil)
)

func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseDecode, offset, length)
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return errors.OutOfBounds(errors.PhaseEncode, offset, uint32(len(data)))
	}
	return nil
}

func (m *WazeroMemory) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(errors.PhaseDecode, offset, 4)
	}
	return v, nil
}

func (m *WazeroMemory) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(errors.PhaseEncode, offset, 4)
	}
	return nil
}

// ReadCString copies bytes from offset up to the first NUL. A string that
// runs off the end of memory is reported as out of bounds.
func (m *WazeroMemory) ReadCString(offset uint32) ([]byte, error) {
	size := m.mem.Size()
	if offset >= size {
		return nil, errors.OutOfBounds(errors.PhaseDecode, offset, 1)
	}
	view, ok := m.mem.Read(offset, size-offset)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseDecode, offset, size-offset)
	}
	n := bytes.IndexByte(view, 0)
	if n < 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Detail("unterminated string at offset %d", offset).
			Build()
	}
	return bytes.Clone(view[:n]), nil
}

func (m *WazeroMemory) Size() uint32 {
	return m.mem.Size()
}

// wazeroAllocator implements shadervalidator.Allocator with the guest's
// malloc and free. malloc alignment covers every request made here, so
// align is not forwarded.
type wazeroAllocator struct {
	allocFn    api.Function
	freeFn     api.Function
	currentCtx context.Context
	stackBuf   []uint64
	stackMutex sync.Mutex
}

func newWazeroAllocator(allocFn, freeFn api.Function) *wazeroAllocator {
	return &wazeroAllocator{
		allocFn:  allocFn,
		freeFn:   freeFn,
		stackBuf: make([]uint64, 1),
	}
}

func (a *wazeroAllocator) setContext(ctx context.Context) {
	a.stackMutex.Lock()
	defer a.stackMutex.Unlock()
	a.currentCtx = ctx
}

func (a *wazeroAllocator) Alloc(size, align uint32) (uint32, error) {
	a.stackMutex.Lock()
	defer a.stackMutex.Unlock()

	ctx := a.currentCtx
	if ctx == nil {
		ctx = context.Background()
	}

	a.stackBuf[0] = api.EncodeU32(size)
	if err := a.allocFn.CallWithStack(ctx, a.stackBuf[:1]); err != nil {
		return 0, errors.Trap(errors.PhaseEncode, ExportMalloc, err)
	}
	ptr := api.DecodeU32(a.stackBuf[0])
	if ptr == 0 {
		return 0, errors.AllocationFailed(errors.PhaseEncode, size)
	}
	return ptr, nil
}

func (a *wazeroAllocator) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	a.stackMutex.Lock()
	defer a.stackMutex.Unlock()

	ctx := a.currentCtx
	if ctx == nil {
		ctx = context.Background()
	}

	a.stackBuf[0] = api.EncodeU32(ptr)
	if err := a.freeFn.CallWithStack(ctx, a.stackBuf[:1]); err != nil {
		Logger().Warn("Free: failed to call free for deallocation",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}
