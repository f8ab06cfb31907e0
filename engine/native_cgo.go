//go:build angle && cgo

package engine

/*
#cgo pkg-config: angle-translator
#cgo CXXFLAGS: -std=c++17
#cgo LDFLAGS: -lstdc++
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

// Prototypes of translator_shim.cpp, compiled into this package.
typedef void* ShHandle;

typedef struct {
	int size;
	int type;
	const char* name;
} GLSLangActiveInfo;

extern int GLSLangInitialize(void);
extern int GLSLangFinalize(void);
extern void GLSLangInitBuiltInResources(int32_t* resources);
extern ShHandle GLSLangConstructCompiler(unsigned int type, int spec, int output, const int32_t* resources);
extern void GLSLangDestructCompiler(ShHandle handle);
extern int GLSLangCompile(ShHandle handle, const char* const shaderStrings[], size_t numStrings, int compileOptions);
extern const char* GLSLangGetObjectCode(ShHandle handle);
extern const char* GLSLangGetInfoLog(ShHandle handle);
extern void GLSLangClearResults(ShHandle handle);
extern int GLSLangGetShaderVersion(ShHandle handle);
extern int GLSLangGetShaderOutputType(ShHandle handle);
extern const char* GLSLangGetBuiltInResourcesString(ShHandle handle);
extern int GLSLangGetNumActiveUniforms(ShHandle handle);
extern int GLSLangGetActiveUniform(ShHandle handle, int index, GLSLangActiveInfo* out);
*/
import "C"

import (
	"context"
	"sync"
	"unsafe"

	"github.com/wippyai/shader-validator/angle"
	"github.com/wippyai/shader-validator/errors"
)

// NativeEngine links the translator into the process with cgo. The flat
// entry points come from translator_shim.cpp; ANGLE itself is found through
// an angle-translator pkg-config entry. Build with -tags angle.
type NativeEngine struct {
	handles map[Handle]C.ShHandle
	next    Handle
	mu      sync.Mutex
}

var (
	_ Engine       = (*NativeEngine)(nil)
	_ Introspector = (*NativeEngine)(nil)
)

// NewNativeEngine returns an engine bound to the linked shim.
func NewNativeEngine() *NativeEngine {
	return &NativeEngine{handles: make(map[Handle]C.ShHandle)}
}

func (e *NativeEngine) lookup(h Handle) (C.ShHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ptr, ok := e.handles[h]
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseQuery, "unknown compiler handle")
	}
	return ptr, nil
}

func (e *NativeEngine) Initialize(context.Context) (bool, error) {
	return C.GLSLangInitialize() != 0, nil
}

func (e *NativeEngine) Finalize(context.Context) (bool, error) {
	return C.GLSLangFinalize() != 0, nil
}

func (e *NativeEngine) InitBuiltInResources(_ context.Context, res *angle.ResourceLimits) error {
	var buf [angle.ResourceLimitsFieldCount]C.int32_t
	for i, v := range res.Values() {
		buf[i] = C.int32_t(v)
	}
	C.GLSLangInitBuiltInResources(&buf[0])

	values := make([]int32, len(buf))
	for i, v := range buf {
		values[i] = int32(v)
	}
	res.SetValues(values)
	return nil
}

func (e *NativeEngine) ConstructCompiler(_ context.Context, shaderType angle.ShaderType, spec, output int32, res *angle.ResourceLimits) (Handle, error) {
	var buf [angle.ResourceLimitsFieldCount]C.int32_t
	for i, v := range res.Values() {
		buf[i] = C.int32_t(v)
	}

	ptr := C.GLSLangConstructCompiler(C.uint(shaderType), C.int(spec), C.int(output), &buf[0])
	if ptr == nil {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	e.handles[e.next] = ptr
	return e.next, nil
}

func (e *NativeEngine) DestructCompiler(_ context.Context, h Handle) error {
	e.mu.Lock()
	ptr, ok := e.handles[h]
	delete(e.handles, h)
	e.mu.Unlock()

	if !ok {
		return errors.InvalidInput(errors.PhaseConstruct, "unknown compiler handle")
	}
	C.GLSLangDestructCompiler(ptr)
	return nil
}

// Compile copies the sources and the pointer array into C memory; cgo
// forbids handing Go-allocated pointer arrays to C.
func (e *NativeEngine) Compile(_ context.Context, h Handle, sources [][]byte, options angle.CompileOptions) (bool, error) {
	ptr, err := e.lookup(h)
	if err != nil {
		return false, err
	}

	n := len(sources)
	arr := (**C.char)(C.malloc(C.size_t(max(n, 1)) * C.size_t(unsafe.Sizeof((*C.char)(nil)))))
	if arr == nil {
		return false, errors.AllocationFailed(errors.PhaseEncode, uint32(max(n, 1)*int(unsafe.Sizeof((*C.char)(nil)))))
	}
	defer C.free(unsafe.Pointer(arr))

	slots := unsafe.Slice(arr, max(n, 1))
	for i, src := range sources {
		slots[i] = (*C.char)(C.CBytes(src))
	}
	defer func() {
		for i := range sources {
			C.free(unsafe.Pointer(slots[i]))
		}
	}()

	ok := C.GLSLangCompile(ptr, arr, C.size_t(n), C.int(options))
	return ok != 0, nil
}

func (e *NativeEngine) ObjectCode(_ context.Context, h Handle) ([]byte, error) {
	ptr, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	return goBytes(C.GLSLangGetObjectCode(ptr)), nil
}

func (e *NativeEngine) InfoLog(_ context.Context, h Handle) ([]byte, error) {
	ptr, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	return goBytes(C.GLSLangGetInfoLog(ptr)), nil
}

func (e *NativeEngine) ClearResults(_ context.Context, h Handle) error {
	ptr, err := e.lookup(h)
	if err != nil {
		return err
	}
	C.GLSLangClearResults(ptr)
	return nil
}

func (e *NativeEngine) ShaderVersion(_ context.Context, h Handle) (int32, error) {
	ptr, err := e.lookup(h)
	if err != nil {
		return 0, err
	}
	return int32(C.GLSLangGetShaderVersion(ptr)), nil
}

func (e *NativeEngine) ShaderOutputType(_ context.Context, h Handle) (int32, error) {
	ptr, err := e.lookup(h)
	if err != nil {
		return 0, err
	}
	return int32(C.GLSLangGetShaderOutputType(ptr)), nil
}

func (e *NativeEngine) BuiltInResourcesString(_ context.Context, h Handle) ([]byte, error) {
	ptr, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	return goBytes(C.GLSLangGetBuiltInResourcesString(ptr)), nil
}

func (e *NativeEngine) ActiveUniforms(_ context.Context, h Handle) ([]ActiveInfo, error) {
	ptr, err := e.lookup(h)
	if err != nil {
		return nil, err
	}

	n := int(C.GLSLangGetNumActiveUniforms(ptr))
	infos := make([]ActiveInfo, 0, max(n, 0))
	for i := 0; i < n; i++ {
		var info C.GLSLangActiveInfo
		if C.GLSLangGetActiveUniform(ptr, C.int(i), &info) == 0 {
			break
		}
		infos = append(infos, ActiveInfo{
			Name: string(goBytes(info.name)),
			Size: int32(info.size),
			Type: int32(info._type),
		})
	}
	return infos, nil
}

func goBytes(s *C.char) []byte {
	if s == nil {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(s), C.int(C.strlen(s)))
}
